package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/mymedia/leadgen-cli/internal/model"
)

func sampleBusinesses() []model.Business {
	rating := 4.8
	reviews := 120
	return []model.Business{
		{
			Name:          "Zahnarztpraxis Dr. Weiss",
			Category:      "Zahnarzt",
			Address:       "Hauptstr. 1, 10115 Berlin",
			City:          "Berlin",
			Phone:         "+49301234567",
			CompanyEmails: []string{"info@praxis-weiss.example", "praxis@praxis-weiss.example"},
			Website:       "https://praxis-weiss.example",
			GoogleRating:  &rating,
			ReviewCount:   &reviews,
			ContactPersons: []model.ContactPerson{
				{
					Name:        "Dr. Anna Weiss",
					Title:       "Zahnärztin",
					Email:       "a.weiss@praxis-weiss.example",
					EmailSource: "website",
					Phone:       "+49 30 1234567",
				},
			},
		},
		{
			Name: "Praxis ohne Daten",
			City: "Berlin",
		},
	}
}

func TestRows(t *testing.T) {
	rows := Rows(sampleBusinesses())
	require.Len(t, rows, 2)
	require.Len(t, rows[0], len(Headers))
	require.Len(t, rows[1], len(Headers))

	first := rows[0]
	assert.Equal(t, "Zahnarztpraxis Dr. Weiss", first[0])
	assert.Equal(t, "49301234567", first[4], "company phone loses the plus")
	assert.Equal(t, "info@praxis-weiss.example, praxis@praxis-weiss.example", first[5])
	assert.Equal(t, "4.8", first[7])
	assert.Equal(t, "120", first[8])
	assert.Equal(t, "Dr. Anna Weiss", first[9])
	assert.Equal(t, "Zahnärztin", first[10])
	assert.Equal(t, "49 30 1234567", first[12], "contact phone loses the plus")
	// No second contact: four empty columns.
	assert.Equal(t, []string{"", "", "", ""}, first[13:17])

	second := rows[1]
	assert.Equal(t, "Praxis ohne Daten", second[0])
	assert.Empty(t, second[7])
	assert.Empty(t, second[8])
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	require.NoError(t, WriteCSV(path, sampleBusinesses()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, Headers, records[0])
	assert.Equal(t, "Zahnarztpraxis Dr. Weiss", records[1][0])
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, WriteXLSX(path, "zahnarzt-berlin", sampleBusinesses()))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	sheet, ok := f.Sheet["zahnarzt-berlin"]
	require.True(t, ok)
	require.Len(t, sheet.Rows, 3)
	assert.Equal(t, "Firmenname", sheet.Rows[0].Cells[0].String())
	assert.Equal(t, "Zahnarztpraxis Dr. Weiss", sheet.Rows[1].Cells[0].String())
	assert.Equal(t, "49301234567", sheet.Rows[1].Cells[4].String())
}

func TestSlug(t *testing.T) {
	tests := []struct {
		query model.SearchQuery
		want  string
	}{
		{model.SearchQuery{BusinessType: "Zahnarzt", City: "Berlin"}, "zahnarzt-berlin"},
		{model.SearchQuery{BusinessType: "Ärzte & Praxen", City: "München"}, "arzte-praxen-munchen"},
		{model.SearchQuery{BusinessType: "Fußpflege", City: "Köln"}, "fusspflege-koln"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slug(tt.query))
	}
}

func TestSheetNameLimit(t *testing.T) {
	query := model.SearchQuery{
		BusinessType: "Physiotherapie und Rehabilitation",
		City:         "Frankfurt am Main",
	}
	name := SheetName(query)
	assert.LessOrEqual(t, len(name), 31)
	assert.NotEmpty(t, name)

	assert.Equal(t, "ergebnisse", SheetName(model.SearchQuery{}))
}
