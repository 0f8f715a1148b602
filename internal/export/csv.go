package export

import (
	"encoding/csv"
	"os"

	"github.com/rotisserie/eris"

	"github.com/mymedia/leadgen-cli/internal/model"
)

// WriteCSV writes the report to path, header row first.
func WriteCSV(path string, businesses []model.Business) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "export: create csv")
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write(Headers); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for _, row := range Rows(businesses) {
		if err := w.Write(row); err != nil {
			return eris.Wrap(err, "export: write csv row")
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "export: flush csv")
	}
	return eris.Wrap(f.Close(), "export: close csv")
}
