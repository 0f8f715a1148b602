package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mymedia/leadgen-cli/internal/export"
	"github.com/mymedia/leadgen-cli/internal/model"
	"github.com/mymedia/leadgen-cli/internal/store"
	"github.com/mymedia/leadgen-cli/pkg/outscraper"
)

var (
	runType    string
	runCity    string
	runCountry string
	runLimit   int
	runOut     string
	runFormat  string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Search a directory and enrich every result into a report",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		cache := store.NewCache(st)

		query := model.SearchQuery{
			BusinessType: runType,
			City:         runCity,
			Country:      runCountry,
			Limit:        runLimit,
		}

		businesses := cache.GetSearch(ctx, query)
		if businesses == nil {
			client := outscraper.NewClient(cfg.Outscraper.Key,
				outscraper.WithBaseURL(cfg.Outscraper.BaseURL),
				outscraper.WithLanguage(cfg.Outscraper.Language),
			)
			businesses, err = client.Search(ctx, query)
			if err != nil {
				return eris.Wrap(err, "directory search")
			}
			cache.SetSearch(ctx, query, businesses)
		} else {
			zap.L().Info("directory search served from cache",
				zap.String("query", query.MapsQuery()),
				zap.Int("results", len(businesses)),
			)
		}

		orch := newOrchestrator(cache)
		orch.OnProgress(func(done, total int) {
			zap.L().Info("enrichment progress",
				zap.Int("done", done),
				zap.Int("total", total),
			)
		})

		enriched, err := orch.Run(ctx, businesses)
		if err != nil {
			return eris.Wrap(err, "enrichment run")
		}

		format := runFormat
		if format == "" {
			format = cfg.Export.Format
		}
		path := runOut
		if path == "" {
			path = "leads-" + export.Slug(query) + "." + format
		}

		switch format {
		case "csv":
			err = export.WriteCSV(path, enriched)
		case "xlsx":
			err = export.WriteXLSX(path, export.SheetName(query), enriched)
		default:
			return eris.Errorf("unknown export format %q", format)
		}
		if err != nil {
			return err
		}

		zap.L().Info("report written",
			zap.String("path", path),
			zap.Int("businesses", len(enriched)),
		)
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runType, "type", "", "business type to search for (required)")
	runCmd.Flags().StringVar(&runCity, "city", "", "city to search in (required)")
	runCmd.Flags().StringVar(&runCountry, "country", "DE", "two-letter region code")
	runCmd.Flags().IntVar(&runLimit, "limit", 20, "max directory results")
	runCmd.Flags().StringVar(&runOut, "out", "", "output path (default derived from the query)")
	runCmd.Flags().StringVar(&runFormat, "format", "", "csv or xlsx (default from config)")
	_ = runCmd.MarkFlagRequired("type")
	_ = runCmd.MarkFlagRequired("city")
	rootCmd.AddCommand(runCmd)
}
