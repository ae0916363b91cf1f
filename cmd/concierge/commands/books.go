package commands

import (
	"context"
	"fmt"
	"log/slog"

	"concierge-backend/internal/covers"
	"concierge-backend/internal/pipeline"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(booksCmd)
}

var booksCmd = &cobra.Command{
	Use:   "books",
	Short: "Downloads the catalog spreadsheet and rebuilds books.json plus the audit CSVs.",
	Run: func(cmd *cobra.Command, args []string) {
		runBooks(cmd.Context())
	},
}

func runBooks(ctx context.Context) {
	cfg := loadConfig()

	slog.InfoContext(ctx, "downloading catalog csv")
	err := pipeline.DownloadCatalog(ctx, cfg.CatalogCsvUrl, cfg.LocalCatalogCsv, cfg.catalogCsv())
	if err != nil {
		fatal("failed to download catalog", err)
	}

	links := newsClient(cfg)
	summary, err := pipeline.ParseCatalog(ctx, pipeline.Options{
		CatalogCsv:  cfg.catalogCsv(),
		TagsCsv:     cfg.tagsCsv(),
		BooksJson:   cfg.booksJson(),
		EquivCsv:    cfg.equivCsv(),
		TagAuditCsv: cfg.tagAuditCsv(),
		Links:       links,
		CoverHeight: covers.HeightMeasurer(cfg.coverDir()),
	})
	if err != nil {
		fatal("failed to parse catalog", err)
	}

	slog.InfoContext(ctx, "catalog parsed", "rows", summary.Rows, "accepted", summary.Accepted)
	printTagAudit(summary)
}

func printTagAudit(summary pipeline.Summary) {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"tag", "slug", "count"})
	for _, tag := range summary.Tags {
		t.AppendRow(table.Row{tag.Tag, tag.Slug, tag.Count})
	}
	fmt.Println(t.Render())
}
