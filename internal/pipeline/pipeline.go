// Package pipeline drives the catalog data-prep run: it pulls the
// spreadsheet export, builds one record per row and writes the static
// artifacts the site build consumes.
package pipeline

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"concierge-backend/internal/books"

	"github.com/go-resty/resty/v2"
)

type Options struct {
	// input paths
	CatalogCsv string
	TagsCsv    string

	// output paths
	BooksJson   string
	EquivCsv    string
	TagAuditCsv string

	// optional collaborators
	Links books.LinkFetcher
	// reports cover pixel height per slug for teaser sizing, may be nil
	CoverHeight func(slug string) (int, bool)
}

// TagCount is one row of the tag audit.
type TagCount struct {
	Tag   string
	Slug  string
	Count int
}

// Summary reports what a catalog run did.
type Summary struct {
	Rows     int
	Accepted int
	Tags     []TagCount
}

var httpClient = resty.New()

// DownloadCatalog fetches the published spreadsheet CSV. Publishing
// mistakes show up as a non-CSV content type; in that case a local copy is
// used instead when one is configured.
func DownloadCatalog(ctx context.Context, csvUrl, localCopy, dest string) error {
	res, err := httpClient.R().
		SetContext(ctx).
		Get(csvUrl)
	if err != nil {
		return err
	}

	contentType := res.Header().Get("Content-Type")
	if !strings.HasPrefix(contentType, "text/csv") {
		slog.ErrorContext(ctx, "unexpected content type, is the spreadsheet published as csv?", "content_type", contentType)
		if localCopy == "" {
			return fmt.Errorf("catalog download returned %q and no local copy is configured", contentType)
		}
		data, err := os.ReadFile(localCopy)
		if err != nil {
			return err
		}
		return writeFile(dest, data)
	}

	return writeFile(dest, res.Body())
}

// ParseCatalog reads the catalog CSV, builds every row and writes
// books.json, the identifier-equivalence CSV and the tag audit. One bad row
// never aborts the batch; only unreadable input or un-writable output does.
func ParseCatalog(ctx context.Context, opts Options) (Summary, error) {
	vocab, err := books.ReadVocabularyFile(opts.TagsCsv)
	if err != nil {
		return Summary{}, err
	}

	rows, err := readCatalog(opts.CatalogCsv)
	if err != nil {
		return Summary{}, err
	}
	slog.InfoContext(ctx, "parsing catalog", "rows", len(rows))

	builderOpts := books.BuilderOptions{
		Vocab:       vocab,
		Links:       opts.Links,
		CoverHeight: opts.CoverHeight,
	}

	accepted := []books.Book{}
	tagCounts := map[string]int{}

	for _, row := range rows {
		book, err := books.Build(ctx, row, builderOpts)
		if err != nil {
			logRejection(ctx, row, err)
			continue
		}
		for _, tag := range book.Tags {
			tagCounts[tag]++
		}
		accepted = append(accepted, book)
	}

	err = writeBooksJson(opts.BooksJson, accepted)
	if err != nil {
		return Summary{}, err
	}
	err = writeEquivCsv(opts.EquivCsv, accepted)
	if err != nil {
		return Summary{}, err
	}

	audit := auditRows(vocab, tagCounts)
	err = writeTagAudit(opts.TagAuditCsv, audit)
	if err != nil {
		return Summary{}, err
	}

	return Summary{Rows: len(rows), Accepted: len(accepted), Tags: audit}, nil
}

func logRejection(ctx context.Context, row books.Row, err error) {
	switch {
	case err == books.ErrMissingTitle:
		// blank filler rows are expected in the sheet
	case err == books.ErrMissingIsbn:
		slog.ErrorContext(ctx, "no isbn for title", "title", row.Title)
	default:
		slog.ErrorContext(ctx, "failed to parse book", "title", row.Title, "err", err)
	}
}

// readCatalog maps CSV records onto rows. Header names are matched
// case-insensitively with surrounding whitespace ignored.
func readCatalog(path string) ([]books.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("could not read catalog csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("catalog csv %s is empty", path)
	}

	index := map[string]int{}
	for i, name := range records[0] {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}

	field := func(record []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	var rows []books.Row
	for _, record := range records[1:] {
		rows = append(rows, books.Row{
			Title:             field(record, "title"),
			Author:            field(record, "author"),
			Genre:             field(record, "genre"),
			Reviewer:          field(record, "reviewer"),
			ReviewerId:        field(record, "reviewer id"),
			ReviewerLink:      field(record, "reviewer link"),
			Text:              field(record, "text"),
			HtmlText:          field(record, "html text"),
			Isbn:              field(record, "isbn"),
			Asin:              field(record, "asin"),
			Oclc:              field(record, "oclc"),
			ItunesId:          field(record, "itunes_id"),
			GoodreadsId:       field(record, "goodreads_id"),
			BookSeamusId:      field(record, "book_seamus_id"),
			HideIbooks:        field(record, "hide_ibooks"),
			ExternalLinksHtml: field(record, "external links html"),
			Tags:              field(record, "tags"),
		})
	}
	return rows, nil
}

func auditRows(vocab *books.Vocabulary, counts map[string]int) []TagCount {
	rows := []TagCount{}
	for _, slug := range vocab.Slugs() {
		count, ok := counts[slug]
		if !ok {
			continue
		}
		rows = append(rows, TagCount{
			Tag:   vocab.DisplayName(slug),
			Slug:  slug,
			Count: count,
		})
	}
	return rows
}

func writeBooksJson(path string, accepted []books.Book) error {
	data, err := json.Marshal(accepted)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

func writeEquivCsv(path string, accepted []books.Book) error {
	rows := [][]string{{"title", "isbn", "isbn13", "itunes_id"}}
	for _, b := range accepted {
		rows = append(rows, []string{b.Title, b.Isbn, b.Isbn13, b.ItunesId})
	}
	return writeCsv(path, rows)
}

func writeTagAudit(path string, audit []TagCount) error {
	rows := [][]string{{"tag", "slug", "count"}}
	for _, t := range audit {
		rows = append(rows, []string{t.Tag, t.Slug, fmt.Sprint(t.Count)})
	}
	return writeCsv(path, rows)
}

func writeCsv(path string, rows [][]string) error {
	err := os.MkdirAll(filepath.Dir(path), 0o755)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	err = writer.WriteAll(rows)
	if err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

func writeFile(path string, data []byte) error {
	err := os.MkdirAll(filepath.Dir(path), 0o755)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
