package pipeline

import (
	"context"
	"log/slog"
)

// IdResolver is the shape of both catalog lookup clients. The query is a
// title for the storefront and an ISBN for the reviews site.
type IdResolver interface {
	LookupId(ctx context.Context, query string) (string, error)
}

// ResolveItunesIds walks the catalog CSV and writes one storefront ID per
// row. Lookup misses leave the column empty; only transport failures stop
// the batch. The resolver's own throttle paces the calls.
func ResolveItunesIds(ctx context.Context, catalogCsv, outCsv string, resolver IdResolver) error {
	rows, err := readCatalog(catalogCsv)
	if err != nil {
		return err
	}

	out := [][]string{{"title", "isbn", "itunes_id"}}
	for _, row := range rows {
		id := row.ItunesId
		if row.Title != "" {
			id, err = resolver.LookupId(ctx, row.Title)
			if err != nil {
				return err
			}
		}
		out = append(out, []string{row.Title, row.Isbn, id})
	}

	slog.InfoContext(ctx, "resolved storefront ids", "rows", len(rows))
	return writeCsv(outCsv, out)
}

// ResolveGoodreadsIds is the reviews-site counterpart, keyed by ISBN.
func ResolveGoodreadsIds(ctx context.Context, catalogCsv, outCsv string, resolver IdResolver) error {
	rows, err := readCatalog(catalogCsv)
	if err != nil {
		return err
	}

	out := [][]string{{"title", "isbn", "goodreads_id"}}
	for _, row := range rows {
		id := ""
		if row.Isbn != "" {
			id, err = resolver.LookupId(ctx, row.Isbn)
			if err != nil {
				return err
			}
		}
		out = append(out, []string{row.Title, row.Isbn, id})
	}

	slog.InfoContext(ctx, "resolved reviews-site ids", "rows", len(rows))
	return writeCsv(outCsv, out)
}
