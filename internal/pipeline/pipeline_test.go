package pipeline

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"concierge-backend/internal/books"
	"concierge-backend/lib/scrapers/seamus"

	"github.com/stretchr/testify/require"
)

const catalogHeader = "Title,Author,Genre,Reviewer,Reviewer ID,Reviewer Link,Text,HTML Text,ISBN,ASIN,OCLC,itunes_id,goodreads_id,book_seamus_id,hide_ibooks,External Links HTML,Tags"

const tagsSheet = "key,value\nfiction,Fiction\nnonfiction,Nonfiction\n"

type fakeLinkFetcher struct {
	links []seamus.Link
	err   error
}

func (f *fakeLinkFetcher) FetchRelatedLinks(ctx context.Context, recordId string) ([]seamus.Link, error) {
	return f.links, f.err
}

func writeTestInputs(t *testing.T, catalogRows []string) Options {
	t.Helper()
	dir := t.TempDir()

	catalog := catalogHeader + "\n" + strings.Join(catalogRows, "\n") + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "books.csv"), []byte(catalog), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tags.csv"), []byte(tagsSheet), 0o644))

	return Options{
		CatalogCsv:  filepath.Join(dir, "books.csv"),
		TagsCsv:     filepath.Join(dir, "tags.csv"),
		BooksJson:   filepath.Join(dir, "static-data", "books.json"),
		EquivCsv:    filepath.Join(dir, "test-itunes-equiv.csv"),
		TagAuditCsv: filepath.Join(dir, "tag-audit.csv"),
	}
}

func TestParseCatalog(t *testing.T) {
	opts := writeTestInputs(t, []string{
		`Example Book,An Author,,A Reviewer,,,Review text.,,0061120081,,,,,,,,"Fiction, Nonexistent Tag"`,
		`Second Book,Another Author,,,,,More text.,,9780307476074,,,,,,,,Fiction`,
	})

	summary, err := ParseCatalog(context.Background(), opts)
	require.NoError(t, err)
	require.Equal(t, 2, summary.Rows)
	require.Equal(t, 2, summary.Accepted)

	data, err := os.ReadFile(opts.BooksJson)
	require.NoError(t, err)

	var out []books.Book
	require.NoError(t, json.Unmarshal(data, &out))
	require.Len(t, out, 2)

	require.Equal(t, "Example Book", out[0].Title)
	require.Equal(t, "example-book", out[0].Slug)
	require.Equal(t, "9780061120084", out[0].Isbn13)
	require.Equal(t, []string{"fiction"}, out[0].Tags)
	require.Equal(t, "9780307476074", out[1].Isbn13)

	require.Equal(t, []TagCount{{Tag: "Fiction", Slug: "fiction", Count: 2}}, summary.Tags)

	audit, err := os.ReadFile(opts.TagAuditCsv)
	require.NoError(t, err)
	require.Equal(t, "tag,slug,count\nFiction,fiction,2\n", string(audit))
}

func TestParseCatalogRejectsBadRows(t *testing.T) {
	opts := writeTestInputs(t, []string{
		// no isbn: rejected
		`No ISBN Book,An Author,,,,,Text.,,,,,,,,,,Fiction`,
		// no title: skipped quietly
		`,An Author,,,,,Text.,,0061120081,,,,,,,,Fiction`,
		// fine
		`Good Book,An Author,,,,,Text.,,0061120081,,,,,,,,Fiction`,
	})

	summary, err := ParseCatalog(context.Background(), opts)
	require.NoError(t, err)
	require.Equal(t, 3, summary.Rows)
	require.Equal(t, 1, summary.Accepted)

	// rejected rows count no tags
	require.Equal(t, []TagCount{{Tag: "Fiction", Slug: "fiction", Count: 1}}, summary.Tags)

	var out []books.Book
	data, err := os.ReadFile(opts.BooksJson)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &out))
	require.Len(t, out, 1)
	require.Equal(t, "Good Book", out[0].Title)
}

func TestParseCatalogLinkFailureSkipsRow(t *testing.T) {
	opts := writeTestInputs(t, []string{
		`Broken Links,An Author,,,,,Text.,,0061120081,,,,,2026/01/1,,,Fiction`,
		`Works Fine,An Author,,,,,Text.,,0307476073,,,,,,,,`,
	})
	opts.Links = &fakeLinkFetcher{err: fmt.Errorf("connection reset")}

	summary, err := ParseCatalog(context.Background(), opts)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Accepted)
}

func TestParseCatalogEquivCsv(t *testing.T) {
	opts := writeTestInputs(t, []string{
		`Example Book,,,,,,Text.,,0061120081,,,12345,,,,,`,
	})

	_, err := ParseCatalog(context.Background(), opts)
	require.NoError(t, err)

	f, err := os.Open(opts.EquivCsv)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Equal(t, [][]string{
		{"title", "isbn", "isbn13", "itunes_id"},
		{"Example Book", "0061120081", "9780061120084", "12345"},
	}, rows)
}

func TestDownloadCatalog(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		fmt.Fprint(w, "title,isbn\nRemote Book,0061120081\n")
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "books.csv")
	require.NoError(t, DownloadCatalog(context.Background(), server.URL, "", dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Contains(t, string(data), "Remote Book")
}

func TestDownloadCatalogFallsBackToLocalCopy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html>not published as csv</html>")
	}))
	defer server.Close()

	dir := t.TempDir()
	local := filepath.Join(dir, "local.csv")
	require.NoError(t, os.WriteFile(local, []byte("title,isbn\nLocal Book,0061120081\n"), 0o644))

	dest := filepath.Join(dir, "books.csv")
	require.NoError(t, DownloadCatalog(context.Background(), server.URL, local, dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Contains(t, string(data), "Local Book")

	// and with no local copy configured the failure is fatal
	require.Error(t, DownloadCatalog(context.Background(), server.URL, "", dest))
}
