// Package books turns raw catalog spreadsheet rows into validated,
// serializable book records.
package books

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"concierge-backend/lib/isbn"
	"concierge-backend/lib/scrapers/seamus"
	"concierge-backend/lib/textutil"
)

// default teaser budget when no cover image is available to measure
const defaultTeaserBudget = 140

var (
	ErrMissingTitle = errors.New("no title")
	ErrMissingIsbn  = errors.New("no isbn")
)

// Row is one raw spreadsheet row, untouched except for CSV header mapping.
type Row struct {
	Title             string
	Author            string
	Genre             string
	Reviewer          string
	ReviewerId        string
	ReviewerLink      string
	Text              string
	HtmlText          string
	Isbn              string
	Asin              string
	Oclc              string
	ItunesId          string
	GoodreadsId       string
	BookSeamusId      string
	HideIbooks        string
	ExternalLinksHtml string
	Tags              string
}

// Book is one normalized catalog entry, shaped for the static JSON the
// front-end build consumes.
type Book struct {
	Title        string `json:"title"`
	Slug         string `json:"slug"`
	Author       string `json:"author"`
	Reviewer     string `json:"reviewer"`
	ReviewerId   string `json:"reviewer_id"`
	ReviewerLink string `json:"reviewer_link"`
	Text         string `json:"text"`
	Teaser       string `json:"teaser"`
	HtmlText     bool   `json:"html_text"`

	Isbn       string `json:"isbn"`
	Isbn13     string `json:"isbn13"`
	Oclc       string `json:"oclc,omitempty"`
	HideIbooks bool   `json:"hide_ibooks"`

	// externally resolved identifiers, carried through from the sheet when
	// already present
	ItunesId    string `json:"itunes_id"`
	GoodreadsId string `json:"goodreads_id,omitempty"`

	BookSeamusId string `json:"book_seamus_id"`

	Tags          []string      `json:"tags"`
	ExternalLinks []string      `json:"external_links"`
	Links         []seamus.Link `json:"links"`
}

// LinkFetcher scrapes related coverage for a CMS record ID. seamus.Client
// implements it; tests substitute fakes.
type LinkFetcher interface {
	FetchRelatedLinks(ctx context.Context, recordId string) ([]seamus.Link, error)
}

type BuilderOptions struct {
	Vocab *Vocabulary
	// may be nil, in which case related links are skipped entirely
	Links LinkFetcher
	// reports the pixel height of an already-downloaded cover for a slug,
	// used to size the teaser. may be nil.
	CoverHeight func(slug string) (int, bool)
}

// Build validates and enriches one row. Rows without a title or ISBN are
// rejected with ErrMissingTitle/ErrMissingIsbn; an unparsable ISBN without
// an ASIN override rejects with isbn.ErrInvalid. A related-links fetch
// failure rejects the row too. The caller decides that rejection only skips
// the row, never the batch.
func Build(ctx context.Context, row Row, opts BuilderOptions) (Book, error) {
	if strings.TrimSpace(row.Title) == "" {
		return Book{}, ErrMissingTitle
	}

	book := Book{
		Title:        textutil.Normalize(row.Title),
		Slug:         textutil.Slugify(row.Title),
		Author:       textutil.Normalize(row.Author),
		Reviewer:     textutil.Normalize(row.Reviewer),
		ReviewerId:   textutil.Normalize(row.ReviewerId),
		ReviewerLink: textutil.Normalize(row.ReviewerLink),
		Text:         textutil.Normalize(row.Text),
		HtmlText:     row.HtmlText != "",
		HideIbooks:   row.HideIbooks != "",
		ItunesId:     row.ItunesId,
		GoodreadsId:  row.GoodreadsId,
		BookSeamusId: row.BookSeamusId,
	}
	slog.DebugContext(ctx, "processing book", "title", book.Title)

	book.Isbn = textutil.Normalize(row.Isbn)
	if book.Isbn == "" {
		return Book{}, ErrMissingIsbn
	}
	isbn13, err := isbn.To13(book.Isbn)
	switch {
	case err == nil:
		book.Isbn13 = isbn13
	case errors.Is(err, isbn.ErrInvalid) && book.Isbn == row.Asin:
		// ebook-only entries identify themselves by ASIN, no ISBN-13 exists
	default:
		return Book{}, fmt.Errorf("%s: %w", book.Title, err)
	}
	book.Oclc = textutil.Normalize(row.Oclc)

	budget := defaultTeaserBudget
	if opts.CoverHeight != nil {
		height, ok := opts.CoverHeight(book.Slug)
		if ok {
			// poor man's packing: how much text fits beside the cover?
			budget = height / 25 * 7
		}
	}
	book.Teaser = textutil.ComposeTeaser(book.Text, budget)

	book.Tags = ResolveTags(ctx, row.Tags, opts.Vocab, book.Title)
	book.ExternalLinks = splitExternalLinks(row.ExternalLinksHtml)

	if row.BookSeamusId != "" && opts.Links != nil {
		links, err := opts.Links.FetchRelatedLinks(ctx, row.BookSeamusId)
		if err != nil {
			return Book{}, fmt.Errorf("%s: fetching related links: %w", book.Title, err)
		}
		book.Links = links
	}
	if book.Links == nil {
		book.Links = []seamus.Link{}
	}

	return book, nil
}

// ResolveTags maps a comma-separated raw tag string onto canonical slugs.
// Unknown tags are dropped with a warning. The result follows vocabulary
// order, not input order, and contains no duplicates.
func ResolveTags(ctx context.Context, raw string, vocab *Vocabulary, title string) []string {
	matched := map[string]struct{}{}

	for _, item := range strings.Split(raw, ",") {
		if item == "" {
			continue
		}
		item = textutil.Normalize(item)
		item = strings.ReplaceAll(item, " and ", " & ")

		slug, ok := vocab.SlugOf(item)
		if ok {
			matched[slug] = struct{}{}
		} else {
			slog.WarnContext(ctx, "unknown tag", "title", title, "tag", item)
		}
	}

	ordered := []string{}
	for _, slug := range vocab.Slugs() {
		if _, ok := matched[slug]; ok {
			ordered = append(ordered, slug)
		}
	}
	return ordered
}

func splitExternalLinks(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
