package books

import (
	"context"
	"errors"
	"strings"
	"testing"

	"concierge-backend/lib/isbn"
	"concierge-backend/lib/scrapers/seamus"

	"github.com/stretchr/testify/require"
)

func testVocabulary() *Vocabulary {
	vocab := NewVocabulary()
	vocab.Add("fiction", "Fiction")
	vocab.Add("mysteries-thrillers", "Mysteries & Thrillers")
	vocab.Add("nonfiction", "Nonfiction")
	vocab.Add("kids", "Kids' Books")
	return vocab
}

type fakeLinkFetcher struct {
	links []seamus.Link
	err   error
	calls []string
}

func (f *fakeLinkFetcher) FetchRelatedLinks(ctx context.Context, recordId string) ([]seamus.Link, error) {
	f.calls = append(f.calls, recordId)
	return f.links, f.err
}

func TestBuild(t *testing.T) {
	fetcher := &fakeLinkFetcher{
		links: []seamus.Link{
			{Category: "Reviews", Title: "A Review", Url: "http://news.example.com/review"},
		},
	}
	row := Row{
		Title:             "Example Book",
		Author:            "  Some Author ",
		Reviewer:          "A Reviewer",
		Text:              "“A fine read,” they said.",
		Isbn:              "0061120081",
		Tags:              "Fiction, Nonexistent Tag",
		BookSeamusId:      "2026/01/123",
		ExternalLinksHtml: "http://a.example.com,,http://b.example.com",
	}

	book, err := Build(context.Background(), row, BuilderOptions{
		Vocab: testVocabulary(),
		Links: fetcher,
	})
	require.NoError(t, err)

	require.Equal(t, "Example Book", book.Title)
	require.Equal(t, "example-book", book.Slug)
	require.Equal(t, "Some Author", book.Author)
	require.Equal(t, `"A fine read," they said.`, book.Text)
	require.Equal(t, "9780061120084", book.Isbn13)
	require.Equal(t, []string{"fiction"}, book.Tags)
	require.Equal(t, []string{"http://a.example.com", "http://b.example.com"}, book.ExternalLinks)
	require.Equal(t, fetcher.links, book.Links)
	require.Equal(t, []string{"2026/01/123"}, fetcher.calls)
}

func TestBuildRejectsMissingFields(t *testing.T) {
	_, err := Build(context.Background(), Row{Isbn: "0061120081"}, BuilderOptions{Vocab: testVocabulary()})
	require.ErrorIs(t, err, ErrMissingTitle)

	_, err = Build(context.Background(), Row{Title: "No ISBN Here"}, BuilderOptions{Vocab: testVocabulary()})
	require.ErrorIs(t, err, ErrMissingIsbn)
}

func TestBuildInvalidIsbn(t *testing.T) {
	_, err := Build(context.Background(), Row{
		Title: "Bad ISBN",
		Isbn:  "not-a-number",
	}, BuilderOptions{Vocab: testVocabulary()})
	require.ErrorIs(t, err, isbn.ErrInvalid)
}

func TestBuildAsinOverride(t *testing.T) {
	book, err := Build(context.Background(), Row{
		Title: "Ebook Only",
		Isbn:  "B00EXAMPLE",
		Asin:  "B00EXAMPLE",
	}, BuilderOptions{Vocab: testVocabulary()})
	require.NoError(t, err)
	require.Equal(t, "B00EXAMPLE", book.Isbn)
	require.Empty(t, book.Isbn13)
}

func TestBuildLinkFetchFailureRejectsRow(t *testing.T) {
	fetcher := &fakeLinkFetcher{err: errors.New("connection refused")}
	_, err := Build(context.Background(), Row{
		Title:        "Unreachable",
		Isbn:         "0061120081",
		BookSeamusId: "2026/01/1",
	}, BuilderOptions{Vocab: testVocabulary(), Links: fetcher})
	require.Error(t, err)
}

func TestBuildNoSeamusIdSkipsLinks(t *testing.T) {
	fetcher := &fakeLinkFetcher{}
	book, err := Build(context.Background(), Row{
		Title: "Linkless",
		Isbn:  "0061120081",
	}, BuilderOptions{Vocab: testVocabulary(), Links: fetcher})
	require.NoError(t, err)
	require.Empty(t, fetcher.calls)
	require.NotNil(t, book.Links)
	require.Empty(t, book.Links)
}

func TestBuildTeaserUsesCoverHeight(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("lengthy review text ", 30))
	book, err := Build(context.Background(), Row{
		Title: "Tall Cover",
		Isbn:  "0061120081",
		Text:  text,
	}, BuilderOptions{
		Vocab: testVocabulary(),
		CoverHeight: func(slug string) (int, bool) {
			require.Equal(t, "tall-cover", slug)
			return 500, true
		},
	})
	require.NoError(t, err)
	// 500 / 25 * 7 = 140 characters plus the " ..." suffix
	require.LessOrEqual(t, len([]rune(book.Teaser)), 144)
	require.True(t, strings.HasSuffix(book.Teaser, " ..."))
}

func TestResolveTagsOrderAndUnknowns(t *testing.T) {
	vocab := testVocabulary()

	cases := []struct {
		raw    string
		expect []string
	}{
		{raw: "Nonfiction, Fiction", expect: []string{"fiction", "nonfiction"}},
		{raw: "Mysteries and Thrillers", expect: []string{"mysteries-thrillers"}},
		{raw: "fiction, FICTION", expect: []string{"fiction"}},
		{raw: "Unknown, Also Unknown", expect: []string{}},
		{raw: "", expect: []string{}},
		{raw: "Kids’ Books", expect: []string{"kids"}},
	}
	for _, c := range cases {
		got := ResolveTags(context.Background(), c.raw, vocab, "some title")
		require.Equal(t, c.expect, got, "raw=%q", c.raw)
	}
}
