package seamus

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const bookPage = `<html><body>
<div class="storylist">
	<article class="item">
		<div class="slug">Author Interviews</div>
		<div class="title"><a href="http://news.example.com/interview">An Interview</a></div>
	</article>
	<article class="item">
		<div class="slug">Mystery Label</div>
		<div class="title"><a href="http://news.example.com/review">A Review</a></div>
	</article>
	<article class="item">
		<div class="title"><a href="http://news.example.com/interview">Duplicate Interview</a></div>
	</article>
	<article class="item">
		<div class="title"><a href="http://news.example.com/plain">No Category</a></div>
	</article>
</div>
<div class="readexcerpt"><a href="#excerpt">Read an excerpt</a></div>
</body></html>`

func newTestClient(t *testing.T, page string) Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page)
	}))
	t.Cleanup(server.Close)
	return NewClient(ClientOptions{
		BaseUrl: server.URL,
		CategoryMap: map[string]string{
			"Author Interviews": "Interviews",
		},
		DefaultCategory: "More on this book",
	})
}

func TestFetchRelatedLinks(t *testing.T) {
	client := newTestClient(t, bookPage)

	links, err := client.FetchRelatedLinks(context.Background(), "2026/01/123456")
	require.NoError(t, err)

	expected := []Link{
		{Category: "Interviews", Title: "An Interview", Url: "http://news.example.com/interview"},
		{Category: "More on this book", Title: "A Review", Url: "http://news.example.com/review"},
		{Title: "No Category", Url: "http://news.example.com/plain"},
		{Category: ExcerptCategory, Url: client.pageUrl("2026/01/123456") + "#excerpt"},
	}
	diff := cmp.Diff(expected, links)
	require.Empty(t, diff)

	// no two links may share a url
	seen := map[string]struct{}{}
	for _, l := range links {
		_, dup := seen[l.Url]
		require.False(t, dup, "duplicate url %s", l.Url)
		seen[l.Url] = struct{}{}
	}
}

func TestFetchRelatedLinksNoExcerpt(t *testing.T) {
	client := newTestClient(t, `<html><body><div class="storylist"></div></body></html>`)

	links, err := client.FetchRelatedLinks(context.Background(), "2026/01/999")
	require.NoError(t, err)
	require.Empty(t, links)
}

func TestFetchCoverUrl(t *testing.T) {
	page := `<html><body>
		<div class="bookedition">
			<div class="image"><img src="https://media.example.com/covers/pretty-face-s99-c15.jpg"></div>
		</div>
	</body></html>`
	client := newTestClient(t, page)

	src, err := client.FetchCoverUrl(context.Background(), "2026/01/42")
	require.NoError(t, err)
	require.Equal(t, "https://media.example.com/covers/pretty-face-s400-c85.jpg", src)
}

func TestFetchCoverUrlMissing(t *testing.T) {
	client := newTestClient(t, `<html><body></body></html>`)

	_, err := client.FetchCoverUrl(context.Background(), "2026/01/42")
	require.Error(t, err)
}
