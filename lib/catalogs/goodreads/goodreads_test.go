package goodreads

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(ClientOptions{BaseUrl: server.URL, Key: "test-key"})
}

func TestLookupId(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search/index.xml", r.URL.Path)
		require.Equal(t, "test-key", r.URL.Query().Get("key"))
		require.Equal(t, "9780061120084", r.URL.Query().Get("q"))
		fmt.Fprint(w, `<GoodreadsResponse>
			<search>
				<results>
					<work>
						<best_book>
							<id>4671</id>
							<title>Example Book</title>
						</best_book>
					</work>
				</results>
			</search>
		</GoodreadsResponse>`)
	})

	id, err := client.LookupId(context.Background(), "9780061120084")
	require.NoError(t, err)
	require.Equal(t, "4671", id)
}

func TestLookupIdNoMatch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<GoodreadsResponse><search><results></results></search></GoodreadsResponse>`)
	})

	id, err := client.LookupId(context.Background(), "0000000000")
	require.NoError(t, err)
	require.Empty(t, id)
}

func TestLookupIdBadXml(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"not": "xml"}`)
	})

	id, err := client.LookupId(context.Background(), "0061120081")
	require.NoError(t, err)
	require.Empty(t, id)
}

func TestLookupIdNon200(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	id, err := client.LookupId(context.Background(), "0061120081")
	require.NoError(t, err)
	require.Empty(t, id)
}
