// Package goodreads resolves reader-reviews-site IDs through its XML search API.
package goodreads

import (
	"context"
	"encoding/xml"
	"log/slog"

	"concierge-backend/lib/throttle"

	"github.com/go-resty/resty/v2"
)

const DefaultBaseUrl = "https://www.goodreads.com"

type ClientOptions struct {
	// defaults to DefaultBaseUrl
	BaseUrl string
	// api key sent with every search request
	Key string
	// defaults to no throttling
	Throttle throttle.Policy
}

type Client struct {
	http     *resty.Client
	key      string
	throttle throttle.Policy
}

func NewClient(options ClientOptions) Client {
	baseUrl := options.BaseUrl
	if baseUrl == "" {
		baseUrl = DefaultBaseUrl
	}
	policy := options.Throttle
	if policy == nil {
		policy = throttle.None{}
	}
	return Client{
		http:     resty.New().SetBaseURL(baseUrl),
		key:      options.Key,
		throttle: policy,
	}
}

type searchResponse struct {
	XMLName xml.Name `xml:"GoodreadsResponse"`
	Search  struct {
		Results struct {
			Works []struct {
				BestBook struct {
					Id string `xml:"id"`
				} `xml:"best_book"`
			} `xml:"work"`
		} `xml:"results"`
	} `xml:"search"`
}

// LookupId searches by ISBN and returns the best-match book ID, or "" when
// the API had no match. Lookup misses warn and return empty; only transport
// failures surface as errors.
func (c Client) LookupId(ctx context.Context, isbn string) (string, error) {
	err := c.throttle.Wait(ctx)
	if err != nil {
		return "", err
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("key", c.key).
		SetQueryParam("q", isbn).
		Get("/search/index.xml")
	if err != nil {
		return "", err
	}
	if res.StatusCode() != 200 {
		slog.WarnContext(ctx, "reviews-site search returned non-200", "status", res.StatusCode(), "isbn", isbn)
		return "", nil
	}

	var result searchResponse
	err = xml.Unmarshal(res.Body(), &result)
	if err != nil {
		slog.WarnContext(ctx, "could not parse reviews-site response", "err", err, "isbn", isbn)
		return "", nil
	}

	works := result.Search.Results.Works
	if len(works) == 0 || works[0].BestBook.Id == "" {
		slog.WarnContext(ctx, "no matching book for isbn", "isbn", isbn)
		return "", nil
	}

	slog.DebugContext(ctx, "resolved reviews-site id", "isbn", isbn, "id", works[0].BestBook.Id)
	return works[0].BestBook.Id, nil
}
