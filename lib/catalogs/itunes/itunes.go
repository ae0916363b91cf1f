// Package itunes resolves ebook storefront IDs through the iTunes Search API.
package itunes

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"concierge-backend/lib/throttle"

	"github.com/go-resty/resty/v2"
)

const DefaultBaseUrl = "https://itunes.apple.com"

// the numeric track id is embedded in the storefront detail-page url
var urlIdRegex = regexp.MustCompile(`id(\d+)\??`)

type ClientOptions struct {
	// defaults to DefaultBaseUrl
	BaseUrl string
	// defaults to no throttling
	Throttle throttle.Policy
}

type Client struct {
	http     *resty.Client
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
		throttle: policy,
	}
}

type searchResponse struct {
	ResultCount int `json:"resultCount"`
	Results     []struct {
		TrackViewUrl string `json:"trackViewUrl"`
	} `json:"results"`
}

// LookupId searches the storefront by title and returns the numeric ID of
// the best match, or "" when nothing usable came back. Lookup misses are
// warnings, not errors; only transport failures are returned.
func (c Client) LookupId(ctx context.Context, title string) (string, error) {
	err := c.throttle.Wait(ctx)
	if err != nil {
		return "", err
	}

	// subtitles confuse the search, query on the main title only
	mainTitle := strings.SplitN(title, ":", 2)[0]

	var result searchResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"term":      mainTitle,
			"country":   "US",
			"media":     "ebook",
			"attribute": "titleTerm",
			"explicit":  "No",
		}).
		SetResult(&result).
		// the API serves JSON under a text/javascript content type
		ForceContentType("application/json").
		Get("/search")
	if err != nil {
		return "", err
	}
	if res.StatusCode() != 200 {
		slog.WarnContext(ctx, "storefront search returned non-200", "status", res.StatusCode(), "title", mainTitle)
		return "", nil
	}

	if result.ResultCount == 0 {
		slog.WarnContext(ctx, "no storefront results", "title", mainTitle)
		return "", nil
	}
	if result.ResultCount > 1 {
		slog.WarnContext(ctx, "more than one storefront result, picking first", "title", mainTitle)
	}

	trackUrl := result.Results[0].TrackViewUrl
	m := urlIdRegex.FindStringSubmatch(trackUrl)
	if m == nil {
		slog.WarnContext(ctx, "no storefront id in result url", "url", trackUrl)
		return "", nil
	}

	slog.DebugContext(ctx, "resolved storefront id", "title", mainTitle, "id", m[1])
	return m[1], nil
}
