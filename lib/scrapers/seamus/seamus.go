// Package seamus scrapes book detail pages on the news site for related
// coverage links and cover image URLs. Pages are addressed by the record ID
// of the story in the CMS.
package seamus

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const DefaultBaseUrl = "http://www.npr.org"

const ExcerptCategory = "Read an excerpt"

// Link is one piece of related coverage found on a book page.
type Link struct {
	Category string `json:"category"`
	Title    string `json:"title"`
	Url      string `json:"url"`
}

type ClientOptions struct {
	// defaults to DefaultBaseUrl
	BaseUrl string
	// maps raw category labels found in the page to display categories,
	// unmapped labels fall back to DefaultCategory
	CategoryMap     map[string]string
	DefaultCategory string
}

type Client struct {
	http            *resty.Client
	baseUrl         string
	categoryMap     map[string]string
	defaultCategory string
}

func NewClient(options ClientOptions) Client {
	baseUrl := options.BaseUrl
	if baseUrl == "" {
		baseUrl = DefaultBaseUrl
	}
	return Client{
		http:            resty.New(),
		baseUrl:         baseUrl,
		categoryMap:     options.CategoryMap,
		defaultCategory: options.DefaultCategory,
	}
}

func (c Client) pageUrl(recordId string) string {
	return fmt.Sprintf("%s/%s", c.baseUrl, recordId)
}

// FetchRelatedLinks scrapes the story list of a book page. Duplicate URLs
// keep their first occurrence. When the page offers an excerpt, one extra
// link pointing at the page's excerpt anchor is appended last.
func (c Client) FetchRelatedLinks(ctx context.Context, recordId string) ([]Link, error) {
	pageUrl := c.pageUrl(recordId)
	slog.DebugContext(ctx, "fetching related links", "url", pageUrl)

	res, err := c.http.R().
		SetContext(ctx).
		Get(pageUrl)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return nil, err
	}

	var links []Link
	seen := map[string]struct{}{}

	doc.Find(".storylist article.item").Each(func(_ int, item *goquery.Selection) {
		link := Link{
			Title: strings.TrimSpace(item.Find(".title").First().Text()),
			Url:   item.Find(".title a").First().AttrOr("href", ""),
		}
		_, duplicate := seen[link.Url]
		if duplicate {
			slog.InfoContext(ctx, "duplicate link", "title", link.Title, "url", link.Url)
			return
		}

		category := item.Find(".slug").First()
		if category.Length() > 0 {
			raw := strings.TrimSpace(category.Text())
			mapped, ok := c.categoryMap[raw]
			if ok {
				link.Category = mapped
			} else {
				link.Category = c.defaultCategory
			}
		}

		seen[link.Url] = struct{}{}
		links = append(links, link)
		slog.DebugContext(ctx, "adding link", "category", link.Category, "title", link.Title, "url", link.Url)
	})

	if doc.Find(".readexcerpt a").Length() > 0 {
		links = append(links, Link{
			Category: ExcerptCategory,
			Url:      pageUrl + "#excerpt",
		})
	}

	return links, nil
}

// FetchCoverUrl scrapes the cover image URL from a book page. The page
// embeds a small low-quality rendition; the size and quality knobs live in
// the filename, so rewrite them for a 400px 85-quality version.
func (c Client) FetchCoverUrl(ctx context.Context, recordId string) (string, error) {
	pageUrl := c.pageUrl(recordId)

	res, err := c.http.R().
		SetContext(ctx).
		Get(pageUrl)
	if err != nil {
		return "", err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return "", err
	}

	img := doc.Find(".bookedition .image img").First()
	if img.Length() == 0 {
		return "", fmt.Errorf("no cover image found at %s", pageUrl)
	}

	src := img.AttrOr("src", "")
	src = strings.Replace(src, "-s99", "-s400", 1)
	src = strings.Replace(src, "-c15", "-c85", 1)
	return src, nil
}
