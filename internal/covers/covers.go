// Package covers downloads book jacket images and assembles the composite
// promotion thumbnail.
package covers

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"

	"concierge-backend/internal/books"
	"concierge-backend/lib/scrapers/seamus"

	"github.com/go-resty/resty/v2"
	_ "golang.org/x/image/webp"
)

// vendor responses under this size are error placeholders, not covers
const minJacketBytes = 10000

const jpegQuality = 75

type VendorCredentials struct {
	UserId   string
	Password string
}

type DownloaderOptions struct {
	// jacket endpoint of the image vendor
	VendorUrl   string
	Credentials VendorCredentials
	// ISBNs whose vendor image is known-bad, always fetched from the
	// news-site book page instead
	AlwaysUseFallback []string
	// scrapes the news-site book page for a cover URL, may be nil to
	// disable the fallback
	Fallback *seamus.Client
	// directory covers are written to, one <slug>.jpg per book
	Dir string
}

type Downloader struct {
	http           *resty.Client
	options        DownloaderOptions
	alwaysFallback map[string]struct{}
}

func NewDownloader(options DownloaderOptions) Downloader {
	always := map[string]struct{}{}
	for _, isbn := range options.AlwaysUseFallback {
		always[isbn] = struct{}{}
	}
	return Downloader{
		http:           resty.New(),
		options:        options,
		alwaysFallback: always,
	}
}

// Download fetches a cover for every book, preferring the image vendor and
// falling back to the news-site book page when the vendor has nothing
// usable. Failures leave the book without a cover and the run continues.
func (d Downloader) Download(ctx context.Context, bookList []books.Book) error {
	err := os.MkdirAll(d.options.Dir, 0o755)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "downloading covers", "books", len(bookList))

	for _, book := range bookList {
		if book.Title == "" || book.Isbn == "" {
			slog.WarnContext(ctx, "book has no title or isbn, skipping cover", "title", book.Title)
			continue
		}

		path := filepath.Join(d.options.Dir, book.Slug+".jpg")
		err := d.downloadOne(ctx, book, path)
		if err != nil {
			slog.ErrorContext(ctx, "could not download cover", "title", book.Title, "err", err)
		}
	}
	return nil
}

func (d Downloader) downloadOne(ctx context.Context, book books.Book, path string) error {
	res, err := d.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"UserID":   d.options.Credentials.UserId,
			"Password": d.options.Credentials.Password,
			"Value":    book.Isbn,
			"Return":   "T",
			"Type":     "L",
		}).
		Get(d.options.VendorUrl)
	if err != nil {
		return err
	}
	data := res.Body()

	_, alwaysFallback := d.alwaysFallback[book.Isbn]
	if len(data) < minJacketBytes || alwaysFallback {
		slog.InfoContext(ctx, "vendor image not usable, trying news-site book page", "title", book.Title)
		fallback, err := d.fetchFallback(ctx, book)
		if err != nil {
			slog.ErrorContext(ctx, "cover not available on book page either", "title", book.Title, "err", err)
		} else {
			data = fallback
		}
	}

	return reencode(data, path)
}

func (d Downloader) fetchFallback(ctx context.Context, book books.Book) ([]byte, error) {
	if d.options.Fallback == nil || book.BookSeamusId == "" {
		return nil, fmt.Errorf("no fallback source for %s", book.Title)
	}
	coverUrl, err := d.options.Fallback.FetchCoverUrl(ctx, book.BookSeamusId)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "getting alternate cover", "title", book.Title, "url", coverUrl)

	res, err := d.http.R().
		SetContext(ctx).
		Get(coverUrl)
	if err != nil {
		return nil, err
	}
	return res.Body(), nil
}

// reencode writes the image as an optimized JPEG regardless of the source
// format.
func reencode(data []byte, path string) error {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("invalid cover image: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return jpeg.Encode(f, img, &jpeg.Options{Quality: jpegQuality})
}

// HeightMeasurer reports the pixel height of an already-downloaded cover,
// which sizes the teaser text that sits next to it.
func HeightMeasurer(dir string) func(slug string) (int, bool) {
	return func(slug string) (int, bool) {
		f, err := os.Open(filepath.Join(dir, slug+".jpg"))
		if err != nil {
			return 0, false
		}
		defer f.Close()

		cfg, _, err := image.DecodeConfig(f)
		if err != nil {
			return 0, false
		}
		return cfg.Height, true
	}
}
