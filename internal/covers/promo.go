package covers

import (
	"context"
	"image"
	"image/jpeg"
	"log/slog"
	"os"
	"path/filepath"

	"concierge-backend/internal/books"

	"golang.org/x/image/draw"
)

const (
	promoColumns    = 26
	promoTotalCount = 310
	promoWidth      = 3000
	promoQuality    = 95
)

// PromotionThumb tiles the first covers into a wide column-packed collage
// and crops it to roughly 16:9, writing a single promotional JPEG. Books
// whose cover never downloaded are skipped. When no covers are available at
// all the thumbnail is skipped with a warning.
func PromotionThumb(ctx context.Context, bookList []books.Book, coverDir, dest string) error {
	imagesPerColumn := promoTotalCount / promoColumns
	columnWidth := promoWidth / promoColumns
	maxHeight := columnWidth * imagesPerColumn * 3 / 2

	canvas := image.NewRGBA(image.Rect(0, 0, promoWidth, maxHeight))

	count := len(bookList)
	if count > promoTotalCount {
		count = promoTotalCount
	}

	var (
		x, y        int
		totalHeight int
		minHeight   int
		column      int
	)

	for i := 0; i < count; i++ {
		if i%imagesPerColumn == 0 {
			// a zero minimum means no full column has been measured yet
			if minHeight == 0 || totalHeight < minHeight {
				minHeight = totalHeight
			}
			x = column * columnWidth
			y = 0
			column++
			totalHeight = 0
		}

		cover, err := loadImage(filepath.Join(coverDir, bookList[i].Slug+".jpg"))
		if err != nil {
			slog.WarnContext(ctx, "no cover for promotion thumb", "slug", bookList[i].Slug, "err", err)
			continue
		}

		bounds := cover.Bounds()
		scaledHeight := bounds.Dy() * columnWidth / bounds.Dx()
		target := image.Rect(x, y, x+columnWidth, y+scaledHeight)
		draw.CatmullRom.Scale(canvas, target, cover, bounds, draw.Src, nil)

		y += scaledHeight
		totalHeight += scaledHeight
	}

	if minHeight == 0 {
		slog.WarnContext(ctx, "minimum column height not detected, likely no covers were loaded, skipping promotion thumbnail")
		return nil
	}

	// crop to the widest full-column multiple that fits 16:9
	minPropWidth := minHeight * 16 / 9
	finalWidth := minPropWidth / columnWidth * columnWidth
	if finalWidth > promoWidth {
		finalWidth = promoWidth
	}
	cropped := canvas.SubImage(image.Rect(0, 0, finalWidth, minHeight))

	err := os.MkdirAll(filepath.Dir(dest), 0o755)
	if err != nil {
		return err
	}
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer f.Close()
	return jpeg.Encode(f, cropped, &jpeg.Options{Quality: promoQuality})
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return img, nil
}
