package commands

import (
	"context"
	"encoding/json"
	"os"

	"concierge-backend/internal/books"
	"concierge-backend/internal/covers"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(coversCmd)
	rootCmd.AddCommand(promoCmd)
}

var coversCmd = &cobra.Command{
	Use:   "covers",
	Short: "Downloads cover images for every book in books.json.",
	Run: func(cmd *cobra.Command, args []string) {
		runCovers(cmd.Context())
	},
}

var promoCmd = &cobra.Command{
	Use:   "promo",
	Short: "Assembles the composite promotional thumbnail from the downloaded covers.",
	Run: func(cmd *cobra.Command, args []string) {
		runPromo(cmd.Context())
	},
}

func readBooksJson(path string) []books.Book {
	data, err := os.ReadFile(path)
	if err != nil {
		fatal("failed to read books.json, run `concierge books` first", err)
	}
	var bookList []books.Book
	err = json.Unmarshal(data, &bookList)
	if err != nil {
		fatal("failed to parse books.json", err)
	}
	return bookList
}

func runCovers(ctx context.Context) {
	cfg := loadConfig()
	secrets := loadSecrets()
	bookList := readBooksJson(cfg.booksJson())

	fallback := newsClient(cfg)
	downloader := covers.NewDownloader(covers.DownloaderOptions{
		VendorUrl: cfg.CoverVendorUrl,
		Credentials: covers.VendorCredentials{
			UserId:   secrets.CoverVendorUserId,
			Password: secrets.CoverVendorPassword,
		},
		AlwaysUseFallback: cfg.AlwaysUseNewsCover,
		Fallback:          &fallback,
		Dir:               cfg.coverDir(),
	})

	err := downloader.Download(ctx, bookList)
	if err != nil {
		fatal("failed to download covers", err)
	}
}

func runPromo(ctx context.Context) {
	cfg := loadConfig()
	bookList := readBooksJson(cfg.booksJson())

	err := covers.PromotionThumb(ctx, bookList, cfg.coverDir(), cfg.promoJpg())
	if err != nil {
		fatal("failed to build promotion thumbnail", err)
	}
}
