package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"concierge-backend/lib/configutil"
	"concierge-backend/lib/scrapers/seamus"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Config is the non-secret project configuration, read from
// concierge.json5 (with concierge.local.json5 overrides).
type Config struct {
	ProjectSlug string `json:"project_slug"`

	// published CSV export of the catalog spreadsheet
	CatalogCsvUrl string `json:"catalog_csv_url"`
	// used when the spreadsheet is not published as csv
	LocalCatalogCsv string `json:"local_catalog_csv"`

	DataDir string `json:"data_dir"`
	WwwDir  string `json:"www_dir"`

	NewsBaseUrl         string            `json:"news_base_url"`
	LinkCategories      map[string]string `json:"link_categories"`
	DefaultLinkCategory string            `json:"default_link_category"`

	CoverVendorUrl string `json:"cover_vendor_url"`
	// isbns whose vendor jacket is known-bad
	AlwaysUseNewsCover []string `json:"always_use_news_cover"`

	FeaturedTweets   []string `json:"featured_tweets"`
	FeaturedFacebook []string `json:"featured_facebook"`
}

// Secrets come from the environment (optionally via a .env file), never
// from the checked-in config.
type Secrets struct {
	GoodreadsApiKey     string
	CoverVendorUserId   string
	CoverVendorPassword string
	TwitterToken        string
	FacebookToken       string
}

func (c Config) catalogCsv() string  { return filepath.Join(c.DataDir, "books.csv") }
func (c Config) tagsCsv() string     { return filepath.Join(c.DataDir, "tags.csv") }
func (c Config) equivCsv() string    { return filepath.Join(c.DataDir, "test-itunes-equiv.csv") }
func (c Config) tagAuditCsv() string { return filepath.Join(c.DataDir, "tag-audit.csv") }
func (c Config) featuredJson() string {
	return filepath.Join(c.DataDir, "featured.json")
}
func (c Config) booksJson() string {
	return filepath.Join(c.WwwDir, "static-data", "books.json")
}
func (c Config) coverDir() string {
	return filepath.Join(c.WwwDir, "assets", "cover")
}
func (c Config) promoJpg() string {
	return filepath.Join(c.WwwDir, "assets", "img", "covers.jpg")
}

func loadConfig() Config {
	cfg, err := configutil.ReadConfig[Config]("concierge.json5")
	if err != nil {
		fatal("failed to read concierge.json5", err)
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	if cfg.WwwDir == "" {
		cfg.WwwDir = "www"
	}
	return cfg
}

func loadSecrets() Secrets {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		fatal("failed to read .env", err)
	}
	return Secrets{
		GoodreadsApiKey:     os.Getenv("GOODREADS_API_KEY"),
		CoverVendorUserId:   os.Getenv("COVER_VENDOR_USERID"),
		CoverVendorPassword: os.Getenv("COVER_VENDOR_PASSWORD"),
		TwitterToken:        os.Getenv("TWITTER_API_TOKEN"),
		FacebookToken:       os.Getenv("FACEBOOK_API_APP_TOKEN"),
	}
}

func newsClient(cfg Config) seamus.Client {
	return seamus.NewClient(seamus.ClientOptions{
		BaseUrl:         cfg.NewsBaseUrl,
		CategoryMap:     cfg.LinkCategories,
		DefaultCategory: cfg.DefaultLinkCategory,
	})
}

func fatal(message string, err error) {
	slog.Error(message, "err", err.Error())
	os.Exit(1)
}

var rootCmd = &cobra.Command{
	Use:   "concierge",
	Short: "concierge prepares the book catalog data behind the site build.",
	// running bare updates everything, in the order the site build wants
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		runSocial(ctx)
		runBooks(ctx)
		runCovers(ctx)
		runPromo(ctx)
	},
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
