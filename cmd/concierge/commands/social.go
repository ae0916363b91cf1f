package commands

import (
	"context"

	"concierge-backend/internal/social"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(socialCmd)
}

var socialCmd = &cobra.Command{
	Use:   "social",
	Short: "Refreshes the featured social digest snapshot.",
	Run: func(cmd *cobra.Command, args []string) {
		runSocial(cmd.Context())
	},
}

func runSocial(ctx context.Context) {
	cfg := loadConfig()
	secrets := loadSecrets()

	err := social.UpdateFeatured(ctx, social.Options{
		ProjectSlug:      cfg.ProjectSlug,
		FeaturedTweets:   cfg.FeaturedTweets,
		FeaturedFacebook: cfg.FeaturedFacebook,
		TwitterToken:     secrets.TwitterToken,
		FacebookToken:    secrets.FacebookToken,
		Dest:             cfg.featuredJson(),
	})
	if err != nil {
		fatal("failed to update featured social digest", err)
	}
}
