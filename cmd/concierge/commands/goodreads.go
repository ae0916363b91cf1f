package commands

import (
	"fmt"
	"time"

	"concierge-backend/internal/pipeline"
	"concierge-backend/lib/catalogs/goodreads"
	"concierge-backend/lib/throttle"

	"github.com/spf13/cobra"
)

// the reviews-site API terms allow one request per second
const goodreadsLookupInterval = 2 * time.Second

var (
	goodreadsIdsIn  *string
	goodreadsIdsOut *string
)

func init() {
	goodreadsIdsIn = goodreadsIdsCmd.Flags().String("in", "data/books.csv", "The catalog CSV to read.")
	goodreadsIdsOut = goodreadsIdsCmd.Flags().String("out", "data/goodreads_ids.csv", "Where to write the resolved IDs.")
	rootCmd.AddCommand(goodreadsIdsCmd)
	rootCmd.AddCommand(goodreadsIdCmd)
}

func goodreadsClient(policy *throttle.Interval) goodreads.Client {
	secrets := loadSecrets()
	options := goodreads.ClientOptions{Key: secrets.GoodreadsApiKey}
	if policy != nil {
		options.Throttle = policy
	}
	return goodreads.NewClient(options)
}

var goodreadsIdsCmd = &cobra.Command{
	Use:   "goodreads-ids [--in <books.csv>] [--out <goodreads_ids.csv>]",
	Short: "Resolves reviews-site IDs for every book in the catalog CSV.",
	Run: func(cmd *cobra.Command, args []string) {
		client := goodreadsClient(&throttle.Interval{Every: goodreadsLookupInterval})
		err := pipeline.ResolveGoodreadsIds(cmd.Context(), *goodreadsIdsIn, *goodreadsIdsOut, client)
		if err != nil {
			fatal("failed to resolve reviews-site ids", err)
		}
	},
}

var goodreadsIdCmd = &cobra.Command{
	Use:   "goodreads-id <isbn>",
	Short: "Resolves the reviews-site ID for a single ISBN.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := goodreadsClient(nil)
		id, err := client.LookupId(cmd.Context(), args[0])
		if err != nil {
			fatal("reviews-site lookup failed", err)
		}
		fmt.Println(id)
	},
}
