package commands

import (
	"fmt"
	"time"

	"concierge-backend/internal/pipeline"
	"concierge-backend/lib/catalogs/itunes"
	"concierge-backend/lib/throttle"

	"github.com/spf13/cobra"
)

// the storefront search API allows roughly 20 calls per minute; shorter
// intervals got requests rejected in practice
const itunesLookupInterval = 10 * time.Second

var (
	itunesIdsIn  *string
	itunesIdsOut *string
)

func init() {
	itunesIdsIn = itunesIdsCmd.Flags().String("in", "data/books.csv", "The catalog CSV to read.")
	itunesIdsOut = itunesIdsCmd.Flags().String("out", "data/itunes_ids.csv", "Where to write the resolved IDs.")
	rootCmd.AddCommand(itunesIdsCmd)
	rootCmd.AddCommand(itunesIdCmd)
}

var itunesIdsCmd = &cobra.Command{
	Use:   "itunes-ids [--in <books.csv>] [--out <itunes_ids.csv>]",
	Short: "Resolves storefront IDs for every book in the catalog CSV.",
	Run: func(cmd *cobra.Command, args []string) {
		client := itunes.NewClient(itunes.ClientOptions{
			Throttle: &throttle.Interval{Every: itunesLookupInterval},
		})
		err := pipeline.ResolveItunesIds(cmd.Context(), *itunesIdsIn, *itunesIdsOut, client)
		if err != nil {
			fatal("failed to resolve storefront ids", err)
		}
	},
}

var itunesIdCmd = &cobra.Command{
	Use:   "itunes-id <title>",
	Short: "Resolves the storefront ID for a single title.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := itunes.NewClient(itunes.ClientOptions{})
		id, err := client.LookupId(cmd.Context(), args[0])
		if err != nil {
			fatal("storefront lookup failed", err)
		}
		fmt.Println(id)
	},
}
