package cmd

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openswoop/taucourses/pkg/logger"
	"github.com/openswoop/taucourses/pkg/report"
	"github.com/openswoop/taucourses/pkg/scrape"
)

// biddingCmd represents the bidding command
var biddingCmd = &cobra.Command{
	Use:   "bidding",
	Short: "Scrape the bidding statistics of every course in the catalog",
	Long: `Reads the catalogs written by the courses command and fetches the
bidding statistics of every course for each semester and bidding run,
writing them to bidding.json. The run stops at the first course whose
statistics cannot be read.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		f := newFetcher()
		reporter := logger.NewReporter(log)

		courses := make(report.Catalog)
		for _, semester := range scrape.All {
			catalog, err := report.ReadCatalog(filepath.Join(cfg.OutputDir, fmt.Sprintf("courses-%d%s.json", cfg.Year, semester)))
			if err != nil {
				return err
			}
			courses.Merge(catalog)
		}

		ids := make([]string, 0, len(courses))
		for id := range courses {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		bidding, err := scrape.CollectBidding(ctx, f, ids, reporter)
		if err != nil {
			return err
		}

		fileName := filepath.Join(cfg.OutputDir, "bidding.json")
		if err := report.WriteJSON(bidding, fileName); err != nil {
			return err
		}
		log.Info("wrote to file", zap.String("file", fileName), zap.Int("count", len(bidding)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(biddingCmd)
}
