package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"cloud.google.com/go/pubsub"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openswoop/taucourses/pkg/database"
	"github.com/openswoop/taucourses/pkg/logger"
	"github.com/openswoop/taucourses/pkg/scrape"
)

var dryRun bool

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Scrape every course group of a year to BigQuery",
	Long: `This command scrapes the course groups of the given year, merges them
into BigQuery and announces the refresh on Pub/Sub.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if cfg.Cloud.Project == "" {
			return fmt.Errorf("no BigQuery project configured (TAU_BIGQUERY_PROJECT)")
		}
		year := strconv.Itoa(cfg.Year)
		semesters, err := scrape.ParseSemesterFilter(cfg.Semesters)
		if err != nil {
			return err
		}

		f := newFetcher()
		reporter := logger.NewReporter(log)

		schools, err := scrape.GetSchools(ctx, f)
		if err != nil {
			return fmt.Errorf("failed to fetch schools: %w", err)
		}
		params := scrape.SearchParams{Year: year, Semesters: semesters}
		groups := scrape.SearchSchools(ctx, f, schools, params, scrape.WebExams{Fetcher: f}, reporter, cfg.Workers)

		if dryRun {
			fmt.Printf("Dry run: %d groups will not be inserted\n", len(groups))
			return nil
		}

		// Connect to BigQuery
		var bq database.Database
		bq, err = database.NewBigQuery(ctx, cfg.Cloud.Project, cfg.Cloud.Dataset)
		if err != nil {
			return fmt.Errorf("failed to connect to bigquery: %w", err)
		}
		defer bq.Close()

		// Insert (merge) the groups
		if err := bq.SaveGroups(year, groups); err != nil {
			return fmt.Errorf("failed to insert groups: %w", err)
		}
		log.Info("merged groups", zap.Int("count", len(groups)))

		// Connect to PubSub
		client, err := pubsub.NewClient(ctx, cfg.Cloud.Project)
		if err != nil {
			return fmt.Errorf("failed to create pubsub client: %w", err)
		}
		defer client.Close()

		msg, err := json.Marshal(struct {
			Year   int `json:"year"`
			Groups int `json:"groups"`
		}{cfg.Year, len(groups)})
		if err != nil {
			return fmt.Errorf("failed to create message: %w", err)
		}

		// Publish an event
		topic := client.Topic(cfg.Cloud.Topic)
		res := topic.Publish(ctx, &pubsub.Message{Data: msg})
		if _, err := res.Get(ctx); err != nil {
			return fmt.Errorf("failed to publish message: %w", err)
		}

		fmt.Println("Done.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run without modifying the database (default: false)")
}
