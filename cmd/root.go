package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/gocolly/colly/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/openswoop/taucourses/pkg/config"
	"github.com/openswoop/taucourses/pkg/logger"
	"github.com/openswoop/taucourses/pkg/scrape"
)

var (
	v   = viper.New()
	cfg *config.Config
	log *zap.Logger
	c   *colly.Collector
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "taucourses",
	Short: "A tool for scraping course data from Tel Aviv University",
	Long: `Scrapes the course catalog of Tel Aviv University into JSON files
suitable for schedule planners. Given a year, this application fetches every
course group with its lessons and exams, the prerequisites of every course,
and the course syllabi.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(v); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if log, err = logger.New(cfg); err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		initColly()
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.Bool("no-cache", false, "Bypass the web cache (default: false)")
	flags.Int("year", 0, "Academic year to scrape, e.g. 2024")
	flags.String("semesters", "", "Comma separated semesters to scrape (a, b)")
	flags.String("out", "", "Directory the JSON files are written to")
	flags.Int("workers", 0, "Number of schools searched at once")

	_ = v.BindPFlag("NO_CACHE", flags.Lookup("no-cache"))
	_ = v.BindPFlag("YEAR", flags.Lookup("year"))
	_ = v.BindPFlag("SEMESTERS", flags.Lookup("semesters"))
	_ = v.BindPFlag("OUTPUT_DIR", flags.Lookup("out"))
	_ = v.BindPFlag("WORKERS", flags.Lookup("workers"))
}

func initColly() {
	c = colly.NewCollector()
	c.AllowURLRevisit = true
	c.UserAgent = cfg.UserAgent
}

// newFetcher returns the page fetcher, replaying cached responses unless
// caching is turned off.
func newFetcher() scrape.Fetcher {
	var f scrape.Fetcher = scrape.NewCollyFetcher(c)
	if !cfg.Cache.Disabled {
		f = scrape.NewCachedFetcher(f, cfg.Cache.Dir)
	}
	return f
}
