package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openswoop/taucourses/pkg/database"
	"github.com/openswoop/taucourses/pkg/logger"
	"github.com/openswoop/taucourses/pkg/report"
	"github.com/openswoop/taucourses/pkg/scrape"
)

// prerequisitesCmd represents the prerequisites command
var prerequisitesCmd = &cobra.Command{
	Use:   "prerequisites",
	Short: "Scrape the prerequisites of every course in the catalog",
	Long: `Reads the catalogs written by the courses command and fetches the
prerequisites of each course, writing prerequisites-<year><semester>.json.
The run stops at the first course whose prerequisites cannot be read.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		semesters, err := scrape.ParseSemesterFilter(cfg.Semesters)
		if err != nil {
			return err
		}

		f := newFetcher()
		reporter := logger.NewReporter(log)

		sqlite, err := database.NewSqlite(cfg.Database.File)
		if err != nil {
			return err
		}
		defer sqlite.Close()

		for _, semester := range semesters {
			catalog, err := report.ReadCatalog(filepath.Join(cfg.OutputDir, fmt.Sprintf("courses-%d%s.json", cfg.Year, semester)))
			if err != nil {
				return err
			}

			// The prerequisites pages are keyed by the year the academic year starts in
			var queries []scrape.PrerequisiteQuery
			for _, cg := range catalog.FirstGroups() {
				queries = append(queries, scrape.PrerequisiteQuery{
					Course:   cg.Course,
					Group:    cg.Group,
					Year:     cfg.Year - 1,
					Semester: semester,
				})
			}

			trees, err := scrape.CollectPrerequisites(ctx, f, queries, reporter)
			if err != nil {
				return err
			}
			log.Info("found prerequisites", zap.String("semester", semester), zap.Int("count", len(trees)))

			if err := sqlite.SavePrerequisites(cfg.Year, semester, trees); err != nil {
				return fmt.Errorf("failed to save prerequisites: %w", err)
			}
			fileName := filepath.Join(cfg.OutputDir, fmt.Sprintf("prerequisites-%d%s.json", cfg.Year, semester))
			if err := report.WriteJSON(trees, fileName); err != nil {
				return err
			}
			log.Info("wrote to file", zap.String("file", fileName))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(prerequisitesCmd)
}
