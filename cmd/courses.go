package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openswoop/taucourses/pkg/database"
	"github.com/openswoop/taucourses/pkg/logger"
	"github.com/openswoop/taucourses/pkg/report"
	"github.com/openswoop/taucourses/pkg/scrape"
)

var csvReport bool

// coursesCmd represents the courses command
var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "Scrape every course group of a year to JSON",
	Long: `Searches every school for the courses offered in the given year and
writes one catalog per semester (courses-<year><semester>.json) with the
groups, lessons and exams of each course. The groups are also saved to a
local SQLite database.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
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
		log.Info("found schools", zap.Int("count", len(schools)))

		// Scrape the data
		params := scrape.SearchParams{Year: year, Semesters: semesters}
		groups := scrape.SearchSchools(ctx, f, schools, params, scrape.WebExams{Fetcher: f}, reporter, cfg.Workers)
		log.Info("found groups", zap.Int("count", len(groups)))

		// Save all the data to the database
		if err := os.MkdirAll(filepath.Dir(cfg.Database.File), 0755); err != nil {
			return err
		}
		sqlite, err := database.NewSqlite(cfg.Database.File)
		if err != nil {
			return err
		}
		defer sqlite.Close()
		if err := sqlite.SaveGroups(year, groups); err != nil {
			return fmt.Errorf("failed to save groups: %w", err)
		}
		log.Info("saved to database", zap.String("file", cfg.Database.File))

		summary := table.NewWriter()
		summary.SetOutputMirror(os.Stdout)
		summary.AppendHeader(table.Row{"Semester", "Courses", "Groups", "File"})

		// Write one catalog per semester
		if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
			return err
		}
		for _, semester := range semesters {
			catalog, err := report.BuildCatalog(groups, semester)
			if err != nil {
				return err
			}
			fileName := filepath.Join(cfg.OutputDir, fmt.Sprintf("courses-%s%s.json", year, semester))
			if err := report.WriteJSON(catalog, fileName); err != nil {
				return err
			}
			summary.AppendRow(table.Row{semester, len(catalog), catalog.GroupCount(), fileName})
		}

		if csvReport {
			name := filepath.Join(cfg.OutputDir, "lessons-"+year)
			if err := report.WriteLessons(name, groups); err != nil {
				return err
			}
			log.Info("wrote lesson report", zap.String("file", name+".csv"))
		}

		summary.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(coursesCmd)

	coursesCmd.Flags().BoolVar(&csvReport, "csv", false, "Also write a CSV with one row per lesson (default: false)")
}
