package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openswoop/taucourses/pkg/logger"
	"github.com/openswoop/taucourses/pkg/report"
	"github.com/openswoop/taucourses/pkg/scrape"
)

// syllabiCmd represents the syllabi command
var syllabiCmd = &cobra.Command{
	Use:   "syllabi",
	Short: "Scrape the syllabus of every course in the catalog",
	Args:  cobra.NoArgs,
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

		syllabi := make(map[string]string)
		firstGroups := courses.FirstGroups()
		for i, cg := range firstGroups {
			unit := fmt.Sprintf("syllabus-%s%s-%d", cg.Course, cg.Group, cfg.Year-1)
			reporter.UnitStarted(unit, i+1, len(firstGroups))

			syllabus, err := scrape.GetSyllabus(ctx, f, cg.Course, cg.Group, cfg.Year-1)
			if err != nil {
				reporter.UnitFailed(unit, err)
				return &scrape.UnitError{Unit: unit, Err: err}
			}
			if syllabus != "" {
				syllabi[cg.Course] = syllabus
			}
			reporter.UnitDone(unit)
		}

		fileName := filepath.Join(cfg.OutputDir, fmt.Sprintf("syllabi-%d.json", cfg.Year))
		if err := report.WriteJSON(syllabi, fileName); err != nil {
			return err
		}
		log.Info("wrote to file", zap.String("file", fileName), zap.Int("count", len(syllabi)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syllabiCmd)
}
