package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openswoop/taucourses/pkg/report"
	"github.com/openswoop/taucourses/pkg/scrape"
)

var examSemester string

// examsCmd represents the exams command
var examsCmd = &cobra.Command{
	Use:   "exams <course> <group>",
	Short: "Look up the exams of one course group",
	Long: `Given a course id such as 0368-2157 and a group code, this command
prints the exam schedule of that group and writes it to a CSV file
(exams-<course><group>-<year><semester>.csv).`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		course, group := args[0], args[1]
		semester := examSemester
		if semester == "" && len(cfg.Semesters) > 0 {
			semester = cfg.Semesters[0]
		}
		number, err := scrape.SemesterNumber(semester)
		if err != nil {
			return err
		}
		index, _ := strconv.Atoi(number)

		q := scrape.ExamQuery{
			Course:   course,
			Group:    group,
			Year:     strconv.Itoa(cfg.Year),
			Semester: index,
		}
		exams, err := scrape.WebExams{Fetcher: newFetcher()}.LookupExams(cmd.Context(), q)
		if err != nil {
			return fmt.Errorf("failed to look up exams of %s: %w", q, err)
		}
		log.Info("found exams", zap.Stringer("query", q), zap.Int("count", len(exams)))

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Moed", "Date", "Hour", "Type"})
		for _, e := range exams {
			t.AppendRow(table.Row{e.Moed, e.Date, e.Hour, e.Type})
		}
		t.Render()

		if len(exams) == 0 {
			return nil
		}
		fileName := filepath.Join(cfg.OutputDir, fmt.Sprintf("exams-%s%s-%d%s.csv", course, group, cfg.Year, semester))
		if err := report.WriteCsv(exams, fileName); err != nil {
			return err
		}
		log.Info("wrote to file", zap.String("file", fileName))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(examsCmd)

	examsCmd.Flags().StringVar(&examSemester, "semester", "", "Semester of the group, a or b (default: the first configured semester)")
}
