package report

import (
	"github.com/openswoop/taucourses/pkg/scrape"
)

type lessonViewFull struct {
	CsvGroup
	LessonViewPartial
	Exams string `csv:"exams"`
}

type LessonViewPartial struct {
	Semester string `csv:"semester"`
	Day      string `csv:"day"`
	Time     string `csv:"time"`
	Building string `csv:"building"`
	Room     string `csv:"room"`
	Type     string `csv:"type"`
}

// WriteLessons writes one row per lesson. Only a group's first row carries
// the group's details.
func WriteLessons(name string, groups []scrape.GroupInfo) error {
	rows := lessonRows(groups)
	return WriteCsv(rows, name+".csv")
}

func lessonRows(groups []scrape.GroupInfo) []lessonViewFull {
	var rows []lessonViewFull
	for _, group := range groups {
		for i, lesson := range group.Lessons {
			isContinuationRow := i > 0

			partial := LessonViewPartial{
				Semester: lesson.Semester,
				Day:      lesson.Day,
				Time:     lesson.Time,
				Building: lesson.Building,
				Room:     lesson.Room,
				Type:     lesson.Type,
			}

			if !isContinuationRow {
				rows = append(rows, lessonViewFull{
					CsvGroup:          toCsvGroup(group),
					LessonViewPartial: partial,
					Exams:             group.ExamStatus.String(),
				})
			} else {
				rows = append(rows, lessonViewFull{
					LessonViewPartial: partial,
				})
			}
		}
	}
	return rows
}
