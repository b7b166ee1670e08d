package scrape

import "cloud.google.com/go/bigquery"

type ExamInfo struct {
	Moed string `db:"moed" csv:"moed" json:"moed"`
	Date string `db:"date" csv:"date" json:"date"`
	Hour string `db:"hour" csv:"hour" json:"hour"`
	Type string `db:"type" csv:"type" json:"type"`
}

// LessonInfo is one weekly meeting of a group. Semester holds the raw token
// from the page ("א'" or "ב'").
type LessonInfo struct {
	Semester string `db:"semester" csv:"semester" json:"semester"`
	Day      string `db:"day" csv:"day" json:"day"`
	Time     string `db:"time" csv:"time" json:"time"`
	Building string `db:"building" csv:"building" json:"building"`
	Room     string `db:"room" csv:"room" json:"room"`
	Type     string `db:"type" csv:"type" json:"type"`
}

type GroupInfo struct {
	Name     string              `json:"name"`
	Id       string              `json:"id"`
	Group    string              `json:"group"`
	Faculty  string              `json:"faculty"`
	Lecturer bigquery.NullString `json:"lecturer"`
	Exams    []ExamInfo          `json:"exams"`
	Lessons  []LessonInfo        `json:"lessons"`

	// Why Exams is what it is; not part of the output
	ExamStatus ExamStatus `json:"-"`
	ExamErr    error      `json:"-"`
}

// hasLesson reports whether an identical lesson was already recorded.
func (g *GroupInfo) hasLesson(l LessonInfo) bool {
	for _, existing := range g.Lessons {
		if existing == l {
			return true
		}
	}
	return false
}

func nullString(s string) bigquery.NullString {
	return bigquery.NullString{StringVal: s, Valid: true}
}
