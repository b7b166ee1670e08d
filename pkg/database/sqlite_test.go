package database

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"cloud.google.com/go/bigquery"
	"github.com/openswoop/taucourses/pkg/scrape"
	"github.com/stretchr/testify/require"
)

func testGroups() []scrape.GroupInfo {
	return []scrape.GroupInfo{
		{
			Name:     "אלגוריתמים",
			Id:       "03682157",
			Group:    "01",
			Faculty:  "מדעים מדויקים",
			Lecturer: bigquery.NullString{StringVal: "ד\"ר כהן", Valid: true},
			Exams:    []scrape.ExamInfo{{Moed: "א", Date: "05/02/2024", Hour: "09:00", Type: "בחינה"}},
			Lessons: []scrape.LessonInfo{
				{Semester: "א'", Day: "ב", Time: "10:00-13:00", Building: "שרייבר", Room: "006", Type: "שיעור"},
				{Semester: "א'", Day: "ד", Time: "14:00-15:00", Building: "שרייבר", Room: "007", Type: "תרגיל"},
			},
			ExamStatus: scrape.ExamsFetched,
		},
		{
			Name:       "חדו\"א",
			Id:         "03681105",
			Group:      "02",
			Faculty:    "מדעים מדויקים",
			Exams:      []scrape.ExamInfo{},
			Lessons:    []scrape.LessonInfo{},
			ExamStatus: scrape.ExamsSkipped,
		},
	}
}

func openTestSqlite(t *testing.T) Sqlite {
	t.Helper()
	db, err := NewSqlite(filepath.Join(t.TempDir(), "courses.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func count(t *testing.T, db Sqlite, table string) int64 {
	t.Helper()
	n, err := db.dbmap.SelectInt("select count(*) from " + table)
	require.NoError(t, err)
	return n
}

func TestSqliteSaveGroups(t *testing.T) {
	db := openTestSqlite(t)

	require.NoError(t, db.SaveGroups("2023", testGroups()))
	require.EqualValues(t, 2, count(t, db, "course_groups"))
	require.EqualValues(t, 2, count(t, db, "lessons"))
	require.EqualValues(t, 1, count(t, db, "exams"))

	var stored []GroupEntity
	_, err := db.dbmap.Select(&stored, "select * from course_groups order by course_id")
	require.NoError(t, err)
	require.Len(t, stored, 2)
	require.Equal(t, "03681105", stored[0].CourseId)
	require.False(t, stored[0].Lecturer.Valid)
	require.Equal(t, "skipped", stored[0].ExamStatus)
	require.Equal(t, "ד\"ר כהן", stored[1].Lecturer.String)
}

func TestSqliteSaveGroupsTwice(t *testing.T) {
	db := openTestSqlite(t)

	require.NoError(t, db.SaveGroups("2023", testGroups()))
	require.NoError(t, db.SaveGroups("2023", testGroups()))
	require.EqualValues(t, 2, count(t, db, "course_groups"))
	require.EqualValues(t, 2, count(t, db, "lessons"))

	// Another year is another set of rows
	require.NoError(t, db.SaveGroups("2024", testGroups()))
	require.EqualValues(t, 4, count(t, db, "course_groups"))
}

func TestSqliteSavePrerequisites(t *testing.T) {
	db := openTestSqlite(t)
	trees := map[string]*scrape.Tree{
		"03682157": {Expr: scrape.Expr{Kind: scrape.KindAll, Courses: []scrape.Node{scrape.Leaf("03681105")}}},
	}

	require.NoError(t, db.SavePrerequisites(2022, "a", trees))
	require.NoError(t, db.SavePrerequisites(2022, "a", trees))
	require.EqualValues(t, 1, count(t, db, "prerequisites"))

	tree, err := db.dbmap.SelectStr("select tree from prerequisites where course_id = ?", "03682157")
	require.NoError(t, err)
	expected, err := json.Marshal(trees["03682157"])
	require.NoError(t, err)
	require.JSONEq(t, string(expected), tree)
}

func TestGroupRecords(t *testing.T) {
	records := GroupRecords("2023", testGroups())
	require.Len(t, records, 2)
	require.Equal(t, "2023", records[0].Year)
	require.Equal(t, "fetched", records[0].ExamStatus)
	require.Len(t, records[0].Lessons, 2)
	require.False(t, records[1].Lecturer.Valid)
}
