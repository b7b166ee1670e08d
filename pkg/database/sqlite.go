package database

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/go-gorp/gorp/v3"
	_ "github.com/mattn/go-sqlite3"
	"github.com/openswoop/taucourses/pkg/persist"
	"github.com/openswoop/taucourses/pkg/scrape"
)

type GroupEntity struct {
	Year       string         `db:"year"`
	CourseId   string         `db:"course_id"`
	GroupCode  string         `db:"group_code"`
	Name       string         `db:"name"`
	Faculty    string         `db:"faculty"`
	Lecturer   sql.NullString `db:"lecturer"`
	ExamStatus string         `db:"exam_status"`
}

type LessonEntity struct {
	Year      string `db:"year"`
	CourseId  string `db:"course_id"`
	GroupCode string `db:"group_code"`
	scrape.LessonInfo
}

type ExamEntity struct {
	Year      string `db:"year"`
	CourseId  string `db:"course_id"`
	GroupCode string `db:"group_code"`
	scrape.ExamInfo
}

type PrerequisitesEntity struct {
	Year     int    `db:"year"`
	Semester string `db:"semester"`
	CourseId string `db:"course_id"`
	Tree     string `db:"tree"`
}

type Sqlite struct {
	db    *sql.DB
	dbmap *gorp.DbMap
}

func NewSqlite(file string) (Sqlite, error) {
	sqlite := Sqlite{}

	// Initialize the database connection
	db, err := sql.Open("sqlite3", file)
	if err != nil {
		return sqlite, fmt.Errorf("unable to connect to database: %w", err)
	}
	sqlite.db = db

	// Initialize the database mapping, creating the tables if it's our first run
	dbmap := &gorp.DbMap{Db: db, Dialect: gorp.SqliteDialect{}}
	dbmap.AddTableWithName(GroupEntity{}, "course_groups").
		SetUniqueTogether("year", "course_id", "group_code")
	dbmap.AddTableWithName(LessonEntity{}, "lessons").
		SetUniqueTogether("year", "course_id", "group_code", "semester", "day", "time", "building", "room", "type")
	dbmap.AddTableWithName(ExamEntity{}, "exams").
		SetUniqueTogether("year", "course_id", "group_code", "moed", "type")
	dbmap.AddTableWithName(PrerequisitesEntity{}, "prerequisites").
		SetUniqueTogether("year", "semester", "course_id")
	if err := dbmap.CreateTablesIfNotExists(); err != nil {
		_ = db.Close()
		return sqlite, fmt.Errorf("unable to create tables: %w", err)
	}
	sqlite.dbmap = dbmap

	return sqlite, nil
}

// batch is a set of entities saved in one transaction.
type batch []interface{}

func (b batch) Persist(tx persist.Transaction) error {
	return tx.Insert(b...)
}

func (s Sqlite) SaveGroups(year string, groups []scrape.GroupInfo) error {
	var rows batch
	for _, g := range groups {
		rows = append(rows, &GroupEntity{
			Year:       year,
			CourseId:   g.Id,
			GroupCode:  g.Group,
			Name:       g.Name,
			Faculty:    g.Faculty,
			Lecturer:   sql.NullString{String: g.Lecturer.StringVal, Valid: g.Lecturer.Valid},
			ExamStatus: g.ExamStatus.String(),
		})
		for _, l := range g.Lessons {
			rows = append(rows, &LessonEntity{year, g.Id, g.Group, l})
		}
		for _, e := range g.Exams {
			rows = append(rows, &ExamEntity{year, g.Id, g.Group, e})
		}
	}
	return s.save(rows)
}

func (s Sqlite) SavePrerequisites(year int, semester string, trees map[string]*scrape.Tree) error {
	var rows batch
	for course, tree := range trees {
		encoded, err := json.Marshal(tree)
		if err != nil {
			return fmt.Errorf("failed to encode prerequisites of %s: %w", course, err)
		}
		rows = append(rows, &PrerequisitesEntity{year, semester, course, string(encoded)})
	}
	return s.save(rows)
}

// save persists v in a transaction. Rows saved by an earlier run are kept
// as they are.
func (s Sqlite) save(v persist.Persistable) error {
	tx, err := s.dbmap.Begin()
	if err != nil {
		return err
	}
	if err := v.Persist(persist.InsertIgnoringDupes(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s Sqlite) Close() error {
	return s.db.Close()
}
