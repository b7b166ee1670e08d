package database

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/openswoop/taucourses/pkg/scrape"
	"google.golang.org/api/googleapi"
)

type BigQuery struct {
	ctx       context.Context
	client    *bigquery.Client
	dataset   *bigquery.Dataset
	datasetID string
}

// GroupRecord is the flattened form of a group stored in BigQuery.
type GroupRecord struct {
	Year       string              `bigquery:"year"`
	CourseId   string              `bigquery:"course_id"`
	GroupCode  string              `bigquery:"group_code"`
	Name       string              `bigquery:"name"`
	Faculty    string              `bigquery:"faculty"`
	Lecturer   bigquery.NullString `bigquery:"lecturer"`
	ExamStatus string              `bigquery:"exam_status"`
	Exams      []scrape.ExamInfo   `bigquery:"exams"`
	Lessons    []scrape.LessonInfo `bigquery:"lessons"`
}

type PrerequisitesRecord struct {
	Year     int    `bigquery:"year"`
	Semester string `bigquery:"semester"`
	CourseId string `bigquery:"course_id"`
	Tree     string `bigquery:"tree"`
}

func NewBigQuery(ctx context.Context, projectID, datasetID string) (BigQuery, error) {
	var bq BigQuery

	// Set up BigQuery
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return bq, fmt.Errorf("failed to create client: %v", err)
	}

	dataset := client.Dataset(datasetID)
	if err := dataset.Create(ctx, nil); err != nil {
		if !isDuplicateError(err) {
			return bq, fmt.Errorf("failed to create dataset: %v", err)
		}
	}

	bq = BigQuery{ctx, client, dataset, datasetID}
	return bq, nil
}

func GroupRecords(year string, groups []scrape.GroupInfo) []GroupRecord {
	records := make([]GroupRecord, 0, len(groups))
	for _, g := range groups {
		records = append(records, GroupRecord{
			Year:       year,
			CourseId:   g.Id,
			GroupCode:  g.Group,
			Name:       g.Name,
			Faculty:    g.Faculty,
			Lecturer:   g.Lecturer,
			ExamStatus: g.ExamStatus.String(),
			Exams:      g.Exams,
			Lessons:    g.Lessons,
		})
	}
	return records
}

func (bq BigQuery) SaveGroups(year string, groups []scrape.GroupInfo) error {
	matchClause := `
		WHEN MATCHED THEN
		  UPDATE
		    SET name = s.name,
		        faculty = s.faculty,
		        lecturer = s.lecturer,
		        exam_status = s.exam_status,
		        exams = s.exams,
		        lessons = s.lessons`
	return bq.insert(GroupRecord{}, "course_groups", GroupRecords(year, groups),
		"t.year = s.year AND t.course_id = s.course_id AND t.group_code = s.group_code", matchClause)
}

func (bq BigQuery) SavePrerequisites(year int, semester string, trees map[string]*scrape.Tree) error {
	var records []PrerequisitesRecord
	for course, tree := range trees {
		encoded, err := json.Marshal(tree)
		if err != nil {
			return fmt.Errorf("failed to encode prerequisites of %s: %v", course, err)
		}
		records = append(records, PrerequisitesRecord{year, semester, course, string(encoded)})
	}
	matchClause := `
		WHEN MATCHED THEN
		  UPDATE SET tree = s.tree`
	return bq.insert(PrerequisitesRecord{}, "prerequisites", records,
		"t.year = s.year AND t.semester = s.semester AND t.course_id = s.course_id", matchClause)
}

func (bq BigQuery) insert(st interface{}, tableName string, data interface{}, onClause, whenClause string) error {
	// Infer the table schema
	schema, err := bigquery.InferSchema(st)
	if err != nil {
		return fmt.Errorf("failed to infer schema: %v", err)
	}

	// Get a reference to the table
	table := bq.dataset.Table(tableName)
	if err := table.Create(bq.ctx, &bigquery.TableMetadata{Schema: schema}); err != nil {
		if !isDuplicateError(err) {
			return fmt.Errorf("failed to create table: %v", err)
		}
	}

	// Uses a different arrivals table each time
	tempName := tableName + "_" + strconv.Itoa(int(time.Now().Unix()))
	newArrivals := bq.dataset.Table(tempName)
	if err := newArrivals.Create(bq.ctx, &bigquery.TableMetadata{Schema: schema}); err != nil {
		if !isDuplicateError(err) {
			return fmt.Errorf("failed to create arrivals table: %v", err)
		}
	}

	// Upload data
	u := newArrivals.Inserter()
	if err := u.Put(bq.ctx, data); err != nil {
		return fmt.Errorf("failed to insert rows: %v", err)
	}

	// Merge data
	q := bq.client.Query(fmt.Sprintf(`
		MERGE %s.%s t
		USING %s.%s s
		ON %s
		%s
		WHEN NOT MATCHED THEN
		  INSERT ROW`, bq.datasetID, tableName, bq.datasetID, tempName, onClause, whenClause))
	job, err := q.Run(bq.ctx)
	if err != nil {
		return fmt.Errorf("failed to execute query: %v", err)
	}
	status, err := job.Wait(bq.ctx)
	if err != nil {
		return fmt.Errorf("failed to wait for merge: %v", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("merge into %s failed: %v", tableName, err)
	}

	// Don't delete the arrivals table so insertions can be audited manually
	return nil
}

func (bq BigQuery) Close() error {
	return bq.client.Close()
}

func isDuplicateError(err error) bool {
	if e, ok := err.(*googleapi.Error); ok {
		return e.Code == 409
	} else {
		return false
	}
}
