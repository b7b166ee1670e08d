package report

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"cloud.google.com/go/bigquery"
	"github.com/openswoop/taucourses/pkg/scrape"
)

// Catalog is the per-semester output: course id to course details.
type Catalog map[string]*CourseEntry

type CourseEntry struct {
	Name    string            `json:"name"`
	Faculty string            `json:"faculty"`
	Exams   []scrape.ExamInfo `json:"exams"`
	Groups  []GroupEntry      `json:"groups"`
}

type GroupEntry struct {
	Group    string              `json:"group"`
	Lecturer bigquery.NullString `json:"lecturer"`
	Lessons  []LessonEntry       `json:"lessons"`
}

// LessonEntry is a lesson once grouped by semester, so without one.
type LessonEntry struct {
	Day      string `json:"day"`
	Time     string `json:"time"`
	Building string `json:"building"`
	Room     string `json:"room"`
	Type     string `json:"type"`
}

// BuildCatalog merges the groups into courses for one semester letter.
// Groups with no lessons in that semester are left out. A course takes its
// exams from the last of its groups that has any.
func BuildCatalog(groups []scrape.GroupInfo, semester string) (Catalog, error) {
	token, err := scrape.SemesterToken(semester)
	if err != nil {
		return nil, err
	}

	catalog := make(Catalog)
	for _, g := range groups {
		var lessons []LessonEntry
		for _, l := range g.Lessons {
			if l.Semester == token {
				lessons = append(lessons, LessonEntry{
					Day:      l.Day,
					Time:     l.Time,
					Building: l.Building,
					Room:     l.Room,
					Type:     l.Type,
				})
			}
		}
		if len(lessons) == 0 {
			continue
		}

		entry, ok := catalog[g.Id]
		if !ok {
			entry = &CourseEntry{
				Name:    g.Name,
				Faculty: g.Faculty,
				Exams:   nonNil(g.Exams),
				Groups:  []GroupEntry{},
			}
			catalog[g.Id] = entry
		}
		if len(g.Exams) != 0 {
			entry.Exams = g.Exams
		}

		entry.Groups = append(entry.Groups, GroupEntry{
			Group:    g.Group,
			Lecturer: g.Lecturer,
			Lessons:  lessons,
		})
	}
	return catalog, nil
}

func nonNil(exams []scrape.ExamInfo) []scrape.ExamInfo {
	if exams == nil {
		return []scrape.ExamInfo{}
	}
	return exams
}

func ReadCatalog(fileName string) (Catalog, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, err
	}
	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", fileName, err)
	}
	return catalog, nil
}

func (c Catalog) GroupCount() int {
	count := 0
	for _, entry := range c {
		count += len(entry.Groups)
	}
	return count
}

// CourseGroup names a course by its first listed group.
type CourseGroup struct {
	Course string
	Group  string
}

// FirstGroups lists the courses sorted by id, each with its first group.
func (c Catalog) FirstGroups() []CourseGroup {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var result []CourseGroup
	for _, id := range ids {
		if len(c[id].Groups) == 0 {
			continue
		}
		result = append(result, CourseGroup{id, c[id].Groups[0].Group})
	}
	return result
}

// Merge adds the courses of other that c does not have yet.
func (c Catalog) Merge(other Catalog) {
	for id, entry := range other {
		if _, ok := c[id]; !ok {
			c[id] = entry
		}
	}
}
