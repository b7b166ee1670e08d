package scrape

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Row is one <tr> of a search results grid.
type Row struct {
	node *html.Node
}

func RowsOf(s *goquery.Selection) []Row {
	rows := make([]Row, 0, s.Length())
	for _, n := range s.Nodes {
		rows = append(rows, Row{n})
	}
	return rows
}

// HasClass fails with ErrMissingAttribute when the row has no class at all.
func (r Row) HasClass(class string) (bool, error) {
	classes, ok := attr(r.node, "class")
	if !ok {
		return false, ErrMissingAttribute
	}
	for _, c := range strings.Fields(classes) {
		if c == class {
			return true, nil
		}
	}
	return false, nil
}

func (r Row) Children() []*html.Node {
	return childNodes(r.node)
}

// Cells returns the trimmed text of every child of the row.
func (r Row) Cells() []string {
	children := r.Children()
	cells := make([]string, len(children))
	for i, c := range children {
		cells[i] = strings.TrimSpace(nodeText(c))
	}
	return cells
}

func (r Row) Text() string {
	return nodeText(r.node)
}

// find returns the first element below the row with the given tag.
func (r Row) find(tag string) *html.Node {
	for n := nextInDocument(r.node); n != nil && isDescendant(n, r.node); n = nextInDocument(n) {
		if n.Type == html.ElementNode && n.Data == tag {
			return n
		}
	}
	return nil
}

func isDescendant(n, ancestor *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

type scanState int

const (
	seekingBlockStart scanState = iota
	readingHeader
	readingFaculty
	skippingToLessons
	readingLessons
	finalizing
)

func (s scanState) String() string {
	return [...]string{
		"SeekingBlockStart",
		"ReadingHeader",
		"ReadingFaculty",
		"SkippingToLessons",
		"ReadingLessons",
		"Finalizing",
	}[s]
}

// Scanner turns the rows of one results page into course groups.
type Scanner struct {
	Year     string
	Exams    ExamLookup // when nil, no exams are looked up
	Reporter Reporter
}

// ParsePage scans the results grid of a search page. A page without a grid
// has no groups.
func (s Scanner) ParsePage(ctx context.Context, doc *goquery.Document) []GroupInfo {
	grid := doc.Find("#frmgrid table[dir=rtl]").First()
	if grid.Length() == 0 {
		return nil
	}

	// Skip the grid's header row
	rows := RowsOf(grid.Find("tr"))
	if len(rows) > 0 {
		rows = rows[1:]
	}
	return s.Scan(ctx, rows)
}

// Scan walks the rows once, front to back. A row that is missing an
// attribute abandons the block being read; scanning resumes at the next row.
// A block cut off by the end of the rows is dropped.
func (s Scanner) Scan(ctx context.Context, rows []Row) []GroupInfo {
	sc := &scan{
		Scanner:  s,
		ctx:      ctx,
		rows:     rows,
		reporter: reporterOrNop(s.Reporter),
	}
	for sc.pos < len(sc.rows) {
		if err := sc.step(); err != nil {
			sc.pos++
			sc.state = seekingBlockStart
		}
	}
	return sc.groups
}

type scan struct {
	Scanner
	ctx      context.Context
	reporter Reporter
	rows     []Row
	pos      int
	state    scanState

	group     GroupInfo
	semesters map[string]struct{}

	groups []GroupInfo
}

// step runs the current state against the row under the cursor.
func (sc *scan) step() error {
	row := sc.rows[sc.pos]

	switch sc.state {
	case seekingBlockStart:
		isMarker, err := row.HasClass(blockMarkerClass)
		if err != nil {
			return err
		}
		sc.pos++
		// Section separators inside a block carry the marker too, but
		// only the block start has exactly two children
		if isMarker && len(row.Children()) == 2 {
			sc.group = GroupInfo{Exams: []ExamInfo{}, Lessons: []LessonInfo{}}
			sc.semesters = make(map[string]struct{})
			sc.state = readingHeader
		}

	case readingHeader:
		children := row.Children()
		if len(children) < 2 {
			return ErrMissingAttribute
		}
		idCell := childNodes(children[0])
		if len(idCell) == 0 {
			return ErrMissingAttribute
		}
		span := row.find("span")
		if span == nil {
			return ErrMissingAttribute
		}
		trailing := nextInDocument(span)
		if trailing != nil {
			trailing = nextInDocument(trailing)
		}
		if trailing == nil {
			return ErrMissingAttribute
		}

		sc.group.Name = strings.TrimSpace(nodeText(children[1]))
		sc.group.Id = stripSeparators(nodeText(idCell[0]))
		sc.group.Group = strings.TrimSpace(nodeText(trailing))
		sc.pos++
		sc.state = readingFaculty

	case readingFaculty:
		children := row.Children()
		if len(children) < 2 {
			return ErrMissingAttribute
		}
		sc.group.Faculty = strings.TrimSpace(nodeText(children[1]))
		sc.pos++
		sc.state = skippingToLessons

	case skippingToLessons:
		// Lessons start right after the next marker row
		isMarker, err := sc.rows[sc.pos-1].HasClass(blockMarkerClass)
		if err != nil {
			return err
		}
		if isMarker {
			sc.state = readingLessons
		} else {
			sc.pos++
		}

	case readingLessons:
		if strings.Contains(row.Text(), distributionList) {
			sc.state = finalizing
			return nil
		}
		sc.readLesson(row)
		sc.pos++

	case finalizing:
		sc.finalize()
		sc.state = seekingBlockStart
	}

	return nil
}

func (sc *scan) readLesson(row Row) {
	cells := row.Cells()

	// Anything but a full lesson row continues the lecturer list
	if len(cells) != 7 {
		if sc.group.Lecturer.Valid && len(cells) > 0 {
			sc.group.Lecturer.StringVal += ", " + cells[0]
		}
		return
	}

	lecturer, mode, building, room, day, time, semester :=
		cells[0], cells[1], cells[2], cells[3], cells[4], cells[5], cells[6]

	if !sc.group.Lecturer.Valid && lecturer != "" {
		sc.group.Lecturer = nullString(lecturer)
	}

	lesson := LessonInfo{
		Semester: semester,
		Day:      day,
		Time:     time,
		Building: building,
		Room:     room,
		Type:     mode,
	}
	if mode != "" && !sc.group.hasLesson(lesson) {
		sc.group.Lessons = append(sc.group.Lessons, lesson)
		sc.semesters[semester] = struct{}{}
	}
}

// finalize attaches exams and emits the group. Exams are only looked up when
// all of the group's lessons are in a single regular semester.
func (sc *scan) finalize() {
	result := ExamResult{Exams: []ExamInfo{}, Status: ExamsSkipped}

	if len(sc.semesters) == 1 && sc.Exams != nil {
		for token := range sc.semesters {
			if index, ok := SemesterIndex(token); ok {
				q := ExamQuery{
					Course:   sc.group.Id,
					Group:    sc.group.Group,
					Year:     sc.Year,
					Semester: index,
				}
				result = lookupExams(sc.ctx, sc.Exams, q)
				if result.Status == ExamsFailed {
					sc.reporter.ExamLookupFailed(q, result.Err)
				}
			}
		}
	}

	sc.group.Exams = result.Exams
	sc.group.ExamStatus = result.Status
	sc.group.ExamErr = result.Err
	sc.groups = append(sc.groups, sc.group)
}
