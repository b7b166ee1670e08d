package scrape

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/PuerkitoBio/goquery"
)

type ExamQuery struct {
	Course   string
	Group    string
	Year     string
	Semester int // 1 or 2
}

func (q ExamQuery) String() string {
	return fmt.Sprintf("%s%s-%s%d", q.Course, q.Group, q.Year, q.Semester)
}

// ExamLookup returns the exams of one course group in one semester.
type ExamLookup interface {
	LookupExams(ctx context.Context, q ExamQuery) ([]ExamInfo, error)
}

type ExamStatus int

const (
	// No lookup was made (the group spans several semesters, or none)
	ExamsSkipped ExamStatus = iota
	ExamsFetched
	// The lookup failed and the group was given no exams
	ExamsFailed
)

func (s ExamStatus) String() string {
	switch s {
	case ExamsSkipped:
		return "skipped"
	case ExamsFetched:
		return "fetched"
	case ExamsFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type ExamResult struct {
	Exams  []ExamInfo
	Status ExamStatus
	Err    error
}

func lookupExams(ctx context.Context, lookup ExamLookup, q ExamQuery) ExamResult {
	exams, err := lookup.LookupExams(ctx, q)
	if err != nil {
		return ExamResult{Exams: []ExamInfo{}, Status: ExamsFailed, Err: err}
	}
	if exams == nil {
		exams = []ExamInfo{}
	}
	return ExamResult{Exams: exams, Status: ExamsFetched}
}

// WebExams looks exams up on the exam schedule page.
type WebExams struct {
	Fetcher Fetcher
}

func (w WebExams) LookupExams(ctx context.Context, q ExamQuery) ([]ExamInfo, error) {
	course := stripSeparators(q.Course)
	sem := q.Year + strconv.Itoa(q.Semester)
	query := url.Values{}
	query.Set("kurs", course)
	query.Set("kv", q.Group)
	query.Set("sem", sem)

	doc, err := fetchDocument(ctx, w.Fetcher, Request{
		Method:        "GET",
		Url:           BaseUrl + "Tal/KR/Bhina_L.aspx?" + query.Encode(),
		CacheCategory: "courses",
		CacheKey:      fmt.Sprintf("exam-%s-%s-%s-%d", course, q.Group, q.Year, q.Semester),
	})
	if err != nil {
		return nil, err
	}
	return ParseExams(doc)
}

// ParseExams reads the exam table of an exam schedule page. An error box on
// the page means the group has no exams.
func ParseExams(doc *goquery.Document) ([]ExamInfo, error) {
	if doc.Find(".msgerrs").Length() > 0 {
		return []ExamInfo{}, nil
	}

	table := doc.Find(".tableblds").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("%w: no exam table", ErrUnexpectedPage)
	}

	rows := table.Find("tr")
	if rows.Length() == 0 {
		return nil, fmt.Errorf("%w: empty exam table", ErrUnexpectedPage)
	}
	header, err := goquery.OuterHtml(rows.First())
	if err != nil {
		return nil, err
	}
	if header != examHeaderRow {
		return nil, fmt.Errorf("%w: exam table header is %q", ErrUnexpectedPage, header)
	}

	exams := []ExamInfo{}
	rows.Slice(1, rows.Length()).Each(func(_ int, s *goquery.Selection) {
		cells := s.Find("td")
		exams = append(exams, ExamInfo{
			Moed: selectionText(cells.Eq(0)),
			Date: selectionText(cells.Eq(1)),
			Hour: selectionText(cells.Eq(2)),
			Type: selectionText(cells.Eq(3)),
		})
	})
	return exams, nil
}
