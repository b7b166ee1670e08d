package scrape

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

// resultsPage wraps rows in the results grid of a search page.
func resultsPage(next bool, rows ...string) string {
	nextLink := ""
	if next {
		nextLink = `<input type="button" id="next" value="הבא">`
	}
	return `<html><body><form id="frmgrid">` +
		`<input type="hidden" name="__VIEWSTATE" value="abc">` +
		`<input type="hidden" name="__EVENTVALIDATION" value="xyz">` +
		`<input type="hidden" name="nameless">` +
		nextLink +
		`<table dir="rtl"><tr class="listth"><th>קורסים</th></tr>` +
		strings.Join(rows, "\n") +
		`</table></form></body></html>`
}

// block renders the rows of one course group as the results grid lays
// them out: a start marker, the course header, the faculty, some detail
// rows, a separator marker, the lessons and the distribution list row.
func block(id, name, group, faculty string, lessons ...string) string {
	rows := []string{
		`<tr class="kotcol"><td></td><td></td></tr>`,
		fmt.Sprintf(`<tr class="listtdbld"><td>%s<span>קבוצה</span>%s</td><td>%s</td></tr>`, id, group, name),
		fmt.Sprintf(`<tr class="listtd"><td>פקולטה:</td><td>%s</td></tr>`, faculty),
		`<tr class="listtd"><td colspan="2">סילבוס</td></tr>`,
		`<tr class="kotcol"><th>מרצה</th><th>אופן הוראה</th><th>בניין</th><th>חדר</th><th>יום</th><th>שעה</th><th>סמ'</th></tr>`,
	}
	rows = append(rows, lessons...)
	rows = append(rows, `<tr class="listtd"><td colspan="7">רשימת תפוצה</td></tr>`)
	return strings.Join(rows, "\n")
}

func lesson(lecturer, mode, building, room, day, time, semester string) string {
	return fmt.Sprintf(`<tr class="listtd"><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
		lecturer, mode, building, room, day, time, semester)
}

func extraLecturer(name string) string {
	return fmt.Sprintf(`<tr class="listtd"><td>%s</td></tr>`, name)
}

func mustDocument(t testing.TB, markup string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

type fakeExams struct {
	exams   []ExamInfo
	err     error
	queries []ExamQuery
}

func (f *fakeExams) LookupExams(_ context.Context, q ExamQuery) ([]ExamInfo, error) {
	f.queries = append(f.queries, q)
	return f.exams, f.err
}

type recordingReporter struct {
	NopReporter
	mu          sync.Mutex
	failedExams []ExamQuery
	failedUnits []string
	pages       []int
}

func (r *recordingReporter) ExamLookupFailed(q ExamQuery, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failedExams = append(r.failedExams, q)
}

func (r *recordingReporter) UnitFailed(unit string, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failedUnits = append(r.failedUnits, unit)
}

func (r *recordingReporter) PageFetched(_ string, page int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages = append(r.pages, page)
}

var errLookup = errors.New("lookup failed")
