package scrape

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

const examTable = `<html><body><table class="tableblds">` + examHeaderRow +
	`<tr class="listtd"><td>א</td><td>05/02/2024</td><td>09:00</td><td>בחינה סופית</td></tr>` +
	`<tr class="listtd"><td>ב</td><td>01/03/2024</td><td>13:00</td><td>בחינה סופית</td></tr>` +
	`</table></body></html>`

func TestParseExams(t *testing.T) {
	exams, err := ParseExams(mustDocument(t, examTable))
	require.NoError(t, err)
	require.Equal(t, []ExamInfo{
		{Moed: "א", Date: "05/02/2024", Hour: "09:00", Type: "בחינה סופית"},
		{Moed: "ב", Date: "01/03/2024", Hour: "13:00", Type: "בחינה סופית"},
	}, exams)
}

func TestParseExamsErrorBox(t *testing.T) {
	exams, err := ParseExams(mustDocument(t, `<html><body><div class="msgerrs">לא נמצאו בחינות</div></body></html>`))
	require.NoError(t, err)
	require.NotNil(t, exams)
	require.Empty(t, exams)
}

func TestParseExamsHeaderOnly(t *testing.T) {
	exams, err := ParseExams(mustDocument(t, `<table class="tableblds">`+examHeaderRow+`</table>`))
	require.NoError(t, err)
	require.Empty(t, exams)
}

func TestParseExamsUnexpectedHeader(t *testing.T) {
	doc := mustDocument(t, `<table class="tableblds"><tr class="listth"><th>מועד</th><th>תאריך</th></tr>`+
		`<tr><td>א</td><td>05/02/2024</td></tr></table>`)

	_, err := ParseExams(doc)
	require.ErrorIs(t, err, ErrUnexpectedPage)
}

func TestParseExamsWithoutTable(t *testing.T) {
	_, err := ParseExams(mustDocument(t, `<html><body><p>תחזוקה</p></body></html>`))
	require.ErrorIs(t, err, ErrUnexpectedPage)
}

func TestWebExams(t *testing.T) {
	var got Request
	f := FetcherFunc(func(_ context.Context, req Request) ([]byte, error) {
		got = req
		return []byte(examTable), nil
	})

	exams, err := WebExams{f}.LookupExams(context.Background(), ExamQuery{Course: "0368-2157", Group: "01", Year: "2023", Semester: 1})
	require.NoError(t, err)
	require.Len(t, exams, 2)

	u, err := url.Parse(got.Url)
	require.NoError(t, err)
	require.Equal(t, "/Tal/KR/Bhina_L.aspx", u.Path)
	require.Equal(t, "03682157", u.Query().Get("kurs"))
	require.Equal(t, "01", u.Query().Get("kv"))
	require.Equal(t, "20231", u.Query().Get("sem"))
	require.Equal(t, "exam-03682157-01-2023-1", got.CacheKey)
}

func TestLookupExamsResult(t *testing.T) {
	q := ExamQuery{Course: "03682157", Group: "01", Year: "2023", Semester: 2}

	res := lookupExams(context.Background(), &fakeExams{}, q)
	require.Equal(t, ExamsFetched, res.Status)
	require.NotNil(t, res.Exams)

	res = lookupExams(context.Background(), &fakeExams{err: errLookup}, q)
	require.Equal(t, ExamsFailed, res.Status)
	require.True(t, errors.Is(res.Err, errLookup))
	require.Empty(t, res.Exams)
}
