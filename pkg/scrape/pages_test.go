package scrape

import (
	"context"
	"errors"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestPaginatorCollect(t *testing.T) {
	first := mustDocument(t, resultsPage(true,
		block("0368-2157", "אלגוריתמים", "01", "מדעים",
			lesson("ד\"ר כהן", "שיעור", "שרייבר", "006", "ב", "10:00-13:00", "א'")),
		block("0368-2157", "אלגוריתמים", "02", "מדעים",
			lesson("ד\"ר לוי", "שיעור", "שרייבר", "008", "ג", "10:00-13:00", "א'")),
	))
	last := resultsPage(false,
		block("0368-1105", "חדו\"א", "01", "מדעים",
			lesson("ד\"ר כהן", "שיעור", "שרייבר", "006", "ה", "10:00-13:00", "ב'")),
	)

	var forms []map[string]string
	reporter := &recordingReporter{}
	p := Paginator{
		Scanner:  Scanner{Year: "2023"},
		Reporter: reporter,
		Unit:     "courses-2023-0-0",
		Next: func(ctx context.Context, page int, form map[string]string) (*goquery.Document, error) {
			require.Equal(t, 1, page)
			forms = append(forms, form)
			return mustDocument(t, last), nil
		},
	}

	groups, err := p.Collect(context.Background(), first)
	require.NoError(t, err)
	require.Len(t, groups, 3)
	require.Equal(t, "03681105", groups[2].Id)
	require.Equal(t, []int{0, 1}, reporter.pages)

	require.Len(t, forms, 1)
	require.Equal(t, map[string]string{
		"dir1":              "1",
		"__VIEWSTATE":       "abc",
		"__EVENTVALIDATION": "xyz",
	}, forms[0])
}

func TestPaginatorSinglePage(t *testing.T) {
	doc := mustDocument(t, resultsPage(false,
		block("0368-2157", "אלגוריתמים", "01", "מדעים",
			lesson("ד\"ר כהן", "שיעור", "שרייבר", "006", "ב", "10:00-13:00", "א'")),
	))
	p := Paginator{
		Scanner: Scanner{Year: "2023"},
		Next: func(context.Context, int, map[string]string) (*goquery.Document, error) {
			t.Fatal("a page without a next link has no continuation")
			return nil, nil
		},
	}

	groups, err := p.Collect(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, groups, 1)
}

func TestPaginatorKeepsRepeatedGroups(t *testing.T) {
	b := block("0368-2157", "אלגוריתמים", "01", "מדעים",
		lesson("ד\"ר כהן", "שיעור", "שרייבר", "006", "ב", "10:00-13:00", "א'"))
	p := Paginator{
		Scanner: Scanner{Year: "2023"},
		Next: func(context.Context, int, map[string]string) (*goquery.Document, error) {
			return mustDocument(t, resultsPage(false, b)), nil
		},
	}

	groups, err := p.Collect(context.Background(), mustDocument(t, resultsPage(true, b)))
	require.NoError(t, err)
	require.Len(t, groups, 2)
	require.Equal(t, groups[0], groups[1])
}

func TestPaginatorNextPageFailure(t *testing.T) {
	failure := errors.New("connection reset")
	p := Paginator{
		Scanner: Scanner{Year: "2023"},
		Next: func(context.Context, int, map[string]string) (*goquery.Document, error) {
			return nil, failure
		},
	}

	groups, err := p.Collect(context.Background(), mustDocument(t, resultsPage(true)))
	require.ErrorIs(t, err, failure)
	require.Nil(t, groups)
}
