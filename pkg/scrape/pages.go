package scrape

import (
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

// PageFunc fetches the results page that follows a submitted form.
type PageFunc func(ctx context.Context, page int, form map[string]string) (*goquery.Document, error)

// Paginator walks one search's result pages in order, scanning each. Groups
// repeated across pages are kept as separate entries.
type Paginator struct {
	Scanner  Scanner
	Next     PageFunc
	Reporter Reporter
	Unit     string
}

func (p Paginator) Collect(ctx context.Context, first *goquery.Document) ([]GroupInfo, error) {
	reporter := reporterOrNop(p.Reporter)

	var groups []GroupInfo
	doc := first
	page := 0
	for hasNextPage(doc) {
		groups = append(groups, p.Scanner.ParsePage(ctx, doc)...)
		reporter.PageFetched(p.Unit, page)

		page++
		next, err := p.Next(ctx, page, continuationForm(doc))
		if err != nil {
			return nil, fmt.Errorf("failed to fetch page %d: %w", page, err)
		}
		doc = next
	}

	// The final page
	groups = append(groups, p.Scanner.ParsePage(ctx, doc)...)
	reporter.PageFetched(p.Unit, page)
	return groups, nil
}

func hasNextPage(doc *goquery.Document) bool {
	return doc.Find("#next").Length() > 0
}

// continuationForm carries every hidden field of the page over to the next
// request, plus the flag asking for the following page.
func continuationForm(doc *goquery.Document) map[string]string {
	form := map[string]string{"dir1": "1"}
	doc.Find("input[type=hidden]").Each(func(_ int, s *goquery.Selection) {
		name, hasName := s.Attr("name")
		value, hasValue := s.Attr("value")
		if hasName && hasValue {
			form[name] = value
		}
	})
	return form
}
