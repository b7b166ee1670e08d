package scrape

import (
	"context"
	"fmt"
	"net/url"
)

// GetSyllabus returns the syllabus text of a course, or "" if it has none.
func GetSyllabus(ctx context.Context, f Fetcher, course, group string, year int) (string, error) {
	query := url.Values{}
	query.Set("course", course+group)
	query.Set("year", fmt.Sprint(year))

	doc, err := fetchDocument(ctx, f, Request{
		Method: "GET",
		Url:    BaseUrl + "Tal/Syllabus/Syllabus_L.aspx?" + query.Encode(),
		Headers: map[string]string{
			"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/136.0.0.0 Safari/537.36",
		},
		CacheCategory: "syllabi",
		CacheKey:      fmt.Sprintf("syllabus-%s%s-%d", course, group, year),
	})
	if err != nil {
		return "", err
	}

	section := doc.Find("section.main-course-contents").First()
	if section.Length() == 0 {
		return "", fmt.Errorf("%w: no syllabus section", ErrUnexpectedPage)
	}
	return selectionText(section), nil
}
