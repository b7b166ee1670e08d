package scrape

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var searchHeaders = map[string]string{
	"Accept":       "text/html,application/xhtml+xml,application/xml",
	"Content-Type": "application/x-www-form-urlencoded",
	"User-Agent":   "CourseScrape",
}

// School is one selection list of the search form: the form field name and
// the option values worth searching with.
type School struct {
	Select  string
	Options []string
}

// GetSchools reads the school lists from the search form. When a school
// offers an "all of ..." option, that option alone covers the school.
func GetSchools(ctx context.Context, f Fetcher) ([]School, error) {
	doc, err := fetchDocument(ctx, f, Request{
		Method:        "GET",
		Url:           BaseUrl + "Tal/KR/Search_P.aspx",
		CacheCategory: "courses",
		CacheKey:      "schools",
	})
	if err != nil {
		return nil, err
	}
	return ParseSchools(doc), nil
}

func ParseSchools(doc *goquery.Document) []School {
	var schools []School
	doc.Find(".table1 select.freeselect.list").Each(func(_ int, sel *goquery.Selection) {
		name, _ := sel.Attr("name")

		var options []*goquery.Selection
		sel.Find("option").Each(func(_ int, o *goquery.Selection) {
			if o.Text() != "" {
				options = append(options, o)
			}
		})
		if len(options) > 0 && strings.HasPrefix(options[0].Text(), allOptionsPrefix) {
			options = options[:1]
		}

		school := School{Select: name}
		for _, o := range options {
			value, _ := o.Attr("value")
			school.Options = append(school.Options, value)
		}
		schools = append(schools, school)
	})
	return schools
}

// SemesterFilter restricts a search to some of the year's semesters.
type SemesterFilter []string

var (
	Winter = SemesterFilter{"a"}
	Spring = SemesterFilter{"b"}
	All    = SemesterFilter{"a", "b"}
)

func ParseSemesterFilter(letters []string) (SemesterFilter, error) {
	var filter SemesterFilter
	for _, l := range letters {
		if _, err := SemesterNumber(l); err != nil {
			return nil, err
		}
		filter = append(filter, l)
	}
	if len(filter) == 0 {
		return All, nil
	}
	return filter, nil
}

type SearchParams struct {
	Year        string
	Semesters   SemesterFilter
	School      School
	SchoolIndex int
}

// SearchCourses runs the search for every option of a school and returns the
// groups of all result pages, in option and page order. A failing option is
// reported and skipped; the error joins the failures of all options, and the
// groups of the other options are returned with it.
func SearchCourses(ctx context.Context, f Fetcher, p SearchParams, exams ExamLookup, reporter Reporter) ([]GroupInfo, error) {
	reporter = reporterOrNop(reporter)

	payload := map[string]string{
		"lstYear1":    p.Year,
		"txtShemKurs": "",
		"txtShemMore": "",
	}
	if len(p.Semesters) == 1 {
		sem, err := SemesterNumber(p.Semesters[0])
		if err != nil {
			return nil, err
		}
		payload["ckSem"] = sem
	}

	var result []GroupInfo
	var failures []error
	for optionIndex, option := range p.School.Options {
		unit := fmt.Sprintf("courses-%s-%d-%d", p.Year, p.SchoolIndex, optionIndex)
		reporter.UnitStarted(unit, optionIndex+1, len(p.School.Options))

		form := map[string]string{p.School.Select: option}
		for k, v := range payload {
			form[k] = v
		}

		search := func(ctx context.Context, page int, form map[string]string) (*goquery.Document, error) {
			return fetchDocument(ctx, f, Request{
				Method:        "POST",
				Url:           BaseUrl + "Tal/KR/Search_L.aspx",
				Form:          form,
				Headers:       searchHeaders,
				CacheCategory: "courses",
				CacheKey:      fmt.Sprintf("%s-%d", unit, page),
			})
		}

		first, err := search(ctx, 0, form)
		if err != nil {
			reporter.UnitFailed(unit, err)
			failures = append(failures, &UnitError{unit, err})
			continue
		}

		paginator := Paginator{
			Scanner:  Scanner{Year: p.Year, Exams: exams, Reporter: reporter},
			Next:     search,
			Reporter: reporter,
			Unit:     unit,
		}
		groups, err := paginator.Collect(ctx, first)
		if err != nil {
			reporter.UnitFailed(unit, err)
			failures = append(failures, &UnitError{unit, err})
			continue
		}
		result = append(result, groups...)
		reporter.UnitDone(unit)
	}

	return result, errors.Join(failures...)
}
