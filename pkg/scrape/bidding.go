package scrape

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// BidStats is the outcome of one bidding run for one group.
type BidStats struct {
	Faculty        string `json:"faculty"`
	TotalAvailable int    `json:"total_available"`
	RunAvailable   int    `json:"run_available"`
	Wanted         int    `json:"wanted"`
	Received       int    `json:"received"`
	Maximal        int    `json:"maximal"`
	Minimal        int    `json:"minimal"`
}

// BidRow is one row of the bidding statistics table.
type BidRow struct {
	Semester string // e.g. "2023a"
	Group    string
	Stats    BidStats
}

// CourseBidding maps semester and group to the statistics of every run.
type CourseBidding map[string]map[string][]BidStats

var (
	biddingSemesters = []string{"1", "2", "3"}
	biddingRuns      = []string{"1", "2", "3"}
)

// Faculty codes the bidding form files courses under, by course id prefix.
// Longer prefixes come first.
var biddingFaculties = []struct{ prefix, faculty string }{
	{"016", "0160"},
	{"01", "0100"},
	{"03", "0300"},
	{"04", "0400"},
	{"05", "0500"},
	{"06", "0600"},
	{"07", "0700"},
	{"08", "0800"},
	{"09", "0900"},
	{"10", "1000"},
	{"11", "1100"},
	{"123", "1230"},
	{"12", "1200"},
	{"14", "1400"},
	{"188", "1880"},
}

// BiddingFaculty returns the faculty a course is bid for under. Courses
// outside the known faculties have no bidding.
func BiddingFaculty(course string) (string, bool) {
	for _, f := range biddingFaculties {
		if strings.HasPrefix(course, f.prefix) {
			return f.faculty, true
		}
	}
	return "", false
}

type BiddingQuery struct {
	Course   string
	Faculty  string
	Semester string // "1", "2" or "3"
	Run      string // "1", "2" or "3"
}

func (q BiddingQuery) String() string {
	return fmt.Sprintf("stats-%s-%s-%s", q.Course, q.Semester, q.Run)
}

// GetBiddingRun fetches the statistics page of one course, semester and run.
func GetBiddingRun(ctx context.Context, f Fetcher, q BiddingQuery) ([]BidRow, error) {
	doc, err := fetchDocument(ctx, f, Request{
		Method: "POST",
		Url:    BaseUrl + "Bidd/Stats/Stats_L.aspx",
		Form: map[string]string{
			"lstFacBidd":  q.Faculty,
			"lstShana":    "",
			"sem":         q.Semester,
			"ritza":       q.Run,
			"txtKurs":     q.Course,
			"txtKursName": "",
			"lstPageSize": "1000",
		},
		Headers:       searchHeaders,
		CacheCategory: "bidding",
		CacheKey:      q.String(),
	})
	if err != nil {
		return nil, err
	}
	return ParseBidding(doc)
}

// ParseBidding reads the statistics table. A page without the table has no
// rows. Rows of summer semesters and rows without a group are left out.
func ParseBidding(doc *goquery.Document) ([]BidRow, error) {
	// The first row is the table header
	trs := doc.Find("table#Grd1 tr")
	if trs.Length() < 2 {
		return nil, nil
	}

	var rows []BidRow
	var err error
	trs.Slice(1, goquery.ToEnd).EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		var cells []string
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, selectionText(td))
		})
		if len(cells) != 16 {
			return true
		}

		semester := strings.NewReplacer("/1", "a", "/2", "b").Replace(cells[10])
		group := strings.TrimSuffix(cells[13], "*")
		if group == "" || strings.HasSuffix(semester, "/3") {
			return true
		}

		var numbers [6]int
		for i, cell := range []int{8, 7, 6, 5, 3, 2} {
			if numbers[i], err = strconv.Atoi(cells[cell]); err != nil {
				err = fmt.Errorf("%w: bidding cell %q is not a number", ErrUnexpectedPage, cells[cell])
				return false
			}
		}

		rows = append(rows, BidRow{
			Semester: semester,
			Group:    group,
			Stats: BidStats{
				Faculty:        strings.Split(cells[12], "-")[0],
				TotalAvailable: numbers[0],
				RunAvailable:   numbers[1],
				Wanted:         numbers[2],
				Received:       numbers[3],
				Maximal:        numbers[4],
				Minimal:        numbers[5],
			},
		})
		return true
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GetBidding collects every semester and run of a course. When a group has
// statistics both with and without a faculty, only those with one are kept.
// It returns nil when the course has no bidding at all.
func GetBidding(ctx context.Context, f Fetcher, course string) (CourseBidding, error) {
	faculty, ok := BiddingFaculty(course)
	if !ok {
		return nil, nil
	}

	result := make(CourseBidding)
	for _, semester := range biddingSemesters {
		for _, run := range biddingRuns {
			q := BiddingQuery{Course: course, Faculty: faculty, Semester: semester, Run: run}
			rows, err := GetBiddingRun(ctx, f, q)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", q, err)
			}
			for _, r := range rows {
				if result[r.Semester] == nil {
					result[r.Semester] = make(map[string][]BidStats)
				}
				result[r.Semester][r.Group] = append(result[r.Semester][r.Group], r.Stats)
			}
		}
	}
	if len(result) == 0 {
		return nil, nil
	}

	for _, groups := range result {
		for group, stats := range groups {
			var withFaculty []BidStats
			for _, s := range stats {
				if s.Faculty != "" {
					withFaculty = append(withFaculty, s)
				}
			}
			if len(withFaculty) != 0 {
				groups[group] = withFaculty
			}
		}
	}
	return result, nil
}

// CollectBidding fetches the bidding of the courses in order. The first
// failure aborts the run. Courses without bidding are left out.
func CollectBidding(ctx context.Context, f Fetcher, courses []string, reporter Reporter) (map[string]CourseBidding, error) {
	reporter = reporterOrNop(reporter)

	result := make(map[string]CourseBidding)
	for i, course := range courses {
		unit := "bidding-" + course
		reporter.UnitStarted(unit, i+1, len(courses))

		bidding, err := GetBidding(ctx, f, course)
		if err != nil {
			reporter.UnitFailed(unit, err)
			return nil, &UnitError{unit, err}
		}
		if bidding != nil {
			result[course] = bidding
		}
		reporter.UnitDone(unit)
	}
	return result, nil
}
