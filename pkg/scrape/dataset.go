package scrape

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// SearchSchools searches every school, running up to workers searches at
// once. The result is in school order whatever order the searches finish
// in. A school whose search partly failed is reported, and whatever groups
// it did yield are kept.
func SearchSchools(ctx context.Context, f Fetcher, schools []School, p SearchParams, exams ExamLookup, reporter Reporter, workers int) []GroupInfo {
	reporter = reporterOrNop(reporter)
	if workers < 1 {
		workers = 1
	}

	results := make([][]GroupInfo, len(schools))
	g := errgroup.Group{}
	g.SetLimit(workers)

	for i, school := range schools {
		i, school := i, school // per-iteration copies (go.mod targets go 1.21)
		g.Go(func() error {
			unit := fmt.Sprintf("school-%d", i)
			reporter.UnitStarted(unit, i+1, len(schools))

			params := p
			params.School = school
			params.SchoolIndex = i
			groups, err := SearchCourses(ctx, f, params, exams, reporter)
			results[i] = groups
			if err != nil {
				reporter.UnitFailed(unit, err)
				return nil
			}
			reporter.UnitDone(unit)
			return nil
		})
	}
	_ = g.Wait()

	var all []GroupInfo
	for _, groups := range results {
		all = append(all, groups...)
	}
	return all
}
