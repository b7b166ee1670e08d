package scrape

// Reporter receives progress callbacks for each unit of work (a school
// search, a results page, one course's prerequisites).
type Reporter interface {
	UnitStarted(unit string, index, total int)
	UnitDone(unit string)
	UnitFailed(unit string, err error)
	PageFetched(unit string, page int)
	ExamLookupFailed(query ExamQuery, err error)
}

type NopReporter struct{}

func (NopReporter) UnitStarted(string, int, int) {}
func (NopReporter) UnitDone(string) {}
func (NopReporter) UnitFailed(string, error) {}
func (NopReporter) PageFetched(string, int) {}
func (NopReporter) ExamLookupFailed(ExamQuery, error) {}

func reporterOrNop(r Reporter) Reporter {
	if r == nil {
		return NopReporter{}
	}
	return r
}

// UnitError is returned when a unit of work fails. It names the unit so
// the failing course/group/year/semester is visible to the user.
type UnitError struct {
	Unit string
	Err  error
}

func (e *UnitError) Error() string {
	return e.Unit + ": " + e.Err.Error()
}

func (e *UnitError) Unwrap() error {
	return e.Err
}
