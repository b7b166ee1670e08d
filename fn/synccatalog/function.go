// Package synccatalog serves a freshly scraped semester catalog over HTTP so
// it can run as a Cloud Function.
package synccatalog

import (
	"net/http"
	"strconv"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/openswoop/taucourses/pkg/logger"
	"github.com/openswoop/taucourses/pkg/report"
	"github.com/openswoop/taucourses/pkg/scrape"
)

// SyncCatalog is the function entry point. It expects the year and the
// semester letter as query parameters, e.g. ?year=2023&semester=a.
func SyncCatalog(w http.ResponseWriter, r *http.Request) {
	c := colly.NewCollector()
	c.AllowURLRevisit = true

	log, err := zap.NewProduction()
	if err != nil {
		log = zap.NewNop()
	}
	defer log.Sync()

	Handler{Fetcher: scrape.NewCollyFetcher(c), Log: log, Workers: 4}.ServeHTTP(w, r)
}

type Handler struct {
	Fetcher scrape.Fetcher
	Log     *zap.Logger
	Workers int
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	year := r.URL.Query().Get("year")
	semester := r.URL.Query().Get("semester")
	if _, err := strconv.Atoi(year); err != nil {
		http.Error(w, "year must be a number", http.StatusBadRequest)
		return
	}
	semesters, err := scrape.ParseSemesterFilter([]string{semester})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	schools, err := scrape.GetSchools(ctx, h.Fetcher)
	if err != nil {
		h.Log.Error("failed to fetch schools", zap.Error(err))
		http.Error(w, "failed to fetch schools", http.StatusBadGateway)
		return
	}

	params := scrape.SearchParams{Year: year, Semesters: semesters}
	exams := scrape.WebExams{Fetcher: h.Fetcher}
	groups := scrape.SearchSchools(ctx, h.Fetcher, schools, params, exams, logger.NewReporter(h.Log), h.Workers)

	catalog, err := report.BuildCatalog(groups, semester)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.Log.Info("built catalog",
		zap.String("year", year),
		zap.String("semester", semester),
		zap.Int("courses", len(catalog)),
	)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := report.EncodeJSON(w, catalog); err != nil {
		h.Log.Error("failed to write response", zap.Error(err))
	}
}
