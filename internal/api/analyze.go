package api

import (
	"context"

	"liftplan/internal/scraper"
	"liftplan/internal/services/llm"
)

// Scraper fetches workout pages.
type Scraper interface {
	ScrapeWorkouts(ctx context.Context, urls []string) []scraper.Result
}

// Planner generates a plan from scraped sources and preferences.
type Planner interface {
	GenerateWorkoutPlan(ctx context.Context, sources []llm.Source, prefs map[string]string) (llm.PlanResult, error)
}

// AnalyzeService runs the scrape-then-plan workflow shared by the HTTP API and
// the CLI.
type AnalyzeService struct {
	scraper Scraper
	planner Planner
}

// NewAnalyzeService constructs an AnalyzeService.
func NewAnalyzeService(s Scraper, p Planner) *AnalyzeService {
	return &AnalyzeService{scraper: s, planner: p}
}

// Analyze scrapes every URL, hands the successful pages to the planner and
// returns the plan with all scrape results in input order.
func (s *AnalyzeService) Analyze(ctx context.Context, req AnalyzeRequest) (AnalyzeResponse, error) {
	results := s.scraper.ScrapeWorkouts(ctx, req.URLs)
	plan, err := s.planner.GenerateWorkoutPlan(ctx, SourcesFromResults(results), req.Preferences)
	if err != nil {
		return AnalyzeResponse{}, err
	}
	return AnalyzeResponse{
		Plan:          plan.Plan,
		Summary:       plan.Summary,
		ProcessedURLs: results,
	}, nil
}

// SourcesFromResults keeps successful scrape results, preserving order.
func SourcesFromResults(results []scraper.Result) []llm.Source {
	sources := make([]llm.Source, 0, len(results))
	for _, result := range results {
		if !result.Success {
			continue
		}
		sources = append(sources, llm.Source{URL: result.URL, Content: result.Content})
	}
	return sources
}
