package dashboard

import (
	"context"
	"sort"

	"github.com/procurehq/intake/internal/request/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Summary aggregates the submission history for the overview page.
type Summary struct {
	TotalRequests int             `json:"total_requests"`
	UrgentCount   int             `json:"urgent_count"`
	ByMonth       []MonthCount    `json:"by_month"`
	TopRequesters []RequesterRank `json:"top_requesters"`
}

// MonthCount is the number of submissions in one calendar month.
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// RequesterRank is one entry in the most-active-requesters list.
type RequesterRank struct {
	Requester string `json:"requester"`
	Count     int    `json:"count"`
}

const topRequesterLimit = 5

type Service interface {
	Summary(ctx context.Context) (Summary, error)
}

type Params struct {
	fx.In

	Log  *zap.Logger
	Repo domain.Repository
}

type service struct {
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) Service {
	return &service{
		log:  p.Log.Named("dashboard.service"),
		repo: p.Repo,
	}
}

// Summary recomputes all aggregates from the store on every call. The
// history is small enough that caching would only add staleness.
func (s *service) Summary(ctx context.Context) (Summary, error) {
	requests, err := s.repo.List(ctx)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		TotalRequests: len(requests),
		ByMonth:       []MonthCount{},
		TopRequesters: []RequesterRank{},
	}

	monthCounts := map[string]int{}
	requesterCounts := map[string]int{}
	for _, req := range requests {
		if req.Urgency == domain.UrgencyUrgent {
			summary.UrgentCount++
		}
		if !req.SubmittedAt.IsZero() {
			monthCounts[req.SubmittedAt.Format("2006-01")]++
		}
		if req.RequesterName != "" {
			requesterCounts[req.RequesterName]++
		}
	}

	for month, count := range monthCounts {
		summary.ByMonth = append(summary.ByMonth, MonthCount{Month: month, Count: count})
	}
	sort.Slice(summary.ByMonth, func(i, j int) bool {
		return summary.ByMonth[i].Month < summary.ByMonth[j].Month
	})

	for requester, count := range requesterCounts {
		summary.TopRequesters = append(summary.TopRequesters, RequesterRank{Requester: requester, Count: count})
	}
	sort.Slice(summary.TopRequesters, func(i, j int) bool {
		if summary.TopRequesters[i].Count != summary.TopRequesters[j].Count {
			return summary.TopRequesters[i].Count > summary.TopRequesters[j].Count
		}
		return summary.TopRequesters[i].Requester < summary.TopRequesters[j].Requester
	})
	if len(summary.TopRequesters) > topRequesterLimit {
		summary.TopRequesters = summary.TopRequesters[:topRequesterLimit]
	}

	return summary, nil
}
