package report

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"hearth/internal/agent"
	"hearth/internal/loan"
	"hearth/internal/platform/metrics"
)

const topAgentCount = 3

// RegistrationReader is the read-only slice of the registration store the
// projection needs. The projection owns no records and cannot mutate them.
type RegistrationReader interface {
	ListByStatus(ctx context.Context, status agent.Status) ([]*agent.Registration, error)
}

// ApplicationReader is the read-only slice of the application store.
type ApplicationReader interface {
	List(ctx context.Context) ([]*loan.Application, error)
}

// Cache stores a serialized summary with a TTL. A nil Cache disables caching.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Service recomputes the reporting summary on demand.
type Service struct {
	registrations RegistrationReader
	applications  ApplicationReader
	cache         Cache
	cacheTTL      time.Duration
	metrics       *metrics.Metrics
	logger        *slog.Logger
	now           func() time.Time
}

func NewService(regs RegistrationReader, apps ApplicationReader, cache Cache, cacheTTL time.Duration, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		registrations: regs,
		applications:  apps,
		cache:         cache,
		cacheTTL:      cacheTTL,
		metrics:       m,
		logger:        logger,
		now:           time.Now,
	}
}

const summaryCacheKey = "report:summary"

// Summary returns the current projection, serving a cached copy when one is
// fresh. Cache failures degrade to recomputation, never to an error.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, summaryCacheKey); err == nil && cached != nil {
			var summary Summary
			if err := json.Unmarshal(cached, &summary); err == nil {
				return &summary, nil
			}
		}
	}

	start := s.now()

	var (
		regs []*agent.Registration
		apps []*loan.Application
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		regs, err = s.registrations.ListByStatus(gctx, "")
		return err
	})
	g.Go(func() error {
		var err error
		apps, err = s.applications.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := build(regs, apps, s.now())
	s.metrics.ObserveSummaryRebuild(time.Since(start).Seconds())

	if s.cache != nil {
		payload, err := json.Marshal(summary)
		if err == nil {
			if err := s.cache.Set(ctx, summaryCacheKey, payload, s.cacheTTL); err != nil {
				s.logger.WarnContext(ctx, "summary cache write failed", "error", err)
			}
		}
	}
	return summary, nil
}

func build(regs []*agent.Registration, apps []*loan.Application, now time.Time) *Summary {
	summary := &Summary{
		Registrations: make(map[string]int),
		Applications:  make(map[string]int),
		GeneratedAt:   now,
	}

	for _, reg := range regs {
		summary.Registrations[string(reg.Status)]++
	}

	tallies := make(map[string]*AgentPerformance)
	for _, app := range apps {
		summary.Applications[string(app.Status)]++
		if app.BankAgentID == "" {
			continue
		}
		perf, ok := tallies[app.BankAgentID]
		if !ok {
			perf = &AgentPerformance{AgentID: app.BankAgentID}
			tallies[app.BankAgentID] = perf
		}
		perf.Total++
		switch app.Status {
		case loan.StatusApproved:
			perf.Approved++
		case loan.StatusRejected:
			perf.Rejected++
		default:
			perf.Pending++
		}
	}

	ranked := make([]AgentPerformance, 0, len(tallies))
	for _, perf := range tallies {
		if decided := perf.Approved + perf.Rejected; decided > 0 {
			perf.ApprovalRate = float64(perf.Approved) / float64(decided)
		}
		ranked = append(ranked, *perf)
	}

	// Rank key is approval rate first, total volume second; agent id breaks
	// remaining ties so the ordering is stable.
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].ApprovalRate != ranked[j].ApprovalRate {
			return ranked[i].ApprovalRate > ranked[j].ApprovalRate
		}
		if ranked[i].Total != ranked[j].Total {
			return ranked[i].Total > ranked[j].Total
		}
		return ranked[i].AgentID < ranked[j].AgentID
	})
	if len(ranked) > topAgentCount {
		ranked = ranked[:topAgentCount]
	}
	summary.TopAgents = ranked
	return summary
}
