// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/engagehq/pulse/internal/adapters/repository"
	"github.com/engagehq/pulse/internal/adapters/source"
	"github.com/engagehq/pulse/internal/domain/directory"
	"github.com/engagehq/pulse/internal/domain/merge"
	"github.com/engagehq/pulse/internal/domain/model"
	"github.com/engagehq/pulse/internal/domain/ranking"
	"github.com/engagehq/pulse/internal/domain/scoring"
	"github.com/engagehq/pulse/internal/domain/types"
	"github.com/engagehq/pulse/pkg/logger"
	"github.com/engagehq/pulse/pkg/metrics"
)

// Source outcome labels for metrics.
const (
	outcomeOK          = "ok"
	outcomeUnavailable = "unavailable"
)

// Service runs the aggregation pipeline and serves the ranked table.
type Service struct {
	mu sync.RWMutex

	// Core components
	resolver    *directory.Resolver
	mergeEngine *merge.Engine
	mergeCache  *merge.Cache
	scorer      *scoring.Engine
	table       repository.Store
	snapshot    *repository.CSVStore

	// External sources
	messaging source.DirectorySource
	tracker   source.TrackerSource

	// Configuration
	weights         model.Weights
	windowDays      int
	employeeHours   float64
	contractorHours float64
	unknownHours    float64
	dataFile        string
	cacheSize       int
	fetchTimeout    time.Duration

	// Run state
	started     bool
	running     atomic.Bool
	lastMerged  []model.MergedRecord
	lastRunID   string
	lastRunTime time.Time
	gaps        int
	slackOK     bool
	linearOK    bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithWeights sets the scoring weights.
func WithWeights(w model.Weights) Option {
	return func(s *Service) {
		if w.Slack >= 0 && w.Linear >= 0 {
			s.weights = w
		}
	}
}

// WithWindowDays sets the aggregation window in days.
func WithWindowDays(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.windowDays = days
		}
	}
}

// WithCapacities sets hours-per-period by role classification. The unknown
// capacity applies to identities absent from the directory.
func WithCapacities(employee, contractor, unknown float64) Option {
	return func(s *Service) {
		if employee > 0 {
			s.employeeHours = employee
		}
		if contractor > 0 {
			s.contractorHours = contractor
		}
		if unknown > 0 {
			s.unknownHours = unknown
		}
	}
}

// WithSources sets the external source adapters.
func WithSources(messaging source.DirectorySource, tracker source.TrackerSource) Option {
	return func(s *Service) {
		s.messaging = messaging
		s.tracker = tracker
	}
}

// WithDataFile sets the CSV snapshot path.
func WithDataFile(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.dataFile = path
		}
	}
}

// WithMergeCacheSize bounds the fingerprint-addressed merge cache.
func WithMergeCacheSize(n int) Option {
	return func(s *Service) {
		s.cacheSize = n
	}
}

// WithFetchTimeout bounds the fetch phase of each aggregation run.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		weights:         model.Weights{Slack: 0.1, Linear: 1.0},
		windowDays:      30,
		employeeHours:   40,
		contractorHours: 20,
		unknownHours:    20,
		dataFile:        "data/engagement.csv",
		cacheSize:       16,
		fetchTimeout:    30 * time.Second,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the service components and restores the last persisted
// snapshot so the table is servable before the first fetch completes.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting engagement service...")

	s.resolver = directory.NewResolver(
		directory.WithEmployeeHours(s.employeeHours),
		directory.WithContractorHours(s.contractorHours),
	)
	s.mergeEngine = merge.NewEngine(
		merge.WithFallbackHours(s.unknownHours),
	)
	s.mergeCache = merge.NewCache(
		merge.WithMaxEntries(s.cacheSize),
	)
	s.scorer = scoring.NewEngine(
		scoring.WithWeights(s.weights),
	)
	s.table = repository.NewTableStore()
	s.snapshot = repository.NewCSVStore(s.dataFile)

	if restored := s.snapshot.Load(ctx); len(restored) > 0 {
		s.lastMerged = restored
		s.publishLocked(ctx, restored)
		s.logger.Info(ctx, "restored persisted snapshot",
			logger.Int("records", len(restored)),
			logger.String("file", s.dataFile),
		)
	}

	s.started = true
	s.logger.Info(ctx, "engagement service started",
		logger.Int("windowDays", s.windowDays),
		logger.Float64("weightSlack", s.weights.Slack),
		logger.Float64("weightLinear", s.weights.Linear),
	)

	return nil
}

// Stop shuts the service down.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "engagement service stopped")
}

// Refresh runs one aggregation: fetch, merge, score, rank, persist. Source
// failures degrade coverage and never fail the run; only a concurrent run
// is rejected. Returns the run id.
func (s *Service) Refresh(ctx context.Context) (string, error) {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return "", ErrNotStarted
	}

	if !s.running.CompareAndSwap(false, true) {
		return "", ErrRunInProgress
	}
	defer s.running.Store(false)

	runID := uuid.New().String()
	runStart := time.Now()
	end := runStart
	start := end.AddDate(0, 0, -s.windowDays)

	s.logger.Info(ctx, "starting aggregation run",
		logger.String("runID", runID),
		logger.String("from", start.Format("2006-01-02")),
		logger.String("to", end.Format("2006-01-02")),
	)

	fetchCtx, cancelFetch := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancelFetch()

	members, membersOK := s.fetchMembers(fetchCtx)
	dir := s.resolver.Resolve(members)

	// The two count fetches are independent; run them concurrently. Each
	// captures its own result and availability, so neither can fail the
	// group.
	var (
		msgs     []model.Message
		issues   []model.Issue
		msgsOK   bool
		issuesOK bool
	)
	g, gctx := errgroup.WithContext(fetchCtx)
	g.Go(func() error {
		msgs, msgsOK = s.fetchMessages(gctx, start, end)
		return nil
	})
	g.Go(func() error {
		issues, issuesOK = s.fetchIssues(gctx, start)
		return nil
	})
	_ = g.Wait()

	slackCounts := dir.CountByEmail(msgs)
	linearCounts := countIssues(issues)

	key := merge.Fingerprint(dir.Profiles, slackCounts, linearCounts)
	merged, cached := s.mergeCache.Get(key)
	if cached {
		metrics.RecordMergeCacheHit()
	} else {
		metrics.RecordMergeCacheMiss()
		merged = s.mergeEngine.Merge(dir.Profiles, slackCounts, linearCounts)
		s.mergeCache.Put(key, merged)
	}

	metrics.RecordRun()
	metrics.UpdateMergeUniverseSize(len(merged))
	metrics.UpdateCoverageGaps(dir.Gaps)

	s.mu.Lock()
	s.lastMerged = merged
	s.lastRunID = runID
	s.lastRunTime = runStart
	s.gaps = dir.Gaps
	s.slackOK = membersOK && msgsOK
	s.linearOK = issuesOK
	s.publishLocked(ctx, merged)
	s.mu.Unlock()

	if len(merged) == 0 {
		// Empty identity universe: an explicit empty-result state. The
		// previous snapshot file stays in place.
		metrics.RecordRunFailure()
		s.logger.Warn(ctx, "aggregation run produced no identities",
			logger.String("runID", runID),
		)
	} else if err := s.snapshot.Write(ctx, merged); err != nil {
		metrics.RecordSnapshotWriteError()
		s.logger.Error(ctx, "snapshot write failed",
			logger.String("runID", runID),
			logger.Error(err),
		)
	} else {
		metrics.RecordSnapshotWrite(time.Now().Unix())
	}

	durationMs := float64(time.Since(runStart).Milliseconds())
	metrics.RecordRunDuration(durationMs)
	s.logger.Info(ctx, "aggregation run complete",
		logger.String("runID", runID),
		logger.Int("identities", len(merged)),
		logger.Int("coverageGaps", dir.Gaps),
		logger.Duration("took", time.Since(runStart)),
	)

	return runID, nil
}

// Rescore recomputes all derived fields from the last merged table with new
// weights. No source data is touched; rescoring with identical weights is
// idempotent. A weight pair with a negative component leaves the configured
// engine untouched.
func (s *Service) Rescore(ctx context.Context, w model.Weights) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return ErrNotStarted
	}
	if w.Slack >= 0 && w.Linear >= 0 {
		s.weights = w
		s.scorer = scoring.NewEngine(scoring.WithWeights(w))
	}
	s.publishLocked(ctx, s.lastMerged)
	return nil
}

// publishLocked scores the merged records with the configured engine,
// builds the ranked table, and swaps it into the store. Callers hold s.mu.
func (s *Service) publishLocked(ctx context.Context, merged []model.MergedRecord) {
	scoreStart := time.Now()
	scored := s.scorer.Score(merged)
	table := ranking.Build(scored)
	s.table.Replace(ctx, table)

	metrics.RecordScoringDuration(float64(time.Since(scoreStart).Milliseconds()))
	metrics.UpdateTableSize(table.Summary.TotalMembers)
	metrics.UpdateActiveMembers(table.Summary.ActiveMembers)
}

// Rankings returns up to limit ranked entries.
func (s *Service) Rankings(ctx context.Context, limit int) ([]types.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.table.Ranked(ctx, limit)
}

// RankingsWith returns up to limit entries re-scored with an explicit
// weight pair, leaving the service's configured weights untouched. This
// backs the dashboard's what-if sliders.
func (s *Service) RankingsWith(ctx context.Context, limit int, w model.Weights) ([]types.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}

	scored := scoring.ScoreWith(s.lastMerged, w)
	table := ranking.Build(scored)
	entries := table.Entries
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}

// Rank returns the ranked entry for an email.
func (s *Service) Rank(ctx context.Context, email string) (types.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return types.Entry{}, ErrNotStarted
	}
	return s.table.Rank(ctx, email)
}

// GetStats returns the service's run and coverage state for /stats.
func (s *Service) GetStats() types.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := types.Stats{
		Started:      s.started,
		WeightSlack:  s.weights.Slack,
		WeightLinear: s.weights.Linear,
		WindowDays:   s.windowDays,
	}
	if !s.started {
		return stats
	}

	stats.Summary = s.table.Summary(context.Background())
	stats.MergeCacheHits, stats.MergeCacheMisses = s.mergeCache.Stats()
	stats.CoverageGaps = s.gaps
	stats.SlackAvailable = s.slackOK
	stats.LinearAvailable = s.linearOK
	stats.LastRunID = s.lastRunID
	if !s.lastRunTime.IsZero() {
		stats.LastRunAt = s.lastRunTime.UTC().Format(time.RFC3339)
	}
	if mod := s.snapshot.ModTime(); !mod.IsZero() {
		stats.DataFileModifiedAt = mod.UTC().Format(time.RFC3339)
	}

	metrics.UpdateTableSize(stats.TotalMembers)
	metrics.UpdateActiveMembers(stats.ActiveMembers)

	return stats
}

// fetchMembers pulls the raw member list, treating unavailability as an
// empty list with degraded coverage.
func (s *Service) fetchMembers(ctx context.Context) ([]model.MemberRecord, bool) {
	if s.messaging == nil {
		return nil, false
	}
	fetchStart := time.Now()
	members, err := s.messaging.Members(ctx)
	metrics.RecordSourceFetchDuration("slack_members", float64(time.Since(fetchStart).Milliseconds()))
	if err != nil {
		metrics.RecordSourceFetch("slack_members", outcomeUnavailable)
		s.logger.Warn(ctx, "member list unavailable, proceeding with degraded coverage",
			logger.Error(err),
		)
		return nil, false
	}
	metrics.RecordSourceFetch("slack_members", outcomeOK)
	return members, true
}

// fetchMessages pulls raw message traffic for the window.
func (s *Service) fetchMessages(ctx context.Context, start, end time.Time) ([]model.Message, bool) {
	if s.messaging == nil {
		return nil, false
	}
	fetchStart := time.Now()
	msgs, err := s.messaging.Messages(ctx, start, end)
	metrics.RecordSourceFetchDuration("slack_messages", float64(time.Since(fetchStart).Milliseconds()))
	if err != nil {
		metrics.RecordSourceFetch("slack_messages", outcomeUnavailable)
		s.logger.Warn(ctx, "message history unavailable, proceeding with degraded coverage",
			logger.Error(err),
		)
		return nil, false
	}
	metrics.RecordSourceFetch("slack_messages", outcomeOK)
	return msgs, true
}

// fetchIssues pulls completed issues since start.
func (s *Service) fetchIssues(ctx context.Context, since time.Time) ([]model.Issue, bool) {
	if s.tracker == nil {
		return nil, false
	}
	fetchStart := time.Now()
	issues, err := s.tracker.CompletedIssues(ctx, since)
	metrics.RecordSourceFetchDuration("linear_issues", float64(time.Since(fetchStart).Milliseconds()))
	if err != nil {
		metrics.RecordSourceFetch("linear_issues", outcomeUnavailable)
		s.logger.Warn(ctx, "issue tracker unavailable, proceeding with degraded coverage",
			logger.Error(err),
		)
		return nil, false
	}
	metrics.RecordSourceFetch("linear_issues", outcomeOK)
	return issues, true
}

// countIssues folds completed issues into per-email counts, ordered by
// email for reproducibility.
func countIssues(issues []model.Issue) []model.SourceCount {
	byEmail := make(map[string]int)
	for _, i := range issues {
		if i.AssigneeEmail == "" {
			continue
		}
		byEmail[i.AssigneeEmail]++
	}
	counts := make([]model.SourceCount, 0, len(byEmail))
	for email, n := range byEmail {
		counts = append(counts, model.SourceCount{Email: email, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Email < counts[j].Email })
	return counts
}
