package api

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/yourusername/bgadvisor/pkg/engine"
)

// Lane is the admission lane of an analysis.
type Lane int

const (
	// LaneFast serves heuristic-only analyses.
	LaneFast Lane = iota
	// LaneRollout serves analyses with Monte Carlo rollouts.
	LaneRollout
)

func (l Lane) String() string {
	if l == LaneRollout {
		return "rollout"
	}
	return "fast"
}

// AdmissionConfig configures request admission.
type AdmissionConfig struct {
	MaxFast     int   `yaml:"max_fast"`     // Concurrent heuristic-only analyses (default: 100)
	MaxRollouts int64 `yaml:"max_rollouts"` // Rollouts in flight across analyses (default: 2000)
}

// DefaultAdmissionConfig returns an AdmissionConfig with sensible defaults.
func DefaultAdmissionConfig() AdmissionConfig {
	return AdmissionConfig{
		MaxFast:     100,
		MaxRollouts: 2000,
	}
}

// Admission limits the analyses running at once. Heuristic-only analyses
// take one of MaxFast slots. An analysis with rollouts draws its rollout
// count, simulations times promoted candidates, from a shared budget of
// MaxRollouts, so small rollout requests run side by side while a large
// one waits for room.
type Admission struct {
	fast     *semaphore.Weighted
	rollouts *semaphore.Weighted
	cfg      AdmissionConfig

	queued   [2]atomic.Int64
	active   [2]atomic.Int64
	served   [2]atomic.Int64
	inFlight atomic.Int64 // rollouts held by running analyses
}

// NewAdmission creates an admission controller.
func NewAdmission(cfg AdmissionConfig) *Admission {
	def := DefaultAdmissionConfig()
	if cfg.MaxFast <= 0 {
		cfg.MaxFast = def.MaxFast
	}
	if cfg.MaxRollouts <= 0 {
		cfg.MaxRollouts = def.MaxRollouts
	}
	return &Admission{
		fast:     semaphore.NewWeighted(int64(cfg.MaxFast)),
		rollouts: semaphore.NewWeighted(cfg.MaxRollouts),
		cfg:      cfg,
	}
}

// Cost returns the lane of req and the weight it holds there. A request
// costing more than the whole rollout budget holds all of it and runs
// alone.
func (a *Admission) Cost(req engine.AnalysisRequest) (Lane, int64) {
	if req.NumSimulations <= 0 || req.MaxTopMoves <= 0 {
		return LaneFast, 1
	}
	n := int64(req.NumSimulations) * int64(req.MaxTopMoves)
	return LaneRollout, min(n, a.cfg.MaxRollouts)
}

// Acquire waits until req may run and returns the function releasing it.
// It returns the context error if ctx ends first.
func (a *Admission) Acquire(ctx context.Context, req engine.AnalysisRequest) (func(), error) {
	lane, n := a.Cost(req)
	sem := a.fast
	if lane == LaneRollout {
		sem = a.rollouts
	}

	a.queued[lane].Add(1)
	err := sem.Acquire(ctx, n)
	a.queued[lane].Add(-1)
	if err != nil {
		return nil, err
	}

	a.active[lane].Add(1)
	if lane == LaneRollout {
		a.inFlight.Add(n)
	}
	return func() {
		if lane == LaneRollout {
			a.inFlight.Add(-n)
		}
		a.active[lane].Add(-1)
		a.served[lane].Add(1)
		sem.Release(n)
	}, nil
}

// AdmissionStats is a snapshot of the admission counters.
type AdmissionStats struct {
	ActiveFast    int64 `json:"active_fast"`
	QueuedFast    int64 `json:"queued_fast"`
	ServedFast    int64 `json:"served_fast"`
	ActiveRollout int64 `json:"active_rollout"`
	QueuedRollout int64 `json:"queued_rollout"`
	ServedRollout int64 `json:"served_rollout"`
	RolloutsHeld  int64 `json:"rollouts_held"`
	MaxFast       int   `json:"max_fast"`
	MaxRollouts   int64 `json:"max_rollouts"`
}

// Stats returns the current counters.
func (a *Admission) Stats() AdmissionStats {
	return AdmissionStats{
		ActiveFast:    a.active[LaneFast].Load(),
		QueuedFast:    a.queued[LaneFast].Load(),
		ServedFast:    a.served[LaneFast].Load(),
		ActiveRollout: a.active[LaneRollout].Load(),
		QueuedRollout: a.queued[LaneRollout].Load(),
		ServedRollout: a.served[LaneRollout].Load(),
		RolloutsHeld:  a.inFlight.Load(),
		MaxFast:       a.cfg.MaxFast,
		MaxRollouts:   a.cfg.MaxRollouts,
	}
}
