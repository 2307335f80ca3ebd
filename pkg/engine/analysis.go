package engine

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// EngineOptions configures the engine
type EngineOptions struct {
	Weights             Weights // Heuristic evaluator weights
	MaxSimulationBudget int64   // Ceiling of simulations x top moves x ply cap (0 = unlimited)
	Workers             int     // Parallel workers (0 = GOMAXPROCS)
	CacheSize           int     // Factor cache entries shared by all analyses (0 = default, negative = disabled)
}

// DefaultEngineOptions returns sensible defaults
func DefaultEngineOptions() EngineOptions {
	return EngineOptions{
		Weights:             DefaultWeights(),
		MaxSimulationBudget: 50_000_000,
		Workers:             0,
	}
}

// Engine analyzes checker plays and is safe for concurrent use.
// Greedy rollouts of every analysis share one factor cache; board factors
// do not depend on the weights, so entries stay valid across requests.
type Engine struct {
	opts  EngineOptions
	cache *FactorCache
}

// NewEngine creates a new engine with the given options
func NewEngine(opts EngineOptions) (*Engine, error) {
	if err := opts.Weights.Validate(); err != nil {
		return nil, err
	}
	if opts.MaxSimulationBudget < 0 {
		return nil, fmt.Errorf("%w: negative simulation budget", ErrInvalidOptions)
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	e := &Engine{opts: opts}
	if opts.CacheSize >= 0 {
		size := opts.CacheSize
		if size == 0 {
			size = DefaultCacheSize
		}
		e.cache = NewFactorCache(uint32(size))
	}
	return e, nil
}

// Cache returns the shared factor cache, or nil when caching is disabled.
func (e *Engine) Cache() *FactorCache {
	return e.cache
}

// Options returns the effective engine options.
func (e *Engine) Options() EngineOptions {
	return e.opts
}

// DefaultMaxMoves is the rollout ply cap used when a request sets none.
const DefaultMaxMoves = 500

// AnalysisRequest is a single checker play question.
type AnalysisRequest struct {
	Board Board
	Side  Side // Side on roll
	Dice  Dice

	MaxTopMoves     int     // Distinct candidates promoted to rollouts
	NumSimulations  int     // Rollouts per promoted candidate
	HeuristicWeight float64 // Blend weight of the normalized heuristic score
	MCWeight        float64 // Blend weight of the rollout win rate
	MaxMoves        int     // Ply cap per rollout (0 = DefaultMaxMoves)

	Policy  Policy        // Rollout policy (empty = greedy)
	Seed    int64         // Rollout seed
	Source  SourceFactory // Overrides the seeded dice source
	Weights *Weights      // Overrides the engine weights
	Timeout time.Duration // Deadline of the whole analysis (0 = none)
	Debug   bool          // Return every candidate
}

// DefaultAnalysisRequest returns a request with default options for the
// given position and roll.
func DefaultAnalysisRequest(b Board, side Side, dice Dice) AnalysisRequest {
	return AnalysisRequest{
		Board:           b,
		Side:            side,
		Dice:            dice,
		MaxTopMoves:     5,
		NumSimulations:  100,
		HeuristicWeight: 0.5,
		MCWeight:        0.5,
		MaxMoves:        DefaultMaxMoves,
		Policy:          PolicyGreedy,
		Seed:            1,
	}
}

// AnalysisResult contains the result of move analysis
type AnalysisResult struct {
	NoLegalMoves bool
	Best         *ScoredCandidate // nil when there is no legal move
	Confidence   float64
	NumLegal     int               // Legal sequences
	NumDistinct  int               // Distinct result positions
	Candidates   []ScoredCandidate // All candidates ranked, only in debug mode
	Elapsed      time.Duration
}

// Budget returns simulations x top moves x ply cap of the request.
func (r AnalysisRequest) Budget() int64 {
	maxMoves := r.MaxMoves
	if maxMoves <= 0 {
		maxMoves = DefaultMaxMoves
	}
	return int64(r.NumSimulations) * int64(r.MaxTopMoves) * int64(maxMoves)
}

// Validate checks the request options.
func (r AnalysisRequest) Validate() error {
	if _, err := NewDice(r.Dice[0], r.Dice[1]); err != nil {
		return err
	}
	if r.Side != SideA && r.Side != SideB {
		return fmt.Errorf("%w: no side on roll", ErrInvalidOptions)
	}
	if err := r.Board.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	if r.MaxTopMoves < 0 || r.NumSimulations < 0 || r.MaxMoves < 0 {
		return fmt.Errorf("%w: negative count", ErrInvalidOptions)
	}
	for _, w := range []float64{r.HeuristicWeight, r.MCWeight} {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return fmt.Errorf("%w: blend weight %v", ErrInvalidOptions, w)
		}
	}
	if r.Weights != nil {
		if err := r.Weights.Validate(); err != nil {
			return err
		}
	}
	if _, err := ParsePolicy(string(r.Policy)); err != nil {
		return err
	}
	return nil
}

// Analyze generates all legal moves for the roll, scores the distinct
// results heuristically, rolls out the best of them and returns the
// hybrid ranking. Requests above the simulation budget are rejected
// before any work starts. On cancellation the context error is returned.
func (e *Engine) Analyze(ctx context.Context, req AnalysisRequest) (*AnalysisResult, error) {
	logger := zerolog.Ctx(ctx)
	tstart := time.Now()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.MaxMoves == 0 {
		req.MaxMoves = DefaultMaxMoves
	}
	if b := e.opts.MaxSimulationBudget; b > 0 && req.Budget() > b {
		return nil, fmt.Errorf("%w: %d > %d", ErrSimulationBudgetExceeded, req.Budget(), b)
	}
	weights := e.opts.Weights
	if req.Weights != nil {
		weights = *req.Weights
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	ml := GenerateMoves(req.Board, req.Side, req.Dice)
	if ml.NoLegalMoves() {
		logger.Debug().Str("board", req.Board.String()).Str("dice", req.Dice.String()).Msg("no-legal-moves")
		return &AnalysisResult{NoLegalMoves: true, Elapsed: time.Since(tstart)}, nil
	}

	groups := GroupByKey(ml.Sequences)
	cands, err := e.evaluate(ctx, groups, weights)
	if err != nil {
		return nil, err
	}
	logger.Debug().Int("legal", len(ml.Sequences)).Int("distinct", len(cands)).Msg("candidates-scored")

	if req.NumSimulations > 0 && req.MaxTopMoves > 0 {
		if err := e.simulate(ctx, req, weights, cands); err != nil {
			return nil, err
		}
	}

	ranked := Rank(cands, RankOptions{HeuristicWeight: req.HeuristicWeight, MCWeight: req.MCWeight})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &AnalysisResult{
		Best:        &ranked[0],
		Confidence:  Confidence(ranked),
		NumLegal:    len(ml.Sequences),
		NumDistinct: len(ranked),
	}
	if req.Debug {
		res.Candidates = ranked
	}
	res.Elapsed = time.Since(tstart)
	logger.Debug().Str("move", res.Best.Notation).Float64("hybrid", res.Best.Hybrid).
		Float64("confidence", res.Confidence).Dur("elapsed", res.Elapsed).Msg("analysis-done")
	return res, nil
}

// evaluate scores the representative of every group in parallel.
func (e *Engine) evaluate(ctx context.Context, groups []Group, w Weights) ([]ScoredCandidate, error) {
	cands := make([]ScoredCandidate, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for i, grp := range groups {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			seq := grp.Representative
			score, f := w.Evaluate(seq)
			cands[i] = ScoredCandidate{
				Index:        i,
				Sequence:     seq,
				Key:          grp.Key,
				Alternatives: grp.Alternatives,
				Factors:      f,
				Heuristic:    score,
				PipCount:     seq.Result.PipCount(seq.Side),
				Notation:     FormatMove(seq),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return cands, nil
}

// simulate rolls out the shortlist and stores the stats in cands.
func (e *Engine) simulate(ctx context.Context, req AnalysisRequest, w Weights, cands []ScoredCandidate) error {
	short := Shortlist(cands, req.MaxTopMoves)
	sim, err := NewSimulator(SimOptions{
		Simulations: req.NumSimulations,
		MaxPlies:    req.MaxMoves,
		Policy:      req.Policy,
		Weights:     w,
		Seed:        req.Seed,
		Workers:     e.opts.Workers,
		Source:      req.Source,
		Cache:       e.cache,
		CacheSize:   e.opts.CacheSize,
	})
	if err != nil {
		return err
	}

	boards := make([]Board, len(short))
	for i, idx := range short {
		boards[i] = cands[idx].Sequence.Result
	}
	stats, err := sim.Simulate(ctx, req.Side, boards)
	if err != nil {
		return err
	}
	for i, idx := range short {
		c := &cands[idx]
		c.Shortlisted = true
		c.MC = stats[i]
		c.HasMC = stats[i].Defined
	}
	return nil
}
