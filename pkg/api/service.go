package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/yourusername/bgadvisor/internal/positionid"
	"github.com/yourusername/bgadvisor/pkg/engine"
)

// Error codes
const (
	CodeMalformedPosition = "MALFORMED_POSITION"
	CodeInvalidDice       = "INVALID_DICE"
	CodeBudgetExceeded    = "BUDGET_EXCEEDED"
	CodeInvalidOptions    = "INVALID_OPTIONS"
	CodeCancelled         = "CANCELLED"
	CodeServerBusy        = "SERVER_BUSY"
	CodeInternal          = "INTERNAL"
)

// ErrServerBusy is returned when admission does not come in time.
var ErrServerBusy = errors.New("server busy")

// ErrorCode maps an error to its response code.
func ErrorCode(err error) string {
	var mpe *positionid.MalformedPositionError
	switch {
	case errors.As(err, &mpe):
		return CodeMalformedPosition
	case errors.Is(err, engine.ErrInvalidDice):
		return CodeInvalidDice
	case errors.Is(err, engine.ErrSimulationBudgetExceeded):
		return CodeBudgetExceeded
	case errors.Is(err, engine.ErrInvalidOptions):
		return CodeInvalidOptions
	case errors.Is(err, ErrServerBusy):
		return CodeServerBusy
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CodeCancelled
	}
	return CodeInternal
}

// NewErrorResponse builds the error body for err.
func NewErrorResponse(err error) ErrorResponse {
	return ErrorResponse{Error: err.Error(), Code: ErrorCode(err)}
}

// Defaults are applied to request fields the caller leaves out.
type Defaults struct {
	MaxTopMoves     int
	NumSimulations  int
	HeuristicWeight float64
	MCWeight        float64
	MaxMoves        int
	Seed            int64
	Policy          engine.Policy
	Timeout         time.Duration // Per request deadline (0 = none)
	QueueTimeout    time.Duration // Wait for admission (0 = wait for the context)
}

// DefaultDefaults returns the defaults of the analysis request.
func DefaultDefaults() Defaults {
	req := engine.DefaultAnalysisRequest(engine.Board{}, engine.SideA, engine.Dice{1, 1})
	return Defaults{
		MaxTopMoves:     req.MaxTopMoves,
		NumSimulations:  req.NumSimulations,
		HeuristicWeight: req.HeuristicWeight,
		MCWeight:        req.MCWeight,
		MaxMoves:        req.MaxMoves,
		Seed:            req.Seed,
		Policy:          req.Policy,
	}
}

// Service answers analysis requests.
type Service struct {
	engine    *engine.Engine
	admission *Admission
	defaults  Defaults
}

// NewService creates a service. A nil admission uses DefaultAdmissionConfig.
func NewService(e *engine.Engine, adm *Admission, defaults Defaults) *Service {
	if adm == nil {
		adm = NewAdmission(DefaultAdmissionConfig())
	}
	return &Service{engine: e, admission: adm, defaults: defaults}
}

// Admission returns the admission controller.
func (s *Service) Admission() *Admission {
	return s.admission
}

// BuildRequest converts an API request into an engine request.
func (s *Service) BuildRequest(req *AnalyzeRequest) (engine.AnalysisRequest, error) {
	pos, err := positionid.Parse(req.Position)
	if err != nil {
		return engine.AnalysisRequest{}, err
	}

	side := engine.None
	switch pos.Turn {
	case 1:
		side = engine.SideB
	case -1:
		side = engine.SideA
	}
	if req.SideToMove != "" {
		side, err = engine.ParseSide(req.SideToMove)
		if err != nil {
			return engine.AnalysisRequest{}, fmt.Errorf("%w: %v", engine.ErrInvalidOptions, err)
		}
	}

	d := pos.Dice
	if req.Dice != "" {
		d, err = positionid.ParseDice(req.Dice)
		if err != nil {
			return engine.AnalysisRequest{}, fmt.Errorf("%w: %v", engine.ErrInvalidDice, err)
		}
	}
	dice, err := engine.NewDice(d[0], d[1])
	if err != nil {
		return engine.AnalysisRequest{}, err
	}

	policy := s.defaults.Policy
	if req.Policy != "" {
		policy, err = engine.ParsePolicy(req.Policy)
		if err != nil {
			return engine.AnalysisRequest{}, err
		}
	}

	maxMoves := req.MaxMoves
	if maxMoves == 0 {
		maxMoves = s.defaults.MaxMoves
	}

	return engine.AnalysisRequest{
		Board:           engine.FromPositionID(pos.Board),
		Side:            side,
		Dice:            dice,
		MaxTopMoves:     lo.FromPtrOr(req.MaxTopMoves, s.defaults.MaxTopMoves),
		NumSimulations:  lo.FromPtrOr(req.NumSimulations, s.defaults.NumSimulations),
		HeuristicWeight: lo.FromPtrOr(req.HeuristicWeight, s.defaults.HeuristicWeight),
		MCWeight:        lo.FromPtrOr(req.MCWeight, s.defaults.MCWeight),
		MaxMoves:        maxMoves,
		Policy:          policy,
		Seed:            lo.FromPtrOr(req.Seed, s.defaults.Seed),
		Timeout:         s.defaults.Timeout,
		Debug:           req.Debug,
	}, nil
}

// Analyze parses req, waits for admission and runs the analysis.
// Heuristic-only requests take a fast slot, requests with rollouts hold
// their rollout count from the shared budget while they run.
func (s *Service) Analyze(ctx context.Context, req *AnalyzeRequest) (*AnalyzeResponse, error) {
	logger := zerolog.Ctx(ctx)

	ereq, err := s.BuildRequest(req)
	if err != nil {
		logger.Debug().Err(err).Str("position", req.Position).Msg("bad-request")
		return nil, err
	}

	start := time.Now()
	release, err := s.acquire(ctx, ereq)
	if err != nil {
		return nil, err
	}
	defer release()
	queued := time.Since(start)

	lane, cost := s.admission.Cost(ereq)
	st := s.admission.Stats()
	logger.Debug().Stringer("lane", lane).Int64("cost", cost).Dur("queued", queued).
		Int64("rollouts-held", st.RolloutsHeld).Int64("waiting", st.QueuedFast+st.QueuedRollout).
		Msg("admitted")

	res, err := s.engine.Analyze(ctx, ereq)
	if err != nil {
		return nil, err
	}
	resp := NewAnalyzeResponse(ereq, res)
	resp.QueuedMS = queued.Milliseconds()
	return resp, nil
}

func (s *Service) acquire(ctx context.Context, req engine.AnalysisRequest) (func(), error) {
	wait := ctx
	if s.defaults.QueueTimeout > 0 {
		var cancel context.CancelFunc
		wait, cancel = context.WithTimeout(ctx, s.defaults.QueueTimeout)
		defer cancel()
	}

	release, err := s.admission.Acquire(wait, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrServerBusy, err)
	}
	return release, nil
}

// NewAnalyzeResponse shapes an engine result.
func NewAnalyzeResponse(req engine.AnalysisRequest, res *engine.AnalysisResult) *AnalyzeResponse {
	resp := &AnalyzeResponse{
		Status:      StatusOK,
		Side:        req.Side.String(),
		Dice:        req.Dice.String(),
		NumLegal:    res.NumLegal,
		NumDistinct: res.NumDistinct,
		ElapsedMS:   res.Elapsed.Milliseconds(),
	}
	if res.NoLegalMoves {
		resp.Status = StatusNoLegalMoves
		return resp
	}

	resp.Move = res.Best.Notation
	resp.HybridScore = res.Best.Hybrid
	resp.Confidence = res.Confidence
	resp.Candidates = lo.Map(res.Candidates, func(c engine.ScoredCandidate, _ int) CandidateInfo {
		return newCandidateInfo(c)
	})
	return resp
}

func newCandidateInfo(c engine.ScoredCandidate) CandidateInfo {
	info := CandidateInfo{
		Notation:  c.Notation,
		Heuristic: c.Heuristic,
		Hybrid:    c.Hybrid,
		PipCount:  c.PipCount,
		Key:       c.Key.String(),
	}
	// Transpositions often share the representative's notation
	alts := lo.Uniq(lo.Map(c.Alternatives, func(seq engine.MoveSequence, _ int) string {
		return engine.FormatMove(seq)
	}))
	if alts = lo.Without(alts, c.Notation); len(alts) > 0 {
		info.Alternatives = alts
	}
	if mc, ok := c.MCScore(); ok {
		info.MC = lo.ToPtr(mc)
	}
	if c.Shortlisted {
		info.Rollout = &RolloutInfo{
			Trials:         c.MC.Trials,
			Decided:        c.MC.Decided,
			Capped:         c.MC.Capped,
			Wins:           c.MC.Wins,
			GammonsWon:     c.MC.GammonsWon,
			BackgammonsWon: c.MC.BackgammonsWon,
			Losses:         c.MC.Losses,
			GammonsLost:    c.MC.GammonsLost,
			CI:             c.MC.CI,
			Points:         c.MC.Points,
		}
	}
	return info
}
