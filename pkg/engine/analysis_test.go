package engine

import (
	"context"
	"errors"
	"testing"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultEngineOptions())
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return e
}

func TestAnalyzeStartingPosition43(t *testing.T) {
	e := newTestEngine(t)
	req := DefaultAnalysisRequest(StartingPosition(), SideA, Dice{4, 3})
	req.NumSimulations = 6
	req.MaxTopMoves = 3
	req.MaxMoves = 300
	req.Debug = true

	res, err := e.Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.NoLegalMoves || res.Best == nil {
		t.Fatal("expected a recommendation")
	}
	t.Logf("Best: %s hybrid=%.3f confidence=%.3f (%d legal, %d distinct) in %v",
		res.Best.Notation, res.Best.Hybrid, res.Confidence, res.NumLegal, res.NumDistinct, res.Elapsed)

	if res.NumDistinct >= res.NumLegal {
		t.Errorf("distinct %d should be below legal %d", res.NumDistinct, res.NumLegal)
	}
	if len(res.Candidates) != res.NumDistinct {
		t.Fatalf("debug mode returned %d candidates, want %d", len(res.Candidates), res.NumDistinct)
	}

	var found *ScoredCandidate
	promoted := 0
	for i := range res.Candidates {
		c := &res.Candidates[i]
		if c.Notation == "13/6" {
			found = c
		}
		if c.Shortlisted {
			promoted++
		}
		if i > 0 && c.Hybrid > res.Candidates[i-1].Hybrid {
			t.Errorf("candidates not ranked at %d", i)
		}
	}
	if found == nil {
		t.Fatal("13/6 not among candidates")
	}
	// 13/10/6 and 13/9/6 are one decision
	if len(found.Alternatives) == 0 {
		t.Error("13/6 should carry its transposition as an alternative")
	}
	if promoted != 3 {
		t.Errorf("%d candidates rolled out, want 3", promoted)
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	e := newTestEngine(t)
	req := DefaultAnalysisRequest(StartingPosition(), SideB, Dice{6, 2})
	req.NumSimulations = 8
	req.MaxTopMoves = 2
	req.MaxMoves = 300
	req.Seed = 99

	a, err := e.Analyze(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	b, err := e.Analyze(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if a.Best.Key != b.Best.Key || a.Best.Hybrid != b.Best.Hybrid || a.Confidence != b.Confidence {
		t.Errorf("runs differ: %s %.4f vs %s %.4f", a.Best.Notation, a.Best.Hybrid, b.Best.Notation, b.Best.Hybrid)
	}
	if a.Candidates != nil {
		t.Error("candidates returned without debug")
	}
}

func TestAnalyzeSharedCache(t *testing.T) {
	opts := DefaultEngineOptions()
	opts.CacheSize = 4096
	cached, err := NewEngine(opts)
	if err != nil {
		t.Fatal(err)
	}
	opts.CacheSize = -1
	uncached, err := NewEngine(opts)
	if err != nil {
		t.Fatal(err)
	}
	if uncached.Cache() != nil {
		t.Error("negative cache size should disable the cache")
	}
	cache := cached.Cache()
	if cache == nil {
		t.Fatal("engine has no factor cache")
	}

	req := DefaultAnalysisRequest(StartingPosition(), SideA, Dice{5, 2})
	req.NumSimulations = 4
	req.MaxTopMoves = 2
	req.MaxMoves = 200

	first, err := cached.Analyze(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	lookups, hits, _ := cache.Stats()
	if lookups == 0 {
		t.Fatal("greedy rollouts did not use the engine cache")
	}

	second, err := cached.Analyze(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	lookups2, hits2, _ := cache.Stats()
	t.Logf("lookups %d -> %d, hits %d -> %d", lookups, lookups2, hits, hits2)
	if hits2 <= hits {
		t.Error("second analysis found nothing cached by the first")
	}

	plain, err := uncached.Analyze(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range []*AnalysisResult{second, plain} {
		if r.Best.Key != first.Best.Key || r.Best.Hybrid != first.Best.Hybrid {
			t.Errorf("cache changed the result: %s %.4f vs %s %.4f",
				r.Best.Notation, r.Best.Hybrid, first.Best.Notation, first.Best.Hybrid)
		}
	}
}

func TestAnalyzeTopMovesAboveDistinct(t *testing.T) {
	e := newTestEngine(t)
	// Bear-off with few distinct results
	var board Board
	board[2] = Point{Count: 2, Owner: SideB}
	board[4] = Point{Count: 1, Owner: SideB}
	board[20] = Point{Count: 15, Owner: SideA}

	req := DefaultAnalysisRequest(board, SideB, Dice{2, 1})
	req.MaxTopMoves = 50
	req.NumSimulations = 4
	req.Debug = true

	res, err := e.Analyze(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range res.Candidates {
		if !c.Shortlisted {
			t.Errorf("%s not rolled out", c.Notation)
		}
	}
}

func TestAnalyzeZeroSimulations(t *testing.T) {
	e := newTestEngine(t)
	req := DefaultAnalysisRequest(StartingPosition(), SideB, Dice{3, 1})
	req.NumSimulations = 0
	req.Debug = true

	res, err := e.Analyze(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range res.Candidates {
		if c.HasMC {
			t.Errorf("%s has a Monte Carlo score without simulations", c.Notation)
		}
		if want := req.HeuristicWeight * c.Normalized; c.Hybrid != want {
			t.Errorf("%s hybrid %v, want heuristic only %v", c.Notation, c.Hybrid, want)
		}
	}
	if res.Best.Notation != "8/5 6/5" {
		t.Logf("heuristic prefers %s for 3-1", res.Best.Notation)
	}
}

func TestAnalyzeNoLegalMoves(t *testing.T) {
	e := newTestEngine(t)
	board := mustBoard(t, "-c----N------------bbbbbbA")
	res, err := e.Analyze(context.Background(), DefaultAnalysisRequest(board, SideB, Dice{4, 2}))
	if err != nil {
		t.Fatalf("NoLegalMoves is not an error: %v", err)
	}
	if !res.NoLegalMoves || res.Best != nil {
		t.Errorf("expected no legal moves, got %+v", res)
	}
}

func TestAnalyzeBudgetExceeded(t *testing.T) {
	e := newTestEngine(t)
	req := DefaultAnalysisRequest(StartingPosition(), SideB, Dice{3, 1})
	req.NumSimulations = 100000
	req.MaxTopMoves = 100
	req.MaxMoves = 0 // default ply cap counts towards the budget

	_, err := e.Analyze(context.Background(), req)
	if !errors.Is(err, ErrSimulationBudgetExceeded) {
		t.Errorf("err = %v, want ErrSimulationBudgetExceeded", err)
	}
}

func TestAnalyzeInvalidRequests(t *testing.T) {
	e := newTestEngine(t)
	tests := []struct {
		name   string
		modify func(*AnalysisRequest)
		want   error
	}{
		{"dice", func(r *AnalysisRequest) { r.Dice = Dice{7, 1} }, ErrInvalidDice},
		{"side", func(r *AnalysisRequest) { r.Side = None }, ErrInvalidOptions},
		{"negative top moves", func(r *AnalysisRequest) { r.MaxTopMoves = -1 }, ErrInvalidOptions},
		{"negative weight", func(r *AnalysisRequest) { r.MCWeight = -0.5 }, ErrInvalidOptions},
		{"policy", func(r *AnalysisRequest) { r.Policy = "expectimax" }, ErrInvalidOptions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := DefaultAnalysisRequest(StartingPosition(), SideB, Dice{3, 1})
			tt.modify(&req)
			if _, err := e.Analyze(context.Background(), req); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestAnalyzeCancelled(t *testing.T) {
	e := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := e.Analyze(ctx, DefaultAnalysisRequest(StartingPosition(), SideB, Dice{5, 5}))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if res != nil {
		t.Error("partial result returned")
	}
}
