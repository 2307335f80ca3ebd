package engine

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
	"lukechampine.com/frand"
)

// Policy selects how rollout players choose their moves.
type Policy string

const (
	// PolicyGreedy plays the move with the best heuristic score.
	PolicyGreedy Policy = "greedy"
	// PolicyRandom plays a uniformly random legal move.
	PolicyRandom Policy = "random"
)

// ParsePolicy parses a policy name. An empty name selects greedy play.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyGreedy:
		return PolicyGreedy, nil
	case PolicyRandom:
		return PolicyRandom, nil
	}
	return "", fmt.Errorf("%w: unknown policy %q", ErrInvalidOptions, s)
}

// RandSource is the dice source of a single rollout.
type RandSource interface {
	Intn(n int) int
}

// SourceFactory returns the dice source for one rollout of one candidate.
// Every (candidate, trial) pair gets its own source, so results do not
// depend on how rollouts are scheduled.
type SourceFactory func(candidate, trial int) RandSource

// SeededSource returns a factory deriving a ChaCha8 stream per rollout
// from seed.
func SeededSource(seed int64) SourceFactory {
	return func(candidate, trial int) RandSource {
		var key [32]byte
		binary.LittleEndian.PutUint64(key[0:], uint64(seed))
		binary.LittleEndian.PutUint64(key[8:], uint64(candidate))
		binary.LittleEndian.PutUint64(key[16:], uint64(trial))
		copy(key[24:], "bgrollout")
		return frand.NewCustom(key[:], 256, 8)
	}
}

// SimOptions controls the Monte Carlo simulator.
type SimOptions struct {
	Simulations int           // Rollouts per candidate
	MaxPlies    int           // Ply cap per rollout
	Policy      Policy        // Move selection of both players
	Weights     Weights       // Evaluator used by the greedy policy
	Seed        int64         // Seed of the default source
	Workers     int           // Parallel workers (0 = GOMAXPROCS)
	Source      SourceFactory // Overrides the seeded source when set
	CacheSize   int           // Factor cache entries (0 = default, negative = disabled)
	Cache       *FactorCache  // Shared cache used instead of allocating one
}

// DefaultSimOptions returns sensible defaults.
func DefaultSimOptions() SimOptions {
	return SimOptions{
		Simulations: 100,
		MaxPlies:    500,
		Policy:      PolicyGreedy,
		Weights:     DefaultWeights(),
		Seed:        1,
		Workers:     0,
	}
}

// RolloutStats summarises the rollouts of one candidate, seen from the
// side that played the candidate move.
//
// Rollouts reaching the ply cap are counted in Capped and excluded from
// every rate. A candidate without decided rollouts is not Defined.
type RolloutStats struct {
	Trials  int
	Decided int
	Capped  int

	Wins            int
	GammonsWon      int
	BackgammonsWon  int
	Losses          int
	GammonsLost     int
	BackgammonsLost int

	WinRate float64 // Fraction of decided rollouts won (the mcScore)
	StdDev  float64 // Standard deviation of the win indicator
	CI      float64 // 95% confidence interval of WinRate
	Points  float64 // Mean points per decided rollout, gammons count 2, backgammons 3
	Defined bool
}

// Simulator runs Monte Carlo rollouts.
type Simulator struct {
	opts  SimOptions
	cache *FactorCache // nil unless greedy play with caching
}

// NewSimulator validates opts and returns a simulator.
func NewSimulator(opts SimOptions) (*Simulator, error) {
	if opts.Simulations < 0 {
		return nil, fmt.Errorf("%w: negative simulation count %d", ErrInvalidOptions, opts.Simulations)
	}
	if opts.Simulations > 0 && opts.MaxPlies <= 0 {
		return nil, fmt.Errorf("%w: ply cap must be positive, got %d", ErrInvalidOptions, opts.MaxPlies)
	}
	if opts.Policy == "" {
		opts.Policy = PolicyGreedy
	}
	if _, err := ParsePolicy(string(opts.Policy)); err != nil {
		return nil, err
	}
	if err := opts.Weights.Validate(); err != nil {
		return nil, err
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Source == nil {
		opts.Source = SeededSource(opts.Seed)
	}
	s := &Simulator{opts: opts}
	switch {
	case opts.Policy != PolicyGreedy || opts.CacheSize < 0:
		// uncached
	case opts.Cache != nil:
		s.cache = opts.Cache
	default:
		size := opts.CacheSize
		if size == 0 {
			size = DefaultCacheSize
		}
		s.cache = NewFactorCache(uint32(size))
	}
	return s, nil
}

// Cache returns the factor cache of the greedy policy, or nil.
func (s *Simulator) Cache() *FactorCache {
	return s.cache
}

// Options returns the effective options.
func (s *Simulator) Options() SimOptions {
	return s.opts
}

// trialsPerTask is the number of rollouts one worker task plays.
const trialsPerTask = 8

// Simulate rolls out every board, where mover has just moved and the
// opponent is on roll. Stats are returned in the order of boards.
// On cancellation the context error is returned and no stats.
func (s *Simulator) Simulate(ctx context.Context, mover Side, boards []Board) ([]RolloutStats, error) {
	logger := zerolog.Ctx(ctx)
	n := s.opts.Simulations

	stats := make([]RolloutStats, len(boards))
	if n == 0 || len(boards) == 0 {
		return stats, nil
	}

	tstart := time.Now()
	// outcomes[c][t] is the signed win kind of trial t of candidate c,
	// 0 for a capped rollout.
	outcomes := make([][]int8, len(boards))
	for c := range outcomes {
		outcomes[c] = make([]int8, n)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for c := range boards {
		for start := 0; start < n; start += trialsPerTask {
			end := min(start+trialsPerTask, n)
			g.Go(func() error {
				for t := start; t < end; t++ {
					if err := gctx.Err(); err != nil {
						return err
					}
					outcomes[c][t] = s.playOut(boards[c], mover, s.opts.Source(c, t))
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for c := range boards {
		stats[c] = aggregate(outcomes[c])
	}
	ev := logger.Debug().Int("candidates", len(boards)).Int("simulations", n).
		Dur("elapsed", time.Since(tstart))
	if s.cache != nil {
		ev = ev.Float64("cache-hit-rate", s.cache.HitRate())
	}
	ev.Msg("rollouts-done")
	return stats, nil
}

// RolloutBoard is a convenience wrapper simulating a single board.
func (s *Simulator) RolloutBoard(ctx context.Context, mover Side, b Board) (RolloutStats, error) {
	stats, err := s.Simulate(ctx, mover, []Board{b})
	if err != nil {
		return RolloutStats{}, err
	}
	return stats[0], nil
}

// playOut plays one game from b with mover's opponent on roll.
// It returns +kind if mover wins, -kind if mover loses, 0 at the ply cap.
// A candidate that bore off the last checker is scored as it stands.
func (s *Simulator) playOut(b Board, mover Side, rng RandSource) int8 {
	if o := outcome(b, mover); o != 0 {
		return o
	}
	side := mover.Opponent()
	for ply := 0; ply < s.opts.MaxPlies; ply++ {
		dice := Dice{rng.Intn(6) + 1, rng.Intn(6) + 1}
		ml := GenerateMoves(b, side, dice)
		if !ml.NoLegalMoves() {
			b = s.choose(ml.Sequences, rng).Result
		}
		if o := outcome(b, mover); o != 0 {
			return o
		}
		side = side.Opponent()
	}
	return 0
}

// outcome returns the signed win kind of a finished game seen from
// mover, or 0 while the game goes on.
func outcome(b Board, mover Side) int8 {
	w := b.Winner()
	if w == None {
		return 0
	}
	kind := int8(b.WinKind(w))
	if w == mover {
		return kind
	}
	return -kind
}

// choose applies the rollout policy.
func (s *Simulator) choose(seqs []MoveSequence, rng RandSource) MoveSequence {
	if s.opts.Policy == PolicyRandom || len(seqs) == 1 {
		return seqs[rng.Intn(len(seqs))]
	}
	best, bestScore := 0, math.Inf(-1)
	seen := make(map[Board]struct{}, len(seqs))
	for i, seq := range seqs {
		if _, dup := seen[seq.Result]; dup {
			continue
		}
		seen[seq.Result] = struct{}{}
		if score := s.score(seq); score > bestScore {
			best, bestScore = i, score
		}
	}
	return seqs[best]
}

func (s *Simulator) score(seq MoveSequence) float64 {
	if s.cache == nil {
		score, _ := s.opts.Weights.Evaluate(seq)
		return score
	}
	return s.opts.Weights.Score(s.cache.Factors(seq.Result, seq.Side), seq.Hits)
}

// aggregate reduces the outcomes of one candidate, in trial order.
func aggregate(outcomes []int8) RolloutStats {
	rs := RolloutStats{Trials: len(outcomes)}
	wins := make([]float64, 0, len(outcomes))
	points := 0.0
	for _, o := range outcomes {
		switch {
		case o == 0:
			rs.Capped++
			continue
		case o > 0:
			rs.Wins++
			wins = append(wins, 1)
			switch o {
			case 2:
				rs.GammonsWon++
			case 3:
				rs.BackgammonsWon++
			}
		default:
			rs.Losses++
			wins = append(wins, 0)
			switch o {
			case -2:
				rs.GammonsLost++
			case -3:
				rs.BackgammonsLost++
			}
		}
		points += float64(o)
	}

	rs.Decided = len(wins)
	if rs.Decided == 0 {
		return rs
	}
	rs.Defined = true
	if rs.Decided > 1 {
		rs.WinRate, rs.StdDev = stat.MeanStdDev(wins, nil)
		// 95% confidence interval = 1.96 * stdDev / sqrt(n)
		rs.CI = 1.96 * rs.StdDev / math.Sqrt(float64(rs.Decided))
	} else {
		rs.WinRate = stat.Mean(wins, nil)
	}
	rs.Points = points / float64(rs.Decided)
	return rs
}
