// bgadvisor - backgammon checker play advisor
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/muesli/termenv"
	"github.com/rs/zerolog"

	"github.com/yourusername/bgadvisor/internal/config"
	"github.com/yourusername/bgadvisor/internal/positionid"
	"github.com/yourusername/bgadvisor/pkg/api"
	"github.com/yourusername/bgadvisor/pkg/engine"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "analyze":
		cmdAnalyze(args)
	case "moves":
		cmdMoves(args)
	case "eval":
		cmdEval(args)
	case "rollout":
		cmdRollout(args)
	case "config":
		cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`bgadvisor - Backgammon Checker Play Advisor

Usage: bgadvisor <command> [options]

Commands:
  analyze   Recommend the best play for a dice roll
  moves     List every legal play for a dice roll
  eval      Show the heuristic factors of a position
  rollout   Monte Carlo rollout of a position
  config    Print the effective configuration as YAML

Use "bgadvisor <command> -h" for command-specific help.

Position Format:
  Positions use the extended position ID (XPID): a 26 character board
  followed by optional colon separated match fields.
  Example: "-b----E-C---eE---c-e----B-:0:0:1:31:0:0:0:0:10"
  Slot 0 is side A's bar, slots 1-24 the points, slot 25 side B's bar.
  Lowercase letters are side A checkers, uppercase side B (a=1, b=2, ...).
  The turn field is 1 when side B is on roll and -1 for side A.`)
}

// commonFlags are shared by every sub-command.
type commonFlags struct {
	pos     *string
	side    *string
	dice    *string
	config  *string
	verbose *bool
}

func addCommonFlags(fs *flag.FlagSet) *commonFlags {
	c := &commonFlags{
		pos:     fs.String("p", positionid.StartingBoard, "Position (XPID)"),
		side:    fs.String("side", "", "Side on roll: a or b (default from the position)"),
		dice:    fs.String("d", "", "Dice, e.g. 31, 3-1 or 3,1 (default from the position)"),
		config:  fs.String("config", "", "YAML configuration file"),
		verbose: fs.Bool("v", false, "Debug logging"),
	}
	return c
}

func (c *commonFlags) loadConfig() config.Config {
	if *c.config == "" {
		return config.Default()
	}
	cfg, err := config.Load(*c.config)
	if err != nil {
		fatalf("Error: %v", err)
	}
	return cfg
}

func (c *commonFlags) context() context.Context {
	level := zerolog.InfoLevel
	if *c.verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
	return logger.WithContext(context.Background())
}

// position parses the position and applies the side and dice overrides.
func (c *commonFlags) position() (engine.Board, engine.Side, [2]int) {
	pos, err := positionid.Parse(*c.pos)
	if err != nil {
		fatalf("Error: %v", err)
	}

	side := engine.None
	switch pos.Turn {
	case 1:
		side = engine.SideB
	case -1:
		side = engine.SideA
	}
	if *c.side != "" {
		if side, err = engine.ParseSide(*c.side); err != nil {
			fatalf("Error: %v", err)
		}
	}

	dice := pos.Dice
	if *c.dice != "" {
		if dice, err = parseDice(*c.dice); err != nil {
			fatalf("Error: %v", err)
		}
	}
	return engine.FromPositionID(pos.Board), side, dice
}

func parseDice(diceStr string) ([2]int, error) {
	diceStr = strings.TrimSpace(diceStr)
	parts := strings.FieldsFunc(diceStr, func(r rune) bool { return r == ',' || r == '-' })
	if len(parts) == 1 && len(diceStr) == 2 {
		parts = []string{diceStr[:1], diceStr[1:]}
	}
	if len(parts) != 2 {
		return [2]int{}, fmt.Errorf("dice should be in format '31', '3,1' or '3-1'")
	}

	d1, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	d2, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil || d1 < 1 || d1 > 6 || d2 < 1 || d2 > 6 {
		return [2]int{}, fmt.Errorf("dice values must be 1-6")
	}
	return [2]int{d1, d2}, nil
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func requireSide(side engine.Side) {
	if side == engine.None {
		fatalf("Error: side on roll unknown, use -side a|b")
	}
}

func cmdAnalyze(args []string) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	cf := addCommonFlags(fs)
	top := fs.Int("top", -1, "Candidates promoted to rollouts (default from config)")
	sims := fs.Int("sims", -1, "Rollouts per candidate, 0 for heuristic only (default from config)")
	hw := fs.Float64("hw", -1, "Heuristic weight (default from config)")
	mw := fs.Float64("mw", -1, "Monte Carlo weight (default from config)")
	maxMoves := fs.Int("max-moves", 0, "Ply cap per rollout (default from config)")
	seed := fs.Int64("seed", 0, "Rollout seed (default from config)")
	policy := fs.String("policy", "", "Rollout policy: greedy or random")
	debug := fs.Bool("debug", false, "Show every candidate")
	jsonOut := fs.Bool("json", false, "Print the JSON response")
	fs.Parse(args)

	cfg := cf.loadConfig()
	ctx := cf.context()
	_, side, dice := cf.position()
	requireSide(side)

	req := &api.AnalyzeRequest{
		Position:   *cf.pos,
		SideToMove: strings.ToLower(side.String()),
		Dice:       fmt.Sprintf("%d%d", dice[0], dice[1]),
		MaxMoves:   *maxMoves,
		Policy:     *policy,
		Debug:      *debug,
	}
	if *top >= 0 {
		req.MaxTopMoves = top
	}
	if *sims >= 0 {
		req.NumSimulations = sims
	}
	if *hw >= 0 {
		req.HeuristicWeight = hw
	}
	if *mw >= 0 {
		req.MCWeight = mw
	}
	if *seed != 0 {
		req.Seed = seed
	}

	e, err := engine.NewEngine(cfg.EngineOptions())
	if err != nil {
		fatalf("Error: failed to create engine: %v", err)
	}
	svc := api.NewService(e, api.NewAdmission(cfg.Admission), cfg.Defaults())

	resp, err := svc.Analyze(ctx, req)
	if err != nil {
		if *jsonOut {
			printJSON(api.NewErrorResponse(err))
			os.Exit(1)
		}
		fatalf("Error [%s]: %v", api.ErrorCode(err), err)
	}

	if *jsonOut {
		printJSON(resp)
		return
	}
	printAnalysis(resp)
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fatalf("Error: %v", err)
	}
}

func printAnalysis(resp *api.AnalyzeResponse) {
	out := termenv.NewOutput(os.Stdout)
	fmt.Printf("Side %s to play %s (%d legal plays, %d distinct)\n",
		resp.Side, resp.Dice, resp.NumLegal, resp.NumDistinct)
	if resp.Status == api.StatusNoLegalMoves {
		fmt.Println(out.String("No legal moves").Foreground(out.Color("3")))
		return
	}

	fmt.Printf("Best: %s  hybrid %.4f  confidence %.4f  (%dms)\n",
		out.String(resp.Move).Bold().Foreground(out.Color("2")),
		resp.HybridScore, resp.Confidence, resp.ElapsedMS)

	if len(resp.Candidates) == 0 {
		return
	}
	fmt.Println()
	fmt.Printf("%-3s %-24s %9s %7s %8s %5s\n", "#", "Move", "Heuristic", "MC", "Hybrid", "Pips")
	for i, c := range resp.Candidates {
		mc := "-"
		if c.MC != nil {
			mc = fmt.Sprintf("%.3f", *c.MC)
		}
		move := c.Notation
		if i == 0 {
			move = out.String(fmt.Sprintf("%-24s", move)).Bold().String()
		} else {
			move = fmt.Sprintf("%-24s", move)
		}
		fmt.Printf("%-3d %s %9.3f %7s %8.4f %5d\n", i+1, move, c.Heuristic, mc, c.Hybrid, c.PipCount)
		if len(c.Alternatives) > 0 {
			fmt.Printf("    %s\n", out.String("also: "+strings.Join(c.Alternatives, ", ")).Faint())
		}
	}
}

func cmdMoves(args []string) {
	fs := flag.NewFlagSet("moves", flag.ExitOnError)
	cf := addCommonFlags(fs)
	keys := fs.Bool("keys", false, "Show position keys")
	fs.Parse(args)

	board, side, d := cf.position()
	requireSide(side)
	dice, err := engine.NewDice(d[0], d[1])
	if err != nil {
		fatalf("Error: %v", err)
	}

	ml := engine.GenerateMoves(board, side, dice)
	if ml.NoLegalMoves() {
		fmt.Println("No legal moves")
		return
	}

	groups := engine.GroupByKey(ml.Sequences)
	fmt.Printf("%d legal plays, %d distinct positions\n", len(ml.Sequences), len(groups))
	for i, g := range groups {
		line := fmt.Sprintf("%3d. %-24s", i+1, engine.FormatMove(g.Representative))
		if *keys {
			line += " " + g.Key.String()
		}
		if n := len(g.Alternatives); n > 0 {
			line += fmt.Sprintf(" (+%d)", n)
		}
		fmt.Println(line)
	}
}

func cmdEval(args []string) {
	fs := flag.NewFlagSet("eval", flag.ExitOnError)
	cf := addCommonFlags(fs)
	fs.Parse(args)

	cfg := cf.loadConfig()
	board, side, _ := cf.position()
	requireSide(side)

	f := engine.BoardFactors(board, side)
	score := cfg.Weights.Score(f, engine.HitEvents{})
	fmt.Printf("Side %s: score %+.3f\n", side, score)
	fmt.Printf("  Pips:          %d vs %d\n", board.PipCount(side), board.PipCount(side.Opponent()))
	fmt.Printf("  Points made:   %.0f (home %.0f)\n", f.PointsMade, f.HomeBoard)
	fmt.Printf("  Blot exposure: %.3f\n", f.BlotExposure)
	fmt.Printf("  On bar:        %.0f\n", f.Bar)
	fmt.Printf("  Borne off:     %.0f\n", f.BorneOff)
}

func cmdRollout(args []string) {
	fs := flag.NewFlagSet("rollout", flag.ExitOnError)
	cf := addCommonFlags(fs)
	sims := fs.Int("sims", 0, "Rollouts (default from config)")
	maxMoves := fs.Int("max-moves", 0, "Ply cap (default from config)")
	seed := fs.Int64("seed", 0, "Seed (default from config)")
	policy := fs.String("policy", "", "Rollout policy: greedy or random")
	fs.Parse(args)

	cfg := cf.loadConfig()
	ctx := cf.context()
	board, side, _ := cf.position()
	requireSide(side)

	opts := engine.DefaultSimOptions()
	opts.Weights = cfg.Weights
	opts.Simulations = cfg.Analysis.NumSimulations
	opts.MaxPlies = cfg.Analysis.MaxMoves
	opts.Seed = cfg.Analysis.Seed
	opts.Policy = engine.Policy(cfg.Analysis.Policy)
	opts.Workers = cfg.Engine.Workers
	if *sims > 0 {
		opts.Simulations = *sims
	}
	if *maxMoves > 0 {
		opts.MaxPlies = *maxMoves
	}
	if *seed != 0 {
		opts.Seed = *seed
	}
	if *policy != "" {
		opts.Policy = engine.Policy(*policy)
	}

	sim, err := engine.NewSimulator(opts)
	if err != nil {
		fatalf("Error: %v", err)
	}

	// The side on roll is the one rolling first, so the mover is its opponent
	mover := side.Opponent()
	fmt.Printf("Rolling out %d games (%s policy, cap %d plies)...\n", opts.Simulations, opts.Policy, opts.MaxPlies)
	start := time.Now()
	st, err := sim.RolloutBoard(ctx, mover, board)
	if err != nil {
		fatalf("Error: %v", err)
	}

	fmt.Printf("\nRollout complete in %v\n", time.Since(start))
	if !st.Defined {
		fmt.Printf("No decided games (%d capped)\n", st.Capped)
		return
	}
	onRoll := 1 - st.WinRate
	fmt.Printf("Side %s on roll wins %.1f%% ± %.1f%%\n", side, onRoll*100, st.CI*100)
	fmt.Printf("  Wins:   %d (G: %d, BG: %d)\n", st.Losses, st.GammonsLost, st.BackgammonsLost)
	fmt.Printf("  Losses: %d (G: %d, BG: %d)\n", st.Wins, st.GammonsWon, st.BackgammonsWon)
	fmt.Printf("  Points per game: %+.3f\n", -st.Points)
	fmt.Printf("  Decided: %d, capped: %d\n", st.Decided, st.Capped)
}

func cmdConfig(args []string) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	path := fs.String("config", "", "YAML configuration file")
	fs.Parse(args)

	cfg := config.Default()
	if *path != "" {
		var err error
		if cfg, err = config.Load(*path); err != nil {
			fatalf("Error: %v", err)
		}
	}
	data, err := cfg.Marshal()
	if err != nil {
		fatalf("Error: %v", err)
	}
	os.Stdout.Write(data)
}
