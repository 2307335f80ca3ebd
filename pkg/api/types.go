// Package api is the request/response boundary of the move analyzer:
// it parses caller requests, admits them against rollout limits and
// shapes the engine result into a JSON friendly response.
package api

// ============================================================================
// Request Types
// ============================================================================

// AnalyzeRequest asks for the best play of a roll.
// Optional numeric fields fall back to the service defaults when omitted.
type AnalyzeRequest struct {
	Position        string   `json:"position"`                   // XPID record or bare board
	SideToMove      string   `json:"side_to_move,omitempty"`     // "a" or "b", overrides the XPID turn
	Dice            string   `json:"dice,omitempty"`             // Two digits 1-6, overrides the XPID dice
	MaxTopMoves     *int     `json:"max_top_moves,omitempty"`    // Candidates rolled out
	NumSimulations  *int     `json:"num_simulations,omitempty"`  // Rollouts per candidate (0 = heuristic only)
	HeuristicWeight *float64 `json:"heuristic_weight,omitempty"` // Blend weight of the heuristic
	MCWeight        *float64 `json:"mc_weight,omitempty"`        // Blend weight of the rollouts
	MaxMoves        int      `json:"max_moves,omitempty"`        // Ply cap per rollout
	Debug           bool     `json:"debug,omitempty"`            // Return every candidate
	Seed            *int64   `json:"seed,omitempty"`             // Rollout seed
	Policy          string   `json:"policy,omitempty"`           // "greedy" or "random"
}

// ============================================================================
// Response Types
// ============================================================================

// Analysis statuses
const (
	StatusOK           = "ok"
	StatusNoLegalMoves = "no_legal_moves"
)

// AnalyzeResponse is the result of an analysis.
type AnalyzeResponse struct {
	Status      string          `json:"status"`
	Side        string          `json:"side"`
	Dice        string          `json:"dice"`
	Move        string          `json:"move,omitempty"`
	HybridScore float64         `json:"hybrid_score"`
	Confidence  float64         `json:"confidence"`
	NumLegal    int             `json:"num_legal"`
	NumDistinct int             `json:"num_distinct"`
	ElapsedMS   int64           `json:"elapsed_ms"`
	QueuedMS    int64           `json:"queued_ms"` // Wait for admission
	Candidates  []CandidateInfo `json:"candidates,omitempty"` // Debug only
}

// CandidateInfo describes one distinct result position.
type CandidateInfo struct {
	Notation     string       `json:"notation"`
	Heuristic    float64      `json:"heuristic"`
	MC           *float64     `json:"mc,omitempty"` // Absent when not rolled out or undefined
	Hybrid       float64      `json:"hybrid"`
	PipCount     int          `json:"pip_count"`
	Key          string       `json:"key"`
	Alternatives []string     `json:"alternatives,omitempty"`
	Rollout      *RolloutInfo `json:"rollout,omitempty"`
}

// RolloutInfo summarises the rollouts of a candidate.
type RolloutInfo struct {
	Trials         int     `json:"trials"`
	Decided        int     `json:"decided"`
	Capped         int     `json:"capped"`
	Wins           int     `json:"wins"`
	GammonsWon     int     `json:"gammons_won"`
	BackgammonsWon int     `json:"backgammons_won"`
	Losses         int     `json:"losses"`
	GammonsLost    int     `json:"gammons_lost"`
	CI             float64 `json:"ci"`
	Points         float64 `json:"points"`
}

// ErrorResponse is returned for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
