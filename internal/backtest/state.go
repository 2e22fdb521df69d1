package backtest

import (
	"encoding/json"
	"sort"

	"github.com/wheels195/cfb-market-edge-sub002/internal/models"
)

// Outcome is the graded result of one simulated bet
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
	OutcomePush Outcome = "push"
)

// Exclusion reasons. Every skipped game is attributed to exactly one.
const (
	ExclusionMissingResult      = "missing_result"
	ExclusionMissingClosingLine = "missing_closing_line"
	ExclusionMissingRating      = "missing_rating"
)

// BetResult is the graded record of one simulated bet. It is
// ephemeral: aggregated into a report, never authoritative state.
type BetResult struct {
	EventID        string
	Season         int
	Week           int
	Side           models.Side
	BetLine        float64
	ClosingLine    float64
	Price          int
	AbsEdge        float64
	WinProbability float64
	Outcome        Outcome
	Profit         float64 // units, stake normalised to 1
	CLV            float64 // points of closing line value
	BrierComponent float64 // (winProbability - outcome)^2, pushes carry none
}

// ReplayState accumulates graded bets and exclusion tallies over one run
type ReplayState struct {
	Bets           []BetResult
	Exclusions     map[int]map[string]int // season -> reason -> count
	GamesProcessed int
	GamesRated     int
}

// NewReplayState initialises an empty replay state
func NewReplayState() *ReplayState {
	return &ReplayState{
		Bets:       []BetResult{},
		Exclusions: make(map[int]map[string]int),
	}
}

// RecordBet appends a graded bet
func (s *ReplayState) RecordBet(bet BetResult) {
	s.Bets = append(s.Bets, bet)
}

// RecordExclusion attributes one skipped game to a single reason
func (s *ReplayState) RecordExclusion(season int, reason string) {
	if s.Exclusions[season] == nil {
		s.Exclusions[season] = make(map[string]int)
	}
	s.Exclusions[season][reason]++
}

// TotalExclusions returns the number of games skipped across all seasons
func (s *ReplayState) TotalExclusions() int {
	total := 0
	for _, reasons := range s.Exclusions {
		for _, n := range reasons {
			total += n
		}
	}
	return total
}

// ExclusionsJSON serialises the exclusion ledger with stable season order
func (s *ReplayState) ExclusionsJSON() json.RawMessage {
	type seasonEntry struct {
		Season  int            `json:"season"`
		Reasons map[string]int `json:"reasons"`
	}
	seasons := make([]int, 0, len(s.Exclusions))
	for season := range s.Exclusions {
		seasons = append(seasons, season)
	}
	sort.Ints(seasons)
	entries := make([]seasonEntry, 0, len(seasons))
	for _, season := range seasons {
		entries = append(entries, seasonEntry{Season: season, Reasons: s.Exclusions[season]})
	}
	data, _ := json.Marshal(entries)
	return data
}
