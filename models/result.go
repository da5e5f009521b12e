package models

import (
	"time"
)

// SimulationResult is the outcome of one simulated match within a run
type SimulationResult struct {
	RunID            string   `json:"run_id"`
	SimulationNumber int      `json:"simulation_number"`
	Seed             int64    `json:"seed"`
	TeamAScore       int      `json:"team_a_score"`
	TeamAWickets     int      `json:"team_a_wickets"`
	TeamAOvers       float64  `json:"team_a_overs"`
	TeamBScore       int      `json:"team_b_score"`
	TeamBWickets     int      `json:"team_b_wickets"`
	TeamBOvers       float64  `json:"team_b_overs"`
	Winner           string   `json:"winner"` // "team_a", "team_b", or "tie"
	ResultText       string   `json:"result_text"`
	PlayerOfMatchID  string   `json:"player_of_match_id,omitempty"`
	Innings1         *Innings `json:"innings1,omitempty"`
	Innings2         *Innings `json:"innings2,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// AggregatedResult combines all simulations of a run
type AggregatedResult struct {
	RunID                  string             `json:"run_id"`
	TotalSimulations       int                `json:"total_simulations"`
	TeamAWins              int                `json:"team_a_wins"`
	TeamBWins              int                `json:"team_b_wins"`
	Ties                   int                `json:"ties"`
	TeamAWinProbability    float64            `json:"team_a_win_probability"`
	TeamBWinProbability    float64            `json:"team_b_win_probability"`
	TieProbability         float64            `json:"tie_probability"`
	ExpectedTeamAScore     float64            `json:"expected_team_a_score"`
	ExpectedTeamBScore     float64            `json:"expected_team_b_score"`
	TeamAScoreDistribution map[int]int        `json:"team_a_score_distribution"`
	TeamBScoreDistribution map[int]int        `json:"team_b_score_distribution"`
	PlayerOfMatchCounts    map[string]int     `json:"player_of_match_counts"`
	Statistics             map[string]float64 `json:"statistics"`
}
