package models

import (
	"time"
)

// Format is the match format, which determines the overs cap per innings
type Format string

const (
	FormatT20  Format = "T20"
	FormatODI  Format = "ODI"
	FormatTest Format = "Test"
)

// MaxOvers returns the maximum overs per innings for the format.
// Test returns a single day's play.
func (f Format) MaxOvers() int {
	switch f {
	case FormatODI:
		return 50
	case FormatTest:
		return 90
	default:
		return 20
	}
}

// Status tracks a match through its lifecycle
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusAbandoned  Status = "abandoned"
)

// Toss records the toss winner and what they elected to do
type Toss struct {
	WinnerID string `json:"winner_id"`
	Elected  string `json:"elected"` // "bat" or "bowl"
}

// ExtraKind is the type of an illegal delivery
type ExtraKind string

const (
	ExtraWide   ExtraKind = "wide"
	ExtraNoBall ExtraKind = "no-ball"
)

// BallOutcomeType tags the single outcome of a delivery
type BallOutcomeType string

const (
	OutcomeDot    BallOutcomeType = "dot"
	OutcomeRuns   BallOutcomeType = "runs"
	OutcomeWicket BallOutcomeType = "wicket"
	OutcomeExtra  BallOutcomeType = "extra"
)

// BallOutcome is the result of a single delivery. Exactly one outcome
// type applies per ball. Extras score runs but never take a wicket and
// never count toward the over's six legal deliveries.
type BallOutcome struct {
	Type  BallOutcomeType `json:"type"`
	Runs  int             `json:"runs"`
	Extra ExtraKind       `json:"extra,omitempty"`
}

// IsLegal reports whether the delivery counts toward the over
func (b BallOutcome) IsLegal() bool {
	return b.Type != OutcomeExtra
}

// BowlingFigures holds one bowler's figures for an innings
type BowlingFigures struct {
	Overs   int `json:"overs"`
	Runs    int `json:"runs"`
	Wickets int `json:"wickets"`
}

// FallOfWicket records the scoreboard at the moment of a dismissal
type FallOfWicket struct {
	Score      int    `json:"score"`
	Wicket     int    `json:"wicket"`
	BatterID   string `json:"batter_id"`
	BatterName string `json:"batter_name"`
}

// Innings holds the running aggregate state of one batting innings.
// Batting and bowling figures are keyed by player ID; names appear only
// in the presentation view. The innings engine owns and mutates an
// Innings ball by ball; once the innings ends it is read-only.
type Innings struct {
	Score   int `json:"score"`
	Wickets int `json:"wickets"`
	Overs   int `json:"overs"` // completed overs
	Balls   int `json:"balls"` // legal balls in the current over, 0-5
	Extras  int `json:"extras"`

	BattingRuns   map[string]int             `json:"batting_runs"`
	BattingBalls  map[string]int             `json:"batting_balls"`
	BattingOrder  []string                   `json:"batting_order"` // IDs in order of arrival at the crease
	Bowling       map[string]*BowlingFigures `json:"bowling"`
	FallOfWickets []FallOfWicket             `json:"fall_of_wickets"`
}

// NewInnings creates an empty innings
func NewInnings() *Innings {
	return &Innings{
		BattingRuns:  make(map[string]int),
		BattingBalls: make(map[string]int),
		Bowling:      make(map[string]*BowlingFigures),
	}
}

// AddBatter registers a batter arriving at the crease with zero runs and
// zero balls faced
func (inn *Innings) AddBatter(playerID string) {
	inn.BattingRuns[playerID] = 0
	inn.BattingBalls[playerID] = 0
	inn.BattingOrder = append(inn.BattingOrder, playerID)
}

// BowlerFigures returns the figures entry for the bowler, creating it on
// their first delivery
func (inn *Innings) BowlerFigures(playerID string) *BowlingFigures {
	figures, ok := inn.Bowling[playerID]
	if !ok {
		figures = &BowlingFigures{}
		inn.Bowling[playerID] = figures
	}
	return figures
}

// OversFloat returns the overs in cricket notation as a float, e.g. 19.4
// for 19 completed overs and 4 balls
func (inn *Innings) OversFloat() float64 {
	return float64(inn.Overs) + float64(inn.Balls)/10.0
}

// Match represents a two-innings cricket match between two teams
type Match struct {
	ID     string    `json:"id"`
	TeamA  *Team     `json:"team_a"`
	TeamB  *Team     `json:"team_b"`
	Format Format    `json:"format"`
	Venue  string    `json:"venue,omitempty"`
	Date   time.Time `json:"date"`

	Toss     *Toss    `json:"toss,omitempty"`
	Status   Status   `json:"status"`
	Innings1 *Innings `json:"innings1,omitempty"`
	Innings2 *Innings `json:"innings2,omitempty"`

	TeamAScore   int     `json:"team_a_score"`
	TeamAWickets int     `json:"team_a_wickets"`
	TeamAOvers   float64 `json:"team_a_overs"`
	TeamBScore   int     `json:"team_b_score"`
	TeamBWickets int     `json:"team_b_wickets"`
	TeamBOvers   float64 `json:"team_b_overs"`

	Winner        *Team   `json:"winner,omitempty"` // nil once completed means a tie
	ResultText    string  `json:"result_text,omitempty"`
	PlayerOfMatch *Player `json:"player_of_match,omitempty"`
}

// NewMatch creates a match in the not-started state
func NewMatch(id string, teamA, teamB *Team, format Format) *Match {
	return &Match{
		ID:     id,
		TeamA:  teamA,
		TeamB:  teamB,
		Format: format,
		Date:   time.Now(),
		Status: StatusNotStarted,
	}
}
