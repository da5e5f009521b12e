package models

import (
	"math"
)

// Role identifies a player's primary job in the side
type Role string

const (
	RoleBatsman      Role = "batsman"
	RoleBowler       Role = "bowler"
	RoleAllRounder   Role = "all-rounder"
	RoleWicketKeeper Role = "wicket-keeper"
)

// Player represents a cricket player with career statistics
type Player struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	TeamID   string        `json:"team_id"`
	Country  string        `json:"country,omitempty"`
	Role     Role          `json:"role"`
	Batting  BattingStats  `json:"batting"`
	Bowling  BowlingStats  `json:"bowling"`
	Fielding FieldingStats `json:"fielding"`
}

// BattingStats contains batting statistics
type BattingStats struct {
	Matches      int     `json:"matches"`
	Innings      int     `json:"innings"`
	Runs         int     `json:"runs"`
	HighestScore int     `json:"highest_score"`
	Average      float64 `json:"average"`
	StrikeRate   float64 `json:"strike_rate"` // runs per 100 balls
	Centuries    int     `json:"centuries"`
	Fifties      int     `json:"fifties"`
	Fours        int     `json:"fours"`
	Sixes        int     `json:"sixes"`
}

// BowlingStats contains bowling statistics
type BowlingStats struct {
	Matches      int     `json:"matches"`
	Innings      int     `json:"innings"`
	Overs        float64 `json:"overs"`
	RunsConceded int     `json:"runs_conceded"`
	Wickets      int     `json:"wickets"`
	Average      float64 `json:"average"` // runs conceded per wicket
	Economy      float64 `json:"economy"` // runs conceded per over
	StrikeRate   float64 `json:"strike_rate"`
	FiveWickets  int     `json:"five_wickets"`
}

// FieldingStats contains fielding statistics
type FieldingStats struct {
	Matches   int `json:"matches"`
	Catches   int `json:"catches"`
	Stumpings int `json:"stumpings"`
	RunOuts   int `json:"run_outs"`
}

const (
	baseDismissalRate = 0.025
	minDismissalProb  = 0.005
	maxDismissalProb  = 0.08
)

// RunValues are the possible runs off the bat in ascending order.
// Fives are not modelled.
var RunValues = []int{0, 1, 2, 3, 4, 6}

// DismissalProbability returns the chance the batter is dismissed on a
// legal delivery from the given bowler. A higher batting average lowers
// the probability, a better (lower) bowling average raises it. The result
// is clamped to [0.005, 0.08] so no matchup is ever a near-certainty.
// Pure function of the two rating profiles; a nil bowler means no bowler
// adjustment.
func (p *Player) DismissalProbability(bowler *Player) float64 {
	battingFactor := 37.5 / math.Max(p.Batting.Average, 15.0)

	bowlerFactor := 1.0
	if bowler != nil && bowler.Bowling.Average > 0 {
		bowlerFactor = 30.0 / math.Max(bowler.Bowling.Average, 20.0)
	}

	prob := baseDismissalRate * battingFactor * bowlerFactor
	return math.Max(minDismissalProb, math.Min(maxDismissalProb, prob))
}

// ScoringDistribution returns the probability of each run value for a
// legal, non-wicket delivery, keyed by runs scored. The masses are
// normalized so they sum to 1. A more aggressive batter (higher strike
// rate) facing a more expensive bowler shifts mass from dot balls toward
// boundaries.
func (p *Player) ScoringDistribution(bowler *Player) map[int]float64 {
	economyFactor := 1.0
	if bowler != nil && bowler.Bowling.Economy > 0 {
		economyFactor = bowler.Bowling.Economy / 6.0
	}
	aggression := p.Batting.StrikeRate / 100.0 * economyFactor

	masses := map[int]float64{
		0: math.Max(0.35, 0.55-0.15*aggression),
		1: 0.30,
		2: 0.10,
		3: 0.02,
		4: math.Min(0.15, 0.05+0.08*aggression),
		6: math.Min(0.10, 0.02+0.06*aggression),
	}

	var total float64
	for _, mass := range masses {
		total += mass
	}
	for runs := range masses {
		masses[runs] /= total
	}

	return masses
}

// CanBowl reports whether the player belongs in the bowling rotation
func (p *Player) CanBowl() bool {
	return p.Role == RoleBowler || p.Role == RoleAllRounder
}
