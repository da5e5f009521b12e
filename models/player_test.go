package models

import (
	"math"
	"testing"
)

func TestDismissalProbability(t *testing.T) {
	tests := []struct {
		name       string
		battingAvg float64
		bowlingAvg float64
		expected   float64
	}{
		{
			name:       "league average matchup",
			battingAvg: 37.5,
			bowlingAvg: 30.0,
			expected:   0.025,
		},
		{
			name:       "elite batter against weak bowler",
			battingAvg: 60.0,
			bowlingAvg: 45.0,
			expected:   0.025 * (37.5 / 60.0) * (30.0 / 45.0),
		},
		{
			name:       "tailender against elite bowler hits the cap",
			battingAvg: 5.0,
			bowlingAvg: 18.0,
			expected:   0.08,
		},
		{
			name:       "batting average floored at 15",
			battingAvg: 10.0,
			bowlingAvg: 30.0,
			expected:   0.025 * (37.5 / 15.0),
		},
		{
			name:       "bowling average floored at 20",
			battingAvg: 37.5,
			bowlingAvg: 12.0,
			expected:   0.025 * (30.0 / 20.0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batter := &Player{Batting: BattingStats{Average: tt.battingAvg}}
			bowler := &Player{Bowling: BowlingStats{Average: tt.bowlingAvg}}

			got := batter.DismissalProbability(bowler)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("DismissalProbability() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestDismissalProbabilityBounds(t *testing.T) {
	extremes := []struct {
		name       string
		battingAvg float64
		bowlingAvg float64
	}{
		{"zero batting average", 0, 30},
		{"huge batting average", 500, 30},
		{"zero bowling average", 30, 0},
		{"tiny bowling average", 30, 0.1},
		{"both extreme low", 0, 0.1},
		{"both extreme high", 500, 500},
	}

	for _, tt := range extremes {
		t.Run(tt.name, func(t *testing.T) {
			batter := &Player{Batting: BattingStats{Average: tt.battingAvg}}
			bowler := &Player{Bowling: BowlingStats{Average: tt.bowlingAvg}}

			got := batter.DismissalProbability(bowler)
			if got < 0.005 || got > 0.08 {
				t.Errorf("DismissalProbability() = %v, outside [0.005, 0.08]", got)
			}
		})
	}
}

func TestDismissalProbabilityNilBowler(t *testing.T) {
	batter := &Player{Batting: BattingStats{Average: 37.5}}

	got := batter.DismissalProbability(nil)
	if math.Abs(got-0.025) > 1e-9 {
		t.Errorf("DismissalProbability(nil) = %v, expected base rate 0.025", got)
	}
}

func TestScoringDistributionSumsToOne(t *testing.T) {
	tests := []struct {
		name       string
		strikeRate float64
		economy    float64
	}{
		{"anchor against tight bowler", 70, 4.5},
		{"league average", 100, 6.0},
		{"power hitter against expensive bowler", 160, 10.0},
		{"zero strike rate", 0, 6.0},
		{"zero economy means no bowler adjustment", 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batter := &Player{Batting: BattingStats{StrikeRate: tt.strikeRate}}
			bowler := &Player{Bowling: BowlingStats{Economy: tt.economy}}

			dist := batter.ScoringDistribution(bowler)

			var total float64
			for runs, p := range dist {
				if p < 0 {
					t.Errorf("probability for %d runs is negative: %v", runs, p)
				}
				total += p
			}
			if math.Abs(total-1.0) > 1e-6 {
				t.Errorf("distribution sums to %v, expected 1.0", total)
			}
		})
	}
}

func TestScoringDistributionCoversRunValues(t *testing.T) {
	batter := &Player{Batting: BattingStats{StrikeRate: 100}}
	bowler := &Player{Bowling: BowlingStats{Economy: 6.0}}

	dist := batter.ScoringDistribution(bowler)

	if len(dist) != len(RunValues) {
		t.Fatalf("distribution has %d entries, expected %d", len(dist), len(RunValues))
	}
	for _, runs := range RunValues {
		if _, ok := dist[runs]; !ok {
			t.Errorf("distribution missing run value %d", runs)
		}
	}
	if _, ok := dist[5]; ok {
		t.Error("distribution should not include fives")
	}
}

func TestScoringDistributionAggressionShiftsBoundaries(t *testing.T) {
	bowler := &Player{Bowling: BowlingStats{Economy: 6.0}}
	anchor := &Player{Batting: BattingStats{StrikeRate: 70}}
	hitter := &Player{Batting: BattingStats{StrikeRate: 150}}

	anchorDist := anchor.ScoringDistribution(bowler)
	hitterDist := hitter.ScoringDistribution(bowler)

	if hitterDist[4] <= anchorDist[4] {
		t.Errorf("four probability should rise with strike rate: hitter %v, anchor %v",
			hitterDist[4], anchorDist[4])
	}
	if hitterDist[6] <= anchorDist[6] {
		t.Errorf("six probability should rise with strike rate: hitter %v, anchor %v",
			hitterDist[6], anchorDist[6])
	}
	if hitterDist[0] >= anchorDist[0] {
		t.Errorf("dot probability should fall with strike rate: hitter %v, anchor %v",
			hitterDist[0], anchorDist[0])
	}
}

func TestCanBowl(t *testing.T) {
	tests := []struct {
		role     Role
		expected bool
	}{
		{RoleBatsman, false},
		{RoleWicketKeeper, false},
		{RoleBowler, true},
		{RoleAllRounder, true},
	}

	for _, tt := range tests {
		p := &Player{Role: tt.role}
		if got := p.CanBowl(); got != tt.expected {
			t.Errorf("CanBowl() for %s = %v, expected %v", tt.role, got, tt.expected)
		}
	}
}
