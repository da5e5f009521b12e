package models

// The scorecard types are the presentation boundary: innings figures are
// keyed by player ID internally, and names are resolved from the rosters
// only here.

// BattingCardEntry is one batter's line on a scorecard
type BattingCardEntry struct {
	PlayerID   string  `json:"player_id"`
	Name       string  `json:"name"`
	Runs       int     `json:"runs"`
	Balls      int     `json:"balls"`
	StrikeRate float64 `json:"strike_rate"`
}

// BowlingCardEntry is one bowler's line on a scorecard
type BowlingCardEntry struct {
	PlayerID string  `json:"player_id"`
	Name     string  `json:"name"`
	Overs    int     `json:"overs"`
	Runs     int     `json:"runs"`
	Wickets  int     `json:"wickets"`
	Economy  float64 `json:"economy"`
}

// InningsCard is the name-keyed view of a completed innings
type InningsCard struct {
	BattingTeam   string             `json:"batting_team"`
	Score         int                `json:"score"`
	Wickets       int                `json:"wickets"`
	Overs         float64            `json:"overs"`
	Extras        int                `json:"extras"`
	Batting       []BattingCardEntry `json:"batting"`
	Bowling       []BowlingCardEntry `json:"bowling"`
	FallOfWickets []FallOfWicket     `json:"fall_of_wickets"`
}

// Scorecard builds the presentation view of an innings. Batting entries
// follow the order batters came to the crease; bowling entries follow the
// bowling team's rotation order.
func (inn *Innings) Scorecard(battingTeam, bowlingTeam *Team) *InningsCard {
	card := &InningsCard{
		BattingTeam:   battingTeam.Name,
		Score:         inn.Score,
		Wickets:       inn.Wickets,
		Overs:         inn.OversFloat(),
		Extras:        inn.Extras,
		FallOfWickets: inn.FallOfWickets,
	}

	for _, id := range inn.BattingOrder {
		entry := BattingCardEntry{
			PlayerID: id,
			Runs:     inn.BattingRuns[id],
			Balls:    inn.BattingBalls[id],
		}
		if p := battingTeam.Player(id); p != nil {
			entry.Name = p.Name
		}
		if entry.Balls > 0 {
			entry.StrikeRate = float64(entry.Runs) / float64(entry.Balls) * 100.0
		}
		card.Batting = append(card.Batting, entry)
	}

	for _, p := range bowlingTeam.Bowlers() {
		figures, ok := inn.Bowling[p.ID]
		if !ok {
			continue
		}
		entry := BowlingCardEntry{
			PlayerID: p.ID,
			Name:     p.Name,
			Overs:    figures.Overs,
			Runs:     figures.Runs,
			Wickets:  figures.Wickets,
		}
		if figures.Overs > 0 {
			entry.Economy = float64(figures.Runs) / float64(figures.Overs)
		}
		card.Bowling = append(card.Bowling, entry)
	}

	return card
}
