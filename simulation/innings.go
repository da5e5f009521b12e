package simulation

import (
	"fmt"
	"math/rand"

	"cricket-sim/models"
)

// RosterInsufficientError reports a side that cannot field the minimum
// batting or bowling resources for an innings. It aborts the whole match
// simulation; there is no partial match state to resume.
type RosterInsufficientError struct {
	Team   string
	Reason string
}

func (e *RosterInsufficientError) Error() string {
	return fmt.Sprintf("team %s: %s", e.Team, e.Reason)
}

// SimulateInnings plays out one full innings of battingTeam against
// bowlingTeam and returns the frozen innings state. target <= 0 means no
// chase; with a target set, the innings stops the moment the score
// reaches it, checked before every delivery.
//
// The innings ends when 10 wickets fall, the overs cap is reached, the
// batting order is exhausted, or the target is reached.
func SimulateInnings(rng *rand.Rand, battingTeam, bowlingTeam *models.Team, maxOvers, target int) (*models.Innings, error) {
	order := battingTeam.BattingOrder()
	bowlers := bowlingTeam.Bowlers()

	if len(order) < 2 {
		return nil, &RosterInsufficientError{Team: battingTeam.Name, Reason: "needs at least 2 batters"}
	}
	if len(bowlers) < 1 {
		return nil, &RosterInsufficientError{Team: bowlingTeam.Name, Reason: "needs at least 1 bowler"}
	}

	innings := models.NewInnings()

	striker, nonStriker := order[0], order[1]
	nextBatter := 2
	innings.AddBatter(striker.ID)
	innings.AddBatter(nonStriker.ID)

	bowlerIndex := 0
	bowler := bowlers[0]

	for innings.Wickets < 10 && innings.Overs < maxOvers {
		if target > 0 && innings.Score >= target {
			break
		}

		outcome := SimulateBall(rng, striker, bowler)

		if outcome.Type == models.OutcomeExtra {
			// Wides and no-balls score but do not consume a ball of
			// the over; same striker faces again.
			innings.Score += outcome.Runs
			innings.Extras += outcome.Runs
			innings.BowlerFigures(bowler.ID).Runs += outcome.Runs
			continue
		}

		innings.Balls++
		innings.BattingBalls[striker.ID]++

		if outcome.Type == models.OutcomeWicket {
			innings.Wickets++
			innings.BowlerFigures(bowler.ID).Wickets++
			innings.FallOfWickets = append(innings.FallOfWickets, models.FallOfWicket{
				Score:      innings.Score,
				Wicket:     innings.Wickets,
				BatterID:   striker.ID,
				BatterName: striker.Name,
			})

			if nextBatter >= len(order) {
				// All out: the order is exhausted, so the innings ends
				// here even before the over completes.
				break
			}
			striker = order[nextBatter]
			nextBatter++
			innings.AddBatter(striker.ID)
		} else {
			innings.Score += outcome.Runs
			innings.BattingRuns[striker.ID] += outcome.Runs
			innings.BowlerFigures(bowler.ID).Runs += outcome.Runs

			// Odd runs leave the batters at swapped ends
			if outcome.Runs%2 == 1 {
				striker, nonStriker = nonStriker, striker
			}
		}

		if innings.Balls == 6 {
			innings.Balls = 0
			innings.Overs++
			innings.BowlerFigures(bowler.ID).Overs++

			// Mandatory end change, then the next bowler in rotation.
			// Round-robin over the bowler list; nothing stops a single
			// bowler from bowling consecutive overs.
			striker, nonStriker = nonStriker, striker
			bowlerIndex++
			bowler = bowlers[bowlerIndex%len(bowlers)]
		}
	}

	return innings, nil
}
