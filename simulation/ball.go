package simulation

import (
	"math/rand"

	"cricket-sim/models"
)

const (
	extraProbability = 0.05 // chance any delivery is a wide or no-ball
	wideProbability  = 0.7  // share of extras that are wides
)

// SimulateBall bowls a single delivery from bowler to batter using the
// supplied random source. Extras are checked first and are mutually
// exclusive with wickets and runs off the bat; a wide scores one, a
// no-ball one or two.
func SimulateBall(rng *rand.Rand, batter, bowler *models.Player) models.BallOutcome {
	if rng.Float64() < extraProbability {
		if rng.Float64() < wideProbability {
			return models.BallOutcome{Type: models.OutcomeExtra, Extra: models.ExtraWide, Runs: 1}
		}
		return models.BallOutcome{Type: models.OutcomeExtra, Extra: models.ExtraNoBall, Runs: 1 + rng.Intn(2)}
	}

	if rng.Float64() < batter.DismissalProbability(bowler) {
		return models.BallOutcome{Type: models.OutcomeWicket}
	}

	distribution := batter.ScoringDistribution(bowler)
	roll := rng.Float64()
	cumulative := 0.0

	// Ascending run order, so any floating-point residue at the top of
	// the distribution falls back to a dot ball rather than a boundary.
	for _, runs := range models.RunValues {
		cumulative += distribution[runs]
		if roll < cumulative {
			if runs == 0 {
				return models.BallOutcome{Type: models.OutcomeDot}
			}
			return models.BallOutcome{Type: models.OutcomeRuns, Runs: runs}
		}
	}

	return models.BallOutcome{Type: models.OutcomeDot}
}
