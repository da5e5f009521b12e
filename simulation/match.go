package simulation

import (
	"fmt"
	"math/rand"
	"sort"

	"cricket-sim/models"
)

// Probability that the toss winner elects to bat. A placeholder for a
// skill-weighted decision; T20 sides bat first more often than not.
const electBatProbability = 0.6

// MatchSimulator drives a single match from toss to result. All
// randomness flows through one seeded source, so a given seed always
// reproduces the same match ball for ball. The simulator owns the match
// state for the duration of the simulation.
type MatchSimulator struct {
	match *models.Match
	rng   *rand.Rand
}

// NewMatchSimulator creates a simulator for the match with a seeded
// random source
func NewMatchSimulator(match *models.Match, seed int64) *MatchSimulator {
	return &MatchSimulator{
		match: match,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// SimulateMatch plays the toss and both innings, then fills in the
// scorelines, result, and player of the match. A roster error from
// either innings aborts the match; nothing is retried.
func (ms *MatchSimulator) SimulateMatch() (*models.Match, error) {
	m := ms.match
	m.Status = models.StatusInProgress

	tossWinner := m.TeamA
	if ms.rng.Intn(2) == 1 {
		tossWinner = m.TeamB
	}
	elected := "bat"
	if ms.rng.Float64() >= electBatProbability {
		elected = "bowl"
	}
	m.Toss = &models.Toss{WinnerID: tossWinner.ID, Elected: elected}

	other := m.TeamB
	if tossWinner == m.TeamB {
		other = m.TeamA
	}
	firstBatting, firstBowling := tossWinner, other
	if elected == "bowl" {
		firstBatting, firstBowling = other, tossWinner
	}

	maxOvers := m.Format.MaxOvers()

	innings1, err := SimulateInnings(ms.rng, firstBatting, firstBowling, maxOvers, 0)
	if err != nil {
		return nil, err
	}
	m.Innings1 = innings1
	recordScoreline(m, firstBatting, innings1)

	target := innings1.Score + 1

	innings2, err := SimulateInnings(ms.rng, firstBowling, firstBatting, maxOvers, target)
	if err != nil {
		return nil, err
	}
	m.Innings2 = innings2
	recordScoreline(m, firstBowling, innings2)

	decideResult(m, firstBatting, firstBowling)
	m.PlayerOfMatch = selectPlayerOfMatch(m)
	m.Status = models.StatusCompleted

	return m, nil
}

// recordScoreline copies an innings total onto the batting team's
// match-level scoreline
func recordScoreline(m *models.Match, battingTeam *models.Team, inn *models.Innings) {
	if battingTeam == m.TeamA {
		m.TeamAScore = inn.Score
		m.TeamAWickets = inn.Wickets
		m.TeamAOvers = inn.OversFloat()
	} else {
		m.TeamBScore = inn.Score
		m.TeamBWickets = inn.Wickets
		m.TeamBOvers = inn.OversFloat()
	}
}

// decideResult determines the winner and result text from the two
// innings. A successful chase wins by wickets in hand, a defended total
// wins by the runs margin, and equal scores tie with no winner.
func decideResult(m *models.Match, firstBatting, firstBowling *models.Team) {
	switch {
	case m.Innings2.Score > m.Innings1.Score:
		m.Winner = firstBowling
		m.ResultText = fmt.Sprintf("%s won by %d wickets", firstBowling.Name, 10-m.Innings2.Wickets)
	case m.Innings2.Score < m.Innings1.Score:
		m.Winner = firstBatting
		m.ResultText = fmt.Sprintf("%s won by %d runs", firstBatting.Name, m.Innings1.Score-m.Innings2.Score)
	default:
		m.Winner = nil
		m.ResultText = "Match tied"
	}
}

// selectPlayerOfMatch picks the award winner from combined figures across
// both innings, with no randomness. A bowler with three or more wickets
// beats any batting performance; otherwise a 40+ top score wins; failing
// that the top scorer takes it, and with no batting data at all there is
// no award.
func selectPlayerOfMatch(m *models.Match) *models.Player {
	runs := make(map[string]int)
	wickets := make(map[string]int)

	for _, inn := range []*models.Innings{m.Innings1, m.Innings2} {
		if inn == nil {
			continue
		}
		for id, r := range inn.BattingRuns {
			runs[id] += r
		}
		for id, figures := range inn.Bowling {
			wickets[id] += figures.Wickets
		}
	}

	topBowlerID, topWickets := maxByCount(wickets)
	if topWickets >= 3 {
		return findPlayer(m, topBowlerID)
	}

	topScorerID, topRuns := maxByCount(runs)
	if topRuns >= 40 {
		return findPlayer(m, topScorerID)
	}
	if topScorerID != "" {
		return findPlayer(m, topScorerID)
	}
	return nil
}

// maxByCount returns the key with the highest count. Keys are scanned in
// sorted order so map iteration cannot change which of two tied players
// is picked.
func maxByCount(counts map[string]int) (string, int) {
	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	bestID, bestCount := "", -1
	for _, id := range ids {
		if counts[id] > bestCount {
			bestID, bestCount = id, counts[id]
		}
	}
	if bestID == "" {
		return "", 0
	}
	return bestID, bestCount
}

func findPlayer(m *models.Match, id string) *models.Player {
	for _, team := range []*models.Team{m.TeamA, m.TeamB} {
		if team == nil {
			continue
		}
		if p := team.Player(id); p != nil {
			return p
		}
	}
	return nil
}
