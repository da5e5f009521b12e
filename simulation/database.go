package simulation

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"cricket-sim/models"
)

// updateRunStatus updates the simulation run status in the database
func (se *SimulationEngine) updateRunStatus(runID, status string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
		UPDATE simulation_runs
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`

	if _, err := se.db.Exec(ctx, query, runID, status); err != nil {
		log.Printf("Failed to update run status for %s: %v", runID, err)
	}
}

// updateProgress updates the completed simulation count
func (se *SimulationEngine) updateProgress(runID string) {
	se.mu.Lock()
	defer se.mu.Unlock()

	status, exists := se.activeRuns[runID]
	if !exists {
		return
	}
	status.CompletedRuns++

	// Write through to the database every 100 simulations or at the end
	if status.CompletedRuns%100 == 0 || status.CompletedRuns == status.TotalRuns {
		completed := status.CompletedRuns
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			query := `
				UPDATE simulation_runs
				SET completed_runs = $2, updated_at = NOW()
				WHERE id = $1
			`

			if _, err := se.db.Exec(ctx, query, runID, completed); err != nil {
				log.Printf("Failed to update progress for %s: %v", runID, err)
			}
		}()
	}
}

// storeSimulationResult stores an individual match simulation result
func (se *SimulationEngine) storeSimulationResult(ctx context.Context, result models.SimulationResult) error {
	innings1JSON, err := json.Marshal(result.Innings1)
	if err != nil {
		return fmt.Errorf("failed to marshal first innings: %w", err)
	}

	innings2JSON, err := json.Marshal(result.Innings2)
	if err != nil {
		return fmt.Errorf("failed to marshal second innings: %w", err)
	}

	query := `
		INSERT INTO simulation_results (
			id, run_id, simulation_number, seed,
			team_a_score, team_a_wickets, team_a_overs,
			team_b_score, team_b_wickets, team_b_overs,
			winner, result_text, player_of_match_id,
			innings1, innings2, created_at
		) VALUES (
			uuid_generate_v4(), $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
		)
	`

	_, err = se.db.Exec(ctx, query,
		result.RunID,
		result.SimulationNumber,
		result.Seed,
		result.TeamAScore,
		result.TeamAWickets,
		result.TeamAOvers,
		result.TeamBScore,
		result.TeamBWickets,
		result.TeamBOvers,
		result.Winner,
		result.ResultText,
		result.PlayerOfMatchID,
		innings1JSON,
		innings2JSON,
		result.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store simulation result: %w", err)
	}

	return nil
}

// storeAggregatedResults stores the aggregated results for a run
func (se *SimulationEngine) storeAggregatedResults(ctx context.Context, result *models.AggregatedResult) error {
	teamADistJSON, err := json.Marshal(result.TeamAScoreDistribution)
	if err != nil {
		return fmt.Errorf("failed to marshal team A score distribution: %w", err)
	}

	teamBDistJSON, err := json.Marshal(result.TeamBScoreDistribution)
	if err != nil {
		return fmt.Errorf("failed to marshal team B score distribution: %w", err)
	}

	playerOfMatchJSON, err := json.Marshal(result.PlayerOfMatchCounts)
	if err != nil {
		return fmt.Errorf("failed to marshal player of match counts: %w", err)
	}

	statisticsJSON, err := json.Marshal(result.Statistics)
	if err != nil {
		return fmt.Errorf("failed to marshal statistics: %w", err)
	}

	query := `
		INSERT INTO simulation_aggregates (
			run_id, total_simulations, team_a_wins, team_b_wins, ties,
			team_a_win_probability, team_b_win_probability, tie_probability,
			expected_team_a_score, expected_team_b_score,
			team_a_score_distribution, team_b_score_distribution,
			player_of_match_counts, statistics, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW())
		ON CONFLICT (run_id) DO UPDATE SET
			total_simulations = EXCLUDED.total_simulations,
			team_a_wins = EXCLUDED.team_a_wins,
			team_b_wins = EXCLUDED.team_b_wins,
			ties = EXCLUDED.ties,
			team_a_win_probability = EXCLUDED.team_a_win_probability,
			team_b_win_probability = EXCLUDED.team_b_win_probability,
			tie_probability = EXCLUDED.tie_probability,
			expected_team_a_score = EXCLUDED.expected_team_a_score,
			expected_team_b_score = EXCLUDED.expected_team_b_score,
			team_a_score_distribution = EXCLUDED.team_a_score_distribution,
			team_b_score_distribution = EXCLUDED.team_b_score_distribution,
			player_of_match_counts = EXCLUDED.player_of_match_counts,
			statistics = EXCLUDED.statistics,
			updated_at = NOW()
	`

	_, err = se.db.Exec(ctx, query,
		result.RunID,
		result.TotalSimulations,
		result.TeamAWins,
		result.TeamBWins,
		result.Ties,
		result.TeamAWinProbability,
		result.TeamBWinProbability,
		result.TieProbability,
		result.ExpectedTeamAScore,
		result.ExpectedTeamBScore,
		teamADistJSON,
		teamBDistJSON,
		playerOfMatchJSON,
		statisticsJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to store aggregated results: %w", err)
	}

	return nil
}

// calculateAggregatedResults folds all simulation results of a run into
// win probabilities, expected scores, score distributions, and player of
// the match frequencies
func (se *SimulationEngine) calculateAggregatedResults(runID string, results []models.SimulationResult) *models.AggregatedResult {
	if len(results) == 0 {
		return &models.AggregatedResult{RunID: runID}
	}

	// Fold in simulation order so float accumulation does not depend on
	// channel arrival order.
	sort.Slice(results, func(i, j int) bool {
		return results[i].SimulationNumber < results[j].SimulationNumber
	})

	aggregated := &models.AggregatedResult{
		RunID:                  runID,
		TotalSimulations:       len(results),
		TeamAScoreDistribution: make(map[int]int),
		TeamBScoreDistribution: make(map[int]int),
		PlayerOfMatchCounts:    make(map[string]int),
		Statistics:             make(map[string]float64),
	}

	var totalTeamAScore, totalTeamBScore float64
	allOutInnings := 0
	chases := 0

	for _, result := range results {
		switch result.Winner {
		case "team_a":
			aggregated.TeamAWins++
		case "team_b":
			aggregated.TeamBWins++
		default:
			aggregated.Ties++
		}

		aggregated.TeamAScoreDistribution[result.TeamAScore]++
		aggregated.TeamBScoreDistribution[result.TeamBScore]++

		totalTeamAScore += float64(result.TeamAScore)
		totalTeamBScore += float64(result.TeamBScore)

		if result.PlayerOfMatchID != "" {
			aggregated.PlayerOfMatchCounts[result.PlayerOfMatchID]++
		}

		for _, inn := range []*models.Innings{result.Innings1, result.Innings2} {
			if inn != nil && inn.Wickets == 10 {
				allOutInnings++
			}
		}
		if result.Innings1 != nil && result.Innings2 != nil &&
			result.Innings2.Score > result.Innings1.Score {
			chases++
		}
	}

	totalSims := float64(aggregated.TotalSimulations)
	aggregated.TeamAWinProbability = float64(aggregated.TeamAWins) / totalSims
	aggregated.TeamBWinProbability = float64(aggregated.TeamBWins) / totalSims
	aggregated.TieProbability = float64(aggregated.Ties) / totalSims

	aggregated.ExpectedTeamAScore = totalTeamAScore / totalSims
	aggregated.ExpectedTeamBScore = totalTeamBScore / totalSims

	aggregated.Statistics["average_total"] = aggregated.ExpectedTeamAScore + aggregated.ExpectedTeamBScore
	aggregated.Statistics["score_variance"] = se.calculateScoreVariance(results,
		aggregated.ExpectedTeamAScore, aggregated.ExpectedTeamBScore)
	aggregated.Statistics["chase_success_percentage"] = float64(chases) / totalSims * 100.0
	aggregated.Statistics["all_out_percentage"] = float64(allOutInnings) / (totalSims * 2) * 100.0
	aggregated.Statistics["tie_percentage"] = aggregated.TieProbability * 100.0

	return aggregated
}

// calculateScoreVariance calculates the variance of the combined match total
func (se *SimulationEngine) calculateScoreVariance(results []models.SimulationResult, expectedA, expectedB float64) float64 {
	expectedTotal := expectedA + expectedB
	var sumSquaredDiffs float64

	for _, result := range results {
		total := float64(result.TeamAScore + result.TeamBScore)
		diff := total - expectedTotal
		sumSquaredDiffs += diff * diff
	}

	return sumSquaredDiffs / float64(len(results))
}

// GetRunResult returns the aggregated result of a completed run, from
// memory if available, otherwise from the database
func (se *SimulationEngine) GetRunResult(ctx context.Context, runID string) (*models.AggregatedResult, error) {
	se.mu.RLock()
	if status, exists := se.activeRuns[runID]; exists && status.AggregatedResult != nil {
		se.mu.RUnlock()
		return status.AggregatedResult, nil
	}
	se.mu.RUnlock()

	var result models.AggregatedResult
	var teamADist, teamBDist, playerOfMatch, statistics []byte

	query := `
		SELECT run_id, total_simulations, team_a_wins, team_b_wins, ties,
		       team_a_win_probability, team_b_win_probability, tie_probability,
		       expected_team_a_score, expected_team_b_score,
		       team_a_score_distribution, team_b_score_distribution,
		       player_of_match_counts, statistics
		FROM simulation_aggregates
		WHERE run_id = $1
	`

	err := se.db.QueryRow(ctx, query, runID).Scan(
		&result.RunID,
		&result.TotalSimulations,
		&result.TeamAWins,
		&result.TeamBWins,
		&result.Ties,
		&result.TeamAWinProbability,
		&result.TeamBWinProbability,
		&result.TieProbability,
		&result.ExpectedTeamAScore,
		&result.ExpectedTeamBScore,
		&teamADist,
		&teamBDist,
		&playerOfMatch,
		&statistics,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load simulation result: %w", err)
	}

	if err := json.Unmarshal(teamADist, &result.TeamAScoreDistribution); err != nil {
		log.Printf("Failed to parse team A score distribution: %v", err)
		result.TeamAScoreDistribution = make(map[int]int)
	}
	if err := json.Unmarshal(teamBDist, &result.TeamBScoreDistribution); err != nil {
		log.Printf("Failed to parse team B score distribution: %v", err)
		result.TeamBScoreDistribution = make(map[int]int)
	}
	if err := json.Unmarshal(playerOfMatch, &result.PlayerOfMatchCounts); err != nil {
		log.Printf("Failed to parse player of match counts: %v", err)
		result.PlayerOfMatchCounts = make(map[string]int)
	}
	if err := json.Unmarshal(statistics, &result.Statistics); err != nil {
		log.Printf("Failed to parse statistics: %v", err)
		result.Statistics = make(map[string]float64)
	}

	return &result, nil
}
