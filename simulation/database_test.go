package simulation

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cricket-sim/models"
)

func newMockedEngine(t *testing.T) (*SimulationEngine, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return NewSimulationEngine(mock, 4, 100), mock
}

func TestUpdateRunStatus(t *testing.T) {
	engine, mock := newMockedEngine(t)

	mock.ExpectExec("UPDATE simulation_runs").
		WithArgs("run-1", "running").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	engine.updateRunStatus("run-1", "running")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreSimulationResult(t *testing.T) {
	engine, mock := newMockedEngine(t)

	mock.ExpectExec("INSERT INTO simulation_results").
		WithArgs(
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	result := models.SimulationResult{
		RunID:            "run-1",
		SimulationNumber: 7,
		Seed:             1007,
		TeamAScore:       168,
		TeamAWickets:     6,
		TeamAOvers:       20.0,
		TeamBScore:       154,
		TeamBWickets:     10,
		TeamBOvers:       18.3,
		Winner:           "team_a",
		ResultText:       "Strikers won by 14 runs",
		Innings1:         models.NewInnings(),
		Innings2:         models.NewInnings(),
		CreatedAt:        time.Now(),
	}

	err := engine.storeSimulationResult(context.Background(), result)
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreAggregatedResults(t *testing.T) {
	engine, mock := newMockedEngine(t)

	mock.ExpectExec("INSERT INTO simulation_aggregates").
		WithArgs(
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(),
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	aggregated := &models.AggregatedResult{
		RunID:                  "run-1",
		TotalSimulations:       100,
		TeamAWins:              58,
		TeamBWins:              40,
		Ties:                   2,
		TeamAWinProbability:    0.58,
		TeamBWinProbability:    0.40,
		TieProbability:         0.02,
		ExpectedTeamAScore:     161.3,
		ExpectedTeamBScore:     149.8,
		TeamAScoreDistribution: map[int]int{160: 12},
		TeamBScoreDistribution: map[int]int{150: 9},
		PlayerOfMatchCounts:    map[string]int{"str-bat1": 21},
		Statistics:             map[string]float64{"average_total": 311.1},
	}

	err := engine.storeAggregatedResults(context.Background(), aggregated)
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCalculateAggregatedResults(t *testing.T) {
	engine, _ := newMockedEngine(t)

	allOut := models.NewInnings()
	allOut.Score = 140
	allOut.Wickets = 10

	chased := models.NewInnings()
	chased.Score = 141
	chased.Wickets = 5

	results := []models.SimulationResult{
		{
			SimulationNumber: 2,
			TeamAScore:       140, TeamBScore: 141,
			Winner:          "team_b",
			PlayerOfMatchID: "def-bat1",
			Innings1:        allOut, Innings2: chased,
		},
		{
			SimulationNumber: 1,
			TeamAScore:       170, TeamBScore: 150,
			Winner:          "team_a",
			PlayerOfMatchID: "str-bat1",
		},
		{
			SimulationNumber: 3,
			TeamAScore:       160, TeamBScore: 160,
			Winner:          "tie",
			PlayerOfMatchID: "str-bat1",
		},
	}

	aggregated := engine.calculateAggregatedResults("run-1", results)

	assert.Equal(t, "run-1", aggregated.RunID)
	assert.Equal(t, 3, aggregated.TotalSimulations)
	assert.Equal(t, 1, aggregated.TeamAWins)
	assert.Equal(t, 1, aggregated.TeamBWins)
	assert.Equal(t, 1, aggregated.Ties)
	assert.InDelta(t, 1.0/3.0, aggregated.TeamAWinProbability, 1e-9)
	assert.InDelta(t, 1.0/3.0, aggregated.TieProbability, 1e-9)

	assert.InDelta(t, (140.0+170.0+160.0)/3.0, aggregated.ExpectedTeamAScore, 1e-9)
	assert.InDelta(t, (141.0+150.0+160.0)/3.0, aggregated.ExpectedTeamBScore, 1e-9)

	assert.Equal(t, 1, aggregated.TeamAScoreDistribution[140])
	assert.Equal(t, 1, aggregated.TeamBScoreDistribution[160])
	assert.Equal(t, 2, aggregated.PlayerOfMatchCounts["str-bat1"])
	assert.Equal(t, 1, aggregated.PlayerOfMatchCounts["def-bat1"])

	// One all-out innings across 6 innings, one successful chase, one tie
	assert.InDelta(t, 100.0/6.0, aggregated.Statistics["all_out_percentage"], 1e-9)
	assert.InDelta(t, 100.0/3.0, aggregated.Statistics["chase_success_percentage"], 1e-9)
	assert.InDelta(t, 100.0/3.0, aggregated.Statistics["tie_percentage"], 1e-9)
}

func TestCalculateAggregatedResultsEmpty(t *testing.T) {
	engine, _ := newMockedEngine(t)

	aggregated := engine.calculateAggregatedResults("run-1", nil)

	assert.Equal(t, "run-1", aggregated.RunID)
	assert.Equal(t, 0, aggregated.TotalSimulations)
}

func TestCalculateScoreVariance(t *testing.T) {
	engine, _ := newMockedEngine(t)

	results := []models.SimulationResult{
		{TeamAScore: 150, TeamBScore: 150}, // total 300
		{TeamAScore: 160, TeamBScore: 160}, // total 320
	}

	// Expected total 310, diffs -10 and +10
	variance := engine.calculateScoreVariance(results, 155, 155)
	assert.InDelta(t, 100.0, variance, 1e-9)
}

func TestGetRunResultFromMemory(t *testing.T) {
	engine, mock := newMockedEngine(t)

	cached := &models.AggregatedResult{RunID: "run-1", TotalSimulations: 100}
	engine.mu.Lock()
	engine.activeRuns["run-1"] = &RunStatus{RunID: "run-1", AggregatedResult: cached}
	engine.mu.Unlock()

	result, err := engine.GetRunResult(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Same(t, cached, result)

	// No database round trip for a cached run
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRunResultFromDatabase(t *testing.T) {
	engine, mock := newMockedEngine(t)

	rows := pgxmock.NewRows([]string{
		"run_id", "total_simulations", "team_a_wins", "team_b_wins", "ties",
		"team_a_win_probability", "team_b_win_probability", "tie_probability",
		"expected_team_a_score", "expected_team_b_score",
		"team_a_score_distribution", "team_b_score_distribution",
		"player_of_match_counts", "statistics",
	}).AddRow(
		"run-2", 100, 60, 38, 2,
		0.60, 0.38, 0.02,
		162.5, 151.0,
		[]byte(`{"160":12}`), []byte(`{"150":10}`),
		[]byte(`{"str-bat1":25}`), []byte(`{"average_total":313.5}`),
	)

	mock.ExpectQuery("SELECT run_id, total_simulations").
		WithArgs("run-2").
		WillReturnRows(rows)

	result, err := engine.GetRunResult(context.Background(), "run-2")
	require.NoError(t, err)

	assert.Equal(t, "run-2", result.RunID)
	assert.Equal(t, 60, result.TeamAWins)
	assert.InDelta(t, 0.02, result.TieProbability, 1e-9)
	assert.Equal(t, 12, result.TeamAScoreDistribution[160])
	assert.Equal(t, 25, result.PlayerOfMatchCounts["str-bat1"])
	assert.InDelta(t, 313.5, result.Statistics["average_total"], 1e-9)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRunResultNotFound(t *testing.T) {
	engine, mock := newMockedEngine(t)

	mock.ExpectQuery("SELECT run_id, total_simulations").
		WithArgs("missing").
		WillReturnError(assert.AnError)

	_, err := engine.GetRunResult(context.Background(), "missing")
	assert.Error(t, err)
}
