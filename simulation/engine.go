package simulation

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"cricket-sim/models"
)

// DB is the subset of pgxpool.Pool the engine uses. Both a live pool and
// pgxmock satisfy it, which keeps the storage layer testable without a
// database.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// SimulationEngine runs batches of independent match simulations
type SimulationEngine struct {
	db             DB
	workers        int
	simulationRuns int
	mu             sync.RWMutex
	activeRuns     map[string]*RunStatus
}

// RunStatus tracks the progress of a simulation run
type RunStatus struct {
	RunID            string
	MatchID          string
	Seed             int64
	TotalRuns        int
	CompletedRuns    int
	Status           string
	StartTime        time.Time
	CompletedTime    *time.Time
	Results          []models.SimulationResult
	AggregatedResult *models.AggregatedResult
}

// NewSimulationEngine creates a new simulation engine
func NewSimulationEngine(db DB, workers, simulationRuns int) *SimulationEngine {
	return &SimulationEngine{
		db:             db,
		workers:        workers,
		simulationRuns: simulationRuns,
		activeRuns:     make(map[string]*RunStatus),
	}
}

// RunSimulation executes a complete simulation run: it loads the match
// and both rosters, simulates the match simulationRuns times across the
// worker pool, and stores per-simulation and aggregated results.
// Simulation i uses seed+i, so any single simulation can be reproduced
// from the run's recorded base seed.
func (se *SimulationEngine) RunSimulation(runID, matchID string, simulationRuns int, seed int64) {
	ctx := context.Background()

	se.updateRunStatus(runID, "running")

	startTime := time.Now()
	se.mu.Lock()
	se.activeRuns[runID] = &RunStatus{
		RunID:     runID,
		MatchID:   matchID,
		Seed:      seed,
		TotalRuns: simulationRuns,
		Status:    "running",
		StartTime: startTime,
		Results:   make([]models.SimulationResult, 0, simulationRuns),
	}
	se.mu.Unlock()

	matchData, err := se.loadMatchData(ctx, matchID)
	if err != nil {
		log.Printf("Failed to load match data for %s: %v", matchID, err)
		se.updateRunStatus(runID, "error")
		return
	}

	teamA, teamB, err := se.loadTeamRosters(ctx, matchData.TeamAID, matchData.TeamBID)
	if err != nil {
		log.Printf("Failed to load team rosters for %s: %v", matchID, err)
		se.updateRunStatus(runID, "error")
		return
	}

	// Fail the whole run up front if either side cannot field an innings,
	// rather than erroring once per worker.
	if err := validateRosters(teamA, teamB); err != nil {
		log.Printf("Roster check failed for %s: %v", matchID, err)
		se.updateRunStatus(runID, "error")
		return
	}

	resultsChan := make(chan models.SimulationResult, simulationRuns)
	var wg sync.WaitGroup

	simulationsPerWorker := simulationRuns / se.workers
	remainder := simulationRuns % se.workers

	// Teams are read-only during simulation, so workers share them.
	start := 0
	for i := 0; i < se.workers; i++ {
		workerSims := simulationsPerWorker
		if i < remainder {
			workerSims++
		}

		wg.Add(1)
		go func(first, simCount int) {
			defer wg.Done()

			for j := 0; j < simCount; j++ {
				simNumber := first + j + 1
				result, err := se.simulateOne(runID, simNumber, matchData, teamA, teamB, seed+int64(simNumber))
				if err != nil {
					log.Printf("Simulation %d of run %s failed: %v", simNumber, runID, err)
					continue
				}
				resultsChan <- result
				se.updateProgress(runID)
			}
		}(start, workerSims)
		start += workerSims
	}

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	var results []models.SimulationResult
	for result := range resultsChan {
		results = append(results, result)

		if err := se.storeSimulationResult(ctx, result); err != nil {
			log.Printf("Failed to store simulation result: %v", err)
		}
	}

	aggregated := se.calculateAggregatedResults(runID, results)

	if err := se.storeAggregatedResults(ctx, aggregated); err != nil {
		log.Printf("Failed to store aggregated results: %v", err)
	}

	se.mu.Lock()
	if status, exists := se.activeRuns[runID]; exists {
		status.Status = "completed"
		status.CompletedRuns = len(results)
		completedTime := time.Now()
		status.CompletedTime = &completedTime
		status.Results = results
		status.AggregatedResult = aggregated
	}
	se.mu.Unlock()

	se.updateRunStatus(runID, "completed")

	log.Printf("Simulation run %s completed: %d simulations in %v",
		runID, len(results), time.Since(startTime))
}

// simulateOne simulates a single match with its own seeded random source
func (se *SimulationEngine) simulateOne(runID string, simNumber int, matchData *MatchData,
	teamA, teamB *models.Team, seed int64) (models.SimulationResult, error) {

	match := models.NewMatch(matchData.MatchID, teamA, teamB, matchData.Format)
	match.Venue = matchData.Venue

	simulator := NewMatchSimulator(match, seed)
	if _, err := simulator.SimulateMatch(); err != nil {
		return models.SimulationResult{}, err
	}

	winner := "tie"
	switch match.Winner {
	case teamA:
		winner = "team_a"
	case teamB:
		winner = "team_b"
	}

	result := models.SimulationResult{
		RunID:            runID,
		SimulationNumber: simNumber,
		Seed:             seed,
		TeamAScore:       match.TeamAScore,
		TeamAWickets:     match.TeamAWickets,
		TeamAOvers:       match.TeamAOvers,
		TeamBScore:       match.TeamBScore,
		TeamBWickets:     match.TeamBWickets,
		TeamBOvers:       match.TeamBOvers,
		Winner:           winner,
		ResultText:       match.ResultText,
		Innings1:         match.Innings1,
		Innings2:         match.Innings2,
		CreatedAt:        time.Now(),
	}
	if match.PlayerOfMatch != nil {
		result.PlayerOfMatchID = match.PlayerOfMatch.ID
	}

	return result, nil
}

// validateRosters checks both sides can field the minimum batting and
// bowling resources before any simulation starts
func validateRosters(teamA, teamB *models.Team) error {
	for _, team := range []*models.Team{teamA, teamB} {
		if len(team.BattingOrder()) < 2 {
			return &RosterInsufficientError{Team: team.Name, Reason: "needs at least 2 batters"}
		}
		if len(team.Bowlers()) < 1 {
			return &RosterInsufficientError{Team: team.Name, Reason: "needs at least 1 bowler"}
		}
	}
	return nil
}

// GetRunStatus returns the in-memory status of a simulation run
func (se *SimulationEngine) GetRunStatus(runID string) (*RunStatus, bool) {
	se.mu.RLock()
	defer se.mu.RUnlock()

	status, exists := se.activeRuns[runID]
	return status, exists
}

// CleanupOldRuns removes old simulation runs from memory
func (se *SimulationEngine) CleanupOldRuns() {
	se.mu.Lock()
	defer se.mu.Unlock()

	cutoff := time.Now().Add(-24 * time.Hour)

	for runID, status := range se.activeRuns {
		if status.StartTime.Before(cutoff) {
			delete(se.activeRuns, runID)
		}
	}
}

func (se *SimulationEngine) activeRunsCount() int {
	se.mu.RLock()
	defer se.mu.RUnlock()
	return len(se.activeRuns)
}

// StartPerformanceMonitoring starts the background cleanup loop
func (se *SimulationEngine) StartPerformanceMonitoring() {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			se.CleanupOldRuns()
			log.Printf("Simulation engine cleanup: %d active runs", se.activeRunsCount())
		}
	}()
}
