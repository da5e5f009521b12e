package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"

	"cricket-sim/simulation"
)

type Server struct {
	db         *pgxpool.Pool
	router     *mux.Router
	httpServer *http.Server
	config     *Config
	simEngine  *simulation.SimulationEngine
}

type Config struct {
	Port           string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	Workers        int
	SimulationRuns int
}

type SimulationRequest struct {
	MatchID        string `json:"match_id"`
	SimulationRuns int    `json:"simulation_runs,omitempty"`
	Seed           *int64 `json:"seed,omitempty"`
}

type SimulationResponse struct {
	RunID     string    `json:"run_id"`
	Status    string    `json:"status"`
	Seed      int64     `json:"seed"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type SimulationStatus struct {
	RunID         string     `json:"run_id"`
	MatchID       string     `json:"match_id"`
	Status        string     `json:"status"`
	Seed          int64      `json:"seed"`
	TotalRuns     int        `json:"total_runs"`
	CompletedRuns int        `json:"completed_runs"`
	Progress      float64    `json:"progress"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

func NewConfig() *Config {
	workers := runtime.NumCPU()
	if envWorkers := os.Getenv("WORKERS"); envWorkers != "" {
		fmt.Sscanf(envWorkers, "%d", &workers)
	}

	simulationRuns := 1000
	if envRuns := os.Getenv("SIMULATION_RUNS"); envRuns != "" {
		fmt.Sscanf(envRuns, "%d", &simulationRuns)
	}

	return &Config{
		Port:           getEnv("PORT", "8081"),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "cricket_user"),
		DBPassword:     getEnv("DB_PASSWORD", "cricket_pass"),
		DBName:         getEnv("DB_NAME", "cricket_sim"),
		Workers:        workers,
		SimulationRuns: simulationRuns,
	}
}

func NewServer(config *Config) (*Server, error) {
	dbURL := fmt.Sprintf("postgresql://%s:%s@%s:%s/%s",
		config.DBUser, config.DBPassword, config.DBHost, config.DBPort, config.DBName)

	dbConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse db config: %w", err)
	}

	dbConfig.MaxConns = int32(config.Workers * 2)
	dbConfig.MinConns = int32(config.Workers / 2)
	dbConfig.MaxConnLifetime = time.Hour
	dbConfig.MaxConnIdleTime = time.Minute * 30

	db, err := pgxpool.NewWithConfig(context.Background(), dbConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	simEngine := simulation.NewSimulationEngine(db, config.Workers, config.SimulationRuns)
	simEngine.StartPerformanceMonitoring()

	s := &Server{
		db:        db,
		config:    config,
		router:    mux.NewRouter(),
		simEngine: simEngine,
	}

	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.healthHandler).Methods("GET")

	s.router.HandleFunc("/simulate", s.simulateHandler).Methods("POST")
	s.router.HandleFunc("/simulation/{id}/status", s.simulationStatusHandler).Methods("GET")
	s.router.HandleFunc("/simulation/{id}/result", s.simulationResultHandler).Methods("GET")

	// Batch endpoint covering every scheduled match on a date
	s.router.HandleFunc("/simulate/scheduled", s.simulateScheduledHandler).Methods("POST")
}

func (s *Server) Start() error {
	handler := cors.Default().Handler(s.router)
	handler = handlers.LoggingHandler(os.Stdout, handler)
	handler = handlers.RecoveryHandler()(handler)

	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // simulations respond slowly under load
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Starting cricket simulation engine on port %s with %d workers",
		s.config.Port, s.config.Workers)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down simulation engine...")

	s.db.Close()

	return s.httpServer.Shutdown(ctx)
}

// Handlers

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":   "healthy",
		"time":     time.Now().UTC(),
		"workers":  s.config.Workers,
		"database": "connected",
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.Ping(ctx); err != nil {
		health["database"] = "disconnected"
		health["status"] = "unhealthy"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	writeJSON(w, health)
}

func (s *Server) simulateHandler(w http.ResponseWriter, r *http.Request) {
	var req SimulationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var matchExists bool
	err := s.db.QueryRow(r.Context(),
		"SELECT EXISTS(SELECT 1 FROM matches WHERE match_id = $1)",
		req.MatchID).Scan(&matchExists)
	if err != nil {
		log.Printf("Database error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if !matchExists {
		http.Error(w, "Match not found", http.StatusNotFound)
		return
	}

	runID := uuid.New().String()
	simulationRuns := req.SimulationRuns
	if simulationRuns == 0 {
		simulationRuns = s.config.SimulationRuns
	}

	// The seed is recorded with the run so any simulation can be replayed
	seed := time.Now().UnixNano()
	if req.Seed != nil {
		seed = *req.Seed
	}

	_, err = s.db.Exec(r.Context(), `
		INSERT INTO simulation_runs (id, match_id, seed, total_runs, status)
		VALUES ($1, (SELECT id FROM matches WHERE match_id = $2), $3, $4, 'pending')
	`, runID, req.MatchID, seed, simulationRuns)
	if err != nil {
		log.Printf("Failed to create simulation run: %v", err)
		http.Error(w, "Failed to create simulation", http.StatusInternalServerError)
		return
	}

	go s.simEngine.RunSimulation(runID, req.MatchID, simulationRuns, seed)

	response := SimulationResponse{
		RunID:     runID,
		Status:    "started",
		Seed:      seed,
		Message:   fmt.Sprintf("Simulation started with %d runs", simulationRuns),
		CreatedAt: time.Now().UTC(),
	}

	writeJSON(w, response)
}

func (s *Server) simulationStatusHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	runID := vars["id"]

	if runStatus, exists := s.simEngine.GetRunStatus(runID); exists {
		status := SimulationStatus{
			RunID:         runStatus.RunID,
			MatchID:       runStatus.MatchID,
			Status:        runStatus.Status,
			Seed:          runStatus.Seed,
			TotalRuns:     runStatus.TotalRuns,
			CompletedRuns: runStatus.CompletedRuns,
			Progress:      float64(runStatus.CompletedRuns) / float64(runStatus.TotalRuns),
			CreatedAt:     runStatus.StartTime,
			CompletedAt:   runStatus.CompletedTime,
		}
		writeJSON(w, status)
		return
	}

	// Fall back to the database for runs evicted from memory
	var status SimulationStatus

	err := s.db.QueryRow(r.Context(), `
		SELECT sr.id, m.match_id, sr.status, sr.seed, sr.total_runs, sr.completed_runs,
		       sr.created_at, sr.completed_at
		FROM simulation_runs sr
		JOIN matches m ON sr.match_id = m.id
		WHERE sr.id = $1
	`, runID).Scan(&status.RunID, &status.MatchID, &status.Status, &status.Seed,
		&status.TotalRuns, &status.CompletedRuns, &status.CreatedAt, &status.CompletedAt)
	if err != nil {
		http.Error(w, "Simulation not found", http.StatusNotFound)
		return
	}

	if status.TotalRuns > 0 {
		status.Progress = float64(status.CompletedRuns) / float64(status.TotalRuns)
	}

	writeJSON(w, status)
}

func (s *Server) simulationResultHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	runID := vars["id"]

	var status string
	err := s.db.QueryRow(r.Context(),
		"SELECT status FROM simulation_runs WHERE id = $1", runID).Scan(&status)
	if err != nil {
		http.Error(w, "Simulation not found", http.StatusNotFound)
		return
	}

	if status != "completed" {
		http.Error(w, "Simulation not yet complete", http.StatusAccepted)
		return
	}

	aggregatedResult, err := s.simEngine.GetRunResult(r.Context(), runID)
	if err != nil {
		log.Printf("Failed to get simulation results: %v", err)
		http.Error(w, "Results not available", http.StatusInternalServerError)
		return
	}

	writeJSON(w, aggregatedResult)
}

// ScheduledSimulationRequest batch-simulates every scheduled match on a date
type ScheduledSimulationRequest struct {
	Date           string `json:"date"` // YYYY-MM-DD, defaults to today
	SimulationRuns int    `json:"simulation_runs,omitempty"`
	Seed           *int64 `json:"seed,omitempty"`
}

type ScheduledSimulationResponse struct {
	Date        string            `json:"date"`
	MatchCount  int               `json:"match_count"`
	Simulations []MatchSimulation `json:"simulations"`
	StartedAt   time.Time         `json:"started_at"`
	Message     string            `json:"message"`
}

type MatchSimulation struct {
	MatchID string `json:"match_id"`
	TeamA   string `json:"team_a"`
	TeamB   string `json:"team_b"`
	RunID   string `json:"run_id"`
	Seed    int64  `json:"seed"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) simulateScheduledHandler(w http.ResponseWriter, r *http.Request) {
	var req ScheduledSimulationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// Empty body means defaults
		req.Date = time.Now().Format("2006-01-02")
	}

	var targetDate time.Time
	var err error
	if req.Date == "" {
		targetDate = time.Now()
	} else {
		targetDate, err = time.Parse("2006-01-02", req.Date)
		if err != nil {
			http.Error(w, "Invalid date format, use YYYY-MM-DD", http.StatusBadRequest)
			return
		}
	}

	query := `
		SELECT m.match_id, ta.name AS team_a, tb.name AS team_b
		FROM matches m
		JOIN teams ta ON m.team_a_id = ta.id
		JOIN teams tb ON m.team_b_id = tb.id
		WHERE m.match_date = $1 AND m.status = 'scheduled'
		ORDER BY m.match_id
	`

	rows, err := s.db.Query(r.Context(), query, targetDate)
	if err != nil {
		log.Printf("Failed to query matches: %v", err)
		http.Error(w, "Failed to query matches", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	var matches []struct {
		MatchID string
		TeamA   string
		TeamB   string
	}

	for rows.Next() {
		var m struct {
			MatchID string
			TeamA   string
			TeamB   string
		}
		if err := rows.Scan(&m.MatchID, &m.TeamA, &m.TeamB); err != nil {
			log.Printf("Error scanning match: %v", err)
			continue
		}
		matches = append(matches, m)
	}

	if len(matches) == 0 {
		response := ScheduledSimulationResponse{
			Date:        targetDate.Format("2006-01-02"),
			MatchCount:  0,
			Simulations: []MatchSimulation{},
			StartedAt:   time.Now(),
			Message:     "No scheduled matches found for this date",
		}
		writeJSON(w, response)
		return
	}

	simulationRuns := req.SimulationRuns
	if simulationRuns == 0 {
		simulationRuns = s.config.SimulationRuns
	}

	var simulations []MatchSimulation

	for i, match := range matches {
		runID := uuid.New().String()

		seed := time.Now().UnixNano()
		if req.Seed != nil {
			// Spread the requested seed so matches in the batch differ
			seed = *req.Seed + int64(i)*1_000_000
		}

		_, err = s.db.Exec(r.Context(), `
			INSERT INTO simulation_runs (id, match_id, seed, total_runs, status)
			VALUES ($1, (SELECT id FROM matches WHERE match_id = $2), $3, $4, 'pending')
		`, runID, match.MatchID, seed, simulationRuns)
		if err != nil {
			log.Printf("Failed to create simulation run for match %s: %v", match.MatchID, err)
			simulations = append(simulations, MatchSimulation{
				MatchID: match.MatchID,
				TeamA:   match.TeamA,
				TeamB:   match.TeamB,
				RunID:   runID,
				Status:  "error",
				Error:   fmt.Sprintf("Failed to create simulation: %v", err),
			})
			continue
		}

		go s.simEngine.RunSimulation(runID, match.MatchID, simulationRuns, seed)

		simulations = append(simulations, MatchSimulation{
			MatchID: match.MatchID,
			TeamA:   match.TeamA,
			TeamB:   match.TeamB,
			RunID:   runID,
			Seed:    seed,
			Status:  "started",
		})

		log.Printf("Started simulation for match %s (%s vs %s)", match.MatchID, match.TeamA, match.TeamB)
	}

	response := ScheduledSimulationResponse{
		Date:        targetDate.Format("2006-01-02"),
		MatchCount:  len(matches),
		Simulations: simulations,
		StartedAt:   time.Now(),
		Message:     fmt.Sprintf("Started simulations for %d matches", len(simulations)),
	}

	writeJSON(w, response)
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	config := NewConfig()

	server, err := NewServer(config)
	if err != nil {
		log.Fatal("Failed to create server:", err)
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Fatal("Server shutdown failed:", err)
		}
		log.Println("Server shutdown complete")
	}()

	if err := server.Start(); err != nil && err != http.ErrServerClosed {
		log.Fatal("Server failed to start:", err)
	}
}
