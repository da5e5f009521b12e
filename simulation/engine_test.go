package simulation

import (
	"testing"
	"time"

	"cricket-sim/models"
)

func TestGetRunStatus(t *testing.T) {
	engine := NewSimulationEngine(nil, 4, 100)

	if _, exists := engine.GetRunStatus("missing"); exists {
		t.Error("unknown run reported as active")
	}

	engine.mu.Lock()
	engine.activeRuns["run-1"] = &RunStatus{RunID: "run-1", Status: "running", TotalRuns: 100}
	engine.mu.Unlock()

	status, exists := engine.GetRunStatus("run-1")
	if !exists {
		t.Fatal("active run not found")
	}
	if status.Status != "running" || status.TotalRuns != 100 {
		t.Errorf("status = %+v", status)
	}
}

func TestCleanupOldRuns(t *testing.T) {
	engine := NewSimulationEngine(nil, 4, 100)

	engine.mu.Lock()
	engine.activeRuns["stale"] = &RunStatus{RunID: "stale", StartTime: time.Now().Add(-25 * time.Hour)}
	engine.activeRuns["fresh"] = &RunStatus{RunID: "fresh", StartTime: time.Now().Add(-1 * time.Hour)}
	engine.mu.Unlock()

	engine.CleanupOldRuns()

	if _, exists := engine.GetRunStatus("stale"); exists {
		t.Error("stale run survived cleanup")
	}
	if _, exists := engine.GetRunStatus("fresh"); !exists {
		t.Error("fresh run removed by cleanup")
	}
}

func TestValidateRosters(t *testing.T) {
	full := balancedXI("Full Strength", "ful")
	noBowlers := &models.Team{
		Name: "No Bowlers",
		Players: []models.Player{
			{ID: "nb1", Role: models.RoleBatsman},
			{ID: "nb2", Role: models.RoleBatsman},
		},
	}
	oneBatter := &models.Team{
		Name: "Short Side",
		Players: []models.Player{
			{ID: "solo", Role: models.RoleAllRounder},
		},
	}

	if err := validateRosters(full, balancedXI("Other", "oth")); err != nil {
		t.Errorf("full rosters rejected: %v", err)
	}
	if err := validateRosters(full, noBowlers); err == nil {
		t.Error("bowler-less side accepted")
	}
	if err := validateRosters(oneBatter, full); err == nil {
		t.Error("one-batter side accepted")
	}
}
