package simulation

import (
	"context"
	"fmt"
	"log"
	"time"

	"cricket-sim/models"
)

// League-average fallbacks for players with missing ratings. The clamps
// in the outcome model defuse zero or negative values, but sensible
// defaults keep simulated figures realistic.
const (
	defaultBattingAverage = 30.0
	defaultStrikeRate     = 100.0
	defaultBowlingAverage = 30.0
	defaultEconomyRate    = 6.0
)

// MatchData holds the match context needed to set up a simulation
type MatchData struct {
	MatchID string
	TeamAID string
	TeamBID string
	Format  models.Format
	Venue   string
	Date    time.Time
}

// loadMatchData retrieves match information from the database
func (se *SimulationEngine) loadMatchData(ctx context.Context, matchID string) (*MatchData, error) {
	var matchData MatchData
	var format string
	var venue *string

	query := `
		SELECT m.match_id, m.team_a_id, m.team_b_id, m.format, m.venue, m.match_date
		FROM matches m
		WHERE m.match_id = $1
	`

	err := se.db.QueryRow(ctx, query, matchID).Scan(
		&matchData.MatchID,
		&matchData.TeamAID,
		&matchData.TeamBID,
		&format,
		&venue,
		&matchData.Date,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load match data: %w", err)
	}

	matchData.Format = models.Format(format)
	if venue != nil {
		matchData.Venue = *venue
	}

	return &matchData, nil
}

// loadTeamRosters loads the rosters for both teams
func (se *SimulationEngine) loadTeamRosters(ctx context.Context, teamAID, teamBID string) (*models.Team, *models.Team, error) {
	teamA, err := se.loadTeamRoster(ctx, teamAID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load team A roster: %w", err)
	}

	teamB, err := se.loadTeamRoster(ctx, teamBID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load team B roster: %w", err)
	}

	return teamA, teamB, nil
}

// loadTeamRoster loads a single team's playing XI with rating profiles
func (se *SimulationEngine) loadTeamRoster(ctx context.Context, teamID string) (*models.Team, error) {
	team := &models.Team{ID: teamID}

	teamQuery := `SELECT name, country FROM teams WHERE id = $1`
	var country *string
	if err := se.db.QueryRow(ctx, teamQuery, teamID).Scan(&team.Name, &country); err != nil {
		return nil, fmt.Errorf("failed to load team %s: %w", teamID, err)
	}
	if country != nil {
		team.Country = *country
	}

	playersQuery := `
		SELECT p.id, p.name, p.role,
		       p.batting_average, p.strike_rate,
		       p.bowling_average, p.economy_rate,
		       p.wickets_taken
		FROM players p
		WHERE p.team_id = $1 AND p.status = 'active'
		ORDER BY p.name
	`

	rows, err := se.db.Query(ctx, playersQuery, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var player models.Player
		var role string
		var battingAvg, strikeRate, bowlingAvg, economy *float64
		var wickets *int

		err := rows.Scan(
			&player.ID,
			&player.Name,
			&role,
			&battingAvg,
			&strikeRate,
			&bowlingAvg,
			&economy,
			&wickets,
		)
		if err != nil {
			log.Printf("Error scanning player: %v", err)
			continue
		}

		player.TeamID = teamID
		player.Role = models.Role(role)
		player.Country = team.Country

		player.Batting.Average = floatOrDefault(battingAvg, defaultBattingAverage)
		player.Batting.StrikeRate = floatOrDefault(strikeRate, defaultStrikeRate)
		player.Bowling.Average = floatOrDefault(bowlingAvg, defaultBowlingAverage)
		player.Bowling.Economy = floatOrDefault(economy, defaultEconomyRate)
		if wickets != nil {
			player.Bowling.Wickets = *wickets
		}

		team.Players = append(team.Players, player)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read players: %w", err)
	}

	return team, nil
}

func floatOrDefault(value *float64, fallback float64) float64 {
	if value == nil || *value <= 0 {
		return fallback
	}
	return *value
}
