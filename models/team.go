package models

import (
	"sort"
)

// Sentinel used when ordering bowlers without a recorded average, so
// unrated bowlers sort behind everyone with figures.
const unratedBowlingAverage = 999.0

// Team represents a cricket team and its playing XI
type Team struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Country string   `json:"country,omitempty"`
	Players []Player `json:"players"`
}

// Player returns the roster entry with the given ID, or nil
func (t *Team) Player(id string) *Player {
	for i := range t.Players {
		if t.Players[i].ID == id {
			return &t.Players[i]
		}
	}
	return nil
}

// PlayersByRole returns the roster entries with the given role
func (t *Team) PlayersByRole(role Role) []*Player {
	var players []*Player
	for i := range t.Players {
		if t.Players[i].Role == role {
			players = append(players, &t.Players[i])
		}
	}
	return players
}

// BattingOrder returns the side's batting order: the top three specialist
// batsmen, then wicket-keepers, then all-rounders, then the remaining
// batsmen, with bowlers at the tail. Each group is sorted by descending
// batting average.
func (t *Team) BattingOrder() []*Player {
	batsmen := t.PlayersByRole(RoleBatsman)
	keepers := t.PlayersByRole(RoleWicketKeeper)
	allRounders := t.PlayersByRole(RoleAllRounder)
	bowlers := t.PlayersByRole(RoleBowler)

	for _, group := range [][]*Player{batsmen, keepers, allRounders, bowlers} {
		group := group
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Batting.Average > group[j].Batting.Average
		})
	}

	order := make([]*Player, 0, len(t.Players))

	topBatsmen := batsmen
	if len(topBatsmen) > 3 {
		topBatsmen = batsmen[:3]
	}
	order = append(order, topBatsmen...)
	order = append(order, keepers...)
	order = append(order, allRounders...)
	if len(batsmen) > 3 {
		order = append(order, batsmen[3:]...)
	}
	order = append(order, bowlers...)

	return order
}

// Bowlers returns everyone who can bowl: specialist bowlers first, then
// all-rounders, each group sorted by ascending bowling average with
// unrated bowlers last.
func (t *Team) Bowlers() []*Player {
	bowlers := t.PlayersByRole(RoleBowler)
	allRounders := t.PlayersByRole(RoleAllRounder)

	byBowlingAverage := func(group []*Player) {
		sort.SliceStable(group, func(i, j int) bool {
			return ratedAverage(group[i]) < ratedAverage(group[j])
		})
	}
	byBowlingAverage(bowlers)
	byBowlingAverage(allRounders)

	return append(bowlers, allRounders...)
}

func ratedAverage(p *Player) float64 {
	if p.Bowling.Average > 0 {
		return p.Bowling.Average
	}
	return unratedBowlingAverage
}
