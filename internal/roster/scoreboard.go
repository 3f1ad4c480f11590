package roster

import (
	"strings"

	"github.com/maxviazov/equalplay-service/internal/model"
)

// Side selects which team a score change applies to.
type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
)

// DefaultScoreboard starts at nil-nil with generic names.
func DefaultScoreboard() model.Scoreboard {
	return model.Scoreboard{HomeName: "Home", AwayName: "Away"}
}

// AdjustScore adds delta to one side, flooring at zero.
func AdjustScore(sb model.Scoreboard, side Side, delta int) (model.Scoreboard, bool) {
	switch side {
	case SideHome:
		sb.HomeScore = max(0, sb.HomeScore+delta)
	case SideAway:
		sb.AwayScore = max(0, sb.AwayScore+delta)
	default:
		return sb, false
	}
	return sb, true
}

// RenameTeams updates team names; a blank name keeps the current one.
func RenameTeams(sb model.Scoreboard, home, away string) model.Scoreboard {
	if h := strings.TrimSpace(home); h != "" {
		sb.HomeName = h
	}
	if a := strings.TrimSpace(away); a != "" {
		sb.AwayName = a
	}
	return sb
}
