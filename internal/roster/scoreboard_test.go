package roster_test

import (
	"testing"

	"github.com/maxviazov/equalplay-service/internal/model"
	"github.com/maxviazov/equalplay-service/internal/roster"
	"github.com/stretchr/testify/assert"
)

func TestAdjustScore(t *testing.T) {
	sb := roster.DefaultScoreboard()
	assert.Equal(t, model.Scoreboard{HomeName: "Home", AwayName: "Away"}, sb)

	sb, ok := roster.AdjustScore(sb, roster.SideHome, 2)
	assert.True(t, ok)
	sb, _ = roster.AdjustScore(sb, roster.SideAway, 1)
	sb, _ = roster.AdjustScore(sb, roster.SideAway, -3)
	assert.Equal(t, 2, sb.HomeScore)
	assert.Equal(t, 0, sb.AwayScore)

	same, ok := roster.AdjustScore(sb, roster.Side("middle"), 1)
	assert.False(t, ok)
	assert.Equal(t, sb, same)
}

func TestRenameTeams(t *testing.T) {
	sb := roster.RenameTeams(roster.DefaultScoreboard(), " Tigers ", "")
	assert.Equal(t, "Tigers", sb.HomeName)
	assert.Equal(t, "Away", sb.AwayName)

	sb = roster.RenameTeams(sb, "  ", "Lions")
	assert.Equal(t, "Tigers", sb.HomeName)
	assert.Equal(t, "Lions", sb.AwayName)
}
