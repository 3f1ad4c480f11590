package roster

import (
	"regexp"
	"slices"
	"strings"

	"github.com/maxviazov/equalplay-service/internal/model"
)

// DefaultStatIcon is used when a custom stat is added without a glyph.
const DefaultStatIcon = "📊"

// ProtectedStatIDs can be disabled but never removed.
var ProtectedStatIDs = []string{"goals", "assists", "saves"}

// DefaultCustomStats is the initial stat catalogue.
func DefaultCustomStats() []model.CustomStat {
	return []model.CustomStat{
		{ID: "goals", Name: "Goals", Icon: "⚽", Enabled: true},
		{ID: "assists", Name: "Assists", Icon: "🅰️", Enabled: true},
		{ID: "saves", Name: "Saves", Icon: "🧤", Enabled: true},
		{ID: "shots", Name: "Shots", Icon: "🎯", Enabled: false},
		{ID: "steals", Name: "Steals", Icon: "🦶", Enabled: false},
		{ID: "blocks", Name: "Blocks", Icon: "🛡️", Enabled: false},
	}
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// StatID derives the stable identifier from a display name.
func StatID(name string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "_")
}

// AddCustomStat appends an enabled stat. Blank names and ids already in use are rejected.
func AddCustomStat(stats []model.CustomStat, name, icon string) ([]model.CustomStat, bool) {
	out := slices.Clone(stats)
	name = strings.TrimSpace(name)
	if name == "" {
		return out, false
	}
	id := StatID(name)
	for _, s := range stats {
		if s.ID == id {
			return out, false
		}
	}
	icon = strings.TrimSpace(icon)
	if icon == "" {
		icon = DefaultStatIcon
	}
	return append(out, model.CustomStat{ID: id, Name: name, Icon: icon, Enabled: true}), true
}

// RemoveCustomStat deletes a non-protected stat definition.
func RemoveCustomStat(stats []model.CustomStat, id string) ([]model.CustomStat, bool) {
	if slices.Contains(ProtectedStatIDs, id) {
		return slices.Clone(stats), false
	}
	out := make([]model.CustomStat, 0, len(stats))
	found := false
	for _, s := range stats {
		if s.ID == id {
			found = true
			continue
		}
		out = append(out, s)
	}
	return out, found
}

// ToggleCustomStat flips the enabled flag.
func ToggleCustomStat(stats []model.CustomStat, id string) ([]model.CustomStat, bool) {
	out := slices.Clone(stats)
	for i := range out {
		if out[i].ID == id {
			out[i].Enabled = !out[i].Enabled
			return out, true
		}
	}
	return out, false
}

// EnabledStats keeps the definitions shown to users and included in reports.
func EnabledStats(stats []model.CustomStat) []model.CustomStat {
	out := make([]model.CustomStat, 0, len(stats))
	for _, s := range stats {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}
