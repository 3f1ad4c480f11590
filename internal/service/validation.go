package service

import (
	"strings"

	"github.com/maxviazov/equalplay-service/internal/roster"
)

func invalidField(field, msg string) error {
	return NewInvalidInputError([]FieldError{{Field: field, Message: msg}})
}

func isProtectedStat(id string) bool {
	id = strings.TrimSpace(id)
	for _, p := range roster.ProtectedStatIDs {
		if p == id {
			return true
		}
	}
	return false
}

func isValidSide(side roster.Side) bool {
	switch side {
	case roster.SideHome, roster.SideAway:
		return true
	default:
		return false
	}
}
