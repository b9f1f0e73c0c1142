package models

import (
	"time"

	id "liaison/pkg/domain"
)

// Profile accumulates per-owner activity counters. Counters only ever grow:
// retiring a declaration or seeing a match never decrements them, so the
// profile reads as lifetime totals.
type Profile struct {
	UserID            id.UserID
	TotalDeclarations int64
	TotalAlerts       int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
