// Package types contains the request and response shapes shared by the
// service, the HTTP API and the CLI.
package types

import (
	"time"

	"github.com/okian/dutyrota/internal/domain/model"
	"github.com/okian/dutyrota/internal/domain/rotation"
)

// AllocateRequest asks for one allocation run.
type AllocateRequest struct {
	// Absent lists roster names that are unavailable today.
	Absent []string `json:"absent"`
	// RequestID makes the call idempotent: a repeated id returns the
	// recorded result instead of advancing the rotation again.
	RequestID string `json:"request_id,omitempty"`
}

// Allocation is the applied outcome of one run.
type Allocation struct {
	RunID       string                    `json:"run_id"`
	RequestID   string                    `json:"request_id,omitempty"`
	At          time.Time                 `json:"at"`
	Absent      []string                  `json:"absent"`
	Assignments []rotation.SlotAssignment `json:"assignments"`
	Warnings    []rotation.Warning        `json:"warnings"`
	History     model.History             `json:"history"`
	Replayed    bool                      `json:"replayed"`
}

// Clone returns a deep copy.
func (a Allocation) Clone() Allocation {
	a.Absent = append([]string{}, a.Absent...)
	a.Assignments = append([]rotation.SlotAssignment{}, a.Assignments...)
	a.Warnings = append([]rotation.Warning{}, a.Warnings...)
	a.History = a.History.Clone()
	return a
}

// CycleProgress counts how far a slot's cycle has advanced.
type CycleProgress struct {
	Worked   int `json:"worked"`
	Eligible int `json:"eligible"`
}

// Stats is a point-in-time summary of the service.
type Stats struct {
	Started            bool                           `json:"started"`
	Slots              []model.SlotID                 `json:"slots"`
	People             int                            `json:"people"`
	Runs               int64                          `json:"runs"`
	LastRunAt          *time.Time                     `json:"lastRunAt,omitempty"`
	IdempotencyEntries int64                          `json:"idempotencyEntries"`
	Cycles             map[model.SlotID]CycleProgress `json:"cycles"`
}
