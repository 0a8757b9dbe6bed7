package model

import "errors"

// Sentinel kinds for roster and slot validation errors.
var (
	ErrEmptyName        = errors.New("person name must not be empty")
	ErrDuplicateName    = errors.New("duplicate person name")
	ErrEmptyEligibility = errors.New("person must be eligible for at least one slot")
	ErrUnknownSlot      = errors.New("unknown slot")
	ErrNoSlots          = errors.New("slot set must not be empty")
	ErrDuplicateSlot    = errors.New("duplicate slot")
)
