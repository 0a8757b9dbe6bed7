package rotation

import "errors"

// Sentinel kinds for allocation errors. A run that returns any of these has
// not been applied.
var (
	ErrInsufficientHeadcount = errors.New("not enough people available to fill every slot")
	ErrEmptyRoster           = errors.New("roster is empty")
	ErrUnknownAbsentee       = errors.New("absent person is not on the roster")
)
