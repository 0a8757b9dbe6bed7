package rotation

import "github.com/okian/dutyrota/internal/domain/model"

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithSlots sets the ordered slot set the engine fills. Empty sets are ignored.
func WithSlots(slots model.Slots) Option {
	return func(e *Engine) {
		if len(slots) > 0 {
			e.slots = append(model.Slots(nil), slots...)
		}
	}
}
