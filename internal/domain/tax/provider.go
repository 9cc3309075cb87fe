package tax

import "time"

// Provider resolves the tax table in effect at a point in time.
type Provider interface {
	TableAt(at time.Time) (Table, error)
}
