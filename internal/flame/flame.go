// Package flame derives the per-category activity temperature shown on the
// dashboard. The state is a pure function of the last activity timestamp and
// is recomputed on every read; nothing here is stored.
package flame

// State classifies how recently a category had activity.
type State string

const (
	// StateOff means the category never had any recorded activity.
	StateOff State = "off"
	// StateActive means the last activity falls on or after local midnight.
	StateActive State = "active"
	// StateGrace means no activity today, but still within the grace window.
	StateGrace State = "grace"
	// StateCold means the grace window has passed.
	StateCold State = "cold"
)

// Burning reports whether the state still counts toward the master percent.
func (s State) Burning() bool {
	return s == StateActive || s == StateGrace
}
