// Package mirror keeps the UI's copy of the backend configuration.
//
// Every field carries its own edit state so a failed mutation rolls back
// only that field, and responses to superseded edits are ignored.
package mirror

// State is the lifecycle of a field's most recent edit.
type State int

const (
	// Idle: no edit issued since the last full load.
	Idle State = iota
	// Pending: an optimistic value is shown and a request is in flight.
	Pending
	// Confirmed: the backend accepted the latest edit.
	Confirmed
	// RolledBack: the backend rejected the latest edit and the value was restored.
	RolledBack
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Confirmed:
		return "confirmed"
	case RolledBack:
		return "rolled-back"
	default:
		return "unknown"
	}
}

// Edit identifies one optimistic update so its outcome can be matched to it.
type Edit[T comparable] struct {
	Seq      uint64
	Value    T
	Previous T
}

// Field is a single mirrored value with an explicit edit state.
//
// Besides the displayed value it remembers the last value the backend is
// known to hold, so a failed edit never restores a value that was itself
// only optimistic.
type Field[T comparable] struct {
	value T
	state State
	seq   uint64

	confirmed    T
	confirmedSeq uint64
}

func (f *Field[T]) init(v T) {
	f.value = v
	f.confirmed = v
}

// Value returns the displayed value.
func (f *Field[T]) Value() T { return f.value }

// State returns the state of the latest edit.
func (f *Field[T]) State() State { return f.state }

// Seq returns the sequence number of the latest issued edit.
func (f *Field[T]) Seq() uint64 { return f.seq }

// ApplyConfirmed overwrites the value with backend truth. Any edit still in
// flight is superseded, so its eventual response is ignored.
func (f *Field[T]) ApplyConfirmed(v T) {
	f.value = v
	f.confirmed = v
	f.state = Idle
	f.seq++
	f.confirmedSeq = f.seq
}

// Confirmed returns the last value the backend is known to hold.
func (f *Field[T]) Confirmed() T { return f.confirmed }

// ApplyOptimistic shows v immediately and returns the edit to send. A new
// edit while one is pending simply supersedes it.
func (f *Field[T]) ApplyOptimistic(v T) Edit[T] {
	f.seq++
	e := Edit[T]{Seq: f.seq, Value: v, Previous: f.value}
	f.value = v
	f.state = Pending
	return e
}

// Rollback restores previous unconditionally.
func (f *Field[T]) Rollback(previous T) {
	f.value = previous
	f.state = RolledBack
}

// Resolve settles e with the backend outcome. It reports false when e is no
// longer the latest edit of the field. A superseded edit that succeeded still
// updates the known backend value; if the latest edit already failed, the
// display follows it.
//
// A failed latest edit rolls back to the known backend value, not to
// e.Previous, which may have come from an edit the backend also rejected.
func (f *Field[T]) Resolve(e Edit[T], err error) bool {
	if e.Seq != f.seq {
		if err == nil && e.Seq > f.confirmedSeq {
			f.confirmed = e.Value
			f.confirmedSeq = e.Seq
			if f.state == RolledBack {
				f.value = e.Value
			}
		}
		return false
	}
	if err != nil {
		f.Rollback(f.confirmed)
		return true
	}
	f.confirmed = e.Value
	f.confirmedSeq = e.Seq
	f.state = Confirmed
	return true
}
