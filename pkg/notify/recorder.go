package notify

import "fmt"

// Kind tags a recorded Event.
type Kind int

const (
	Inserted Kind = iota
	Removed
	Changed
	Moved
)

func (k Kind) String() string {
	switch k {
	case Inserted:
		return "inserted"
	case Removed:
		return "removed"
	case Changed:
		return "changed"
	case Moved:
		return "moved"
	default:
		return "unknown"
	}
}

// Event is one recorded notification. For Moved, Start is the source
// position and To the destination; Count is 1.
type Event struct {
	Kind    Kind
	Start   int
	Count   int
	To      int
	Payload Payload
}

func (e Event) String() string {
	switch e.Kind {
	case Moved:
		return fmt.Sprintf("moved(%d->%d)", e.Start, e.To)
	case Changed:
		return fmt.Sprintf("changed(%d,%d,%s)", e.Start, e.Count, e.Payload)
	default:
		return fmt.Sprintf("%s(%d,%d)", e.Kind, e.Start, e.Count)
	}
}

// Recorder keeps every event it observes.
type Recorder struct {
	Events []Event
}

func (r *Recorder) ItemRangeInserted(start, count int) {
	r.Events = append(r.Events, Event{Kind: Inserted, Start: start, Count: count})
}

func (r *Recorder) ItemRangeRemoved(start, count int) {
	r.Events = append(r.Events, Event{Kind: Removed, Start: start, Count: count})
}

func (r *Recorder) ItemRangeChanged(start, count int, payload Payload) {
	r.Events = append(r.Events, Event{Kind: Changed, Start: start, Count: count, Payload: payload})
}

func (r *Recorder) ItemMoved(from, to int) {
	r.Events = append(r.Events, Event{Kind: Moved, Start: from, Count: 1, To: to})
}

// Reset drops recorded events.
func (r *Recorder) Reset() { r.Events = r.Events[:0] }

// Structural returns the recorded events that change the row layout.
func (r *Recorder) Structural() []Event {
	var out []Event
	for _, e := range r.Events {
		if e.Kind != Changed {
			out = append(out, e)
		}
	}
	return out
}

// Count returns how many events of kind k were recorded.
func (r *Recorder) Count(k Kind) int {
	n := 0
	for _, e := range r.Events {
		if e.Kind == k {
			n++
		}
	}
	return n
}
