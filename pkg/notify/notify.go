// Package notify defines the structural change stream a list emits.
//
// Every mutation of a list reports itself as a sequence of primitive
// events. Applied in order to a copy of the list, the events reproduce
// the list exactly; renderers depend on that to animate incrementally.
package notify

// Payload describes why a row changed so a renderer can re-bind only
// what is affected.
type Payload int

const (
	None Payload = iota
	Change
	NoMoreLoad
	Filter
	Undo
	AddSubItem
	RemSubItem
	Move
	Link
	Unlink
	Selection
	Merge
	Split
	Expanded
	Collapsed
)

var payloadNames = [...]string{
	None:       "none",
	Change:     "change",
	NoMoreLoad: "no_more_load",
	Filter:     "filter",
	Undo:       "undo",
	AddSubItem: "add_sub_item",
	RemSubItem: "rem_sub_item",
	Move:       "move",
	Link:       "link",
	Unlink:     "unlink",
	Selection:  "selection",
	Merge:      "merge",
	Split:      "split",
	Expanded:   "expanded",
	Collapsed:  "collapsed",
}

func (p Payload) String() string {
	if p < 0 || int(p) >= len(payloadNames) {
		return "unknown"
	}
	return payloadNames[p]
}

// Observer receives structural change events synchronously, inside the
// call that caused them.
type Observer interface {
	ItemRangeInserted(start, count int)
	ItemRangeRemoved(start, count int)
	ItemRangeChanged(start, count int, payload Payload)
	ItemMoved(from, to int)
}

// Funcs adapts plain functions to an Observer. Nil fields are skipped.
type Funcs struct {
	Inserted func(start, count int)
	Removed  func(start, count int)
	Changed  func(start, count int, payload Payload)
	Moved    func(from, to int)
}

func (f Funcs) ItemRangeInserted(start, count int) {
	if f.Inserted != nil {
		f.Inserted(start, count)
	}
}

func (f Funcs) ItemRangeRemoved(start, count int) {
	if f.Removed != nil {
		f.Removed(start, count)
	}
}

func (f Funcs) ItemRangeChanged(start, count int, payload Payload) {
	if f.Changed != nil {
		f.Changed(start, count, payload)
	}
}

func (f Funcs) ItemMoved(from, to int) {
	if f.Moved != nil {
		f.Moved(from, to)
	}
}

// Dispatcher fans events out to registered observers in registration
// order. A Dispatcher with no observers is valid and drops everything.
type Dispatcher struct {
	observers []Observer
}

// Register adds o. Registering the same observer twice delivers twice.
func (d *Dispatcher) Register(o Observer) {
	if o == nil {
		return
	}
	d.observers = append(d.observers, o)
}

// Unregister removes the first registration of o.
func (d *Dispatcher) Unregister(o Observer) {
	for i, existing := range d.observers {
		if existing == o {
			d.observers = append(d.observers[:i], d.observers[i+1:]...)
			return
		}
	}
}

// Len returns the number of registered observers.
func (d *Dispatcher) Len() int { return len(d.observers) }

func (d *Dispatcher) ItemRangeInserted(start, count int) {
	for _, o := range d.observers {
		o.ItemRangeInserted(start, count)
	}
}

func (d *Dispatcher) ItemRangeRemoved(start, count int) {
	for _, o := range d.observers {
		o.ItemRangeRemoved(start, count)
	}
}

func (d *Dispatcher) ItemRangeChanged(start, count int, payload Payload) {
	for _, o := range d.observers {
		o.ItemRangeChanged(start, count, payload)
	}
}

func (d *Dispatcher) ItemMoved(from, to int) {
	for _, o := range d.observers {
		o.ItemMoved(from, to)
	}
}
