// Package datasource loads list items from a JSONL file or a SQLite
// database and commits confirmed deletions back to it.
//
// Both formats hold flat records. A record names its parent group and
// its header by id; Build assembles them into the item tree the list
// consumes.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vanderheijden86/flexlist/pkg/config"
	"github.com/vanderheijden86/flexlist/pkg/debug"
	"github.com/vanderheijden86/flexlist/pkg/metrics"
	"github.com/vanderheijden86/flexlist/pkg/model"
)

var (
	// ErrNotFound is returned for ids or files that do not exist.
	ErrNotFound = errors.New("not found")
	// ErrReadOnly is returned when deleting from a source opened for reading only.
	ErrReadOnly = errors.New("source is read-only")
)

// Kind tells which item a record becomes.
type Kind string

const (
	KindEntry  Kind = "entry"
	KindGroup  Kind = "group"
	KindHeader Kind = "header"
)

// Record is one stored item.
type Record struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Body     string `json:"body,omitempty"`
	Kind     Kind   `json:"kind,omitempty"` // empty means entry
	Header   string `json:"header,omitempty"`
	Parent   string `json:"parent,omitempty"`
	Expanded bool   `json:"expanded,omitempty"`
	Hidden   bool   `json:"hidden,omitempty"`
	Disabled bool   `json:"disabled,omitempty"`
}

// Validate checks the record on its own, without its neighbours.
func (r Record) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return errors.New("missing id")
	}
	switch r.Kind {
	case "", KindEntry, KindGroup:
	case KindHeader:
		if r.Parent != "" || r.Header != "" {
			return errors.New("a header cannot have a parent or a header")
		}
	default:
		return fmt.Errorf("unknown kind %q", r.Kind)
	}
	if r.Parent == r.ID {
		return errors.New("record is its own parent")
	}
	return nil
}

// Source supplies records and removes them once deletions are confirmed.
type Source interface {
	Path() string
	Load(ctx context.Context) ([]Record, error)
	// Delete removes the records with the given ids and everything
	// nested under them. Unknown ids fail the whole call.
	Delete(ctx context.Context, ids []string) error
	Close() error
}

// Open returns the source for path in the given format.
func Open(path, format string, log logrus.FieldLogger) (Source, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	switch format {
	case config.FormatSQLite:
		return OpenSQLite(path, false, log)
	case config.FormatJSONL, "":
		return NewJSONL(path, log), nil
	default:
		return nil, fmt.Errorf("unknown data format %q", format)
	}
}

// LoadItems loads src and builds its item tree.
func LoadItems(ctx context.Context, src Source) ([]model.Item, error) {
	defer metrics.TimerWithCallback(metrics.Load, func(d time.Duration) {
		debug.LogTiming("load "+src.Path(), d)
	})()

	records, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	items, err := Build(records)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.Path(), err)
	}
	return items, nil
}

// Commit returns a callback that deletes confirmed items from src,
// logging failures since the list has already let the rows go.
func Commit(ctx context.Context, src Source, log logrus.FieldLogger) func([]model.Item) {
	return func(items []model.Item) {
		ids := model.IDs(items)
		if err := src.Delete(ctx, ids); err != nil {
			log.WithError(err).WithField("ids", ids).Warn("committing deletions")
			return
		}
		log.WithField("count", len(ids)).Debug("deletions committed")
	}
}

type attrs interface {
	model.Item
	SetBody(string)
	SetHidden(bool)
	SetEnabled(bool)
	SetHeader(model.Header)
}

// Build turns records into top-level items. Children keep record order
// under their parent group. Headers are created once and shared by
// every record naming them.
func Build(records []Record) ([]model.Item, error) {
	byID := make(map[string]Record, len(records))
	headers := make(map[string]model.Header)
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("record %q: %w", r.ID, err)
		}
		if _, dup := byID[r.ID]; dup {
			return nil, fmt.Errorf("duplicate id %q", r.ID)
		}
		byID[r.ID] = r
		if r.Kind == KindHeader {
			headers[r.ID] = model.NewHeader(r.ID, r.Title)
		}
	}

	levels := make(map[string]int, len(records))
	var level func(r Record, depth int) (int, error)
	level = func(r Record, depth int) (int, error) {
		if r.Parent == "" {
			return 0, nil
		}
		if l, ok := levels[r.ID]; ok {
			return l, nil
		}
		if depth > len(records) {
			return 0, fmt.Errorf("record %q: parent cycle", r.ID)
		}
		p, ok := byID[r.Parent]
		if !ok {
			return 0, fmt.Errorf("record %q: parent %q: %w", r.ID, r.Parent, ErrNotFound)
		}
		if p.Kind != KindGroup {
			return 0, fmt.Errorf("record %q: parent %q is not a group", r.ID, r.Parent)
		}
		pl, err := level(p, depth+1)
		if err != nil {
			return 0, err
		}
		levels[r.ID] = pl + 1
		return pl + 1, nil
	}

	items := make(map[string]model.Item, len(records))
	groups := make(map[string]*model.Group)
	for _, r := range records {
		if r.Kind == KindHeader {
			continue
		}
		lvl, err := level(r, 0)
		if err != nil {
			return nil, err
		}
		var it attrs
		if r.Kind == KindGroup {
			g := model.NewGroup(r.ID, r.Title, lvl)
			g.SetExpanded(r.Expanded)
			groups[r.ID] = g
			it = g
		} else {
			it = model.NewEntry(r.ID, r.Title)
		}
		it.SetBody(r.Body)
		it.SetHidden(r.Hidden)
		it.SetEnabled(!r.Disabled)
		if r.Header != "" {
			h, ok := headers[r.Header]
			if !ok {
				return nil, fmt.Errorf("record %q: header %q: %w", r.ID, r.Header, ErrNotFound)
			}
			it.SetHeader(h)
		}
		items[r.ID] = it
	}

	var top []model.Item
	for _, r := range records {
		it, ok := items[r.ID]
		if !ok {
			continue
		}
		if r.Parent == "" {
			top = append(top, it)
			continue
		}
		g := groups[r.Parent]
		g.SetSubItems(append(g.SubItems(), it))
	}
	return top, nil
}

// prune drops the records named by ids, their descendants and any
// header reference left dangling. It fails without changes when an id
// is unknown.
func prune(records []Record, ids []string) ([]Record, error) {
	known := make(map[string]bool, len(records))
	for _, r := range records {
		known[r.ID] = true
	}
	gone := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !known[id] {
			return nil, fmt.Errorf("item %q: %w", id, ErrNotFound)
		}
		gone[id] = true
	}
	for changed := true; changed; {
		changed = false
		for _, r := range records {
			if !gone[r.ID] && r.Parent != "" && gone[r.Parent] {
				gone[r.ID] = true
				changed = true
			}
		}
	}
	kept := make([]Record, 0, len(records))
	for _, r := range records {
		if gone[r.ID] {
			continue
		}
		if gone[r.Header] {
			r.Header = ""
		}
		kept = append(kept, r)
	}
	return kept, nil
}
