// Package testutil generates item trees for list tests. Generators are
// seeded, so a failing case can be replayed from its seed.
package testutil

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/vanderheijden86/flexlist/pkg/model"
)

// GeneratorConfig controls tree generation.
type GeneratorConfig struct {
	Seed          int64   // 0 uses the current time
	IDPrefix      string  // default "it"
	Headers       int     // number of headers items are spread over; 0 for none
	GroupRatio    float64 // share of items that are groups
	MaxChildren   int     // children per group, at least 1
	MaxDepth      int     // nesting levels below the top, 1 means flat groups
	ExpandedRatio float64 // share of groups created expanded
	HiddenRatio   float64 // share of items created hidden
}

// DefaultConfig returns a deterministic config with a mix of entries and
// groups and no headers.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:          42,
		IDPrefix:      "it",
		GroupRatio:    0.4,
		MaxChildren:   3,
		MaxDepth:      2,
		ExpandedRatio: 0.5,
	}
}

// Generator builds item trees.
type Generator struct {
	cfg     GeneratorConfig
	rng     *rand.Rand
	next    int
	headers []model.Header
}

// New returns a Generator for cfg.
func New(cfg GeneratorConfig) *Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if cfg.IDPrefix == "" {
		cfg.IDPrefix = "it"
	}
	if cfg.MaxChildren < 1 {
		cfg.MaxChildren = 1
	}
	if cfg.MaxDepth < 1 {
		cfg.MaxDepth = 1
	}
	g := &Generator{cfg: cfg, rng: rand.New(rand.NewSource(seed))}
	for i := 0; i < cfg.Headers; i++ {
		id := fmt.Sprintf("%s-h%d", cfg.IDPrefix, i)
		g.headers = append(g.headers, model.NewHeader(id, fmt.Sprintf("Section %d", i)))
	}
	return g
}

// NewDefault returns a Generator with DefaultConfig.
func NewDefault() *Generator { return New(DefaultConfig()) }

// Headers returns the headers items may reference.
func (g *Generator) Headers() []model.Header { return g.headers }

func (g *Generator) id() string {
	g.next++
	return fmt.Sprintf("%s%d", g.cfg.IDPrefix, g.next)
}

// Items returns n top-level items. When headers are configured, runs of
// consecutive items share a header so sections stay contiguous.
func (g *Generator) Items(n int) []model.Item {
	items := make([]model.Item, n)
	for i := range items {
		it := g.item(0)
		if len(g.headers) > 0 {
			it.(model.Sectionable).SetHeader(g.headers[i*len(g.headers)/n])
		}
		items[i] = it
	}
	return items
}

func (g *Generator) item(level int) model.Item {
	id := g.id()
	var it interface {
		model.Item
		SetHidden(bool)
	}
	if level < g.cfg.MaxDepth && g.rng.Float64() < g.cfg.GroupRatio {
		grp := model.NewGroup(id, "Group "+id, level)
		kids := 1 + g.rng.Intn(g.cfg.MaxChildren)
		for k := 0; k < kids; k++ {
			grp.SetSubItems(append(grp.SubItems(), g.item(level+1)))
		}
		grp.SetExpanded(g.rng.Float64() < g.cfg.ExpandedRatio)
		it = grp
	} else {
		it = model.NewEntry(id, "Entry "+id)
	}
	if g.rng.Float64() < g.cfg.HiddenRatio {
		it.SetHidden(true)
	}
	return it
}

// Chain returns n plain entries with ids prefix0..prefix{n-1}.
func Chain(prefix string, n int) []model.Item {
	items := make([]model.Item, n)
	for i := range items {
		id := fmt.Sprintf("%s%d", prefix, i)
		items[i] = model.NewEntry(id, id)
	}
	return items
}

// Flatten returns the ids a list shows for items with headers hidden:
// each visible item followed by the flattened children of expanded
// groups.
func Flatten(items []model.Item) []string {
	var out []string
	var walk func([]model.Item)
	walk = func(items []model.Item) {
		for _, it := range items {
			if it.Hidden() {
				continue
			}
			out = append(out, it.ID())
			if e, ok := it.(model.Expandable); ok && e.Expanded() {
				walk(e.SubItems())
			}
		}
	}
	walk(items)
	return out
}

// Count returns the number of items in the trees, children included.
func Count(items []model.Item) int {
	n := 0
	for _, it := range items {
		n++
		if e, ok := it.(model.Expandable); ok {
			n += Count(e.SubItems())
		}
	}
	return n
}
