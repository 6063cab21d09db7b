package adapter

import (
	"testing"

	"github.com/vanderheijden86/flexlist/pkg/testutil"
)

func generated(seed int64, headers int) testutil.GeneratorConfig {
	cfg := testutil.DefaultConfig()
	cfg.Seed = seed
	cfg.MaxDepth = 3
	cfg.HiddenRatio = 0.1
	cfg.Headers = headers
	return cfg
}

func TestNew_MaterializesGeneratedTrees(t *testing.T) {
	for seed := int64(1); seed <= 25; seed++ {
		items := testutil.New(generated(seed, 0)).Items(12)
		l := New(items)
		testutil.AssertIDs(t, l.Items(), testutil.Flatten(items)...)
		testutil.AssertNoDuplicateIDs(t, l.Items())

		if l.Len() == 0 {
			continue
		}
		check := watch(t, l)
		l.RemoveItems([]int{0, l.Len() / 2, l.Len() - 1})
		check()
		l.RestoreDeletedItems()
		check()
		testutil.AssertIDs(t, l.Items(), testutil.Flatten(items)...)
	}
}

func TestHeaders_GeneratedSectionsStayContiguous(t *testing.T) {
	for seed := int64(1); seed <= 10; seed++ {
		g := testutil.New(generated(seed, 3))
		l := New(g.Items(15), WithHeadersShown(true))
		testutil.AssertNoDuplicateIDs(t, l.Items())
		testutil.AssertContiguousSections(t, l.Items())
		for _, h := range g.Headers() {
			if len(l.SectionItems(h)) > 0 && l.Position(h) < 0 {
				t.Errorf("seed %d: header %s with items is not shown", seed, h.ID())
			}
		}
	}
}
