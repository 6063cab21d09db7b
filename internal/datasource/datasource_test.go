package datasource

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/vanderheijden86/flexlist/pkg/config"
	"github.com/vanderheijden86/flexlist/pkg/model"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

var fixture = []Record{
	{ID: "h1", Title: "Fruit", Kind: KindHeader},
	{ID: "g1", Title: "Apples", Kind: KindGroup, Header: "h1", Expanded: true},
	{ID: "a1", Title: "Fuji", Parent: "g1"},
	{ID: "g2", Title: "Green", Kind: KindGroup, Parent: "g1"},
	{ID: "a2", Title: "Granny Smith", Parent: "g2", Body: "**tart**"},
	{ID: "b1", Title: "Banana", Header: "h1", Hidden: true},
	{ID: "c1", Title: "Cherry", Disabled: true},
}

func writeJSONL(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "items.jsonl")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBuild_Tree(t *testing.T) {
	items, err := Build(fixture)
	if err != nil {
		t.Fatal(err)
	}
	if got := model.IDs(items); !slices.Equal(got, []string{"g1", "b1", "c1"}) {
		t.Fatalf("top level = %v", got)
	}
	g1 := items[0].(*model.Group)
	if !g1.Expanded() || g1.Level() != 0 {
		t.Errorf("g1 expanded=%v level=%d", g1.Expanded(), g1.Level())
	}
	if got := model.IDs(g1.SubItems()); !slices.Equal(got, []string{"a1", "g2"}) {
		t.Errorf("g1 children = %v", got)
	}
	g2 := g1.SubItems()[1].(*model.Group)
	if g2.Level() != 1 || g2.Expanded() {
		t.Errorf("g2 level=%d expanded=%v", g2.Level(), g2.Expanded())
	}
	if body := g2.SubItems()[0].(model.Detailer).Body(); body != "**tart**" {
		t.Errorf("a2 body = %q", body)
	}

	h1, h2 := model.HeaderOf(items[0]), model.HeaderOf(items[1])
	if h1 == nil || h1.ID() != "h1" || h1 != h2 {
		t.Errorf("headers not shared: %v %v", h1, h2)
	}
	if !items[1].Hidden() {
		t.Error("b1 should be hidden")
	}
	if items[2].Enabled() {
		t.Error("c1 should be disabled")
	}
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name     string
		records  []Record
		notFound bool
	}{
		{"missing id", []Record{{Title: "x"}}, false},
		{"duplicate", []Record{{ID: "a"}, {ID: "a"}}, false},
		{"unknown kind", []Record{{ID: "a", Kind: "folder"}}, false},
		{"unknown parent", []Record{{ID: "a", Parent: "zz"}}, true},
		{"unknown header", []Record{{ID: "a", Header: "zz"}}, true},
		{"entry parent", []Record{{ID: "a"}, {ID: "b", Parent: "a"}}, false},
		{"cycle", []Record{
			{ID: "a", Kind: KindGroup, Parent: "b"},
			{ID: "b", Kind: KindGroup, Parent: "a"},
		}, false},
		{"header with parent", []Record{{ID: "g", Kind: KindGroup}, {ID: "h", Kind: KindHeader, Parent: "g"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.records)
			if err == nil {
				t.Fatal("expected an error")
			}
			if errors.Is(err, ErrNotFound) != tt.notFound {
				t.Errorf("errors.Is(err, ErrNotFound) = %v for %v", !tt.notFound, err)
			}
		})
	}
}

func TestParseRecords_SkipsBadLines(t *testing.T) {
	input := "\xef\xbb\xbf" + `{"id":"a","title":"A"}` + "\n" +
		"\n" +
		"not json\n" +
		`{"title":"no id"}` + "\n" +
		`{"id":"` + strings.Repeat("x", 100) + `"}` + "\n" +
		`{"id":"b","title":"B","kind":"group"}` + "\n"

	var warnings []string
	records, err := ParseRecords(strings.NewReader(input), 64, func(msg string) {
		warnings = append(warnings, msg)
	})
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	if !slices.Equal(ids, []string{"a", "b"}) {
		t.Errorf("ids = %v", ids)
	}
	if len(warnings) != 3 {
		t.Errorf("warnings = %q", warnings)
	}
}

func TestJSONL_LoadDelete(t *testing.T) {
	var sb strings.Builder
	if err := WriteRecords(&sb, fixture); err != nil {
		t.Fatal(err)
	}
	path := writeJSONL(t, sb.String())
	ctx := context.Background()

	src, err := Open(path, config.FormatJSONL, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	records, err := src.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != len(fixture) {
		t.Fatalf("loaded %d records, want %d", len(records), len(fixture))
	}

	if err := src.Delete(ctx, []string{"g2", "h1"}); err != nil {
		t.Fatal(err)
	}
	records, err = src.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, r := range records {
		ids = append(ids, r.ID)
		if r.Header != "" {
			t.Errorf("%s still references header %q", r.ID, r.Header)
		}
	}
	if !slices.Equal(ids, []string{"g1", "a1", "b1", "c1"}) {
		t.Errorf("after delete = %v", ids)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o644 {
		t.Errorf("file mode after rewrite = %v", info.Mode())
	}
}

func TestJSONL_DeleteUnknownLeavesFile(t *testing.T) {
	path := writeJSONL(t, `{"id":"a"}`+"\n")
	src := NewJSONL(path, quietLogger())
	err := src.Delete(context.Background(), []string{"a", "zz"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete = %v, want ErrNotFound", err)
	}
	records, _ := src.Load(context.Background())
	if len(records) != 1 {
		t.Errorf("file changed: %v", records)
	}
}

func TestJSONL_MissingFile(t *testing.T) {
	src := NewJSONL(filepath.Join(t.TempDir(), "nope.jsonl"), quietLogger())
	if _, err := src.Load(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load = %v, want ErrNotFound", err)
	}
}

func TestJSONL_StdinIsReadOnly(t *testing.T) {
	src := NewJSONL(Stdin, quietLogger())
	src.stdin = strings.NewReader(`{"id":"a","title":"A"}` + "\n")
	records, err := src.Load(context.Background())
	if err != nil || len(records) != 1 {
		t.Fatalf("Load = %v, %v", records, err)
	}
	if err := src.Delete(context.Background(), []string{"a"}); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Delete = %v, want ErrReadOnly", err)
	}
}

func TestSQLite_InsertLoadDelete(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "items.db")
	s, err := OpenSQLite(path, false, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := s.Insert(ctx, fixture); err != nil {
		t.Fatal(err)
	}
	if n, err := s.Count(ctx); err != nil || n != len(fixture) {
		t.Fatalf("Count = %d, %v", n, err)
	}

	items, err := LoadItems(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	if got := model.IDs(items); !slices.Equal(got, []string{"g1", "b1", "c1"}) {
		t.Fatalf("top level = %v", got)
	}
	g1 := items[0].(*model.Group)
	if got := model.IDs(g1.SubItems()); !slices.Equal(got, []string{"a1", "g2"}) {
		t.Errorf("g1 children = %v", got)
	}
	if got := model.IDs(g1.SubItems()[1].(*model.Group).SubItems()); !slices.Equal(got, []string{"a2"}) {
		t.Errorf("g2 children = %v", got)
	}

	if err := s.Delete(ctx, []string{"g1", "zz"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete with unknown id = %v", err)
	}
	if n, _ := s.Count(ctx); n != len(fixture) {
		t.Fatalf("failed delete removed rows: %d left", n)
	}

	if err := s.Delete(ctx, []string{"g1", "h1"}); err != nil {
		t.Fatal(err)
	}
	records, err := s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, r := range records {
		ids = append(ids, r.ID)
		if r.Header != "" {
			t.Errorf("%s still references header %q", r.ID, r.Header)
		}
	}
	if !slices.Equal(ids, []string{"b1", "c1"}) {
		t.Errorf("after delete = %v", ids)
	}
}

func TestSQLite_ReadOnly(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "items.db")
	w, err := OpenSQLite(path, false, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Insert(ctx, fixture[:2]); err != nil {
		t.Fatal(err)
	}
	w.Close()

	r, err := OpenSQLite(path, true, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if records, err := r.Load(ctx); err != nil || len(records) != 2 {
		t.Fatalf("Load = %v, %v", records, err)
	}
	if err := r.Delete(ctx, []string{"g1"}); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Delete = %v, want ErrReadOnly", err)
	}
	if err := r.Insert(ctx, fixture); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Insert = %v, want ErrReadOnly", err)
	}
}

func TestCommit_DeletesConfirmedItems(t *testing.T) {
	path := writeJSONL(t, `{"id":"a"}`+"\n"+`{"id":"b"}`+"\n")
	src := NewJSONL(path, quietLogger())
	commit := Commit(context.Background(), src, quietLogger())

	commit([]model.Item{model.NewEntry("a", "a")})
	records, _ := src.Load(context.Background())
	if len(records) != 1 || records[0].ID != "b" {
		t.Errorf("after commit = %v", records)
	}

	// Unknown ids are logged, not fatal.
	commit([]model.Item{model.NewEntry("zz", "zz")})
}

func TestOpen_UnknownFormat(t *testing.T) {
	if _, err := Open("x.csv", "csv", nil); err == nil {
		t.Error("expected an error for csv")
	}
}
