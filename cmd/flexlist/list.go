package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vanderheijden86/flexlist/internal/datasource"
	"github.com/vanderheijden86/flexlist/pkg/adapter"
	"github.com/vanderheijden86/flexlist/pkg/model"
	"github.com/vanderheijden86/flexlist/pkg/section"
)

type listOptions struct {
	expandAll bool
	filter    string
	headers   bool
	grouped   bool
	showIDs   bool
}

func newListCommand(a *app) *cobra.Command {
	o := &listOptions{}
	cmd := &cobra.Command{
		Use:   "list [path]",
		Short: "Print the flattened list.",
		Example: `
flexlist list items.jsonl
flexlist list items.db --expand-all --filter apple
cat items.jsonl | flexlist list - --grouped`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := a.open(args)
			if err != nil {
				return err
			}
			defer src.Close()
			items, err := datasource.LoadItems(cmd.Context(), src)
			if err != nil {
				return fmt.Errorf("loading %s: %w", src.Path(), err)
			}
			l := a.newList(items, o)
			w := cmd.OutOrStdout()
			if o.grouped {
				printGrouped(w, l, o)
				return nil
			}
			printList(w, l, o)
			return nil
		},
	}
	f := cmd.Flags()
	f.BoolVar(&o.expandAll, "expand-all", false, "expand every group")
	f.StringVar(&o.filter, "filter", "", "only rows matching this text, with their parents")
	f.BoolVar(&o.headers, "headers", false, "show section headers")
	f.BoolVar(&o.grouped, "grouped", false, "print one block per section")
	f.BoolVar(&o.showIDs, "ids", true, "print item ids")
	return cmd
}

func (a *app) newList(items []model.Item, o *listOptions) *adapter.List {
	l := adapter.New(items,
		adapter.WithLogger(a.log),
		adapter.WithHeadersShown(o.headers || a.cfg.HeadersShown),
	)
	if o.expandAll {
		l.ExpandAll(-1)
	}
	if o.filter != "" {
		l.SetSearchText(o.filter)
		l.FilterItems()
	}
	return l
}

// tableWidth returns the terminal width, or 0 when stdout is not one.
func tableWidth() uint {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 0
	}
	return uint(w)
}

var (
	headerColor = color.New(color.Bold, color.Underline)
	groupColor  = color.New(color.FgCyan, color.Bold)
	faintColor  = color.New(color.Faint)
)

func newTable() *uitable.Table {
	tbl := uitable.New()
	tbl.Separator = "  "
	if w := tableWidth(); w > 0 {
		tbl.MaxColWidth = w / 2
		tbl.Wrap = false
	}
	return tbl
}

func printList(w io.Writer, l *adapter.List, o *listOptions) {
	tbl := newTable()
	for pos := 0; pos < l.Len(); pos++ {
		it := l.Item(pos)
		if model.IsHeader(it) {
			tbl.AddRow(headerColor.Sprint(it.Title()))
			continue
		}
		addRow(tbl, it, depth(l, it), o)
	}
	if l.Len() == 0 {
		faintColor.Fprintln(w, "no rows")
		return
	}
	fmt.Fprintln(w, tbl)
}

func depth(l *adapter.List, it model.Item) int {
	d := 0
	for p := l.ExpandableOf(it); p != nil; p = l.ExpandableOf(p) {
		d++
	}
	return d
}

func addRow(tbl *uitable.Table, it model.Item, depth int, o *listOptions) {
	glyph := "•"
	if e, ok := it.(model.Expandable); ok {
		glyph = "▸"
		if e.Expanded() {
			glyph = "▾"
		}
	}
	title := strings.Repeat("  ", depth) + glyph + " " + it.Title()
	switch {
	case !it.Enabled():
		title = faintColor.Sprint(title)
	case model.HasChildren(it):
		title = groupColor.Sprint(title)
	}
	if o.showIDs {
		tbl.AddRow(title, faintColor.Sprint(it.ID()))
	} else {
		tbl.AddRow(title)
	}
}

// sections groups the visible rows below their headers. Rows without a
// header collect in an untitled section.
func sections(l *adapter.List) []section.Group {
	var out []section.Group
	index := make(map[string]int)
	untitled := model.NewHeader("", "(no section)")
	for _, it := range l.Items() {
		if model.IsHeader(it) {
			continue
		}
		var h model.Item = untitled
		if hh := l.HeaderOf(it); hh != nil {
			h = hh
		}
		i, ok := index[h.ID()]
		if !ok {
			i = len(out)
			index[h.ID()] = i
			out = append(out, section.Group{Header: h})
		}
		out[i].Children = append(out[i].Children, it)
	}
	return out
}

func printGrouped(w io.Writer, l *adapter.List, o *listOptions) {
	g := section.NewGrouped(sections(l), true)
	if g.ItemCount() == 0 {
		faintColor.Fprintln(w, "no rows")
		return
	}
	var tbl *uitable.Table
	flush := func() {
		if tbl != nil && len(tbl.Rows) > 0 {
			fmt.Fprintln(w, tbl)
		}
	}
	for flat := 0; flat < g.ItemCount(); flat++ {
		it, pos := g.Item(flat)
		if pos.IsSection() {
			flush()
			if flat > 0 {
				fmt.Fprintln(w)
			}
			headerColor.Fprintf(w, "%s", it.Title())
			faintColor.Fprintf(w, " - %s\n", plural(g.ChildCount(pos.Section)))
			tbl = newTable()
			continue
		}
		addRow(tbl, it, depth(l, it), o)
	}
	flush()
}

func plural(n int) string {
	if n == 1 {
		return "1 row"
	}
	return fmt.Sprintf("%d rows", n)
}
