package facts

import (
	"github.com/robert-at-pretension-io/vgadbg/internal/hierarchy"
)

// Tables is the relational view of a resolved design.
// Each slice is a relation (table) with flat rows.
type Tables struct {
	Grid    []GridRow   `json:"grid"`
	Blocks  []BlockRow  `json:"blocks"`
	Wires   []WireRow   `json:"wires"`
	Modules []ModuleRow `json:"modules"`
	Edges   []EdgeRow   `json:"edges"`
}

// GridRow holds the display geometry. A design has exactly one.
type GridRow struct {
	Width    int `json:"width"`
	Height   int `json:"height"`
	Size     int `json:"size"`
	SizePow2 int `json:"size_pow2"`
	AddrBits int `json:"addr_bits"`
}

type BlockRow struct {
	Name      string `json:"name"`
	Line      int    `json:"line"`
	WireCount int    `json:"wire_count"`
}

type WireRow struct {
	Block    string `json:"block"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	CodeName string `json:"code_name"`
	Module   string `json:"module"`
	LenHex   int    `json:"len_hex"`
	LenBits  int    `json:"len_bits"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
}

type ModuleRow struct {
	Name         string `json:"name"`
	Parent       string `json:"parent"`
	IsRoot       bool   `json:"is_root"`
	WireCount    int    `json:"wire_count"`
	WireAllCount int    `json:"wire_all_count"`
}

// EdgeRow links a module to one of its children.
type EdgeRow struct {
	Parent string `json:"parent"`
	Child  string `json:"child"`
}

// BuildTables flattens d into Tables. Rows follow design order: blocks and
// wires in template order, modules and edges in module order.
func BuildTables(d *hierarchy.Design) Tables {
	tables := emptyTables()
	cfg := d.Config

	tables.Grid = append(tables.Grid, GridRow{
		Width:    cfg.TemplateWidth,
		Height:   cfg.TemplateHeight,
		Size:     d.Size,
		SizePow2: d.SizePow2,
		AddrBits: d.AddrBits,
	})

	for _, b := range d.Template.Blocks {
		tables.Blocks = append(tables.Blocks, BlockRow{
			Name:      b.Name,
			Line:      b.Line,
			WireCount: len(b.Wires),
		})
	}

	for _, m := range d.Ordered() {
		tables.Modules = append(tables.Modules, ModuleRow{
			Name:         m.Name,
			Parent:       m.Parent,
			IsRoot:       m.Name == d.Root,
			WireCount:    len(m.Wires),
			WireAllCount: len(m.WiresAll),
		})
		for _, child := range m.Children {
			tables.Edges = append(tables.Edges, EdgeRow{Parent: m.Name, Child: child})
		}
	}

	// the root's WiresAll is module-grouped; walk the template for file order
	byStart := make(map[int]hierarchy.Wire, d.WireCount())
	for _, w := range d.RootModule().WiresAll {
		byStart[w.Start] = w
	}
	for _, b := range d.Template.Blocks {
		for _, tw := range b.Wires {
			w, ok := byStart[tw.Start]
			if !ok {
				continue
			}
			tables.Wires = append(tables.Wires, WireRow{
				Block:    w.Block,
				Name:     w.Name,
				FullName: w.FullName,
				CodeName: w.CodeName,
				Module:   w.Module,
				LenHex:   w.LenHex,
				LenBits:  w.LenBits,
				Start:    w.Start,
				End:      w.End,
			})
		}
	}

	return tables
}
