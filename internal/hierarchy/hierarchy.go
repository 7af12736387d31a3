// Package hierarchy combines the resolved configuration with the parsed
// template: every template wire gets its final names and width and is
// assigned to the module that owns it, and every module collects the wires
// of its whole subtree.
package hierarchy

import (
	"math/bits"

	"github.com/robert-at-pretension-io/vgadbg/internal/config"
	"github.com/robert-at-pretension-io/vgadbg/internal/diag"
	"github.com/robert-at-pretension-io/vgadbg/internal/template"
)

// Wire is a template wire with every naming and width decision applied.
type Wire struct {
	Block string
	Name  string

	// FullName is prefix + Name + suffix
	FullName string
	// CodeName is the expression assigned to the debug wire
	CodeName string
	Module   string

	LenHex  int
	LenBits int

	// Start and End are inclusive linear grid positions
	Start int
	End   int
}

// Module is one scope of the generated hierarchy.
type Module struct {
	Name     string
	Parent   string
	Children []string

	// Wires are owned directly by this module
	Wires []Wire
	// WiresAll is Wires followed by the WiresAll of each child in
	// declaration order
	WiresAll []Wire
}

// Design is the fully resolved model consumed by the emitter.
type Design struct {
	Config   *config.Config
	Template *template.Template

	Root    string
	Modules map[string]*Module
	// Order lists the root first, then submodules in declaration order
	Order []string

	// Size is width x height, SizePow2 the next power of two and AddrBits
	// the smallest k with 2^k >= Size
	Size     int
	SizePow2 int
	AddrBits int
}

// Build resolves cfg and tmpl into a Design.
func Build(cfg *config.Config, tmpl *template.Template) (*Design, error) {
	d := &Design{
		Config:   cfg,
		Template: tmpl,
		Root:     cfg.ModuleName,
		Modules:  make(map[string]*Module, len(cfg.Submodules)+1),
	}

	var err error
	d.Size, d.SizePow2, d.AddrBits, err = GridSize(cfg.TemplateWidth, cfg.TemplateHeight)
	if err != nil {
		return nil, err
	}
	if err := d.seedModules(); err != nil {
		return nil, err
	}
	if err := d.detectCycles(); err != nil {
		return nil, err
	}
	d.assignWires()
	d.aggregate(d.Root)

	return d, nil
}

// GridSize returns width*height, the next power of two and its log2.
// Grids that are empty or hold more than config.MaxCells cells are a
// Hierarchy error.
func GridSize(width, height int) (size, pow2, addrBits int, err error) {
	if width < 1 || height < 1 || width > config.MaxCells/height {
		return 0, 0, 0, diag.Errorf(diag.KindHierarchy,
			"grid of %d x %d cells is outside 1..%d cells", width, height, config.MaxCells)
	}
	size = width * height
	addrBits = bits.Len(uint(size - 1))
	return size, 1 << addrBits, addrBits, nil
}

func (d *Design) seedModules() error {
	cfg := d.Config
	d.Modules[d.Root] = &Module{Name: d.Root}
	d.Order = append(d.Order, d.Root)

	for _, sub := range cfg.Submodules {
		if _, ok := cfg.Submodule(sub.Parent); !ok && sub.Parent != d.Root {
			return diag.Errorf(diag.KindHierarchy, "can't find parent module '%s' of module '%s'", sub.Parent, sub.Name)
		}
		d.Modules[sub.Name] = &Module{Name: sub.Name, Parent: sub.Parent}
		d.Order = append(d.Order, sub.Name)
	}
	for _, sub := range cfg.Submodules {
		parent := d.Modules[sub.Parent]
		parent.Children = append(parent.Children, sub.Name)
	}
	return nil
}

// detectCycles runs a depth-first search over the child edges of every
// module. Parents are checked pairwise in seedModules, which still admits
// a group of submodules that are each other's ancestors.
func (d *Design) detectCycles() error {
	permanent := make(map[string]bool, len(d.Modules))
	temporary := make(map[string]bool)

	var visit func(name string) error
	visit = func(name string) error {
		if permanent[name] {
			return nil
		}
		if temporary[name] {
			return diag.Errorf(diag.KindHierarchy, "cycle detected involving module '%s'", name)
		}
		temporary[name] = true
		for _, child := range d.Modules[name].Children {
			if err := visit(child); err != nil {
				return err
			}
		}
		delete(temporary, name)
		permanent[name] = true
		return nil
	}

	for _, name := range d.Order {
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}

func (d *Design) assignWires() {
	cfg := d.Config
	for _, block := range d.Template.Blocks {
		for _, tw := range block.Wires {
			w := Wire{
				Block:  block.Name,
				Name:   tw.Name,
				LenHex: tw.LenHex,
				Start:  tw.Start,
				End:    tw.End,
			}
			w.LenBits = cfg.ResolveLenBits(block.Name, tw.Name, tw.LenHex)
			w.FullName = cfg.ResolveFullName(block.Name, tw.Name)
			w.CodeName = cfg.ResolveCodeName(block.Name, tw.Name, w.FullName)
			w.Module = cfg.FindSubmoduleOfWire(block.Name, tw.Name)

			m := d.Modules[w.Module]
			m.Wires = append(m.Wires, w)
		}
	}
}

// aggregate fills WiresAll bottom-up. The child graph is acyclic by the
// time it runs.
func (d *Design) aggregate(name string) {
	m := d.Modules[name]
	m.WiresAll = append([]Wire(nil), m.Wires...)
	for _, child := range m.Children {
		d.aggregate(child)
		m.WiresAll = append(m.WiresAll, d.Modules[child].WiresAll...)
	}
}

// RootModule returns the root of the hierarchy.
func (d *Design) RootModule() *Module {
	return d.Modules[d.Root]
}

// Ordered returns the modules in Order.
func (d *Design) Ordered() []*Module {
	mods := make([]*Module, 0, len(d.Order))
	for _, name := range d.Order {
		mods = append(mods, d.Modules[name])
	}
	return mods
}

// WireCount returns the number of wires in the design.
func (d *Design) WireCount() int {
	return len(d.RootModule().WiresAll)
}
