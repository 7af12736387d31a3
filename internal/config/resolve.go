package config

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"

	"github.com/robert-at-pretension-io/vgadbg/internal/diag"
)

// groupSigil marks a key or value that refers to a wire_group by name.
const groupSigil = "*"

// Resolve validates the document and builds a Config from it. Every field
// is checked in one pass; the returned error is a diag.List with one entry
// per failing field. A field that fails is never partially applied.
func Resolve(doc cue.Value) (*Config, error) {
	r := &resolver{doc: doc, cfg: DefaultConfig()}
	if doc.Kind() != cue.StructKind {
		r.errs.Add(diag.KindConfigFormat, "config document should be an object")
		return nil, r.errs
	}

	r.requiredString("template_file", &r.cfg.TemplateFile)
	if dir, ok := r.optionalString("output_dir"); ok {
		r.cfg.OutputDir = withTrailingSlash(dir)
	}
	r.requiredString("mem_file", &r.cfg.MemFile)
	r.requiredString("dbg_header", &r.cfg.DbgHeader)
	if name, ok := r.optionalString("debugger_file"); ok {
		r.cfg.DebuggerFile = name
	}
	r.requiredString("module_name", &r.cfg.ModuleName)

	r.optionalInt("header_lines", 0, &r.cfg.HeaderLines)
	r.optionalInt("template_width", 1, &r.cfg.TemplateWidth)
	r.optionalInt("template_height", 1, &r.cfg.TemplateHeight)
	r.gridLimit()

	r.blockDefaults("block_prefix", &r.cfg.Prefixes)
	r.blockDefaults("block_suffix", &r.cfg.Suffixes)

	r.groups()

	wireOverrides(r, "len_bits", "an integer", intValue, &r.cfg.LenBits)
	wireOverrides(r, "wire_prefix", "a string", stringValue, &r.cfg.Prefixes)
	wireOverrides(r, "wire_suffix", "a string", stringValue, &r.cfg.Suffixes)
	wireOverrides(r, "wire_name", "a string", stringValue, &r.cfg.CodeNames)

	r.submodules()

	if err := r.errs.Err(); err != nil {
		return nil, err
	}
	return r.cfg, nil
}

type resolver struct {
	doc  cue.Value
	cfg  *Config
	errs diag.List
}

func (r *resolver) field(name string) (cue.Value, bool) {
	v := r.doc.LookupPath(cue.MakePath(cue.Str(name)))
	return v, v.Exists()
}

func (r *resolver) fail(name, format string, args ...interface{}) {
	r.errs.Addf(diag.KindConfigFormat, "field '%s' %s", name, fmt.Sprintf(format, args...))
}

func (r *resolver) requiredString(name string, dst *string) {
	v, ok := r.field(name)
	if !ok {
		r.errs.Addf(diag.KindConfigFormat, "can't find '%s', which is not optional", name)
		return
	}
	s, ok := stringValue(v)
	if !ok {
		r.fail(name, "should be a string")
		return
	}
	*dst = s
}

func (r *resolver) optionalString(name string) (string, bool) {
	v, ok := r.field(name)
	if !ok {
		return "", false
	}
	s, ok := stringValue(v)
	if !ok {
		r.fail(name, "should be a string")
		return "", false
	}
	return s, true
}

func (r *resolver) optionalInt(name string, min int, dst *int) {
	v, ok := r.field(name)
	if !ok {
		return
	}
	n, ok := intValue(v)
	if !ok {
		r.fail(name, "should be an integer")
		return
	}
	if n < min {
		r.fail(name, "should be at least %d, got %d", min, n)
		return
	}
	*dst = n
}

// gridLimit rejects a grid with more than MaxCells cells. Both factors are
// at least 1 here, so the division cannot overflow.
func (r *resolver) gridLimit() {
	w, h := r.cfg.TemplateWidth, r.cfg.TemplateHeight
	if w > MaxCells/h {
		r.errs.Addf(diag.KindConfigFormat,
			"fields 'template_width' and 'template_height' describe a grid of %d x %d cells, more than the limit %d",
			w, h, MaxCells)
	}
}

// blockDefaults reads an object of block name to string.
func (r *resolver) blockDefaults(name string, dst *Overrides[string]) {
	v, ok := r.field(name)
	if !ok {
		return
	}
	if v.Kind() != cue.StructKind {
		r.fail(name, "has a wrong type: expected an object")
		return
	}
	type entry struct{ block, value string }
	var entries []entry
	err := eachField(v, func(block string, val cue.Value) error {
		s, ok := stringValue(val)
		if !ok {
			return fmt.Errorf("has a wrong type: value of '%s' should be a string", block)
		}
		entries = append(entries, entry{block, s})
		return nil
	})
	if err != nil {
		r.fail(name, "%s", err.Error())
		return
	}
	for _, e := range entries {
		dst.SetBlock(e.block, e.value)
	}
}

// groups reads wire_group: [{name, wires: {block: [wire...]}}].
func (r *resolver) groups() {
	const name = "wire_group"
	v, ok := r.field(name)
	if !ok {
		return
	}
	var groups []Group
	index := make(map[string]int)
	err := eachElem(v, func(i int, elem cue.Value) error {
		if elem.Kind() != cue.StructKind {
			return fmt.Errorf("has a wrong type: element %d should be an object", i)
		}
		g := Group{}
		gv, ok := lookup(elem, "name")
		if !ok {
			return fmt.Errorf("element %d is missing 'name'", i)
		}
		if g.Name, ok = stringValue(gv); !ok {
			return fmt.Errorf("has a wrong type: 'name' of element %d should be a string", i)
		}
		wv, ok := lookup(elem, "wires")
		if !ok {
			return fmt.Errorf("group '%s' is missing 'wires'", g.Name)
		}
		wires, err := wireLists(wv)
		if err != nil {
			return fmt.Errorf("group '%s': %v", g.Name, err)
		}
		g.Wires = wires
		if _, dup := index[g.Name]; dup {
			return fmt.Errorf("declares group '%s' more than once", g.Name)
		}
		index[g.Name] = len(groups)
		groups = append(groups, g)
		return nil
	})
	if err != nil {
		r.fail(name, "%s", err.Error())
		return
	}
	r.cfg.Groups = groups
	r.cfg.groupIndex = index
}

// wireOverrides reads an object whose keys are either a block name mapping
// wire names to values, or "*group" mapping to a single value applied to
// every wire of that group.
func wireOverrides[T any](r *resolver, name, want string, get func(cue.Value) (T, bool), dst *Overrides[T]) {
	v, ok := r.field(name)
	if !ok {
		return
	}
	if v.Kind() != cue.StructKind {
		r.fail(name, "has a wrong type: expected an object")
		return
	}
	type entry struct {
		pair  Pair
		value T
	}
	var entries []entry
	err := eachField(v, func(key string, val cue.Value) error {
		if groupName, isGroup := strings.CutPrefix(key, groupSigil); isGroup {
			x, ok := get(val)
			if !ok {
				return fmt.Errorf("has a wrong type: value of '%s' should be %s", key, want)
			}
			g, ok := r.cfg.Group(groupName)
			if !ok {
				return fmt.Errorf("refers to unknown group '%s'", groupName)
			}
			for _, p := range g.Wires {
				entries = append(entries, entry{p, x})
			}
			return nil
		}
		if val.Kind() != cue.StructKind {
			return fmt.Errorf("has a wrong type: value of block '%s' should be an object", key)
		}
		return eachField(val, func(wire string, wv cue.Value) error {
			x, ok := get(wv)
			if !ok {
				return fmt.Errorf("has a wrong type: value of '%s.%s' should be %s", key, wire, want)
			}
			entries = append(entries, entry{Pair{Block: key, Wire: wire}, x})
			return nil
		})
	})
	if err != nil {
		r.fail(name, "%s", err.Error())
		return
	}
	for _, e := range entries {
		dst.SetWire(e.pair.Block, e.pair.Wire, e.value)
	}
}

// submodules reads submodule: [{name, parent?, wires}].
func (r *resolver) submodules() {
	const name = "submodule"
	v, ok := r.field(name)
	if !ok {
		return
	}
	var subs []Submodule
	index := make(map[string]int)
	err := eachElem(v, func(i int, elem cue.Value) error {
		if elem.Kind() != cue.StructKind {
			return fmt.Errorf("has a wrong type: element %d should be an object", i)
		}
		sub := Submodule{Parent: r.cfg.ModuleName}
		nv, ok := lookup(elem, "name")
		if !ok {
			return fmt.Errorf("element %d is missing 'name'", i)
		}
		if sub.Name, ok = stringValue(nv); !ok {
			return fmt.Errorf("has a wrong type: 'name' of element %d should be a string", i)
		}
		if pv, ok := lookup(elem, "parent"); ok {
			if sub.Parent, ok = stringValue(pv); !ok {
				return fmt.Errorf("has a wrong type: 'parent' of submodule '%s' should be a string", sub.Name)
			}
		}
		wv, ok := lookup(elem, "wires")
		if !ok {
			return fmt.Errorf("submodule '%s' is missing 'wires'", sub.Name)
		}
		wires, err := r.submoduleWires(wv)
		if err != nil {
			return fmt.Errorf("submodule '%s': %v", sub.Name, err)
		}
		sub.Wires = wires

		if sub.Name == r.cfg.ModuleName {
			return fmt.Errorf("declares submodule '%s' with the name of the root module", sub.Name)
		}
		if _, dup := index[sub.Name]; dup {
			return fmt.Errorf("declares submodule '%s' more than once", sub.Name)
		}
		index[sub.Name] = len(subs)
		subs = append(subs, sub)
		return nil
	})
	if err != nil {
		r.fail(name, "%s", err.Error())
		return
	}
	r.cfg.Submodules = subs
	r.cfg.submoduleIndex = index
}

func (r *resolver) submoduleWires(v cue.Value) ([]Pair, error) {
	switch v.Kind() {
	case cue.StructKind:
		return wireLists(v)
	case cue.StringKind:
		s, _ := v.String()
		groupName, isGroup := strings.CutPrefix(s, groupSigil)
		if !isGroup {
			return nil, fmt.Errorf("'wires' string should be a '*group' reference, got '%s'", s)
		}
		g, ok := r.cfg.Group(groupName)
		if !ok {
			return nil, fmt.Errorf("refers to unknown group '%s'", groupName)
		}
		return append([]Pair(nil), g.Wires...), nil
	default:
		return nil, fmt.Errorf("'wires' should be an object or a '*group' string")
	}
}

// wireLists reads {block: [wire...]} into pairs in document order.
func wireLists(v cue.Value) ([]Pair, error) {
	if v.Kind() != cue.StructKind {
		return nil, fmt.Errorf("'wires' should be an object")
	}
	var pairs []Pair
	err := eachField(v, func(block string, list cue.Value) error {
		if list.Kind() != cue.ListKind {
			return fmt.Errorf("wires of block '%s' should be an array", block)
		}
		return eachElem(list, func(i int, wv cue.Value) error {
			w, ok := stringValue(wv)
			if !ok {
				return fmt.Errorf("wire %d of block '%s' should be a string", i, block)
			}
			pairs = append(pairs, Pair{Block: block, Wire: w})
			return nil
		})
	})
	return pairs, err
}

func lookup(v cue.Value, name string) (cue.Value, bool) {
	f := v.LookupPath(cue.MakePath(cue.Str(name)))
	return f, f.Exists()
}

// eachField visits the regular fields of an object in document order.
func eachField(v cue.Value, fn func(key string, val cue.Value) error) error {
	it, err := v.Fields()
	if err != nil {
		return err
	}
	for it.Next() {
		sel := it.Selector()
		if !sel.IsString() {
			continue
		}
		if err := fn(sel.Unquoted(), it.Value()); err != nil {
			return err
		}
	}
	return nil
}

func eachElem(v cue.Value, fn func(i int, elem cue.Value) error) error {
	if v.Kind() != cue.ListKind {
		return fmt.Errorf("has a wrong type: expected an array")
	}
	it, err := v.List()
	if err != nil {
		return err
	}
	for i := 0; it.Next(); i++ {
		if err := fn(i, it.Value()); err != nil {
			return err
		}
	}
	return nil
}

func stringValue(v cue.Value) (string, bool) {
	if v.Kind() != cue.StringKind {
		return "", false
	}
	s, err := v.String()
	return s, err == nil
}

func intValue(v cue.Value) (int, bool) {
	if v.Kind() != cue.IntKind {
		return 0, false
	}
	n, err := v.Int64()
	return int(n), err == nil
}
