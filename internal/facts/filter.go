package facts

// FilterTablesByModules returns a new Tables object containing only the rows
// that belong to the given modules: their module rows, the wires they own
// and the edges between two of them. Blocks are kept when at least one
// kept wire comes from them; the grid row is always kept.
func FilterTablesByModules(tables Tables, modules map[string]bool) Tables {
	out := emptyTables()
	out.Grid = append(out.Grid, tables.Grid...)
	if len(modules) == 0 {
		return out
	}

	for _, row := range tables.Modules {
		if modules[row.Name] {
			out.Modules = append(out.Modules, row)
		}
	}
	blocks := make(map[string]bool)
	for _, row := range tables.Wires {
		if modules[row.Module] {
			out.Wires = append(out.Wires, row)
			blocks[row.Block] = true
		}
	}
	for _, row := range tables.Blocks {
		if blocks[row.Name] {
			out.Blocks = append(out.Blocks, row)
		}
	}
	for _, row := range tables.Edges {
		if modules[row.Parent] && modules[row.Child] {
			out.Edges = append(out.Edges, row)
		}
	}

	return out
}

// FilterDeltaByModules returns a new Delta containing only rows for the specified modules.
func FilterDeltaByModules(delta Delta, modules map[string]bool) Delta {
	return Delta{
		Added:   FilterTablesByModules(delta.Added, modules),
		Removed: FilterTablesByModules(delta.Removed, modules),
	}
}

// Subtree returns the named module and all of its descendants according to
// the edge relation. Unknown names are returned as-is.
func Subtree(tables Tables, names ...string) map[string]bool {
	children := make(map[string][]string)
	for _, e := range tables.Edges {
		children[e.Parent] = append(children[e.Parent], e.Child)
	}
	out := make(map[string]bool)
	var walk func(string)
	walk = func(name string) {
		if out[name] {
			return
		}
		out[name] = true
		for _, c := range children[name] {
			walk(c)
		}
	}
	for _, n := range names {
		walk(n)
	}
	return out
}
