package facts

// Delta captures added and removed fact rows between two snapshots.
type Delta struct {
	Added   Tables `json:"added"`
	Removed Tables `json:"removed"`
}

// ComputeDelta computes row-level additions and removals between two snapshots.
func ComputeDelta(prev, next Tables) Delta {
	return Delta{
		Added:   diffTables(prev, next),
		Removed: diffTables(next, prev),
	}
}

// Empty reports whether the delta has no rows at all.
func (d Delta) Empty() bool {
	return d.Added.rowCount() == 0 && d.Removed.rowCount() == 0
}

func diffTables(from, to Tables) Tables {
	out := emptyTables()

	out.Grid = diffRows(from.Grid, to.Grid, gridKey)
	out.Blocks = diffRows(from.Blocks, to.Blocks, blockKey)
	out.Wires = diffRows(from.Wires, to.Wires, wireKey)
	out.Modules = diffRows(from.Modules, to.Modules, moduleKey)
	out.Edges = diffRows(from.Edges, to.Edges, edgeKey)

	return out
}

func emptyTables() Tables {
	return Tables{
		Grid:    []GridRow{},
		Blocks:  []BlockRow{},
		Wires:   []WireRow{},
		Modules: []ModuleRow{},
		Edges:   []EdgeRow{},
	}
}

func (t Tables) rowCount() int {
	return len(t.Grid) + len(t.Blocks) + len(t.Wires) + len(t.Modules) + len(t.Edges)
}

func gridKey(r GridRow) string {
	return intKey(r.Width) + "|" + intKey(r.Height) + "|" + intKey(r.Size) + "|" + intKey(r.SizePow2) + "|" + intKey(r.AddrBits)
}

func blockKey(r BlockRow) string {
	return r.Name + "|" + intKey(r.Line) + "|" + intKey(r.WireCount)
}

func wireKey(r WireRow) string {
	return r.Block + "|" + r.Name + "|" + r.FullName + "|" + r.CodeName + "|" + r.Module + "|" +
		intKey(r.LenHex) + "|" + intKey(r.LenBits) + "|" + intKey(r.Start) + "|" + intKey(r.End)
}

func moduleKey(r ModuleRow) string {
	return r.Name + "|" + r.Parent + "|" + boolKey(r.IsRoot) + "|" + intKey(r.WireCount) + "|" + intKey(r.WireAllCount)
}

func edgeKey(r EdgeRow) string {
	return r.Parent + "|" + r.Child
}

func diffRows[T any](from, to []T, key func(T) string) []T {
	fromSet := make(map[string]struct{}, len(from))
	for _, row := range from {
		fromSet[key(row)] = struct{}{}
	}
	diff := []T{}
	for _, row := range to {
		if _, ok := fromSet[key(row)]; !ok {
			diff = append(diff, row)
		}
	}
	return diff
}

func boolKey(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func intKey(v int) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
