package facts

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleTables() Tables {
	return Tables{
		Grid:   []GridRow{{Width: 80, Height: 30, Size: 2400, SizePow2: 4096, AddrBits: 12}},
		Blocks: []BlockRow{{Name: "A", Line: 1, WireCount: 1}, {Name: "B", Line: 3, WireCount: 2}},
		Wires: []WireRow{
			{Block: "A", Name: "a", Module: "top"},
			{Block: "B", Name: "b", Module: "mid"},
			{Block: "B", Name: "c", Module: "leaf"},
		},
		Modules: []ModuleRow{
			{Name: "top", IsRoot: true},
			{Name: "mid", Parent: "top"},
			{Name: "leaf", Parent: "mid"},
		},
		Edges: []EdgeRow{{Parent: "top", Child: "mid"}, {Parent: "mid", Child: "leaf"}},
	}
}

func TestFilterTablesByModules(t *testing.T) {
	filtered := FilterTablesByModules(sampleTables(), map[string]bool{"mid": true, "leaf": true})

	require.Len(t, filtered.Grid, 1)
	require.Len(t, filtered.Modules, 2)
	require.Len(t, filtered.Wires, 2)
	require.Equal(t, []BlockRow{{Name: "B", Line: 3, WireCount: 2}}, filtered.Blocks)
	require.Equal(t, []EdgeRow{{Parent: "mid", Child: "leaf"}}, filtered.Edges)
}

func TestFilterTablesByModulesEmptySet(t *testing.T) {
	filtered := FilterTablesByModules(sampleTables(), nil)
	require.Len(t, filtered.Grid, 1)
	require.Empty(t, filtered.Modules)
	require.Empty(t, filtered.Wires)
}

func TestFilterDeltaByModules(t *testing.T) {
	delta := Delta{Added: sampleTables(), Removed: sampleTables()}
	filtered := FilterDeltaByModules(delta, map[string]bool{"top": true})
	require.Len(t, filtered.Added.Wires, 1)
	require.Len(t, filtered.Removed.Wires, 1)
	require.Empty(t, filtered.Added.Edges)
}

func TestSubtree(t *testing.T) {
	require.Equal(t, map[string]bool{"mid": true, "leaf": true}, Subtree(sampleTables(), "mid"))
	require.Equal(t, map[string]bool{"ghost": true}, Subtree(sampleTables(), "ghost"))
	require.Len(t, Subtree(sampleTables(), "top"), 3)
}
