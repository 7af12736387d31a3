package hierarchy

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robert-at-pretension-io/vgadbg/internal/config"
	"github.com/robert-at-pretension-io/vgadbg/internal/diag"
	"github.com/robert-at-pretension-io/vgadbg/internal/template"
)

func buildDesign(t *testing.T, cfgJSON, tmplSrc string) (*Design, error) {
	t.Helper()
	doc, err := config.ParseDocument("config.json", []byte(cfgJSON))
	require.NoError(t, err)
	cfg, err := config.Resolve(doc)
	require.NoError(t, err)
	tmpl, err := template.Parse(strings.NewReader(tmplSrc), template.Options{
		HeaderLines: cfg.HeaderLines,
		Width:       cfg.TemplateWidth,
		Height:      cfg.TemplateHeight,
	})
	require.NoError(t, err)
	return Build(cfg, tmpl)
}

func wireNames(ws []Wire) []string {
	names := make([]string, 0, len(ws))
	for _, w := range ws {
		names = append(names, w.FullName)
	}
	return names
}

func TestBuildSubmoduleScenario(t *testing.T) {
	d, err := buildDesign(t, `{
		"template_file": "t", "mem_file": "m", "dbg_header": "h", "module_name": "top",
		"header_lines": 1, "template_width": 10, "template_height": 5,
		"submodule": [{"name": "sub", "parent": "top", "wires": {"B": ["x"]}}]
	}`, "HDR\n= B =\nx:000\n")
	require.NoError(t, err)

	sub := d.Modules["sub"]
	require.Len(t, sub.Wires, 1)
	x := sub.Wires[0]
	require.Equal(t, "x", x.FullName)
	require.Equal(t, 3, x.LenHex)
	require.Equal(t, 12, x.LenBits)
	require.Equal(t, "sub", x.Module)

	top := d.RootModule()
	require.Empty(t, top.Wires)
	require.Equal(t, []string{"x"}, wireNames(top.WiresAll))
	require.Equal(t, []string{"sub"}, top.Children)

	require.Equal(t, 50, d.Size)
	require.Equal(t, 64, d.SizePow2)
	require.Equal(t, 6, d.AddrBits)
}

func TestBuildResolvesNamesAndWidths(t *testing.T) {
	d, err := buildDesign(t, `{
		"template_file": "t", "mem_file": "m", "dbg_header": "h", "module_name": "top",
		"block_prefix": {"B": "blk_"},
		"block_suffix": {"B": "_s"},
		"wire_group": [{"name": "grp", "wires": {"B": ["x"]}}],
		"wire_prefix": {"*grp": "dbg_"},
		"wire_name": {"B": {"y": "core_y"}},
		"len_bits": {"B": {"z": 5}}
	}`, "= B =\nx:0 y:00 z:00\n")
	require.NoError(t, err)

	ws := d.RootModule().Wires
	require.Len(t, ws, 3)

	require.Equal(t, "dbg_x_s", ws[0].FullName)
	require.Equal(t, 1, ws[0].LenBits)
	require.Equal(t, ws[0].FullName, ws[0].CodeName)

	require.Equal(t, "blk_y_s", ws[1].FullName)
	require.Equal(t, "core_y", ws[1].CodeName)
	require.Equal(t, 8, ws[1].LenBits)

	require.Equal(t, 5, ws[2].LenBits)
	require.Equal(t, "top", ws[2].Module)
}

func TestBuildAggregatesInDeclarationOrder(t *testing.T) {
	d, err := buildDesign(t, `{
		"template_file": "t", "mem_file": "m", "dbg_header": "h", "module_name": "top",
		"submodule": [
			{"name": "a", "wires": {"A": ["a0"]}},
			{"name": "b", "wires": {"B": ["b0"]}},
			{"name": "a1", "parent": "a", "wires": {"A": ["a1"]}}
		]
	}`, "= A =\na0:0 a1:0\n= B =\nb0:0\n= R =\nr:0\n")
	require.NoError(t, err)

	require.Equal(t, []string{"top", "a", "b", "a1"}, d.Order)
	require.Equal(t, []string{"a", "b"}, d.RootModule().Children)
	require.Equal(t, []string{"a1"}, d.Modules["a"].Children)

	require.Equal(t, []string{"r", "a0", "a1", "b0"}, wireNames(d.RootModule().WiresAll))
	require.Equal(t, []string{"a0", "a1"}, wireNames(d.Modules["a"].WiresAll))
	require.Equal(t, wireNames(d.Modules["a1"].Wires), wireNames(d.Modules["a1"].WiresAll))
	require.Equal(t, 4, d.WireCount())

	names := make([]string, 0, len(d.Order))
	for _, m := range d.Ordered() {
		names = append(names, m.Name)
	}
	require.Equal(t, d.Order, names)
}

func TestBuildUnknownParent(t *testing.T) {
	_, err := buildDesign(t, `{
		"template_file": "t", "mem_file": "m", "dbg_header": "h", "module_name": "top",
		"submodule": [{"name": "s", "parent": "ghost", "wires": {}}]
	}`, "")
	require.Error(t, err)
	require.True(t, diag.Is(err, diag.KindHierarchy))
	require.Contains(t, err.Error(), "can't find parent module 'ghost' of module 's'")
}

func TestBuildParentCycle(t *testing.T) {
	_, err := buildDesign(t, `{
		"template_file": "t", "mem_file": "m", "dbg_header": "h", "module_name": "top",
		"submodule": [
			{"name": "a", "parent": "b", "wires": {}},
			{"name": "b", "parent": "a", "wires": {}}
		]
	}`, "")
	require.Error(t, err)
	require.True(t, diag.Is(err, diag.KindHierarchy))
	require.Contains(t, err.Error(), "cycle detected")
}

func TestBuildSelfParent(t *testing.T) {
	_, err := buildDesign(t, `{
		"template_file": "t", "mem_file": "m", "dbg_header": "h", "module_name": "top",
		"submodule": [{"name": "a", "parent": "a", "wires": {}}]
	}`, "")
	require.True(t, diag.Is(err, diag.KindHierarchy))
}

func TestGridSize(t *testing.T) {
	tests := []struct {
		w, h              int
		size, pow2, bits int
	}{
		{80, 30, 2400, 4096, 12},
		{10, 5, 50, 64, 6},
		{8, 8, 64, 64, 6},
		{1, 1, 1, 1, 0},
		{4096, 4096, 1 << 24, 1 << 24, 24},
		{4097, 1, 4097, 8192, 13},
	}
	for _, tt := range tests {
		size, pow2, bits, err := GridSize(tt.w, tt.h)
		require.NoError(t, err)
		require.Equal(t, []int{tt.size, tt.pow2, tt.bits}, []int{size, pow2, bits}, "GridSize(%d, %d)", tt.w, tt.h)
	}
}

func TestGridSizeRejectsOversizedGrids(t *testing.T) {
	tests := []struct{ w, h int }{
		{1<<31 + 1, 1 << 31},
		{4096, 4097},
		{0, 10},
		{10, 0},
	}
	for _, tt := range tests {
		done := make(chan error, 1)
		go func() {
			_, _, _, err := GridSize(tt.w, tt.h)
			done <- err
		}()
		select {
		case err := <-done:
			require.True(t, diag.Is(err, diag.KindHierarchy), "GridSize(%d, %d): %v", tt.w, tt.h, err)
		case <-time.After(2 * time.Second):
			t.Fatalf("GridSize(%d, %d) did not return", tt.w, tt.h)
		}
	}
}

func TestBuildRejectsOversizedGrid(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ModuleName = "top"
	cfg.TemplateWidth = 1<<31 + 1
	cfg.TemplateHeight = 1 << 31

	_, err := Build(cfg, &template.Template{})
	require.True(t, diag.Is(err, diag.KindHierarchy))
	require.Contains(t, err.Error(), "cells")
}
