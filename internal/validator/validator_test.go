package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robert-at-pretension-io/vgadbg/internal/config"
	"github.com/robert-at-pretension-io/vgadbg/internal/diag"
	"github.com/robert-at-pretension-io/vgadbg/internal/facts"
	"github.com/robert-at-pretension-io/vgadbg/internal/hierarchy"
	"github.com/robert-at-pretension-io/vgadbg/internal/template"
)

func newValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := New()
	require.NoError(t, err)
	return v
}

func buildDesign(t *testing.T, cfgJSON, tmplSrc string) *hierarchy.Design {
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
	d, err := hierarchy.Build(cfg, tmpl)
	require.NoError(t, err)
	return d
}

func validTables() facts.Tables {
	return facts.Tables{
		Grid:   []facts.GridRow{{Width: 10, Height: 5, Size: 50, SizePow2: 64, AddrBits: 6}},
		Blocks: []facts.BlockRow{{Name: "B", Line: 2, WireCount: 1}},
		Wires: []facts.WireRow{{
			Block: "B", Name: "x", FullName: "x", CodeName: "core.x", Module: "top",
			LenHex: 3, LenBits: 12, Start: 22, End: 24,
		}},
		Modules: []facts.ModuleRow{{Name: "top", IsRoot: true, WireCount: 1, WireAllCount: 1}},
		Edges:   []facts.EdgeRow{},
	}
}

func TestValidateAcceptsBuiltDesign(t *testing.T) {
	v := newValidator(t)
	d := buildDesign(t, `{
		"template_file": "t", "mem_file": "m", "dbg_header": "h", "module_name": "top",
		"header_lines": 1, "template_width": 10, "template_height": 5,
		"block_prefix": {"B": "b_"},
		"submodule": [{"name": "sub", "wires": {"B": ["x"]}}]
	}`, "HDR\n= B =\nx:000 y:0\n")

	require.NoError(t, v.Validate(d))
}

func TestValidateAcceptsEmptyDesign(t *testing.T) {
	v := newValidator(t)
	d := buildDesign(t, `{"template_file": "t", "mem_file": "m", "dbg_header": "h", "module_name": "top"}`, "")
	require.NoError(t, v.Validate(d))
}

func TestValidateTables(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*facts.Tables)
		want   string
	}{
		{
			name:   "valid",
			mutate: func(*facts.Tables) {},
		},
		{
			name:   "full name is not an identifier",
			mutate: func(tb *facts.Tables) { tb.Wires[0].FullName = "1x" },
			want:   "full_name",
		},
		{
			name:   "wire past memory image",
			mutate: func(tb *facts.Tables) { tb.Wires[0].End = 64 },
			want:   "end",
		},
		{
			name:   "end before start",
			mutate: func(tb *facts.Tables) { tb.Wires[0].End = 21 },
			want:   "end",
		},
		{
			name:   "zero hex length",
			mutate: func(tb *facts.Tables) { tb.Wires[0].LenHex = 0 },
			want:   "len_hex",
		},
		{
			name:   "zero bit length",
			mutate: func(tb *facts.Tables) { tb.Wires[0].LenBits = 0 },
			want:   "len_bits",
		},
		{
			name:   "module name with a dot",
			mutate: func(tb *facts.Tables) { tb.Modules[0].Name = "a.b" },
			want:   "name",
		},
		{
			name:   "zero address bits",
			mutate: func(tb *facts.Tables) { tb.Grid[0].AddrBits = 0 },
			want:   "addr_bits",
		},
		{
			name:   "missing grid",
			mutate: func(tb *facts.Tables) { tb.Grid = []facts.GridRow{} },
			want:   "grid",
		},
	}

	v := newValidator(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tables := validTables()
			tt.mutate(&tables)

			err := v.ValidateTables(tables)
			if tt.want == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.True(t, diag.Is(err, diag.KindContract), "kind = %v", diag.KindOf(err))
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateReportsEveryViolation(t *testing.T) {
	v := newValidator(t)
	tables := validTables()
	tables.Wires[0].LenHex = 0
	tables.Modules[0].Name = "has space"

	err := v.ValidateTables(tables)
	var list diag.List
	require.ErrorAs(t, err, &list)
	require.GreaterOrEqual(t, len(list), 2)
	for _, msg := range list.Messages() {
		require.True(t, strings.HasPrefix(msg, "design contract: "), msg)
	}
}

func TestValidateJSONRejectsUnknownFields(t *testing.T) {
	v := newValidator(t)
	err := v.ValidateJSON([]byte(`{"grid": [{"width": 1, "height": 1, "size": 1, "size_pow2": 1, "addr_bits": 1}],
		"blocks": [], "wires": [], "modules": [], "edges": [], "extra": true}`))
	require.True(t, diag.Is(err, diag.KindContract))
}
