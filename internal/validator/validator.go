// Package validator checks a resolved design against the CUE contract the
// emitter relies on before any file is written.
//
// A failure here means an earlier stage let something through that the
// generated Verilog cannot express (an empty wire, a name that is not an
// identifier, a cell outside the memory image). Fix the stage that
// produced it; do not loosen schema.cue to make the error go away.
package validator

import (
	_ "embed"
	"encoding/json"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/pkg/errors"

	"github.com/robert-at-pretension-io/vgadbg/internal/diag"
	"github.com/robert-at-pretension-io/vgadbg/internal/facts"
	"github.com/robert-at-pretension-io/vgadbg/internal/hierarchy"
)

//go:embed schema.cue
var schemaSource []byte

const designDef = "#Design"

// Validator validates designs against the embedded schema.
type Validator struct {
	ctx    *cue.Context
	schema cue.Value
}

// New creates a new Validator with the embedded CUE schema.
func New() (*Validator, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileBytes(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, errors.Wrap(err, "compiling schema")
	}
	return &Validator{ctx: ctx, schema: schema}, nil
}

// Validate checks the fact tables of d against #Design.
func (v *Validator) Validate(d *hierarchy.Design) error {
	return v.ValidateTables(facts.BuildTables(d))
}

// ValidateTables checks already-built tables against #Design.
func (v *Validator) ValidateTables(tables facts.Tables) error {
	data, err := json.Marshal(tables)
	if err != nil {
		return diag.Wrap(diag.KindContract, err, "marshaling design")
	}
	return v.ValidateJSON(data)
}

// ValidateJSON checks a JSON document against #Design. Every schema
// violation is reported as its own Contract error.
func (v *Validator) ValidateJSON(data []byte) error {
	value := v.ctx.CompileBytes(data, cue.Filename("design.json"))
	if err := value.Err(); err != nil {
		return diag.Wrap(diag.KindContract, err, "compiling design")
	}

	def := v.schema.LookupPath(cue.ParsePath(designDef))
	if err := def.Err(); err != nil {
		return diag.Wrap(diag.KindContract, err, "looking up "+designDef)
	}

	unified := def.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return contractErrors(err)
	}
	return nil
}

func contractErrors(err error) error {
	var list diag.List
	for _, e := range cueerrors.Errors(err) {
		list.Add(diag.KindContract, "design contract: "+e.Error())
	}
	if len(list) == 0 {
		list.Add(diag.KindContract, "design contract: "+err.Error())
	}
	return list.Err()
}
