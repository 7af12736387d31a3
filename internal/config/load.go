package config

import (
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"
	cueyaml "cuelang.org/go/encoding/yaml"

	"github.com/robert-at-pretension-io/vgadbg/internal/diag"
)

// LoadFile reads and resolves the configuration document at path.
func LoadFile(path string) (*Config, error) {
	doc, err := ReadDocument(path)
	if err != nil {
		return nil, err
	}
	return Resolve(doc)
}

// ReadDocument reads path into a document value. The decoder is chosen by
// extension: .yaml/.yml, .cue, anything else is treated as JSON.
func ReadDocument(path string) (cue.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cue.Value{}, diag.Wrap(diag.KindIO, err, "reading config file '"+path+"'")
	}
	return ParseDocument(path, data)
}

// ParseDocument decodes data into a document value. name selects the
// decoder and is used in error positions.
func ParseDocument(name string, data []byte) (cue.Value, error) {
	ctx := cuecontext.New()

	var v cue.Value
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		f, err := cueyaml.Extract(name, data)
		if err != nil {
			return cue.Value{}, syntaxErrors(err)
		}
		v = ctx.BuildFile(f)
	case ".cue":
		v = ctx.CompileBytes(data, cue.Filename(name))
	default:
		expr, err := cuejson.Extract(name, data)
		if err != nil {
			return cue.Value{}, syntaxErrors(err)
		}
		v = ctx.BuildExpr(expr)
	}

	if err := v.Validate(cue.Concrete(true)); err != nil {
		return cue.Value{}, syntaxErrors(err)
	}
	return v, nil
}

func syntaxErrors(err error) error {
	var list diag.List
	for _, e := range cueerrors.Errors(err) {
		msg := strings.TrimSpace(cueerrors.Details(e, nil))
		list.Add(diag.KindConfigFormat, "parsing config file: "+msg)
	}
	if len(list) == 0 {
		list.Add(diag.KindConfigFormat, "parsing config file: "+err.Error())
	}
	return list
}
