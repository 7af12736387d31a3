package emitter

import (
	"io"
	"os"
	"path/filepath"

	"github.com/robert-at-pretension-io/vgadbg/internal/diag"
	"github.com/robert-at-pretension-io/vgadbg/internal/hierarchy"
)

// Artifact is one generated file.
type Artifact struct {
	Name   string
	Render func(io.Writer, *hierarchy.Design) error
}

// Artifacts lists the files generated for d, in the order they are written.
func Artifacts(d *hierarchy.Design) []Artifact {
	cfg := d.Config
	return []Artifact{
		{Name: cfg.MemFile, Render: WriteMem},
		{Name: cfg.DebuggerFile, Render: WriteDebugger},
		{Name: cfg.DbgHeader, Render: WriteHeader},
	}
}

// Emit writes every artifact into the configured output directory and
// returns the paths written. Each file is rendered into a temporary file
// next to its destination and renamed into place once complete; on
// failure, files already placed by this call are removed again.
func Emit(d *hierarchy.Design) ([]string, error) {
	var written []string
	for _, a := range Artifacts(d) {
		path := d.Config.OutputPath(a.Name)
		render := a.Render
		err := writeFileAtomic(path, func(w io.Writer) error { return render(w, d) })
		if err != nil {
			for _, p := range written {
				_ = os.Remove(p)
			}
			return nil, err
		}
		written = append(written, path)
	}
	return written, nil
}

func writeFileAtomic(path string, render func(io.Writer) error) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return diag.Wrap(diag.KindIO, err, "creating output file '"+path+"'")
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()

	if err := render(f); err != nil {
		return diag.Wrap(diag.KindIO, err, "writing output file '"+path+"'")
	}
	if err := f.Chmod(0o644); err != nil {
		return diag.Wrap(diag.KindIO, err, "writing output file '"+path+"'")
	}
	if err := f.Close(); err != nil {
		return diag.Wrap(diag.KindIO, err, "writing output file '"+path+"'")
	}
	if err := os.Rename(tmp, path); err != nil {
		return diag.Wrap(diag.KindIO, err, "creating output file '"+path+"'")
	}
	return nil
}
