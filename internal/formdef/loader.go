package formdef

import (
	_ "embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaSrc []byte

// Loader compiles definition files against the embedded schema. One loader
// can parse any number of files; it is not safe for concurrent use.
type Loader struct {
	ctx    *cue.Context
	schema cue.Value
}

// NewLoader builds a loader with the package schema compiled.
func NewLoader() (*Loader, error) {
	ctx := cuecontext.New()
	root := ctx.CompileBytes(schemaSrc, cue.Filename("schema.cue"))
	if err := root.Err(); err != nil {
		return nil, fmt.Errorf("formdef schema: %s", cueerrors.Details(err, nil))
	}
	schema := root.LookupPath(cue.ParsePath("#Form"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("formdef schema: missing #Form: %s", cueerrors.Details(err, nil))
	}
	return &Loader{ctx: ctx, schema: schema}, nil
}

// Parse compiles one definition file and checks it against the schema.
func (l *Loader) Parse(filename string, src []byte) (*Definition, error) {
	v := l.ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("%s: %s", filename, cueerrors.Details(err, nil))
	}
	unified := l.schema.Unify(v)
	if err := unified.Validate(cue.Concrete(true), cue.Final()); err != nil {
		return nil, fmt.Errorf("%s: %s", filename, cueerrors.Details(err, nil))
	}

	def, err := parseForm(unified)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	if err := def.check(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return def, nil
}

// LoadDir parses every .cue file in dir, in name order.
func (l *Loader) LoadDir(dir string) ([]*Definition, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var defs []*Definition
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".cue" {
			continue
		}
		src, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		def, err := l.Parse(e.Name(), src)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// LoadFS parses every .cue file at the root of fsys, in name order.
func (l *Loader) LoadFS(fsys fs.FS) ([]*Definition, error) {
	names, err := fs.Glob(fsys, "*.cue")
	if err != nil {
		return nil, err
	}
	var defs []*Definition
	for _, name := range names {
		src, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, err
		}
		def, err := l.Parse(name, src)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// ── CUE value walking ──────────────────────────────────────────────────────

// at looks up path and resolves the default of a disjunction, so optional
// fields with schema defaults read as their concrete value.
func at(v cue.Value, path string) cue.Value {
	fv := v.LookupPath(cue.ParsePath(path))
	if d, ok := fv.Default(); ok {
		fv = d
	}
	return fv
}

func strAt(v cue.Value, path string) string {
	fv := at(v, path)
	if !fv.Exists() {
		return ""
	}
	s, err := fv.String()
	if err != nil {
		return ""
	}
	return s
}

func intAt(v cue.Value, path string) int {
	fv := at(v, path)
	if !fv.Exists() {
		return 0
	}
	i, err := fv.Int64()
	if err != nil {
		return 0
	}
	return int(i)
}

func floatAt(v cue.Value, path string) *float64 {
	fv := at(v, path)
	if !fv.Exists() {
		return nil
	}
	f, err := fv.Float64()
	if err != nil {
		return nil
	}
	return &f
}

func boolAt(v cue.Value, path string) bool {
	fv := at(v, path)
	if !fv.Exists() {
		return false
	}
	b, err := fv.Bool()
	if err != nil {
		return false
	}
	return b
}

func strListAt(v cue.Value, path string) []string {
	fv := at(v, path)
	if !fv.Exists() {
		return nil
	}
	it, err := fv.List()
	if err != nil {
		return nil
	}
	var out []string
	for it.Next() {
		if s, err := it.Value().String(); err == nil {
			out = append(out, s)
		}
	}
	return out
}

func parseForm(v cue.Value) (*Definition, error) {
	d := &Definition{
		Name:        strAt(v, "name"),
		Title:       strAt(v, "title"),
		Description: strAt(v, "description"),
		Access:      strListAt(v, "access"),
	}

	it, err := at(v, "fields").List()
	if err != nil {
		return nil, fmt.Errorf("form %q: fields: %w", d.Name, err)
	}
	for it.Next() {
		fd, err := parseField(it.Value())
		if err != nil {
			return nil, fmt.Errorf("form %q: %w", d.Name, err)
		}
		d.Fields = append(d.Fields, fd)
	}
	return d, nil
}

func parseField(v cue.Value) (FieldDef, error) {
	fd := FieldDef{
		Name:        strAt(v, "name"),
		Kind:        Kind(strAt(v, "kind")),
		Label:       strAt(v, "label"),
		Required:    boolAt(v, "required"),
		Appear:      strAt(v, "appear"),
		MinLength:   intAt(v, "min_length"),
		MaxLength:   intAt(v, "max_length"),
		MinValue:    floatAt(v, "min_value"),
		MaxValue:    floatAt(v, "max_value"),
		Forbidden:   strListAt(v, "forbidden"),
		MinValues:   intAt(v, "min_values"),
		MaxValues:   intAt(v, "max_values"),
		Placeholder: strAt(v, "placeholder"),
	}

	if cv := at(v, "choices"); cv.Exists() {
		it, err := cv.List()
		if err != nil {
			return fd, fmt.Errorf("field %q: choices: %w", fd.Name, err)
		}
		for it.Next() {
			c, err := parseChoice(it.Value())
			if err != nil {
				return fd, fmt.Errorf("field %q: %w", fd.Name, err)
			}
			fd.Choices = append(fd.Choices, c)
		}
	}

	if sv := at(v, "fields"); sv.Exists() {
		it, err := sv.List()
		if err != nil {
			return fd, fmt.Errorf("field %q: sub-fields: %w", fd.Name, err)
		}
		for it.Next() {
			sub, err := parseField(it.Value())
			if err != nil {
				return fd, err
			}
			fd.Fields = append(fd.Fields, sub)
		}
	}

	if dv := at(v, "default"); dv.Exists() {
		val, err := anyValue(dv)
		if err != nil {
			return fd, fmt.Errorf("field %q: default: %w", fd.Name, err)
		}
		fd.Default = val
	}
	return fd, nil
}

func parseChoice(v cue.Value) (ChoiceDef, error) {
	c := ChoiceDef{
		Label:       strAt(v, "label"),
		Description: strAt(v, "description"),
		Emoji:       strAt(v, "emoji"),
	}
	val, err := anyValue(at(v, "value"))
	if err != nil {
		return c, fmt.Errorf("choice %q: value: %w", c.Label, err)
	}
	c.Value = val
	return c, nil
}

// anyValue converts a concrete CUE value to its Go shape. Integral numbers
// become int64 to match what the engine stores for number input.
func anyValue(v cue.Value) (any, error) {
	switch v.Kind() {
	case cue.NullKind:
		return nil, nil
	case cue.StringKind:
		return v.String()
	case cue.IntKind:
		return v.Int64()
	case cue.FloatKind, cue.NumberKind:
		return v.Float64()
	case cue.BoolKind:
		return v.Bool()
	case cue.ListKind:
		it, err := v.List()
		if err != nil {
			return nil, err
		}
		var out []any
		for it.Next() {
			elem, err := anyValue(it.Value())
			if err != nil {
				return nil, err
			}
			out = append(out, elem)
		}
		return out, nil
	case cue.StructKind:
		it, err := v.Fields()
		if err != nil {
			return nil, err
		}
		out := make(map[string]any)
		for it.Next() {
			elem, err := anyValue(it.Value())
			if err != nil {
				return nil, err
			}
			out[it.Selector().String()] = elem
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported value kind %v", v.Kind())
}
