package scene

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSource string

// Format is a scene file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatCUE  Format = "cue"
)

// FormatFor picks the encoding from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".cue":
		return FormatCUE, nil
	default:
		return "", fmt.Errorf("unsupported scene file extension %q (want .yaml, .yml or .cue)", filepath.Ext(path))
	}
}

// LoadError reports a scene file that could not be read or decoded.
type LoadError struct {
	Path string
	Pos  string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Pos != "" {
		return fmt.Sprintf("load scene %s: %s: %v", e.Path, e.Pos, e.Err)
	}
	return fmt.Sprintf("load scene %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func (e *LoadError) Kind() string { return KindInvalidScene }

// Load reads, decodes, normalizes and validates a scene file.
func Load(path string) (*Scene, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	sc, err := Parse(data, format)
	if err != nil {
		if le, ok := err.(*LoadError); ok {
			le.Path = path
			return nil, le
		}
		return nil, err
	}
	return sc, nil
}

// Parse decodes data in the given format. The result is normalized and
// validated.
func Parse(data []byte, format Format) (*Scene, error) {
	var (
		sc  *Scene
		err error
	)
	switch format {
	case FormatYAML:
		sc, err = parseYAML(data)
	case FormatCUE:
		sc, err = parseCUE(data)
	default:
		err = &LoadError{Err: fmt.Errorf("unknown format %q", format)}
	}
	if err != nil {
		return nil, err
	}

	sc.Normalize()
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

func parseYAML(data []byte) (*Scene, error) {
	var sc Scene
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&sc); err != nil {
		return nil, &LoadError{Err: fmt.Errorf("parse YAML: %w", err)}
	}
	return &sc, nil
}

func parseCUE(data []byte) (*Scene, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile scene schema: %w", err)
	}

	v := ctx.CompileBytes(data, cue.Filename("scene.cue"))
	if err := v.Err(); err != nil {
		return nil, cueLoadError(err)
	}

	v = schema.LookupPath(cue.ParsePath("#Scene")).Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, cueLoadError(err)
	}

	var sc Scene
	if err := v.Decode(&sc); err != nil {
		return nil, cueLoadError(err)
	}
	return &sc, nil
}

// cueLoadError keeps the first CUE error and its position.
func cueLoadError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Err: err}
	}
	first := errs[0]
	le := &LoadError{Err: fmt.Errorf("%s", first.Error())}
	if pos := cueerrors.Positions(first); len(pos) > 0 {
		le.Pos = pos[0].String()
	}
	return le
}

// Normalize trims names, labels and colors and brings them to NFC, then
// fills in default graphics sizes. Color case is kept: only the exact
// names red, green and blue get their own fill.
func (s *Scene) Normalize() {
	s.Name = norm.NFC.String(strings.TrimSpace(s.Name))
	for i := range s.Entities {
		e := &s.Entities[i]
		e.Label = norm.NFC.String(strings.TrimSpace(e.Label))
		if g := e.Graphics; g != nil {
			g.Color = norm.NFC.String(strings.TrimSpace(g.Color))
			if g.Width == 0 {
				g.Width = DefaultSize
			}
			if g.Height == 0 {
				g.Height = DefaultSize
			}
		}
	}
}
