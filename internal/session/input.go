package session

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Input is a declarative editing session loaded from a YAML file:
// the batch analogue of the interactive editor.
type Input struct {
	ReferenceSequenceID string          `yaml:"referenceSequenceId"`
	Sequences           []InputSequence `yaml:"sequences"`
	Files               []InputFile     `yaml:"files"`
}

// InputSequence is one named, pasted sequence.
type InputSequence struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// InputFile is one file to attach. Name defaults to the path's base
// name when omitted.
type InputFile struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// ValidateInput checks raw session YAML against the embedded CUE
// schema before anything is decoded into stores.
func ValidateInput(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("session file is not valid YAML: %w", err)
	}
	if doc == nil {
		// An empty session file is a valid (empty) session.
		doc = map[string]any{}
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile session schema: %w", err)
	}

	sessionDef := schema.LookupPath(cue.ParsePath("#Session"))
	if err := sessionDef.Err(); err != nil {
		return fmt.Errorf("lookup session schema: %w", err)
	}

	unified := sessionDef.Unify(ctx.Encode(doc))
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("session file does not match schema: %w", err)
	}
	return nil
}

// LoadInput reads, validates, and decodes a session file.
func LoadInput(path string) (*Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}
	if err := ValidateInput(data); err != nil {
		return nil, err
	}

	var in Input
	if err := yaml.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("decode session file: %w", err)
	}

	for i := range in.Files {
		if in.Files[i].Name == "" {
			in.Files[i].Name = filepath.Base(in.Files[i].Path)
		}
	}
	return &in, nil
}
