package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

// Error codes for configuration failures.
const (
	ErrCodeRead        = "CONFIG_READ"
	ErrCodeParse       = "CONFIG_PARSE"
	ErrCodeUnsupported = "CONFIG_UNSUPPORTED"
	ErrCodeInvalid     = "CONFIG_INVALID"
)

// LoadError reports a configuration file that could not be used.
type LoadError struct {
	Code string
	Path string
	Err  error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *LoadError) Unwrap() error { return e.Err }

// Load reads a run configuration from path on top of Default and
// validates the result. The format follows the extension: .yaml or .yml
// for YAML, .cue for CUE.
//
// YAML keys a Config does not know are rejected. CUE files may carry
// constraints of their own; they must resolve to concrete values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &LoadError{Code: ErrCodeRead, Path: path, Err: err}
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = decodeYAML(data, &cfg)
	case ".cue":
		err = decodeCUE(path, data, &cfg)
	default:
		return Config{}, &LoadError{Code: ErrCodeUnsupported, Path: path, Err: fmt.Errorf("unsupported extension %q", ext)}
	}
	if err != nil {
		return Config{}, &LoadError{Code: ErrCodeParse, Path: path, Err: err}
	}

	if err := Validate(cfg); err != nil {
		return Config{}, &LoadError{Code: ErrCodeInvalid, Path: path, Err: err}
	}
	return cfg, nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func decodeCUE(path string, data []byte, cfg *Config) error {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return fmt.Errorf("compile: %w", err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if err := v.Decode(cfg); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
