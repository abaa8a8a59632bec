// Package config loads and validates sophon run configurations.
//
// A Config is read from YAML (gopkg.in/yaml.v3) or CUE (cuelang.org/go)
// on top of Default, then checked with go-playground/validator struct
// tags. The cli package applies command-line flags last.
package config
