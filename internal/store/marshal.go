package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/sophon/internal/canon"
	"github.com/roach88/sophon/internal/hypergraph"
	"github.com/roach88/sophon/internal/ops"
)

// marshalJSON converts v to JSON TEXT for storage.
// HTML escaping is disabled so stored text matches what was written.
func marshalJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	// Encoder adds a trailing newline.
	return strings.TrimSpace(buf.String()), nil
}

// int64s converts node ids for the canonical encoder.
func int64s(ids []hypergraph.ID) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}

// marshalIDs converts an id tuple to canonical JSON TEXT.
func marshalIDs(ids []hypergraph.ID) (string, error) {
	data, err := canon.Marshal(int64s(ids))
	if err != nil {
		return "", fmt.Errorf("marshal ids: %w", err)
	}
	return string(data), nil
}

// unmarshalIDs parses an id tuple. Returns an empty, non-nil slice for "[]".
func unmarshalIDs(data string) ([]hypergraph.ID, error) {
	ids := []hypergraph.ID{}
	if err := json.Unmarshal([]byte(data), &ids); err != nil {
		return nil, fmt.Errorf("unmarshal ids: %w", err)
	}
	return ids, nil
}

// unmarshalInputs parses a stored input tuple.
func unmarshalInputs(data string) (ops.Inputs, error) {
	ids, err := unmarshalIDs(data)
	if err != nil {
		return nil, err
	}
	return ops.Inputs(ids), nil
}

// marshalAttrs converts node or edge attrs to JSON TEXT.
func marshalAttrs(a hypergraph.Attrs) (string, error) {
	if a == nil {
		return "{}", nil
	}
	s, err := marshalJSON(a)
	if err != nil {
		return "", fmt.Errorf("marshal attrs: %w", err)
	}
	return s, nil
}

// unmarshalAttrs parses attrs. Numbers decode as float64, lists as []any.
func unmarshalAttrs(data string) (hypergraph.Attrs, error) {
	attrs := hypergraph.Attrs{}
	if data == "" || data == "{}" {
		return attrs, nil
	}
	if err := json.Unmarshal([]byte(data), &attrs); err != nil {
		return nil, fmt.Errorf("unmarshal attrs: %w", err)
	}
	return attrs, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
