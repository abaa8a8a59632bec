package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed keys.
// The version suffix leaves room for an algorithm change.
const (
	DomainApplication = "sophon/application/v1"
	DomainRunConfig   = "sophon/run-config/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ApplicationKey is the stable identity of an (op-name, inputs) pair.
// Two applications share a key exactly when the name and the ordered
// tuple are equal.
func ApplicationKey(opName string, inputs []int64) string {
	if inputs == nil {
		inputs = []int64{}
	}
	data, err := Marshal(map[string]any{
		"op":     opName,
		"inputs": inputs,
	})
	if err != nil {
		// Only strings and ints are encoded; failure is a programming defect.
		panic(fmt.Sprintf("ApplicationKey: %v", err))
	}
	return hashWithDomain(DomainApplication, data)
}

// Fingerprint hashes an arbitrary canonical value under the run-config
// domain. Values holding floats must be converted by the caller first.
func Fingerprint(v any) (string, error) {
	data, err := Marshal(v)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	return hashWithDomain(DomainRunConfig, data), nil
}
