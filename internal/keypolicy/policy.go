// Package keypolicy canonicalizes a field-name valuation into a deterministic
// identifier string, the building block every other component uses to name
// keys in the backing store.
package keypolicy

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Kind selects one of the two closed-set canonicalization strategies.
type Kind int

const (
	// JSON canonicalizes the valuation as sorted-key, minimally separated
	// JSON, so the identifier stays human readable.
	JSON Kind = iota
	// Hash further digests the JSON form with SHA-256, trading
	// readability for a fixed-width identifier.
	Hash
)

// Policy derives a stable identifier from a valuation: field name to value,
// where a nil value denotes SQL-style null.
type Policy interface {
	Identify(valuation map[string]*string) string
}

// New returns the Policy for the given Kind. Unknown kinds fall back to JSON.
func New(kind Kind) Policy {
	if kind == Hash {
		return hashPolicy{}
	}
	return jsonPolicy{}
}

type jsonPolicy struct{}

// Identify relies on encoding/json's map handling: keys are sorted
// lexicographically and the default encoder emits no extraneous whitespace,
// giving us the minimally-separated, sort-keys canonicalization for free.
func (jsonPolicy) Identify(valuation map[string]*string) string {
	data, err := json.Marshal(valuation)
	if err != nil {
		// valuation is map[string]*string; Marshal cannot fail on it.
		panic(err)
	}
	return string(data)
}

type hashPolicy struct{}

func (hashPolicy) Identify(valuation map[string]*string) string {
	sum := sha256.Sum256([]byte(jsonPolicy{}.Identify(valuation)))
	return hex.EncodeToString(sum[:])
}
