package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// storageKeyHexLen is the digest prefix length used in storage keys.
// The full digest remains available for collision-sensitive comparisons.
const storageKeyHexLen = 16

// Fingerprint is the deterministic digest of a cache request.
type Fingerprint struct {
	kind       Kind
	technology string
	digest     [sha256.Size]byte
}

// Kind returns the operation kind the fingerprint was derived for.
func (f Fingerprint) Kind() Kind { return f.kind }

// Technology returns the lowercased technology tag.
func (f Fingerprint) Technology() string { return f.technology }

// Digest returns the full hex digest. Use this for duplicate-content
// detection and any comparison where collisions matter.
func (f Fingerprint) Digest() string {
	return hex.EncodeToString(f.digest[:])
}

// StorageKey returns the compact key used to address a store:
// <kind>:<technology>:<digest prefix>.
func (f Fingerprint) StorageKey() string {
	return fmt.Sprintf("%s:%s:%s", f.kind, f.technology, hex.EncodeToString(f.digest[:])[:storageKeyHexLen])
}

// Keyer derives deterministic fingerprints from cache requests.
//
// Contract:
// - Determinism: logically identical requests must produce identical
//   fingerprints regardless of map iteration order.
// - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	Fingerprint(kind Kind, technology string, input any, extra map[string]string) (Fingerprint, error)
}

// DefaultKeyer derives SHA-256 fingerprints over a canonical serialization
// of the request.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a new default keyer.
func NewDefaultKeyer() *DefaultKeyer {
	return &DefaultKeyer{}
}

// Fingerprint derives the digest over a canonical JSON envelope of
// {operation, technology (lowercased), input digest, extra params}.
// Canonicalizing before hashing keeps fingerprints stable across
// implementations and map orderings.
func (k *DefaultKeyer) Fingerprint(kind Kind, technology string, input any, extra map[string]string) (Fingerprint, error) {
	if !kind.Valid() {
		return Fingerprint{}, fmt.Errorf("cache: cannot fingerprint unknown kind %d", int(kind))
	}

	tech := strings.ToLower(strings.TrimSpace(technology))

	inputJSON, err := canonicalize(input)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("cache: failed to canonicalize input: %w", err)
	}
	inputDigest := sha256.Sum256(inputJSON)

	envelope := map[string]any{
		"operation":  kind.String(),
		"technology": tech,
		"input":      hex.EncodeToString(inputDigest[:]),
	}
	if len(extra) > 0 {
		params := make(map[string]any, len(extra))
		for key, val := range extra {
			params[key] = val
		}
		envelope["params"] = params
	}

	canonical, err := canonicalizeMap(envelope)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("cache: failed to canonicalize envelope: %w", err)
	}

	return Fingerprint{
		kind:       kind,
		technology: tech,
		digest:     sha256.Sum256(canonical),
	}, nil
}

// ContentHash returns the full hex digest of an uncompressed serialized
// value, for entry consistency checks.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// canonicalize produces a deterministic JSON representation of the input.
// Maps are sorted by key to ensure consistent ordering.
func canonicalize(v any) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}

	switch val := v.(type) {
	case map[string]any:
		return canonicalizeMap(val)
	case []any:
		return canonicalizeSlice(val)
	default:
		return json.Marshal(v)
	}
}

func canonicalizeMap(m map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := []byte("{")
	for i, k := range keys {
		if i > 0 {
			result = append(result, ',')
		}

		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		result = append(result, keyBytes...)
		result = append(result, ':')

		valBytes, err := canonicalize(m[k])
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	result = append(result, '}')

	return result, nil
}

func canonicalizeSlice(s []any) ([]byte, error) {
	result := []byte("[")
	for i, v := range s {
		if i > 0 {
			result = append(result, ',')
		}

		valBytes, err := canonicalize(v)
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	result = append(result, ']')

	return result, nil
}

// Ensure DefaultKeyer implements Keyer
var _ Keyer = (*DefaultKeyer)(nil)
