// Package digest turns arbitrary byte content into the hex checksums a
// tracker compares with strict equality.
package digest

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"

	"golang.org/x/crypto/blake2b"

	"git.home.luguber.info/inful/checkem/internal/foundation/normalization"
)

// Algorithm names a supported hash function.
type Algorithm string

const (
	SHA256     Algorithm = "sha256"
	SHA512     Algorithm = "sha512"
	BLAKE2b256 Algorithm = "blake2b-256"
)

// Default is the algorithm used when none is configured.
const Default = SHA256

var algorithmNormalizer = normalization.NewNormalizer(map[string]Algorithm{
	"sha256":      SHA256,
	"sha-256":     SHA256,
	"sha512":      SHA512,
	"sha-512":     SHA512,
	"blake2b":     BLAKE2b256,
	"blake2b-256": BLAKE2b256,
	"blake2b256":  BLAKE2b256,
}, Default)

// ParseAlgorithm normalizes a configured algorithm name. Empty selects Default.
func ParseAlgorithm(raw string) (Algorithm, error) {
	return algorithmNormalizer.NormalizeWithError(raw)
}

// Digester produces lowercase hex checksums.
type Digester interface {
	Name() Algorithm
	Sum(data []byte) string
	SumReader(r io.Reader) (string, error)
}

type hashDigester struct {
	name    Algorithm
	newHash func() hash.Hash
}

// New returns the Digester for algo.
func New(algo Algorithm) (Digester, error) {
	switch algo {
	case SHA256:
		return hashDigester{name: SHA256, newHash: sha256.New}, nil
	case SHA512:
		return hashDigester{name: SHA512, newHash: sha512.New}, nil
	case BLAKE2b256:
		return hashDigester{name: BLAKE2b256, newHash: newBLAKE2b256}, nil
	default:
		return nil, fmt.Errorf("unsupported digest algorithm %q", algo)
	}
}

// MustNew is New for algorithms known at compile time.
func MustNew(algo Algorithm) Digester {
	d, err := New(algo)
	if err != nil {
		panic(err)
	}
	return d
}

func newBLAKE2b256() hash.Hash {
	// Unkeyed blake2b never fails.
	h, _ := blake2b.New256(nil)
	return h
}

func (d hashDigester) Name() Algorithm { return d.name }

func (d hashDigester) Sum(data []byte) string {
	h := d.newHash()
	_, _ = h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

func (d hashDigester) SumReader(r io.Reader) (string, error) {
	h := d.newHash()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("hash content: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
