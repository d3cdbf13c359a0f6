package password

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"
)

// SaltLength is the fixed length of generated salts.
const SaltLength = 8

const (
	// AlgorithmMD5 is the legacy default carried over from existing stored
	// credentials.
	AlgorithmMD5 = "md5"
	// AlgorithmSHA1 selects SHA-1.
	AlgorithmSHA1 = "sha1"
	// AlgorithmSHA256 selects SHA-256.
	AlgorithmSHA256 = "sha256"
	// AlgorithmSHA512 selects SHA-512.
	AlgorithmSHA512 = "sha512"
	// AlgorithmArgon2id selects Argon2id with the iteration count as time
	// cost. Deterministic for a fixed salt, like the digest algorithms.
	AlgorithmArgon2id = "argon2id"
)

const (
	argon2MemoryKB    uint32 = 64 * 1024
	argon2Parallelism uint8  = 2
	argon2KeyLength   uint32 = 32
)

var (
	// ErrBadAlgorithm is returned for an unrecognized algorithm name.
	ErrBadAlgorithm = errors.New("password: unsupported algorithm")
	// ErrBadIterations is returned for an iteration count below 1.
	ErrBadIterations = errors.New("password: iterations must be >= 1")
	// ErrBadSalt is returned when a hash is requested with an empty salt.
	ErrBadSalt = errors.New("password: malformed salt")
)

// Config selects the digest algorithm and iteration count.
type Config struct {
	Algorithm  string
	Iterations int
}

// Hasher computes salted hex digests. Safe for concurrent use.
type Hasher struct {
	config Config
}

// New validates cfg and creates a [Hasher].
func New(cfg Config) (*Hasher, error) {
	if cfg.Iterations < 1 {
		return nil, ErrBadIterations
	}
	switch cfg.Algorithm {
	case AlgorithmMD5, AlgorithmSHA1, AlgorithmSHA256, AlgorithmSHA512, AlgorithmArgon2id:
	default:
		return nil, fmt.Errorf("%w: %q", ErrBadAlgorithm, cfg.Algorithm)
	}
	return &Hasher{config: cfg}, nil
}

// Hash returns the hex digest of plaintext under salt. Deterministic: the
// same inputs always yield the same output.
func (h *Hasher) Hash(plaintext, salt string) (string, error) {
	if salt == "" {
		return "", ErrBadSalt
	}

	if h.config.Algorithm == AlgorithmArgon2id {
		key := argon2.IDKey(
			[]byte(plaintext),
			[]byte(salt),
			uint32(h.config.Iterations),
			argon2MemoryKB,
			argon2Parallelism,
			argon2KeyLength,
		)
		return hex.EncodeToString(key), nil
	}

	digest := h.newDigest()
	digest.Write([]byte(salt))
	digest.Write([]byte(plaintext))
	sum := digest.Sum(nil)

	// Remaining iterations re-digest the raw digest bytes.
	for i := 1; i < h.config.Iterations; i++ {
		digest.Reset()
		digest.Write(sum)
		sum = digest.Sum(nil)
	}

	return hex.EncodeToString(sum), nil
}

// Verify reports whether plaintext hashes to encoded under salt, in
// constant time over the digest comparison.
func (h *Hasher) Verify(plaintext, salt, encoded string) (bool, error) {
	computed, err := h.Hash(plaintext, salt)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(computed), []byte(encoded)) == 1, nil
}

func (h *Hasher) newDigest() hash.Hash {
	switch h.config.Algorithm {
	case AlgorithmSHA1:
		return sha1.New()
	case AlgorithmSHA256:
		return sha256.New()
	case AlgorithmSHA512:
		return sha512.New()
	default:
		return md5.New()
	}
}

// NewSalt generates an 8-character salt: the leading characters of a
// dash-stripped random UUID.
func NewSalt() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:SaltLength]
}
