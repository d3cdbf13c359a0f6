package password

import (
	"errors"
	"testing"
)

func TestHashDeterministic(t *testing.T) {
	h, err := New(Config{Algorithm: AlgorithmMD5, Iterations: 2})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	first, err := h.Hash("123456", "ab12cd34")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	second, err := h.Hash("123456", "ab12cd34")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if first != second {
		t.Fatalf("same plaintext+salt produced different digests: %s vs %s", first, second)
	}
	if first == "123456" {
		t.Fatal("digest must not equal plaintext")
	}
}

func TestHashSaltChangesDigest(t *testing.T) {
	h, err := New(Config{Algorithm: AlgorithmSHA256, Iterations: 3})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	a, _ := h.Hash("secret", "ab12cd34")
	b, _ := h.Hash("secret", "dc43ba21")
	if a == b {
		t.Fatal("different salts produced identical digests")
	}
}

func TestHashIterationsChangeDigest(t *testing.T) {
	one, _ := New(Config{Algorithm: AlgorithmMD5, Iterations: 1})
	two, _ := New(Config{Algorithm: AlgorithmMD5, Iterations: 2})

	a, _ := one.Hash("secret", "ab12cd34")
	b, _ := two.Hash("secret", "ab12cd34")
	if a == b {
		t.Fatal("iteration count did not affect digest")
	}
}

func TestHashAlgorithms(t *testing.T) {
	for _, alg := range []string{AlgorithmMD5, AlgorithmSHA1, AlgorithmSHA256, AlgorithmSHA512, AlgorithmArgon2id} {
		h, err := New(Config{Algorithm: alg, Iterations: 2})
		if err != nil {
			t.Fatalf("New(%s) failed: %v", alg, err)
		}
		first, err := h.Hash("secret", "ab12cd34")
		if err != nil {
			t.Fatalf("Hash(%s) failed: %v", alg, err)
		}
		second, _ := h.Hash("secret", "ab12cd34")
		if first != second {
			t.Fatalf("%s not deterministic", alg)
		}
	}
}

func TestVerify(t *testing.T) {
	h, err := New(Config{Algorithm: AlgorithmMD5, Iterations: 2})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	encoded, err := h.Hash("123456", "ab12cd34")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	ok, err := h.Verify("123456", "ab12cd34", encoded)
	if err != nil || !ok {
		t.Fatalf("Verify rejected correct secret: ok=%v err=%v", ok, err)
	}

	ok, err = h.Verify("654321", "ab12cd34", encoded)
	if err != nil || ok {
		t.Fatalf("Verify accepted wrong secret: ok=%v err=%v", ok, err)
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	if _, err := New(Config{Algorithm: "rot13", Iterations: 2}); !errors.Is(err, ErrBadAlgorithm) {
		t.Fatalf("expected ErrBadAlgorithm, got %v", err)
	}
	if _, err := New(Config{Algorithm: AlgorithmMD5, Iterations: 0}); !errors.Is(err, ErrBadIterations) {
		t.Fatalf("expected ErrBadIterations, got %v", err)
	}
}

func TestHashRejectsEmptySalt(t *testing.T) {
	h, _ := New(Config{Algorithm: AlgorithmMD5, Iterations: 2})
	if _, err := h.Hash("secret", ""); !errors.Is(err, ErrBadSalt) {
		t.Fatalf("expected ErrBadSalt, got %v", err)
	}
}

func TestNewSalt(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 32; i++ {
		salt := NewSalt()
		if len(salt) != SaltLength {
			t.Fatalf("salt length %d, want %d", len(salt), SaltLength)
		}
		seen[salt] = true
	}
	if len(seen) < 2 {
		t.Fatal("salts are not random")
	}
}
