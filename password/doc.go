// Package password implements deterministic salted credential hashing.
//
// Unlike PHC-style hashers that embed a random salt in the output, the salt
// here is a stored account attribute, generated once when the account is
// first encrypted and never regenerated. The same plaintext and salt always
// produce the same hex digest, so stored hashes remain verifiable after the
// fact. Algorithm and iteration count are configuration constants, never
// request input.
package password
