package hasher

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"hash"
	"io"
	"os"
	"strings"

	"github.com/habedi/nodecli/pkg/apperr"
)

// HashAlgorithms is a list of supported hashing algorithms.
var HashAlgorithms = []string{"md5", "sha1", "sha256", "sha512"}

// IsValidHashAlgo checks if the provided algorithm string is supported.
func IsValidHashAlgo(algo string) bool {
	return newHash(algo) != nil
}

func newHash(algo string) hash.Hash {
	switch strings.ToLower(algo) {
	case "md5":
		return md5.New()
	case "sha1":
		return sha1.New()
	case "sha256":
		return sha256.New()
	case "sha512":
		return sha512.New()
	default:
		return nil
	}
}

func unsupported(algo string) error {
	return apperr.Customf("Unsupported hash algorithm %q; use one of %s.", algo, strings.Join(HashAlgorithms, ", "))
}

// DigestSize returns the digest length in bytes for algo, or 0 if unsupported.
func DigestSize(algo string) int {
	if h := newHash(algo); h != nil {
		return h.Size()
	}
	return 0
}

// GenerateHashFromReader hashes everything read from r and returns the hex digest.
func GenerateHashFromReader(r io.Reader, algo string) (string, error) {
	h := newHash(algo)
	if h == nil {
		return "", unsupported(algo)
	}
	if _, err := io.Copy(h, r); err != nil {
		return "", apperr.IO(err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// GenerateHash calculates the hash of a file using the specified algorithm.
func GenerateHash(filePath, algo string) (string, error) {
	if !IsValidHashAlgo(algo) {
		return "", unsupported(algo)
	}
	file, err := os.Open(filePath)
	if err != nil {
		return "", apperr.IO(err)
	}
	defer file.Close()

	return GenerateHashFromReader(file, algo)
}

// DecodeDigest decodes a hex digest and checks its length against algo.
func DecodeDigest(digest, algo string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimSpace(digest))
	if err != nil {
		return nil, apperr.Hex(err)
	}
	if size := DigestSize(algo); size == 0 {
		return nil, unsupported(algo)
	} else if len(b) != size {
		return nil, apperr.Customf("A %s digest is %d bytes long, got %d.", strings.ToLower(algo), size, len(b))
	}
	return b, nil
}

// Verify hashes filePath and compares it with the expected hex digest.
func Verify(filePath, algo, expected string) error {
	want, err := DecodeDigest(expected, algo)
	if err != nil {
		return err
	}
	got, err := GenerateHash(filePath, algo)
	if err != nil {
		return err
	}
	gotBytes, err := hex.DecodeString(got)
	if err != nil {
		return apperr.Hex(err)
	}
	if subtle.ConstantTimeCompare(want, gotBytes) != 1 {
		return apperr.Customf("Checksum mismatch for %s: expected %s, got %s.", filePath, hex.EncodeToString(want), got)
	}
	return nil
}
