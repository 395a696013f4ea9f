package validation

import (
	"encoding/hex"
	"strings"

	"github.com/habedi/nodecli/pkg/apperr"
)

const (
	MinThreads = 1
	MaxThreads = 20

	MinPort = 1
	MaxPort = 65535

	// BlockHashLen is the length of a block hash in hex digits.
	BlockHashLen = 64
)

func ValidateThreadCount(threads int) error {
	if threads < MinThreads || threads > MaxThreads {
		return apperr.Customf("Thread count must be between %d and %d, got %d.", MinThreads, MaxThreads, threads)
	}
	return nil
}

func ValidateNonEmptyString(fieldName, value string) error {
	if value == "" {
		return apperr.Customf("The %s cannot be empty.", fieldName)
	}
	return nil
}

// ValidateHost rejects empty hosts and hosts that carry a scheme or path.
func ValidateHost(host string) error {
	if err := ValidateNonEmptyString("node host", strings.TrimSpace(host)); err != nil {
		return err
	}
	if strings.Contains(host, "://") || strings.ContainsAny(host, "/ \t") {
		return apperr.Customf("Invalid node host %q: give a bare hostname or IP address.", host)
	}
	return nil
}

func ValidatePort(port int) error {
	if port < MinPort || port > MaxPort {
		return apperr.Customf("Node port must be between %d and %d, got %d.", MinPort, MaxPort, port)
	}
	return nil
}

// NormalizeBlockHash returns the canonical form of a block hash: trimmed,
// lowercase, without a 0x prefix.
func NormalizeBlockHash(hash string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(hash)), "0x")
}

// ValidateBlockHash checks that hash is BlockHashLen hex digits, with or
// without a 0x prefix. Undecodable input is reported as a hex error.
func ValidateBlockHash(hash string) error {
	hash = NormalizeBlockHash(hash)
	if err := ValidateNonEmptyString("block hash", hash); err != nil {
		return err
	}
	if _, err := hex.DecodeString(hash); err != nil {
		return apperr.Hex(err)
	}
	if n := len(hash); n != BlockHashLen {
		return apperr.Customf("Block hash must be %d hex digits, got %d.", BlockHashLen, n)
	}
	return nil
}
