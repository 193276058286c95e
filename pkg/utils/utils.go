package utils

import (
	"crypto/sha256"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // HASH160 is defined over RIPEMD-160
)

// Sha256 returns the SHA256 digest of data.
func Sha256(data []byte) []byte {
	hash := sha256.Sum256(data)
	return hash[:]
}

// DoubleSha256 returns SHA256(SHA256(data)).
func DoubleSha256(data []byte) []byte {
	first := sha256.Sum256(data)
	second := sha256.Sum256(first[:])
	return second[:]
}

// Hash160 returns RIPEMD160(SHA256(data)).
func Hash160(data []byte) []byte {
	h := ripemd160.New()
	h.Write(Sha256(data))
	return h.Sum(nil)
}

// ZerologConsoleWriter returns a console writer for zerolog. Logs go to
// stderr so command output on stdout stays clean.
func ZerologConsoleWriter() io.Writer {
	return zerolog.ConsoleWriter{Out: os.Stderr}
}

// MaskString keeps the first and last character of s and masks the rest.
func MaskString(s string) string {
	if len(s) <= 2 {
		return strings.Repeat("*", len(s))
	}
	return s[:1] + strings.Repeat("*", len(s)-2) + s[len(s)-1:]
}
