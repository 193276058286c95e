package slip39

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
)

// RandomSource supplies the randomness used for share padding, random
// shares below the threshold and identifiers. It is always passed
// explicitly so tests can substitute a deterministic source.
type RandomSource = io.Reader

// DefaultRandom is the operating system CSPRNG.
var DefaultRandom RandomSource = rand.Reader

func randomBytes(rng RandomSource, n int) ([]byte, error) {
	if rng == nil {
		rng = DefaultRandom
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(rng, buf); err != nil {
		return nil, fmt.Errorf("failed to read random bytes: %w", err)
	}
	return buf, nil
}

type deterministicRandom struct {
	seed    [32]byte
	counter uint64
	buf     []byte
}

// NewDeterministicRandom returns a reproducible byte stream derived from
// seed with SHA-256 in counter mode. It is not a CSPRNG for key material
// and exists for tests and reproducible demonstrations.
func NewDeterministicRandom(seed []byte) RandomSource {
	return &deterministicRandom{seed: sha256.Sum256(seed)}
}

func (d *deterministicRandom) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if len(d.buf) == 0 {
			var block [40]byte
			copy(block[:32], d.seed[:])
			binary.BigEndian.PutUint64(block[32:], d.counter)
			d.counter++
			sum := sha256.Sum256(block[:])
			d.buf = sum[:]
		}
		c := copy(p[n:], d.buf)
		d.buf = d.buf[c:]
		n += c
	}
	return n, nil
}
