package slip39

import (
	errs "github.com/seedcash/seedcash/pkg/common/errors"
)

// GF(256) with the Rijndael reduction polynomial x^8 + x^4 + x^3 + x + 1.
// The tables are filled once at package init and never written again.
var (
	expTable [255]byte
	logTable [256]byte
)

func init() {
	poly := 1
	for i := 0; i < 255; i++ {
		expTable[i] = byte(poly)
		logTable[poly] = byte(i)
		// multiply by the generator x + 1
		poly = (poly << 1) ^ poly
		if poly&0x100 != 0 {
			poly ^= 0x11b
		}
	}
}

func mod255(v int) int {
	v %= 255
	if v < 0 {
		v += 255
	}
	return v
}

// interpolate evaluates at x the unique polynomial of degree len(shares)-1
// passing through the given points. Evaluating at one of the share indices
// returns a copy of that share's value.
func interpolate(shares []RawShare, x byte) ([]byte, error) {
	if len(shares) == 0 {
		return nil, errs.Newf(ErrShareSet, "no shares to interpolate")
	}

	seen := make(map[byte]struct{}, len(shares))
	length := len(shares[0].Data)
	for _, s := range shares {
		if _, dup := seen[s.X]; dup {
			return nil, errs.Newf(ErrShareSet, "share indices must be unique")
		}
		seen[s.X] = struct{}{}
		if len(s.Data) != length {
			return nil, errs.Newf(ErrShareSet, "all share values must have the same length")
		}
	}

	if _, ok := seen[x]; ok {
		for _, s := range shares {
			if s.X == x {
				return append([]byte(nil), s.Data...), nil
			}
		}
	}

	// Lagrange basis in the log domain: the product over all shares of
	// (x_i - x) is shared by every basis polynomial.
	logProd := 0
	for _, s := range shares {
		logProd += int(logTable[s.X^x])
	}

	result := make([]byte, length)
	for _, s := range shares {
		logBasis := logProd - int(logTable[s.X^x])
		for _, other := range shares {
			if other.X != s.X {
				logBasis -= int(logTable[s.X^other.X])
			}
		}
		logBasis = mod255(logBasis)

		for i, b := range s.Data {
			if b != 0 {
				result[i] ^= expTable[(int(logTable[b])+logBasis)%255]
			}
		}
	}
	return result, nil
}
