package address

import (
	"errors"
	"fmt"
	"strings"

	errs "github.com/seedcash/seedcash/pkg/common/errors"
	"github.com/seedcash/seedcash/pkg/utils"
)

const (
	CashAddrPrefix = "bitcoincash"
	cashAddrChars  = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

	// version byte: type 0 (P2PKH), size 0 (160-bit hash)
	cashAddrP2PKH       byte = 0x00
	cashAddrChecksumLen      = 8
)

var cashAddrGen = [5]uint64{
	0x98f2bc8e61,
	0x79b76d99e2,
	0xf33e5fb3c4,
	0xae2eabe2a8,
	0x1e4f43e470,
}

var ErrInvalidCashAddr = errors.New("invalid cashaddr")

var cashAddrIndex = func() [128]int8 {
	var idx [128]int8
	for i := range idx {
		idx[i] = -1
	}
	for i, c := range cashAddrChars {
		idx[c] = int8(i)
	}
	return idx
}()

func cashAddrPolymod(values []byte) uint64 {
	c := uint64(1)
	for _, d := range values {
		c0 := c >> 35
		c = (c&0x07ffffffff)<<5 ^ uint64(d)
		for i, g := range cashAddrGen {
			if (c0>>i)&1 != 0 {
				c ^= g
			}
		}
	}
	return c ^ 1
}

func prefixValues(prefix string) []byte {
	out := make([]byte, 0, len(prefix)+1)
	for i := 0; i < len(prefix); i++ {
		out = append(out, prefix[i]&0x1f)
	}
	return append(out, 0)
}

// convertBits regroups data from fromBits-wide to toBits-wide values. With
// pad set the final group is zero padded; without it leftover bits must be
// zero padding shorter than fromBits.
func convertBits(data []byte, fromBits, toBits uint, pad bool) ([]byte, error) {
	var acc uint32
	var bits uint
	maxv := uint32(1)<<toBits - 1
	out := make([]byte, 0, len(data)*int(fromBits)/int(toBits)+1)
	for _, v := range data {
		acc = acc<<fromBits | uint32(v)
		bits += fromBits
		for bits >= toBits {
			bits -= toBits
			out = append(out, byte(acc>>bits&maxv))
		}
	}
	if pad {
		if bits > 0 {
			out = append(out, byte(acc<<(toBits-bits)&maxv))
		}
	} else if bits >= fromBits || acc<<(toBits-bits)&maxv != 0 {
		return nil, fmt.Errorf("%w: non-zero padding", ErrInvalidCashAddr)
	}
	return out, nil
}

func cashAddrChecksum(prefix string, data []byte) []byte {
	values := prefixValues(prefix)
	values = append(values, data...)
	values = append(values, make([]byte, cashAddrChecksumLen)...)
	pm := cashAddrPolymod(values)

	out := make([]byte, cashAddrChecksumLen)
	for i := range out {
		out[i] = byte(pm>>(5*(cashAddrChecksumLen-1-i))) & 0x1f
	}
	return out
}

// EncodeCashAddr encodes a version byte and hash under prefix.
func EncodeCashAddr(prefix string, version byte, hash []byte) string {
	payload, _ := convertBits(append([]byte{version}, hash...), 8, 5, true)
	data := append(payload, cashAddrChecksum(prefix, payload)...)

	var sb strings.Builder
	sb.Grow(len(prefix) + 1 + len(data))
	sb.WriteString(prefix)
	sb.WriteByte(':')
	for _, d := range data {
		sb.WriteByte(cashAddrChars[d])
	}
	return sb.String()
}

// CashAddrFromPubKey returns the bitcoincash: P2PKH address of a compressed
// public key.
func CashAddrFromPubKey(pub []byte) string {
	return EncodeCashAddr(CashAddrPrefix, cashAddrP2PKH, utils.Hash160(pub))
}

// DecodeCashAddr parses and checks a CashAddr string. An address without
// prefix is read under the bitcoincash prefix.
func DecodeCashAddr(addr string) (prefix string, version byte, hash []byte, err error) {
	if strings.ToLower(addr) != addr && strings.ToUpper(addr) != addr {
		return "", 0, nil, fmt.Errorf("%w: mixed case", ErrInvalidCashAddr)
	}
	addr = strings.ToLower(addr)

	prefix, body, found := strings.Cut(addr, ":")
	if !found {
		prefix, body = CashAddrPrefix, addr
	}
	if prefix == "" || len(body) <= cashAddrChecksumLen {
		return "", 0, nil, fmt.Errorf("%w: too short", ErrInvalidCashAddr)
	}

	data := make([]byte, len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c >= 128 || cashAddrIndex[c] < 0 {
			return "", 0, nil, fmt.Errorf("%w: invalid character %q", ErrInvalidCashAddr, c)
		}
		data[i] = byte(cashAddrIndex[c])
	}

	if cashAddrPolymod(append(prefixValues(prefix), data...)) != 0 {
		return "", 0, nil, errs.Newf(errs.ErrChecksum, "cashaddr checksum mismatch")
	}

	payload, err := convertBits(data[:len(data)-cashAddrChecksumLen], 5, 8, false)
	if err != nil {
		return "", 0, nil, err
	}
	if len(payload) < 2 {
		return "", 0, nil, fmt.Errorf("%w: empty payload", ErrInvalidCashAddr)
	}
	return prefix, payload[0], payload[1:], nil
}
