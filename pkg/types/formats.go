package types

import (
	"fmt"
	"strings"
)

// AddressFormat selects how a public key is rendered as an address.
type AddressFormat string

const (
	AddressFormatLegacy   AddressFormat = "legacy"
	AddressFormatCashAddr AddressFormat = "cashaddr"
)

// SupportedAddressFormats contains all supported address formats
var SupportedAddressFormats = map[AddressFormat]bool{
	AddressFormatLegacy:   true,
	AddressFormatCashAddr: true,
}

// ParseAddressFormat accepts a format name in any case.
func ParseAddressFormat(s string) (AddressFormat, error) {
	f := AddressFormat(strings.ToLower(strings.TrimSpace(s)))
	if !SupportedAddressFormats[f] {
		return "", fmt.Errorf("unsupported address format %q", s)
	}
	return f, nil
}

// SeedProtocol names the backup scheme a wallet was loaded from.
type SeedProtocol string

const (
	SeedProtocolBIP39  SeedProtocol = "bip39"
	SeedProtocolSLIP39 SeedProtocol = "slip39"
)

func (p SeedProtocol) IsValid() bool {
	return p == SeedProtocolBIP39 || p == SeedProtocolSLIP39
}
