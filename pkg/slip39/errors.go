package slip39

import (
	errs "github.com/seedcash/seedcash/pkg/common/errors"
)

// Error kinds returned by this package. All are aliases of the shared kinds
// in pkg/common/errors so errors.Is works across package boundaries.
var (
	ErrInvalidParameter = errs.ErrInvalidParameter
	ErrShareSet         = errs.ErrShareSet
	ErrChecksum         = errs.ErrChecksum
	ErrDigestMismatch   = errs.ErrDigestMismatch
	ErrIncompleteScheme = errs.ErrIncompleteScheme
	ErrMnemonic         = errs.ErrInvalidMnemonic
)
