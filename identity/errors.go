package identity

import "errors"

// Sentinel errors for identity operations.
var (
	// ErrInvalidMnemonic is returned by Recover when the supplied
	// recovery phrase fails BIP39 checksum validation.
	ErrInvalidMnemonic = errors.New("identity: invalid recovery phrase")

	// ErrCorruptKey is returned by Load when the on-disk key file
	// exists but is not exactly 32 bytes.
	ErrCorruptKey = errors.New("identity: corrupt key file")

	// ErrKeyNotFound names the case of no key file at the given
	// directory. Load does not return it: it reports a missing key
	// file as (nil, nil).
	ErrKeyNotFound = errors.New("identity: no key file at path")
)
