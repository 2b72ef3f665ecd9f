// Package identity implements the relay's per-agent cryptographic
// identity: an Ed25519 keypair, its derived hex address, and
// mnemonic-based recovery.
package identity

import (
	"crypto/ed25519"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/tyler-smith/go-bip39"
)

// addressLen is the length of an address string: "0x" + 64 hex chars
// (32-byte Ed25519 public key).
const addressLen = 66

// Identity ties an address to its 32-byte Ed25519 signing seed and,
// when available, the mnemonic it was derived from. The signing seed
// never leaves the process that holds it except through Save.
type Identity struct {
	Address  string
	Mnemonic string // empty when loaded from disk without recovery.txt

	seed    []byte // 32-byte ed25519 seed
	signKey ed25519.PrivateKey
}

// Generate produces a fresh 128-bit-entropy mnemonic, deterministically
// expands it into a signing seed, and derives the address.
func Generate() (*Identity, error) {
	entropy, err := bip39.NewEntropy(128)
	if err != nil {
		return nil, fmt.Errorf("identity: generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, fmt.Errorf("identity: generate mnemonic: %w", err)
	}
	id, err := fromMnemonic(mnemonic)
	if err != nil {
		return nil, err
	}
	return id, nil
}

// Recover rebuilds an Identity from a previously generated mnemonic.
// It fails with ErrInvalidMnemonic when the phrase does not pass BIP39
// checksum validation.
func Recover(mnemonic string) (*Identity, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, ErrInvalidMnemonic
	}
	return fromMnemonic(mnemonic)
}

// fromSeed builds an Identity directly from a 32-byte signing seed,
// without a known mnemonic. Used by Load.
func fromSeed(seed []byte) *Identity {
	signKey := ed25519.NewKeyFromSeed(seed)
	pub := signKey.Public().(ed25519.PublicKey)
	return &Identity{
		Address: hexutil.Encode(pub),
		seed:    append([]byte(nil), seed...),
		signKey: signKey,
	}
}

func fromMnemonic(mnemonic string) (*Identity, error) {
	seed := bip39.NewSeed(mnemonic, "")
	id := fromSeed(seed[:32])
	id.Mnemonic = mnemonic
	return id, nil
}

// Sign produces a 64-byte Ed25519 signature over msg.
func (id *Identity) Sign(msg []byte) []byte {
	return ed25519.Sign(id.signKey, msg)
}

// Verify checks sig against msg for the given hex address. It never
// panics or returns an error: any malformed address, hex, length, or
// signature mismatch simply yields false.
func Verify(address string, msg, sig []byte) bool {
	if len(address) != addressLen {
		return false
	}
	pub, err := hexutil.Decode(address)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub), msg, sig)
}

// ShortAddress renders a truncated display form: first 6 and last 4
// characters, joined with an ellipsis.
func (id *Identity) ShortAddress() string {
	a := id.Address
	if len(a) <= 10 {
		return a
	}
	return a[:6] + "..." + a[len(a)-4:]
}

// EmailLabel renders an email-like display alias using the first 10
// characters of the address and the given domain.
func (id *Identity) EmailLabel(domain string) string {
	a := id.Address
	prefix := a
	if len(a) > 10 {
		prefix = a[:10]
	}
	return prefix + "@" + domain
}

// Seed returns a copy of the raw 32-byte signing seed.
func (id *Identity) Seed() []byte {
	return append([]byte(nil), id.seed...)
}
