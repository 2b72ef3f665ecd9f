package identity

import (
	"os"
	"path/filepath"
	"runtime"
)

const warningText = `DO NOT SHARE THE FILES IN THIS DIRECTORY.

agent.key contains your raw Ed25519 signing seed. recovery.txt
contains the mnemonic phrase it was derived from. Anyone holding
either can impersonate this agent's address on the relay network.
`

// Save writes the identity's signing seed to dir/keys/agent.key, its
// mnemonic (if known) to dir/keys/recovery.txt, and a warning file to
// dir/keys/DO_NOT_SHARE (only if not already present). On POSIX
// systems the key and recovery files are written owner-read/write
// only (0600); permission bits are skipped on non-POSIX platforms.
func Save(id *Identity, dir string) error {
	keysDir := filepath.Join(dir, "keys")
	if err := os.MkdirAll(keysDir, 0o755); err != nil {
		return err
	}

	mode := os.FileMode(0o600)
	if runtime.GOOS == "windows" {
		mode = 0o644
	}

	if err := writeAtomic(filepath.Join(keysDir, "agent.key"), id.seed, mode); err != nil {
		return err
	}

	if id.Mnemonic != "" {
		if err := writeAtomic(filepath.Join(keysDir, "recovery.txt"), []byte(id.Mnemonic), mode); err != nil {
			return err
		}
	}

	warnPath := filepath.Join(keysDir, "DO_NOT_SHARE")
	if _, err := os.Stat(warnPath); os.IsNotExist(err) {
		if err := writeAtomic(warnPath, []byte(warningText), 0o644); err != nil {
			return err
		}
	}

	return nil
}

// Load reads dir/keys/agent.key and, if present, dir/keys/recovery.txt.
// It returns (nil, nil) when the key file does not exist, and
// ErrCorruptKey when it exists but is not exactly 32 bytes.
func Load(dir string) (*Identity, error) {
	keyPath := filepath.Join(dir, "keys", "agent.key")
	seed, err := os.ReadFile(keyPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if len(seed) != 32 {
		return nil, ErrCorruptKey
	}

	id := fromSeed(seed)

	if mnemonic, err := os.ReadFile(filepath.Join(dir, "keys", "recovery.txt")); err == nil {
		id.Mnemonic = string(mnemonic)
	}

	return id, nil
}

// writeAtomic writes data to a .tmp sibling of path and renames it
// into place, so a crash mid-write never leaves a truncated file at
// the final path.
func writeAtomic(path string, data []byte, mode os.FileMode) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, mode); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
