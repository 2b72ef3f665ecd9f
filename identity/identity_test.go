package identity

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGenerateSignVerify(t *testing.T) {
	id, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(id.Address) != addressLen {
		t.Fatalf("address length = %d, want %d", len(id.Address), addressLen)
	}

	msg := []byte("hello relay")
	sig := id.Sign(msg)
	if !Verify(id.Address, msg, sig) {
		t.Fatal("signature failed to verify against its own address")
	}
}

func TestVerifyRejectsOtherIdentity(t *testing.T) {
	a, err := Generate()
	if err != nil {
		t.Fatalf("Generate a: %v", err)
	}
	b, err := Generate()
	if err != nil {
		t.Fatalf("Generate b: %v", err)
	}

	msg := []byte("same message")
	sig := a.Sign(msg)
	if Verify(b.Address, msg, sig) {
		t.Fatal("signature by A verified against B's address")
	}
}

func TestVerifyNeverPanics(t *testing.T) {
	cases := []string{
		"",
		"not-hex",
		"0x00",
		"0x" + string(make([]byte, 200)),
	}
	for _, addr := range cases {
		if Verify(addr, []byte("m"), []byte("s")) {
			t.Fatalf("Verify(%q, ...) = true, want false", addr)
		}
	}
}

func TestRecoverRoundTrip(t *testing.T) {
	original, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	mnemonic := original.Mnemonic

	recovered, err := Recover(mnemonic)
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}
	if recovered.Address != original.Address {
		t.Fatalf("recovered address = %s, want %s", recovered.Address, original.Address)
	}

	msg := []byte("post-recovery message")
	sig := recovered.Sign(msg)
	if !Verify(original.Address, msg, sig) {
		t.Fatal("signature produced after recovery does not verify against original address")
	}
}

func TestRecoverInvalidMnemonic(t *testing.T) {
	_, err := Recover("not a real mnemonic phrase at all nope")
	if err != ErrInvalidMnemonic {
		t.Fatalf("err = %v, want ErrInvalidMnemonic", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	id, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if err := Save(id, dir); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded == nil {
		t.Fatal("Load returned nil identity after Save")
	}
	if loaded.Address != id.Address {
		t.Fatalf("loaded address = %s, want %s", loaded.Address, id.Address)
	}
	if loaded.Mnemonic != id.Mnemonic {
		t.Fatal("loaded mnemonic does not match saved mnemonic")
	}

	info, err := os.Stat(filepath.Join(dir, "keys", "agent.key"))
	if err != nil {
		t.Fatalf("stat agent.key: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("agent.key mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestLoadMissingReturnsNil(t *testing.T) {
	dir := t.TempDir()
	id, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if id != nil {
		t.Fatal("Load on empty dir returned non-nil identity")
	}
}

func TestLoadCorruptKey(t *testing.T) {
	dir := t.TempDir()
	keysDir := filepath.Join(dir, "keys")
	if err := os.MkdirAll(keysDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(keysDir, "agent.key"), []byte("too short"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := Load(dir)
	if err != ErrCorruptKey {
		t.Fatalf("err = %v, want ErrCorruptKey", err)
	}
}

func TestShortAddressAndEmailLabel(t *testing.T) {
	id, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	short := id.ShortAddress()
	if len(short) != 6+3+4 {
		t.Fatalf("short address %q has unexpected length", short)
	}

	label := id.EmailLabel("mail.relay.internal")
	want := id.Address[:10] + "@mail.relay.internal"
	if label != want {
		t.Fatalf("email label = %q, want %q", label, want)
	}
}
