package container

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/skdas20/VaultX/internal/crypto"
)

func sampleContainer(t *testing.T) (data, salt, nonce, ct []byte) {
	t.Helper()
	salt = bytes.Repeat([]byte{0xAA}, crypto.SaltSize)
	nonce = bytes.Repeat([]byte{0xBB}, crypto.NonceSize)
	ct = bytes.Repeat([]byte{0xCC}, 48)

	data, err := Encode(salt, nonce, ct)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return data, salt, nonce, ct
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	data, salt, nonce, ct := sampleContainer(t)

	gotSalt, gotNonce, gotCT, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(gotSalt, salt) {
		t.Fatal("salt mismatch after round-trip")
	}
	if !bytes.Equal(gotNonce, nonce) {
		t.Fatal("nonce mismatch after round-trip")
	}
	if !bytes.Equal(gotCT, ct) {
		t.Fatal("ciphertext mismatch after round-trip")
	}
}

func TestEncode_Layout(t *testing.T) {
	data, salt, nonce, ct := sampleContainer(t)

	if !bytes.Equal(data[0:4], []byte("VX01")) {
		t.Fatalf("magic: got %q", data[0:4])
	}
	if v := binary.LittleEndian.Uint32(data[4:8]); v != Version {
		t.Fatalf("version: got %d, want %d", v, Version)
	}
	if !bytes.Equal(data[8:16], make([]byte, 8)) {
		t.Fatal("reserved bytes are not zero")
	}
	if !bytes.Equal(data[16:48], salt) {
		t.Fatal("salt not at offset 16")
	}
	if !bytes.Equal(data[48:60], nonce) {
		t.Fatal("nonce not at offset 48")
	}
	if !bytes.Equal(data[60:], ct) {
		t.Fatal("ciphertext not at offset 60")
	}
}

func TestDecode_ShortInput(t *testing.T) {
	data, _, _, _ := sampleContainer(t)

	for _, n := range []int{0, 4, HeaderSize, MinSize - 1} {
		if _, _, _, err := Decode(data[:n]); !errors.Is(err, ErrCorruptContainer) {
			t.Fatalf("length %d: expected ErrCorruptContainer, got %v", n, err)
		}
	}
}

func TestDecode_BadMagic(t *testing.T) {
	data, _, _, _ := sampleContainer(t)
	data[0] = 'W'

	if _, _, _, err := Decode(data); !errors.Is(err, ErrCorruptContainer) {
		t.Fatalf("expected ErrCorruptContainer, got %v", err)
	}
}

func TestDecode_UnsupportedVersion(t *testing.T) {
	data, _, _, _ := sampleContainer(t)
	binary.LittleEndian.PutUint32(data[4:8], 99)

	if _, _, _, err := Decode(data); !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestEncode_RejectsBadSizes(t *testing.T) {
	salt := make([]byte, crypto.SaltSize)
	nonce := make([]byte, crypto.NonceSize)

	if _, err := Encode(salt[:16], nonce, make([]byte, 16)); err == nil {
		t.Fatal("expected error for short salt")
	}
	if _, err := Encode(salt, nonce[:8], make([]byte, 16)); err == nil {
		t.Fatal("expected error for short nonce")
	}
	if _, err := Encode(salt, nonce, make([]byte, 8)); err == nil {
		t.Fatal("expected error for ciphertext shorter than a tag")
	}
}
