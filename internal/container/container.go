// Package container encodes and decodes the on-disk vault container.
//
// Layout of a container file:
//
//	+--------+---------+----------+--------+--------+------------------+
//	| offset | 0       | 4        | 8      | 16     | 48    | 60       |
//	| field  | magic   | version  | rsvd   | salt   | nonce | ct + tag |
//	| size   | 4       | 4 (LE)   | 8      | 32     | 12    | >= 16    |
//	+--------+---------+----------+--------+--------+------------------+
//
// The codec never interprets the ciphertext. When a future format version
// is introduced, this package is the only place that changes.
package container

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/skdas20/VaultX/internal/crypto"
)

// Magic identifies a VaultX container file.
var Magic = [4]byte{'V', 'X', '0', '1'}

const (
	// Version is the current container format version.
	Version uint32 = 1

	// HeaderSize is magic + version + reserved.
	HeaderSize = 16

	// MinSize is the smallest valid container: header, salt, nonce, and a
	// ciphertext consisting of only the 16-byte authentication tag.
	MinSize = HeaderSize + crypto.SaltSize + crypto.NonceSize + crypto.TagSize
)

var (
	// ErrCorruptContainer is returned for short files and bad magic bytes.
	ErrCorruptContainer = errors.New("vault container is corrupted or has been tampered with")

	// ErrUnsupportedVersion is returned when the version field is unknown.
	ErrUnsupportedVersion = errors.New("unsupported vault container version")
)

// Encode builds a container from a salt, nonce, and ciphertext (with the
// authentication tag appended).
func Encode(salt, nonce, ciphertext []byte) ([]byte, error) {
	if len(salt) != crypto.SaltSize {
		return nil, crypto.ErrInvalidSaltSize
	}
	if len(nonce) != crypto.NonceSize {
		return nil, crypto.ErrInvalidNonceSize
	}
	if len(ciphertext) < crypto.TagSize {
		return nil, crypto.ErrInvalidCiphertext
	}

	buf := make([]byte, 0, HeaderSize+len(salt)+len(nonce)+len(ciphertext))
	buf = append(buf, Magic[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, Version)
	buf = append(buf, make([]byte, 8)...) // reserved
	buf = append(buf, salt...)
	buf = append(buf, nonce...)
	buf = append(buf, ciphertext...)
	return buf, nil
}

// Decode splits a container into its salt, nonce, and ciphertext. The
// returned slices alias data; callers that mutate them must copy first.
func Decode(data []byte) (salt, nonce, ciphertext []byte, err error) {
	if len(data) < MinSize {
		return nil, nil, nil, ErrCorruptContainer
	}
	if !bytes.Equal(data[0:4], Magic[:]) {
		return nil, nil, nil, ErrCorruptContainer
	}

	version := binary.LittleEndian.Uint32(data[4:8])
	if version != Version {
		return nil, nil, nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	saltStart := HeaderSize
	nonceStart := saltStart + crypto.SaltSize
	ctStart := nonceStart + crypto.NonceSize

	salt = data[saltStart:nonceStart]
	nonce = data[nonceStart:ctStart]
	ciphertext = data[ctStart:]
	return salt, nonce, ciphertext, nil
}
