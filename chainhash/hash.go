// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainhash provides the 32-byte hash type and the two hash
// constructions the segOP wire format is built on: SHA256d (the standard
// Bitcoin double hash) and a domain-separated tagged hash used to bind a
// segOP commitment output and the full extended transaction id to the
// payload that produced them.
package chainhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// HashSize is the size, in bytes, of a Hash.
const HashSize = 32

// Hash is a 32-byte array used throughout the wire format to represent the
// result of a double SHA-256 or tagged-hash computation.
type Hash [HashSize]byte

// String returns the Hash as the hexadecimal string of the byte-reversed
// hash, the display convention inherited from Bitcoin's big-endian textual
// transaction id format.
func (h Hash) String() string {
	var reversed Hash
	for i, b := range h[:] {
		reversed[HashSize-1-i] = b
	}
	return hex.EncodeToString(reversed[:])
}

// CloneBytes returns a newly allocated copy of the hash bytes.
func (h *Hash) CloneBytes() []byte {
	newHash := make([]byte, HashSize)
	copy(newHash, h[:])
	return newHash
}

// SetBytes sets the hash to the provided bytes, which must be exactly
// HashSize bytes long.
func (h *Hash) SetBytes(newHash []byte) error {
	if len(newHash) != HashSize {
		return fmt.Errorf("invalid hash length of %d, want %d", len(newHash), HashSize)
	}
	copy(h[:], newHash)
	return nil
}

// IsEqual returns whether h equals other. A nil receiver equals only a nil
// argument.
func (h *Hash) IsEqual(other *Hash) bool {
	if h == nil && other == nil {
		return true
	}
	if h == nil || other == nil {
		return false
	}
	return *h == *other
}

// Hash256 computes a single SHA-256 digest of b.
func Hash256(b []byte) Hash {
	return sha256.Sum256(b)
}

// DoubleHashH computes SHA256(SHA256(b)), the "SHA256d" construction used
// for the legacy txid and witness txid.
func DoubleHashH(b []byte) Hash {
	first := sha256.Sum256(b)
	return sha256.Sum256(first[:])
}

// TaggedHash computes the domain-separated hash SHA256(SHA256(tag) ‖
// SHA256(tag) ‖ msg), used for the segOP commitment and the full extended
// transaction id. The tag and message are disjoint purposes, so two
// different tags can never collide on the same input bytes.
func TaggedHash(tag string, msg []byte) Hash {
	tagHash := sha256.Sum256([]byte(tag))

	h := sha256.New()
	h.Write(tagHash[:])
	h.Write(tagHash[:])
	h.Write(msg)

	var out Hash
	copy(out[:], h.Sum(nil))
	return out
}
