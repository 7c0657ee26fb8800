// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package btcutil provides small standalone helpers shared across the
// wire/txscript packages that don't belong to either on their own.
package btcutil

import (
	"crypto/sha256"

	"golang.org/x/crypto/ripemd160" //lint:ignore SA1019 Bitcoin-style Hash160 requires ripemd160
)

// Hash160 computes RIPEMD160(SHA256(b)), the standard Bitcoin public-key
// hash used to build P2PKH scripts.
func Hash160(b []byte) [20]byte {
	sha := sha256.Sum256(b)
	h := ripemd160.New()
	h.Write(sha[:])

	var out [20]byte
	copy(out[:], h.Sum(nil))
	return out
}
