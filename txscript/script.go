// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package txscript builds and recognizes the small set of script shapes the
// segOP protocol cares about: the P2SOP commitment output and ordinary
// P2PKH outputs used to build realistic fixture transactions. It does not
// implement a script interpreter; script evaluation and signature checking
// are host responsibilities.
package txscript

import (
	"github.com/defenwycke/segregated-op-return/btcutil"
	"github.com/defenwycke/segregated-op-return/wire"
)

// A minimal vocabulary of opcodes, named as btcsuite-family txscript
// packages do, limited to what's needed to build and recognize the two
// script shapes this package cares about.
const (
	OP_0           = 0x00
	OP_DATA_20     = 0x14
	OP_RETURN      = 0x6a
	OP_DUP         = 0x76
	OP_HASH160     = 0xa9
	OP_EQUALVERIFY = 0x88
	OP_CHECKSIG    = 0xac
)

// commitmentPushLen is the length byte pushed before a correctly-formed
// P2SOP commitment blob: wire.CommitmentBlobLen (37) fits in a single
// direct-push opcode.
const commitmentPushLen = wire.CommitmentBlobLen

// p2sopTagLen is the length of the "P2SOP" ASCII tag itself. A
// commitment-looking output only needs to declare at least this many
// pushed bytes; it need not match any particular payload's blob length.
const p2sopTagLen = 5

// BuildCommitmentScript constructs the full scriptPubKey for a segOP
// commitment output: `OP_RETURN ‖ push_len(37) ‖ "P2SOP" ‖
// TaggedHash("segop:commitment", payload)`.
func BuildCommitmentScript(payload []byte) []byte {
	blob := wire.BuildCommitmentBlob(payload)

	script := make([]byte, 0, 2+len(blob))
	script = append(script, OP_RETURN, byte(commitmentPushLen))
	script = append(script, blob...)
	return script
}

// IsCommitmentLooking reports whether script has the shape of a segOP
// commitment output — `OP_RETURN ‖ push_len ‖ "P2SOP" ‖ ...` — for any
// declared push_len >= 5, regardless of whether push_len matches the
// script's actual length or the trailing bytes match any particular
// payload's tagged hash. Only the first 5 data bytes are inspected. This
// is the predicate the structural validator uses to find candidate
// commitment outputs before checking their content against the payload;
// an output can be commitment-looking and still be the wrong length or
// carry the wrong commitment, which IsCorrectCommitment distinguishes.
func IsCommitmentLooking(script []byte) bool {
	if len(script) < 2+p2sopTagLen {
		return false
	}
	if script[0] != OP_RETURN {
		return false
	}
	if int(script[1]) < p2sopTagLen {
		return false
	}
	return string(script[2:2+p2sopTagLen]) == "P2SOP"
}

// IsCorrectCommitment reports whether script is a commitment output whose
// declared push_len, total length, and pushed bytes all match the blob
// built from payload exactly. A commitment-looking output with the wrong
// push_len, the wrong total length, or the wrong bytes is not "correct"
// even though IsCommitmentLooking still recognizes it as P2SOP-tagged.
func IsCorrectCommitment(script []byte, payload []byte) bool {
	if !IsCommitmentLooking(script) {
		return false
	}
	want := wire.BuildCommitmentBlob(payload)
	if int(script[1]) != len(want) {
		return false
	}
	if len(script) != 2+len(want) {
		return false
	}
	got := script[2 : 2+len(want)]
	for i := range want {
		if want[i] != got[i] {
			return false
		}
	}
	return true
}

// PayToPubKeyHash builds a standard P2PKH scriptPubKey for the given
// 20-byte hash: `OP_DUP OP_HASH160 <20 bytes> OP_EQUALVERIFY OP_CHECKSIG`.
// It exists so fixture-building code (tests, segop-cli) can construct
// realistic non-commitment outputs without reaching for a full script
// interpreter.
func PayToPubKeyHash(hash160 [20]byte) []byte {
	script := make([]byte, 0, 25)
	script = append(script, OP_DUP, OP_HASH160, OP_DATA_20)
	script = append(script, hash160[:]...)
	script = append(script, OP_EQUALVERIFY, OP_CHECKSIG)
	return script
}

// Hash160 computes RIPEMD160(SHA256(b)), the standard Bitcoin-style pubkey
// hash, for use with PayToPubKeyHash.
func Hash160(b []byte) [20]byte {
	return btcutil.Hash160(b)
}
