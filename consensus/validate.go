// Package consensus implements the structural transaction validator: the
// rules binding a segOP payload to its commitment output, plus the
// standard non-empty-inputs/outputs, value-range, duplicate-input, and
// coinbase invariants every transaction must satisfy. Everything here is
// pure: a validator call takes a transaction and produces a Reason or nil,
// with no I/O and no shared mutable state.
package consensus

import (
	"github.com/defenwycke/segregated-op-return/txscript"
	"github.com/defenwycke/segregated-op-return/wire"
)

// Recommended policy constants. A host may override these via
// CheckTransactionSanityWithLimits; CheckTransactionSanity uses the
// recommended defaults.
const (
	MaxSegOpPayloadSize      = 64_000
	WitnessScaleFactor       = 4
	MaxBlockWeight           = 4_000_000
	MaxCoinbaseScriptSigSize = 100
	MaxMoney                 = 21_000_000 * 100_000_000
)

// Limits bundles the policy constants the validator checks against, so a
// host can exercise alternate consensus parameters (e.g. in tests or on a
// signet) without touching the validator logic itself.
type Limits struct {
	MaxSegOpPayloadSize      uint64
	WitnessScaleFactor       uint64
	MaxBlockWeight           uint64
	MaxCoinbaseScriptSigSize int
	MaxMoney                 int64
}

// DefaultLimits returns the recommended policy constants.
func DefaultLimits() Limits {
	return Limits{
		MaxSegOpPayloadSize:      MaxSegOpPayloadSize,
		WitnessScaleFactor:       WitnessScaleFactor,
		MaxBlockWeight:           MaxBlockWeight,
		MaxCoinbaseScriptSigSize: MaxCoinbaseScriptSigSize,
		MaxMoney:                 MaxMoney,
	}
}

// CheckTransactionSanity validates tx against the recommended default
// limits, returning nil when the transaction is structurally valid, or the
// first Reason, in a fixed check order, that it fails.
func CheckTransactionSanity(tx *wire.MsgTx) error {
	return CheckTransactionSanityWithLimits(tx, DefaultLimits())
}

// CheckTransactionSanityWithLimits is CheckTransactionSanity parameterized
// over Limits.
func CheckTransactionSanityWithLimits(tx *wire.MsgTx, limits Limits) error {
	if len(tx.TxIn) == 0 {
		return EmptyInputs
	}
	if len(tx.TxOut) == 0 {
		return EmptyOutputs
	}

	nonWitnessLen := uint64(tx.SerializeSizeNoWitness())
	if nonWitnessLen*limits.WitnessScaleFactor > limits.MaxBlockWeight {
		return Oversize
	}

	if tx.HasSegOp() {
		if err := checkPayload(tx, limits); err != nil {
			return err
		}
	} else if hasCommitmentLookingOutput(tx) {
		return UnexpectedCommitment
	}

	if err := checkOutputValues(tx, limits); err != nil {
		return err
	}
	if err := checkDuplicateInputs(tx); err != nil {
		return err
	}
	return checkCoinbaseShape(tx, limits)
}

func checkPayload(tx *wire.MsgTx, limits Limits) error {
	payload := tx.SegOp
	if payload.Version != 1 {
		return PayloadVersion
	}
	if uint64(len(payload.Data)) > limits.MaxSegOpPayloadSize {
		return PayloadTooLarge
	}
	if !wire.ValidateTLV(payload.Data) {
		return PayloadTLV
	}

	foundCorrect := false
	for _, out := range tx.TxOut {
		if !txscript.IsCommitmentLooking(out.PkScript) {
			continue
		}
		if txscript.IsCorrectCommitment(out.PkScript, payload.Data) && !foundCorrect {
			foundCorrect = true
			continue
		}
		// Any commitment-looking output that isn't the (single) correct one
		// — wrong bytes, or a duplicate of the correct one — is a mismatch.
		return CommitmentMismatch
	}
	if !foundCorrect {
		return CommitmentMismatch
	}
	return nil
}

func hasCommitmentLookingOutput(tx *wire.MsgTx) bool {
	for _, out := range tx.TxOut {
		if txscript.IsCommitmentLooking(out.PkScript) {
			return true
		}
	}
	return false
}

func checkOutputValues(tx *wire.MsgTx, limits Limits) error {
	var total int64
	for _, out := range tx.TxOut {
		if out.Value < 0 || out.Value > limits.MaxMoney {
			return NegativeOutput
		}
		total += out.Value
		if total < 0 || total > limits.MaxMoney {
			return OutputTotalOverflow
		}
	}
	return nil
}

func checkDuplicateInputs(tx *wire.MsgTx) error {
	seen := make(map[wire.OutPoint]struct{}, len(tx.TxIn))
	for _, in := range tx.TxIn {
		if _, ok := seen[in.PreviousOutPoint]; ok {
			return DuplicateInput
		}
		seen[in.PreviousOutPoint] = struct{}{}
	}
	return nil
}

func checkCoinbaseShape(tx *wire.MsgTx, limits Limits) error {
	isCoinbase := len(tx.TxIn) == 1 && tx.TxIn[0].PreviousOutPoint.IsNull()
	if isCoinbase {
		n := len(tx.TxIn[0].SignatureScript)
		if n < 2 || n > limits.MaxCoinbaseScriptSigSize {
			return CoinbaseLength
		}
		return nil
	}
	for _, in := range tx.TxIn {
		if in.PreviousOutPoint.IsNull() {
			return NullPrevout
		}
	}
	return nil
}
