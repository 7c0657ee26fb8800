package consensus

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/defenwycke/segregated-op-return/chainhash"
	"github.com/defenwycke/segregated-op-return/internal/testutil"
	"github.com/defenwycke/segregated-op-return/txscript"
	"github.com/defenwycke/segregated-op-return/wire"
)

func samplePrevHash(b byte) chainhash.Hash {
	var h chainhash.Hash
	for i := range h {
		h[i] = b
	}
	return h
}

func p2pkhOutput(value int64) *wire.TxOut {
	var hash160 [20]byte
	for i := range hash160 {
		hash160[i] = 0xAB
	}
	return wire.NewTxOut(value, txscript.PayToPubKeyHash(hash160))
}

func txWithOneInput() *wire.MsgTx {
	tx := wire.NewMsgTx(1)
	tx.AddTxIn(wire.NewTxIn(&wire.OutPoint{Hash: samplePrevHash(0x11), Index: 0}, []byte{0x01}, nil))
	return tx
}

// Scenario 1: empty payload, no commitment output.
func TestScenario1NoPayloadAccepted(t *testing.T) {
	tx := txWithOneInput()
	tx.AddTxOut(p2pkhOutput(50_000))

	require.NoError(t, CheckTransactionSanity(tx))
}

// Scenario 2: valid single-TLV payload with a correct commitment output.
func TestScenario2ValidPayloadAndCommitmentAccepted(t *testing.T) {
	data := []byte{0x01, 0x05, 'h', 'e', 'l', 'l', 'o'}
	tx := txWithOneInput()
	tx.AddTxOut(p2pkhOutput(50_000))
	tx.AddTxOut(wire.NewTxOut(0, txscript.BuildCommitmentScript(data)))
	tx.SegOp = &wire.SegOpPayload{Version: 1, Data: data}

	require.NoError(t, CheckTransactionSanity(tx))
	testutil.RequireDeepEqual(t, &wire.SegOpPayload{Version: 1, Data: data}, tx.SegOp, "unmodified SegOp payload")
}

// Scenario 3: wrong commitment bytes (all-zero tail).
func TestScenario3WrongCommitmentBytesRejected(t *testing.T) {
	data := []byte{0x01, 0x05, 'h', 'e', 'l', 'l', 'o'}
	tx := txWithOneInput()
	tx.AddTxOut(p2pkhOutput(50_000))

	badScript := append([]byte{0x6a, byte(wire.CommitmentBlobLen)}, []byte("P2SOP")...)
	badScript = append(badScript, make([]byte, chainhash.HashSize)...)
	tx.AddTxOut(wire.NewTxOut(0, badScript))
	tx.SegOp = &wire.SegOpPayload{Version: 1, Data: data}

	require.ErrorIs(t, CheckTransactionSanity(tx), CommitmentMismatch)
}

// Scenario 4: payload present but commitment output replaced by a second P2PKH.
func TestScenario4PayloadWithoutCommitmentOutputRejected(t *testing.T) {
	data := []byte{0x01, 0x05, 'h', 'e', 'l', 'l', 'o'}
	tx := txWithOneInput()
	tx.AddTxOut(p2pkhOutput(50_000))
	tx.AddTxOut(p2pkhOutput(1_000))
	tx.SegOp = &wire.SegOpPayload{Version: 1, Data: data}

	require.ErrorIs(t, CheckTransactionSanity(tx), CommitmentMismatch)
}

// Scenario 5: commitment-looking output present, no payload.
func TestScenario5CommitmentLookingOutputWithoutPayloadRejected(t *testing.T) {
	tx := txWithOneInput()
	tx.AddTxOut(p2pkhOutput(50_000))

	script := append([]byte{0x6a, byte(wire.CommitmentBlobLen)}, []byte("P2SOP")...)
	script = append(script, make([]byte, chainhash.HashSize)...)
	tx.AddTxOut(wire.NewTxOut(0, script))

	require.ErrorIs(t, CheckTransactionSanity(tx), UnexpectedCommitment)
}

// Scenario 6: non-canonical TLV length fails PayloadTLV.
func TestScenario6NonCanonicalTLVRejected(t *testing.T) {
	data := []byte{0x01, 0xFD, 0x02, 0x00, 'a', 'b'}
	tx := txWithOneInput()
	tx.AddTxOut(p2pkhOutput(50_000))
	tx.AddTxOut(wire.NewTxOut(0, txscript.BuildCommitmentScript(data)))
	tx.SegOp = &wire.SegOpPayload{Version: 1, Data: data}

	require.ErrorIs(t, CheckTransactionSanity(tx), PayloadTLV)
}

func TestEmptyInputsRejected(t *testing.T) {
	tx := wire.NewMsgTx(1)
	tx.AddTxOut(p2pkhOutput(1))
	require.ErrorIs(t, CheckTransactionSanity(tx), EmptyInputs)
}

func TestEmptyOutputsRejected(t *testing.T) {
	tx := txWithOneInput()
	require.ErrorIs(t, CheckTransactionSanity(tx), EmptyOutputs)
}

func TestPayloadVersionRejected(t *testing.T) {
	tx := txWithOneInput()
	tx.AddTxOut(p2pkhOutput(1))
	data := []byte{0x01, 0x00}
	tx.AddTxOut(wire.NewTxOut(0, txscript.BuildCommitmentScript(data)))
	tx.SegOp = &wire.SegOpPayload{Version: 2, Data: data}

	require.ErrorIs(t, CheckTransactionSanity(tx), PayloadVersion)
}

func TestPayloadTooLargeBoundary(t *testing.T) {
	exact := make([]byte, MaxSegOpPayloadSize)
	tx := txWithOneInput()
	tx.AddTxOut(p2pkhOutput(1))
	tx.AddTxOut(wire.NewTxOut(0, txscript.BuildCommitmentScript(exact)))
	tx.SegOp = &wire.SegOpPayload{Version: 1, Data: exact}
	require.NoError(t, CheckTransactionSanity(tx))

	tooLarge := make([]byte, MaxSegOpPayloadSize+1)
	tx2 := txWithOneInput()
	tx2.AddTxOut(p2pkhOutput(1))
	tx2.AddTxOut(wire.NewTxOut(0, txscript.BuildCommitmentScript(tooLarge)))
	tx2.SegOp = &wire.SegOpPayload{Version: 1, Data: tooLarge}
	require.ErrorIs(t, CheckTransactionSanity(tx2), PayloadTooLarge)
}

func TestDuplicateCorrectCommitmentOutputsRejected(t *testing.T) {
	data := []byte{0x00, 0x00}
	tx := txWithOneInput()
	tx.AddTxOut(p2pkhOutput(1))
	tx.AddTxOut(wire.NewTxOut(0, txscript.BuildCommitmentScript(data)))
	tx.AddTxOut(wire.NewTxOut(0, txscript.BuildCommitmentScript(data)))
	tx.SegOp = &wire.SegOpPayload{Version: 1, Data: data}

	require.ErrorIs(t, CheckTransactionSanity(tx), CommitmentMismatch)
}

// A second P2SOP-tagged output whose declared push_len doesn't match the
// correct commitment's is still commitment-looking, and must be rejected
// outright rather than silently ignored, even alongside an otherwise
// correct commitment output for the same payload.
func TestWrongLengthCommitmentOutputAlongsideCorrectOneRejected(t *testing.T) {
	data := []byte{0x01, 0x05, 'h', 'e', 'l', 'l', 'o'}
	tx := txWithOneInput()
	tx.AddTxOut(p2pkhOutput(50_000))
	tx.AddTxOut(wire.NewTxOut(0, txscript.BuildCommitmentScript(data)))

	wrongLength := append([]byte{0x6a, 0x0A}, []byte("P2SOP")...)
	wrongLength = append(wrongLength, 0x01, 0x02, 0x03, 0x04, 0x05)
	require.Len(t, wrongLength, 12)
	require.True(t, txscript.IsCommitmentLooking(wrongLength))
	tx.AddTxOut(wire.NewTxOut(0, wrongLength))

	tx.SegOp = &wire.SegOpPayload{Version: 1, Data: data}

	require.ErrorIs(t, CheckTransactionSanity(tx), CommitmentMismatch)
}

// The same wrong-length P2SOP-tagged output, with no payload present at
// all, must still trip UnexpectedCommitment.
func TestWrongLengthCommitmentOutputWithoutPayloadRejected(t *testing.T) {
	tx := txWithOneInput()
	tx.AddTxOut(p2pkhOutput(50_000))

	wrongLength := append([]byte{0x6a, 0x0A}, []byte("P2SOP")...)
	wrongLength = append(wrongLength, 0x01, 0x02, 0x03, 0x04, 0x05)
	tx.AddTxOut(wire.NewTxOut(0, wrongLength))

	require.ErrorIs(t, CheckTransactionSanity(tx), UnexpectedCommitment)
}

func TestNegativeOutputRejected(t *testing.T) {
	tx := txWithOneInput()
	tx.AddTxOut(wire.NewTxOut(-1, []byte{0x00}))
	require.ErrorIs(t, CheckTransactionSanity(tx), NegativeOutput)
}

func TestOutputTotalOverflowRejected(t *testing.T) {
	tx := txWithOneInput()
	tx.AddTxOut(wire.NewTxOut(MaxMoney, []byte{0x00}))
	tx.AddTxOut(wire.NewTxOut(1, []byte{0x00}))
	require.ErrorIs(t, CheckTransactionSanity(tx), OutputTotalOverflow)
}

func TestDuplicateInputRejected(t *testing.T) {
	tx := wire.NewMsgTx(1)
	prevOut := &wire.OutPoint{Hash: samplePrevHash(0x22), Index: 3}
	tx.AddTxIn(wire.NewTxIn(prevOut, []byte{0x01}, nil))
	tx.AddTxIn(wire.NewTxIn(prevOut, []byte{0x01}, nil))
	tx.AddTxOut(p2pkhOutput(1))

	require.ErrorIs(t, CheckTransactionSanity(tx), DuplicateInput)
}

func TestNullPrevoutOnNonCoinbaseRejected(t *testing.T) {
	tx := wire.NewMsgTx(1)
	tx.AddTxIn(wire.NewTxIn(&wire.OutPoint{Hash: samplePrevHash(0x33), Index: 0}, []byte{0x01}, nil))
	tx.AddTxIn(wire.NewTxIn(&wire.OutPoint{Index: wire.NullPrevoutIndex}, []byte{0x01}, nil))
	tx.AddTxOut(p2pkhOutput(1))

	require.ErrorIs(t, CheckTransactionSanity(tx), NullPrevout)
}

func TestCoinbaseLengthBoundaries(t *testing.T) {
	mkCoinbase := func(scriptLen int) *wire.MsgTx {
		tx := wire.NewMsgTx(1)
		tx.AddTxIn(wire.NewTxIn(&wire.OutPoint{Index: wire.NullPrevoutIndex}, make([]byte, scriptLen), nil))
		tx.AddTxOut(p2pkhOutput(1))
		return tx
	}

	require.NoError(t, CheckTransactionSanity(mkCoinbase(2)))
	require.NoError(t, CheckTransactionSanity(mkCoinbase(MaxCoinbaseScriptSigSize)))
	require.ErrorIs(t, CheckTransactionSanity(mkCoinbase(1)), CoinbaseLength)
	require.ErrorIs(t, CheckTransactionSanity(mkCoinbase(MaxCoinbaseScriptSigSize+1)), CoinbaseLength)
}

func TestOversizeRejected(t *testing.T) {
	tx := txWithOneInput()
	tx.AddTxOut(wire.NewTxOut(1, make([]byte, MaxBlockWeight)))
	require.ErrorIs(t, CheckTransactionSanity(tx), Oversize)
}
