// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"github.com/defenwycke/segregated-op-return/chainhash"
)

// segOpSectionMarker is the fixed byte ('S') preceding the payload version
// inside the segOP section of the extended-with-witness profile.
const segOpSectionMarker = 0x53

// witnessMarker is the always-0x00 byte that, in place of a non-zero input
// count, signals that a transaction carries an extended-with-witness
// profile. A legitimate legacy transaction can never place this byte here
// because the non-empty-inputs invariant forbids a zero input count.
const witnessMarker = 0x00

// Flag bits controlling which optional sections follow the output list in
// the extended-with-witness profile.
const (
	flagWitness = 1 << 0
	flagSegOp   = 1 << 1
)

// OutPoint references a previous transaction output.
type OutPoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// NullPrevoutIndex is the sentinel previous-output index used by the
// coinbase input's (necessarily null) previous-output reference.
const NullPrevoutIndex = ^uint32(0)

// NewOutPoint returns a new outpoint with the provided hash and index.
func NewOutPoint(hash *chainhash.Hash, index uint32) *OutPoint {
	return &OutPoint{Hash: *hash, Index: index}
}

// IsNull reports whether o is the null previous-output reference used by
// coinbase inputs.
func (o OutPoint) IsNull() bool {
	return o.Index == NullPrevoutIndex && o.Hash == (chainhash.Hash{})
}

// String returns the OutPoint in the human-readable form "hash:index".
func (o OutPoint) String() string {
	return o.Hash.String() + ":" + uitoa(uint64(o.Index))
}

func uitoa(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

// TxWitness is an input's witness stack: an ordered sequence of byte
// sequences, which may be empty.
type TxWitness [][]byte

func (w TxWitness) clone() TxWitness {
	if w == nil {
		return nil
	}
	out := make(TxWitness, len(w))
	for i, item := range w {
		out[i] = append([]byte(nil), item...)
	}
	return out
}

// SerializeSize returns the number of bytes it would take to serialize the
// witness stack.
func (w TxWitness) SerializeSize() int {
	n := CompactSizeLen(uint64(len(w)))
	for _, item := range w {
		n += CompactSizeLen(uint64(len(item))) + len(item)
	}
	return n
}

// TxIn is a transaction input: a previous-output reference, a script
// signature, a sequence number, and an optional witness stack.
type TxIn struct {
	PreviousOutPoint OutPoint
	SignatureScript  []byte
	Sequence         uint32
	Witness          TxWitness
}

// SerializeSize returns the number of bytes it would take to serialize the
// input, excluding its witness.
func (ti *TxIn) SerializeSize() int {
	return chainhash.HashSize + 4 + 4 +
		CompactSizeLen(uint64(len(ti.SignatureScript))) + len(ti.SignatureScript)
}

// NewTxIn returns a new transaction input with the provided previous
// outpoint and script signature, and a default max sequence number.
func NewTxIn(prevOut *OutPoint, signatureScript []byte, witness [][]byte) *TxIn {
	return &TxIn{
		PreviousOutPoint: *prevOut,
		SignatureScript:  signatureScript,
		Witness:          witness,
		Sequence:         MaxTxInSequenceNum,
	}
}

// MaxTxInSequenceNum is the default, "final" input sequence number.
const MaxTxInSequenceNum uint32 = 0xffffffff

func (ti *TxIn) clone() *TxIn {
	return &TxIn{
		PreviousOutPoint: ti.PreviousOutPoint,
		SignatureScript:  append([]byte(nil), ti.SignatureScript...),
		Sequence:         ti.Sequence,
		Witness:          ti.Witness.clone(),
	}
}

// TxOut is a transaction output: a value and a script public key.
type TxOut struct {
	Value    int64
	PkScript []byte
}

// SerializeSize returns the number of bytes it would take to serialize the
// output.
func (to *TxOut) SerializeSize() int {
	return 8 + CompactSizeLen(uint64(len(to.PkScript))) + len(to.PkScript)
}

// NewTxOut returns a new transaction output with the provided value and
// public key script.
func NewTxOut(value int64, pkScript []byte) *TxOut {
	return &TxOut{Value: value, PkScript: pkScript}
}

func (to *TxOut) clone() *TxOut {
	return &TxOut{
		Value:    to.Value,
		PkScript: append([]byte(nil), to.PkScript...),
	}
}

// SegOpPayload is the optional extended-lane attachment carried by a
// transaction. The payload is null when Version == 0 and Data is empty;
// otherwise it is present.
type SegOpPayload struct {
	Version uint8
	Data    []byte
}

// IsNull reports whether p represents the absent payload.
func (p *SegOpPayload) IsNull() bool {
	return p == nil || (p.Version == 0 && len(p.Data) == 0)
}

func (p *SegOpPayload) clone() *SegOpPayload {
	if p == nil {
		return nil
	}
	return &SegOpPayload{
		Version: p.Version,
		Data:    append([]byte(nil), p.Data...),
	}
}

// MsgTx is an extended transaction: the standard Bitcoin-style fields plus
// an optional segOP payload. A zero-value MsgTx is a legal starting point
// for construction; use AddTxIn/AddTxOut to build it up, and call Finalize
// (or one of the identifier accessors) once it is complete.
type MsgTx struct {
	Version  uint32
	TxIn     []*TxIn
	TxOut    []*TxOut
	LockTime uint32
	SegOp    *SegOpPayload

	cachedTxHash      *chainhash.Hash
	cachedWitnessHash *chainhash.Hash
	cachedExtendedID  *chainhash.Hash
}

// NewMsgTx returns a new, empty transaction with the given version and no
// inputs, outputs, or payload.
func NewMsgTx(version uint32) *MsgTx {
	return &MsgTx{
		Version: version,
		TxIn:    make([]*TxIn, 0, defaultTxInOutAlloc),
		TxOut:   make([]*TxOut, 0, defaultTxInOutAlloc),
	}
}

// defaultTxInOutAlloc sizes the initial backing array for a freshly built
// transaction's input and output slices.
const defaultTxInOutAlloc = 4

// AddTxIn adds a transaction input to msg.
func (msg *MsgTx) AddTxIn(ti *TxIn) {
	msg.TxIn = append(msg.TxIn, ti)
}

// AddTxOut adds a transaction output to msg.
func (msg *MsgTx) AddTxOut(to *TxOut) {
	msg.TxOut = append(msg.TxOut, to)
}

// HasWitness reports whether any input carries a non-empty witness stack.
func (msg *MsgTx) HasWitness() bool {
	for _, txIn := range msg.TxIn {
		if len(txIn.Witness) != 0 {
			return true
		}
	}
	return false
}

// HasSegOp reports whether msg carries a present (non-null) segOP payload.
func (msg *MsgTx) HasSegOp() bool {
	return !msg.SegOp.IsNull()
}

// flagByte computes the flag byte for the extended-with-witness profile.
func (msg *MsgTx) flagByte() byte {
	var flag byte
	if msg.HasWitness() {
		flag |= flagWitness
	}
	if msg.HasSegOp() {
		flag |= flagSegOp
	}
	return flag
}

// Copy returns a deep copy of msg so that mutating the copy never affects
// the original.
func (msg *MsgTx) Copy() *MsgTx {
	newTx := &MsgTx{
		Version:  msg.Version,
		LockTime: msg.LockTime,
		TxIn:     make([]*TxIn, len(msg.TxIn)),
		TxOut:    make([]*TxOut, len(msg.TxOut)),
		SegOp:    msg.SegOp.clone(),
	}
	for i, txIn := range msg.TxIn {
		newTx.TxIn[i] = txIn.clone()
	}
	for i, txOut := range msg.TxOut {
		newTx.TxOut[i] = txOut.clone()
	}
	return newTx
}

// stripSegOp returns a copy of msg with its segOP payload cleared, used
// internally to compute the legacy and witness identifiers.
func (msg *MsgTx) stripSegOp() *MsgTx {
	stripped := msg.Copy()
	stripped.SegOp = nil
	return stripped
}

func writeUint32LE(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func writeUint64LE(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func writeVarBytes(w io.Writer, b []byte) error {
	if _, err := w.Write(AppendCompactSize(nil, uint64(len(b)))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

// writeTxIn writes the non-witness portion of a single input: previous
// outpoint, script signature, and sequence.
func writeTxIn(w io.Writer, ti *TxIn) error {
	if _, err := w.Write(ti.PreviousOutPoint.Hash[:]); err != nil {
		return err
	}
	if err := writeUint32LE(w, ti.PreviousOutPoint.Index); err != nil {
		return err
	}
	if err := writeVarBytes(w, ti.SignatureScript); err != nil {
		return err
	}
	return writeUint32LE(w, ti.Sequence)
}

func writeTxOut(w io.Writer, to *TxOut) error {
	if err := writeUint64LE(w, uint64(to.Value)); err != nil {
		return err
	}
	return writeVarBytes(w, to.PkScript)
}

func writeWitness(w io.Writer, witness TxWitness) error {
	if _, err := w.Write(AppendCompactSize(nil, uint64(len(witness)))); err != nil {
		return err
	}
	for _, item := range witness {
		if err := writeVarBytes(w, item); err != nil {
			return err
		}
	}
	return nil
}

// serializeNoWitness writes the non-witness profile (TX_NO_WITNESS):
// version ‖ vin_count ‖ vin[] ‖ vout_count ‖ vout[] ‖ lock_time. The
// extended payload is never included in this profile.
func (msg *MsgTx) serializeNoWitness(w io.Writer) error {
	if err := writeUint32LE(w, msg.Version); err != nil {
		return err
	}
	if _, err := w.Write(AppendCompactSize(nil, uint64(len(msg.TxIn)))); err != nil {
		return err
	}
	for _, ti := range msg.TxIn {
		if err := writeTxIn(w, ti); err != nil {
			return err
		}
	}
	if _, err := w.Write(AppendCompactSize(nil, uint64(len(msg.TxOut)))); err != nil {
		return err
	}
	for _, to := range msg.TxOut {
		if err := writeTxOut(w, to); err != nil {
			return err
		}
	}
	return writeUint32LE(w, msg.LockTime)
}

// serializeExtended writes the extended-with-witness profile
// (TX_WITH_WITNESS). When neither witness data nor a segOP payload is
// present, the flag byte is zero and emission degenerates byte-for-byte to
// the non-witness profile (no marker/flag bytes emitted).
func (msg *MsgTx) serializeExtended(w io.Writer) error {
	flag := msg.flagByte()
	if flag == 0 {
		return msg.serializeNoWitness(w)
	}

	if err := writeUint32LE(w, msg.Version); err != nil {
		return err
	}
	if _, err := w.Write([]byte{witnessMarker, flag}); err != nil {
		return err
	}
	if _, err := w.Write(AppendCompactSize(nil, uint64(len(msg.TxIn)))); err != nil {
		return err
	}
	for _, ti := range msg.TxIn {
		if err := writeTxIn(w, ti); err != nil {
			return err
		}
	}
	if _, err := w.Write(AppendCompactSize(nil, uint64(len(msg.TxOut)))); err != nil {
		return err
	}
	for _, to := range msg.TxOut {
		if err := writeTxOut(w, to); err != nil {
			return err
		}
	}
	if flag&flagWitness != 0 {
		for _, ti := range msg.TxIn {
			if err := writeWitness(w, ti.Witness); err != nil {
				return err
			}
		}
	}
	if flag&flagSegOp != 0 {
		if _, err := w.Write([]byte{segOpSectionMarker, msg.SegOp.Version}); err != nil {
			return err
		}
		if err := writeVarBytes(w, msg.SegOp.Data); err != nil {
			return err
		}
	}
	return writeUint32LE(w, msg.LockTime)
}

// SerializeNoWitness encodes msg using the non-witness profile.
func (msg *MsgTx) SerializeNoWitness(w io.Writer) error {
	return msg.serializeNoWitness(w)
}

// Serialize encodes msg using the extended-with-witness profile, including
// the segOP payload section when present. This is the persisted on-disk
// representation whenever msg has witness or payload data.
func (msg *MsgTx) Serialize(w io.Writer) error {
	return msg.serializeExtended(w)
}

// Bytes returns the extended-with-witness serialization of msg.
func (msg *MsgTx) Bytes() []byte {
	var buf bytes.Buffer
	_ = msg.Serialize(&buf)
	return buf.Bytes()
}

// BytesNoWitness returns the non-witness serialization of msg.
func (msg *MsgTx) BytesNoWitness() []byte {
	var buf bytes.Buffer
	_ = msg.SerializeNoWitness(&buf)
	return buf.Bytes()
}

// baseSize returns the serialized size of msg without any witness data.
func (msg *MsgTx) baseSize() int {
	n := 8 + CompactSizeLen(uint64(len(msg.TxIn))) + CompactSizeLen(uint64(len(msg.TxOut)))
	for _, ti := range msg.TxIn {
		n += ti.SerializeSize()
	}
	for _, to := range msg.TxOut {
		n += to.SerializeSize()
	}
	return n
}

// SerializeSizeNoWitness returns the length, in bytes, of the non-witness
// profile of msg.
func (msg *MsgTx) SerializeSizeNoWitness() int {
	return msg.baseSize()
}

// SerializeSize returns the length, in bytes, of the extended-with-witness
// profile of msg.
func (msg *MsgTx) SerializeSize() int {
	n := msg.baseSize()
	flag := msg.flagByte()
	if flag == 0 {
		return n
	}
	n += 2 // marker + flag
	if flag&flagWitness != 0 {
		for _, ti := range msg.TxIn {
			n += ti.Witness.SerializeSize()
		}
	}
	if flag&flagSegOp != 0 {
		n += 2 + CompactSizeLen(uint64(len(msg.SegOp.Data))) + len(msg.SegOp.Data)
	}
	return n
}

// TxHash computes the legacy transaction id: SHA256d of the non-witness
// profile of a copy of msg with the segOP payload cleared. This identifier
// is stable across witness and payload additions, so it is cached once on
// first computation.
func (msg *MsgTx) TxHash() chainhash.Hash {
	if msg.cachedTxHash != nil {
		return *msg.cachedTxHash
	}
	stripped := msg.stripSegOp()
	h := chainhash.DoubleHashH(stripped.BytesNoWitness())
	msg.cachedTxHash = &h
	return h
}

// WitnessHash computes the witness transaction id: equal to TxHash when msg
// carries no witness data, otherwise the SHA256d of the extended-with-
// witness profile of a copy of msg with the segOP payload cleared.
func (msg *MsgTx) WitnessHash() chainhash.Hash {
	if msg.cachedWitnessHash != nil {
		return *msg.cachedWitnessHash
	}
	if !msg.HasWitness() {
		h := msg.TxHash()
		msg.cachedWitnessHash = &h
		return h
	}
	stripped := msg.stripSegOp()
	h := chainhash.DoubleHashH(stripped.Bytes())
	msg.cachedWitnessHash = &h
	return h
}

// ExtendedID computes the full extended transaction id: the tagged hash of
// the complete extended-with-witness serialization, including the segOP
// payload section. This is the only identifier that binds the payload
// bytes to the transaction; changing any byte of the payload changes
// ExtendedID while leaving TxHash unchanged.
func (msg *MsgTx) ExtendedID() chainhash.Hash {
	if msg.cachedExtendedID != nil {
		return *msg.cachedExtendedID
	}
	h := chainhash.TaggedHash("segop:fullxid", msg.Bytes())
	msg.cachedExtendedID = &h
	return h
}

// Finalize materializes and caches all three identifiers. Calling it is
// optional — the identifier accessors compute and cache lazily — but it
// gives callers a single point to force identifier computation once a
// transaction is fully constructed.
func (msg *MsgTx) Finalize() {
	msg.TxHash()
	msg.WitnessHash()
	msg.ExtendedID()
}

func readExact(r io.Reader, n int) ([]byte, error) {
	if n < 0 {
		return nil, ErrNonCanonical
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrTruncated
		}
		return nil, err
	}
	return buf, nil
}

func readUint32LE(r io.Reader) (uint32, error) {
	b, err := readExact(r, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func readUint64LE(r io.Reader) (uint64, error) {
	b, err := readExact(r, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func readUint8(r io.Reader) (uint8, error) {
	b, err := readExact(r, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// readCompactSizeFromReader reads one CompactSize value directly from an
// io.Reader by reading its prefix byte and, if needed, the trailing bytes.
func readCompactSizeFromReader(r io.Reader) (uint64, error) {
	tag, err := readUint8(r)
	if err != nil {
		return 0, err
	}
	switch {
	case tag < 0xfd:
		return uint64(tag), nil
	case tag == 0xfd:
		b, err := readExact(r, 2)
		if err != nil {
			return 0, err
		}
		v := binary.LittleEndian.Uint16(b)
		if v < 0xfd {
			return 0, ErrNonCanonical
		}
		return uint64(v), nil
	case tag == 0xfe:
		b, err := readExact(r, 4)
		if err != nil {
			return 0, err
		}
		v := binary.LittleEndian.Uint32(b)
		if v <= 0xffff {
			return 0, ErrNonCanonical
		}
		return uint64(v), nil
	default:
		b, err := readExact(r, 8)
		if err != nil {
			return 0, err
		}
		v := binary.LittleEndian.Uint64(b)
		if v <= 0xffffffff {
			return 0, ErrNonCanonical
		}
		return v, nil
	}
}

func readVarBytes(r io.Reader) ([]byte, error) {
	n, err := readCompactSizeFromReader(r)
	if err != nil {
		return nil, err
	}
	return readExact(r, int(n))
}

func readTxIn(r io.Reader) (*TxIn, error) {
	hashBytes, err := readExact(r, chainhash.HashSize)
	if err != nil {
		return nil, err
	}
	var prevHash chainhash.Hash
	copy(prevHash[:], hashBytes)

	index, err := readUint32LE(r)
	if err != nil {
		return nil, err
	}
	sigScript, err := readVarBytes(r)
	if err != nil {
		return nil, err
	}
	sequence, err := readUint32LE(r)
	if err != nil {
		return nil, err
	}
	return &TxIn{
		PreviousOutPoint: OutPoint{Hash: prevHash, Index: index},
		SignatureScript:  sigScript,
		Sequence:         sequence,
	}, nil
}

func readTxOut(r io.Reader) (*TxOut, error) {
	value, err := readUint64LE(r)
	if err != nil {
		return nil, err
	}
	pkScript, err := readVarBytes(r)
	if err != nil {
		return nil, err
	}
	return &TxOut{Value: int64(value), PkScript: pkScript}, nil
}

func readWitness(r io.Reader) (TxWitness, error) {
	count, err := readCompactSizeFromReader(r)
	if err != nil {
		return nil, err
	}
	witness := make(TxWitness, count)
	for i := range witness {
		item, err := readVarBytes(r)
		if err != nil {
			return nil, err
		}
		witness[i] = item
	}
	return witness, nil
}

// Deserialize parses a transaction from r. It accepts both the legacy
// serialization (no marker/flag, no segOP section) and the extended
// serialization, auto-detecting which profile is present from the marker
// byte.
func (msg *MsgTx) Deserialize(r io.Reader) error {
	version, err := readUint32LE(r)
	if err != nil {
		return err
	}
	msg.Version = version

	count, err := readCompactSizeFromReader(r)
	if err != nil {
		return err
	}

	var flag byte
	extended := false
	if count == 0 {
		// A zero input count can never occur in a valid legacy transaction
		// (inputs are required to be non-empty), so it unambiguously marks
		// the extended-with-witness profile.
		extended = true
		flag, err = readUint8(r)
		if err != nil {
			return err
		}
		if flag == 0 {
			return ErrNonCanonical
		}
		count, err = readCompactSizeFromReader(r)
		if err != nil {
			return err
		}
	}

	txIns := make([]*TxIn, count)
	for i := range txIns {
		txIns[i], err = readTxIn(r)
		if err != nil {
			return err
		}
	}
	msg.TxIn = txIns

	outCount, err := readCompactSizeFromReader(r)
	if err != nil {
		return err
	}
	txOuts := make([]*TxOut, outCount)
	for i := range txOuts {
		txOuts[i], err = readTxOut(r)
		if err != nil {
			return err
		}
	}
	msg.TxOut = txOuts

	if extended && flag&flagWitness != 0 {
		for _, ti := range txIns {
			ti.Witness, err = readWitness(r)
			if err != nil {
				return err
			}
		}
	}

	if extended && flag&flagSegOp != 0 {
		marker, err := readUint8(r)
		if err != nil {
			return err
		}
		if marker != segOpSectionMarker {
			return ErrNonCanonical
		}
		payloadVersion, err := readUint8(r)
		if err != nil {
			return err
		}
		data, err := readVarBytes(r)
		if err != nil {
			return err
		}
		msg.SegOp = &SegOpPayload{Version: payloadVersion, Data: data}
	}

	msg.LockTime, err = readUint32LE(r)
	if err != nil {
		return err
	}
	return nil
}

// DeserializeNoWitness decodes a transaction from r, where r MUST NOT carry
// a marker/flag byte pair (i.e. the input is known in advance to be in the
// non-witness profile).
func (msg *MsgTx) DeserializeNoWitness(r io.Reader) error {
	version, err := readUint32LE(r)
	if err != nil {
		return err
	}
	msg.Version = version

	count, err := readCompactSizeFromReader(r)
	if err != nil {
		return err
	}
	txIns := make([]*TxIn, count)
	for i := range txIns {
		txIns[i], err = readTxIn(r)
		if err != nil {
			return err
		}
	}
	msg.TxIn = txIns

	outCount, err := readCompactSizeFromReader(r)
	if err != nil {
		return err
	}
	txOuts := make([]*TxOut, outCount)
	for i := range txOuts {
		txOuts[i], err = readTxOut(r)
		if err != nil {
			return err
		}
	}
	msg.TxOut = txOuts

	msg.LockTime, err = readUint32LE(r)
	return err
}

// DeserializeTx parses a complete extended (or legacy) transaction from b
// and verifies that no trailing bytes remain.
func DeserializeTx(b []byte) (*MsgTx, error) {
	r := bytes.NewReader(b)
	msg := &MsgTx{}
	if err := msg.Deserialize(r); err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, ErrNonCanonical
	}
	return msg, nil
}
