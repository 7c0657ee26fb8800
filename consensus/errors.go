package consensus

// Reason is the closed taxonomy of structural-validation rejections. It is
// a comparable value type, not an error chain: the consensus path never
// wraps, annotates, or retries a Reason, it simply returns one to the host
// for logging and peer-penalty accounting.
type Reason string

// The complete set of rejection reasons the structural validator can
// produce, and the two decode-time rejections the wire codec produces.
const (
	EmptyInputs           Reason = "EmptyInputs"
	EmptyOutputs          Reason = "EmptyOutputs"
	Oversize              Reason = "Oversize"
	PayloadVersion        Reason = "PayloadVersion"
	PayloadTooLarge       Reason = "PayloadTooLarge"
	PayloadTLV            Reason = "PayloadTLV"
	CommitmentMismatch    Reason = "CommitmentMismatch"
	UnexpectedCommitment  Reason = "UnexpectedCommitment"
	NegativeOutput        Reason = "NegativeOutput"
	OutputTotalOverflow   Reason = "OutputTotalOverflow"
	DuplicateInput        Reason = "DuplicateInput"
	NullPrevout           Reason = "NullPrevout"
	CoinbaseLength        Reason = "CoinbaseLength"

	// Truncated and NonCanonical name the wire codec's two decode-time
	// failures (wire.ErrTruncated, wire.ErrNonCanonical) as Reason values.
	// They are distinct values from those sentinels: errors.Is does not
	// match one against the other, nothing in this package converts a wire
	// error into them, and CheckTransactionSanity never returns them.
	Truncated    Reason = "Truncated"
	NonCanonical Reason = "NonCanonical"
)

// Error implements the error interface so a Reason can be returned directly
// wherever Go code expects an error.
func (r Reason) Error() string {
	return string(r)
}
