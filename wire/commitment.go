package wire

import "github.com/defenwycke/segregated-op-return/chainhash"

// CommitmentTag is the domain-separation tag used when tagged-hashing a
// segOP payload to build its commitment.
const CommitmentTag = "segop:commitment"

// commitmentPrefix is the 5-byte ASCII tag identifying a segOP commitment
// blob ("P2SOP" — pay to segOP). This is the newer of the two commitment
// revisions found across the protocol's history; the older "SOP" +
// SHA256(payload) revision is not implemented.
var commitmentPrefix = [5]byte{'P', '2', 'S', 'O', 'P'}

// CommitmentBlobLen is the length, in bytes, of the pushed data in a
// commitment output: the 5-byte "P2SOP" prefix plus a 32-byte tagged hash.
const CommitmentBlobLen = len(commitmentPrefix) + chainhash.HashSize

// BuildCommitmentBlob computes "P2SOP" ‖ TaggedHash("segop:commitment",
// payload) for the given segOP payload data. The result is pure: identical
// payload bytes always produce identical commitment blobs.
func BuildCommitmentBlob(payload []byte) []byte {
	commitment := chainhash.TaggedHash(CommitmentTag, payload)

	out := make([]byte, 0, CommitmentBlobLen)
	out = append(out, commitmentPrefix[:]...)
	out = append(out, commitment[:]...)
	return out
}
