// Package classify implements the non-consensus classification
// collaborator: it tags an already-validated transaction into a policy
// tier and a small set of descriptive labels, for telemetry and policy
// purposes only. Nothing here participates in consensus; a node could swap
// this package out entirely without affecting transaction validity.
package classify

import (
	"github.com/defenwycke/segregated-op-return/wire"
)

// Tier is the coarse policy bucket a transaction is sorted into.
type Tier string

const (
	T0 Tier = "T0"
	T1 Tier = "T1"
	T2 Tier = "T2"
	T3 Tier = "T3"
)

// Surface names the part of a transaction a label was recognized from.
type Surface string

const (
	SurfaceScriptSig     Surface = "scriptsig"
	SurfaceScriptPubKey  Surface = "scriptpubkey"
	SurfaceWitnessStack  Surface = "witness_stack"
	SurfaceWitnessScript Surface = "witness_script"
	SurfaceSegOpTLV      Surface = "segop_tlv"
	SurfaceOpReturn      Surface = "op_return"
	SurfaceCoinbase      Surface = "coinbase"
)

// Label describes one registry entry: a human-readable description, the
// surfaces from which it can be recognized, and the tier it suggests.
type Label struct {
	Name          string
	Description   string
	Surfaces      []Surface
	SuggestedTier Tier
}

// Registry is the static label → Label mapping: a flat table from label
// name to description, recognized surfaces, and suggested tier.
var Registry = map[string]Label{
	"pay.standard": {
		Name:          "pay.standard",
		Description:   "ordinary value transfer with no extended lane or data-carrying output",
		Surfaces:      []Surface{SurfaceScriptSig, SurfaceScriptPubKey},
		SuggestedTier: T1,
	},
	"da.embed_misc": {
		Name:          "da.embed_misc",
		Description:   "transaction carries a segOP payload or a non-trivial OP_RETURN output",
		Surfaces:      []Surface{SurfaceSegOpTLV, SurfaceOpReturn},
		SuggestedTier: T2,
	},
	"da.op_return_embed": {
		Name:          "da.op_return_embed",
		Description:   "transaction has at least one non-trivial OP_RETURN output",
		Surfaces:      []Surface{SurfaceOpReturn},
		SuggestedTier: T2,
	},
	"da.unknown": {
		Name:          "da.unknown",
		Description:   "transaction shape not recognized by any other label",
		Surfaces:      []Surface{SurfaceScriptPubKey, SurfaceWitnessStack, SurfaceCoinbase},
		SuggestedTier: T3,
	},
}

// Classification is the result of classifying one transaction.
type Classification struct {
	Tier      Tier
	Type      string
	Labels    []string
	Ambiguous bool
}

const opReturnOpcode = 0x6a

// hasNonTrivialOpReturn reports whether tx has an output whose
// scriptPubKey begins with OP_RETURN and has at least one more byte after
// the opcode. The bytes after OP_RETURN are not parsed, so a lone push
// opcode with no data (e.g. OP_RETURN OP_0) also counts.
func hasNonTrivialOpReturn(tx *wire.MsgTx) bool {
	for _, out := range tx.TxOut {
		if len(out.PkScript) > 1 && out.PkScript[0] == opReturnOpcode {
			return true
		}
	}
	return false
}

// Classify applies the classification policy to an already-validated
// transaction:
//
//   - no extended payload and no non-trivial OP_RETURN  -> pay.standard (T1)
//   - extended payload or non-trivial OP_RETURN         -> da.embed_misc (T2),
//     plus da.op_return_embed when an OP_RETURN is present
func Classify(tx *wire.MsgTx) Classification {
	opReturn := hasNonTrivialOpReturn(tx)
	hasSegOp := tx.HasSegOp()

	if !hasSegOp && !opReturn {
		return Classification{
			Tier:   Registry["pay.standard"].SuggestedTier,
			Type:   "pay.standard",
			Labels: []string{"pay.standard"},
		}
	}

	labels := []string{"da.embed_misc"}
	if opReturn {
		labels = append(labels, "da.op_return_embed")
	}
	return Classification{
		Tier:   Registry["da.embed_misc"].SuggestedTier,
		Type:   "da.embed_misc",
		Labels: labels,
	}
}
