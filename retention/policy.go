// Package retention implements the view-layer retention-policy
// collaborator: a small process-wide configuration record deciding at what
// depth historical payloads may be elided from RPC-style responses. It is
// not part of the consensus contract.
package retention

import "sync/atomic"

// Recommended bounds, in blocks, for the three configurable windows.
const (
	MinValidationWindow = 6
	MaxValidationWindow = 2016
	DefaultValidationWindow = 144

	MinArchiveWindow = 144
	MaxArchiveWindow = 65535
	DefaultArchiveWindow = 2016

	MinOperatorWindow = 0
	MaxOperatorWindow = 262800
	DefaultOperatorWindow = 8064
)

// Policy is the retention configuration record. It is constructed once and
// published via Publish; readers call Current to get an immutable
// snapshot, never blocking a concurrent Publish.
type Policy struct {
	Enabled          bool
	ValidationWindow int32
	ArchiveWindow    int32
	OperatorWindow   int32
}

// Default returns the policy built from the recommended default window
// values, enabled.
func Default() Policy {
	return Policy{
		Enabled:          true,
		ValidationWindow: DefaultValidationWindow,
		ArchiveWindow:    DefaultArchiveWindow,
		OperatorWindow:   DefaultOperatorWindow,
	}
}

// current holds the process-wide published policy behind an atomic
// pointer, so reads never block a concurrent Publish: an immutable
// snapshot published behind an atomic pointer swap.
var current atomic.Pointer[Policy]

func init() {
	p := Default()
	current.Store(&p)
}

// Publish replaces the process-wide policy. Safe to call concurrently with
// Current; existing readers continue to see the snapshot they already
// loaded.
func Publish(p Policy) {
	current.Store(&p)
}

// Current returns the currently published policy.
func Current() Policy {
	return *current.Load()
}

// IsPruned reports whether a payload at blockHeight should be elided from
// view-layer responses, given the process-wide policy and the chain's
// current tip height.
//
// True iff the policy is enabled, both heights are non-negative,
// tipHeight >= blockHeight, the effective window E = max(validationWindow,
// operatorWindow) is positive, and tipHeight - blockHeight >= E.
func (p Policy) IsPruned(tipHeight, blockHeight int64) bool {
	if !p.Enabled {
		return false
	}
	if tipHeight < 0 || blockHeight < 0 {
		return false
	}
	if tipHeight < blockHeight {
		return false
	}

	effective := p.ValidationWindow
	if p.OperatorWindow > effective {
		effective = p.OperatorWindow
	}
	if effective <= 0 {
		return false
	}

	return tipHeight-blockHeight >= int64(effective)
}

// IsPruned reports whether a payload at blockHeight is pruned under the
// currently published process-wide policy.
func IsPruned(tipHeight, blockHeight int64) bool {
	return Current().IsPruned(tipHeight, blockHeight)
}
