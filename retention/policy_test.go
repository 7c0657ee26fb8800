package retention

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/defenwycke/segregated-op-return/internal/testutil"
)

func TestIsPrunedDisabledAlwaysFalse(t *testing.T) {
	p := Policy{Enabled: false, ValidationWindow: 144}
	require.False(t, p.IsPruned(1000, 0))
}

func TestIsPrunedNegativeHeightsRejected(t *testing.T) {
	p := Policy{Enabled: true, ValidationWindow: 144}
	require.False(t, p.IsPruned(-1, 0))
	require.False(t, p.IsPruned(100, -1))
}

func TestIsPrunedTipBeforeBlockRejected(t *testing.T) {
	p := Policy{Enabled: true, ValidationWindow: 144}
	require.False(t, p.IsPruned(50, 100))
}

func TestIsPrunedEffectiveWindowBoundary(t *testing.T) {
	p := Policy{Enabled: true, ValidationWindow: 144, OperatorWindow: 0}
	require.False(t, p.IsPruned(1143, 1000)) // 143 < 144
	require.True(t, p.IsPruned(1144, 1000))  // 144 >= 144
}

func TestIsPrunedOperatorWindowDominates(t *testing.T) {
	p := Policy{Enabled: true, ValidationWindow: 144, OperatorWindow: 8064}
	require.False(t, p.IsPruned(1000+8063, 1000))
	require.True(t, p.IsPruned(1000+8064, 1000))
}

func TestIsPrunedZeroEffectiveWindowNeverPrunes(t *testing.T) {
	p := Policy{Enabled: true, ValidationWindow: 0, OperatorWindow: 0}
	require.False(t, p.IsPruned(1_000_000, 0))
}

func TestPublishAndCurrentRoundTrip(t *testing.T) {
	original := Current()
	defer Publish(original)

	Publish(Policy{Enabled: true, ValidationWindow: 6, OperatorWindow: 0})
	require.True(t, Current().IsPruned(1006, 1000))
	require.False(t, Current().IsPruned(1005, 1000))
}

func TestDefaultPolicyValues(t *testing.T) {
	d := Default()
	want := Policy{
		Enabled:          true,
		ValidationWindow: int32(DefaultValidationWindow),
		ArchiveWindow:    int32(DefaultArchiveWindow),
		OperatorWindow:   int32(DefaultOperatorWindow),
	}
	testutil.RequireDeepEqual(t, want, d, "default policy")
}
