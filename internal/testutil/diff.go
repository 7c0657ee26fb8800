// Package testutil holds small comparison helpers shared by this module's
// test suites. It exists because testify's default %v formatting truncates
// the nested byte slices and pointers common to wire/storage structures,
// making a failing assertion on a whole struct hard to read.
package testutil

import (
	"reflect"
	"testing"

	"github.com/davecgh/go-spew/spew"
)

// RequireDeepEqual compares want and got with reflect.DeepEqual and, on
// failure, dumps both values in full via spew.Sdump rather than relying on
// a single-line %v, so the first differing field is actually visible in
// the test output.
func RequireDeepEqual(t *testing.T, want, got interface{}, label string) {
	t.Helper()
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("%s mismatch:\n--- want ---\n%s--- got ---\n%s", label, spew.Sdump(want), spew.Sdump(got))
	}
}
