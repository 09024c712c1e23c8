package sentinel

import "testing"

// stub replaces a binding's resolved original for the duration of a test,
// so wrappers can be exercised against recording fakes instead of real
// syscalls.
func stub[T any](t *testing.T, b *binding[T], impl T) {
	t.Helper()
	prev := b.fn.Load()
	b.fn.Store(&impl)
	t.Cleanup(func() { b.fn.Store(prev) })
}
