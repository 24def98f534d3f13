package util

import "fmt"

// LabelAllocator hands out deterministic, uniquely-suffixed assembly
// labels for compiler-internal data the codegen backend needs a name for
// but the IR doesn't already number, such as interned string constants.
// This backend runs single-threaded, so a plain counter suffices.
type LabelAllocator struct {
	counts map[string]int
}

// NewLabelAllocator returns a ready-to-use allocator.
func NewLabelAllocator() *LabelAllocator {
	return &LabelAllocator{counts: make(map[string]int)}
}

// Next returns the next label for prefix, e.g. Next("Lstr") yields
// "Lstr_000", "Lstr_001", ...
func (a *LabelAllocator) Next(prefix string) string {
	n := a.counts[prefix]
	a.counts[prefix] = n + 1
	return fmt.Sprintf("%s_%03d", prefix, n)
}
