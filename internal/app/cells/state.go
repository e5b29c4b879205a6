// internal/app/cells/state.go
package cells

// Collection is the uniform state shape of the roster and resource cells:
// the items, a loading flag, and the last human-readable error. Loading
// resets to false on both success and failure; on failure the previous
// items are kept (a failed refresh never clears good data — only the
// upstream-driven cascade resets do that).
type Collection[T any] struct {
	Items   []T
	Loading bool
	Error   string
}

// emptyCollection is the initial (and reset) state of a scoped cell.
func emptyCollection[T any]() Collection[T] {
	return Collection[T]{Items: []T{}}
}
