package stack

// Stack is a last-in-first-out sequence backed by a slice.
type Stack[T any] struct {
	a []T
}

// NewStack creates a new stack instance holding elm, last element on top
func NewStack[T any](elm ...T) *Stack[T] {
	stack := Stack[T]{
		a: make([]T, 0, len(elm)),
	}

	stack.a = append(stack.a, elm...)

	return &stack
}

// Push adds an element to the top of the stack
func (s *Stack[T]) Push(elm T) {
	s.a = append(s.a, elm)
}

// Pop removes and returns the top element of the stack.
// ok is false when the stack is empty.
func (s *Stack[T]) Pop() (elm T, ok bool) {
	if len(s.a) < 1 {
		return elm, false
	}

	l := len(s.a) - 1
	elm = s.a[l]
	s.a = s.a[:l]

	return elm, true
}

// Peek returns the top element of the stack without removing it
func (s *Stack[T]) Peek() (elm T, ok bool) {
	return s.PeekAt(0)
}

// PeekAt returns the element depth positions below the top, 0 being the top
func (s *Stack[T]) PeekAt(depth int) (elm T, ok bool) {
	if depth < 0 || depth >= len(s.a) {
		return elm, false
	}

	return s.a[len(s.a)-1-depth], true
}

// Get the size of the stack
func (s *Stack[T]) Size() int {
	return len(s.a)
}

// Clear drops every element, keeping the allocated capacity
func (s *Stack[T]) Clear() {
	clear(s.a)
	s.a = s.a[:0]
}

// Array returns a copy of the stack contents, bottom first
func (s *Stack[T]) Array() []T {
	return append([]T(nil), s.a...)
}
