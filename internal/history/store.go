// Package history is a linear undo/redo log of full snapshots.
package history

// Store holds an ordered list of snapshots and a cursor into it. Values are
// cloned on the way in and out so no snapshot can be altered through a
// reference held by a caller.
type Store[T any] struct {
	snapshots []T
	cursor    int
	clone     func(T) T
}

// New creates a store whose only snapshot is initial.
func New[T any](initial T, clone func(T) T) *Store[T] {
	return &Store[T]{
		snapshots: []T{clone(initial)},
		clone:     clone,
	}
}

// Commit discards every snapshot after the cursor and appends v as the new
// current snapshot. It is one undo step.
func (s *Store[T]) Commit(v T) {
	s.snapshots = append(s.snapshots[:s.cursor+1], s.clone(v))
	s.cursor = len(s.snapshots) - 1
}

// Overwrite replaces the current snapshot in place. Used while an
// interaction is still in progress so it stays a single undo step.
func (s *Store[T]) Overwrite(v T) {
	s.snapshots[s.cursor] = s.clone(v)
}

// Undo moves the cursor back one snapshot. It reports false at the start.
func (s *Store[T]) Undo() bool {
	if s.cursor == 0 {
		return false
	}
	s.cursor--
	return true
}

// Redo moves the cursor forward one snapshot. It reports false at the end.
func (s *Store[T]) Redo() bool {
	if s.cursor == len(s.snapshots)-1 {
		return false
	}
	s.cursor++
	return true
}

func (s *Store[T]) Current() T {
	return s.clone(s.snapshots[s.cursor])
}

func (s *Store[T]) Index() int { return s.cursor }

func (s *Store[T]) Len() int { return len(s.snapshots) }

func (s *Store[T]) CanUndo() bool { return s.cursor > 0 }

func (s *Store[T]) CanRedo() bool { return s.cursor < len(s.snapshots)-1 }
