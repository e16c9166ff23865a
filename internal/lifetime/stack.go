// Package lifetime tracks GPU objects in the order they were created so they
// can be released in exactly the opposite order.
package lifetime

import "log/slog"

type entry struct {
	name    string
	release func()
}

// Stack is a LIFO of release callbacks. The zero value is ready to use.
type Stack struct {
	entries []entry
	logger  *slog.Logger
}

func NewStack(logger *slog.Logger) *Stack {
	return &Stack{logger: logger}
}

// Push registers release to run when the stack is unwound. A nil release is
// ignored.
func (s *Stack) Push(name string, release func()) {
	if release == nil {
		return
	}
	s.entries = append(s.entries, entry{name: name, release: release})
}

func (s *Stack) Len() int {
	return len(s.entries)
}

// Release runs every registered callback, newest first, and empties the
// stack. Calling it again is a no-op.
func (s *Stack) Release() {
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if s.logger != nil {
			s.logger.Debug("releasing", slog.String("object", e.name))
		}
		e.release()
	}
	s.entries = nil
}
