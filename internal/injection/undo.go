package injection

// UndoStack remembers the verbatim text of injected utterances, most recent
// last. It is not safe for concurrent use; the session controller owns it.
type UndoStack struct {
	entries []string
}

func NewUndoStack() *UndoStack {
	return &UndoStack{}
}

// Push records text exactly as it was typed, before any normalization.
func (s *UndoStack) Push(text string) {
	s.entries = append(s.entries, text)
}

// Pop removes and returns the most recent entry.
func (s *UndoStack) Pop() (string, bool) {
	if len(s.entries) == 0 {
		return "", false
	}
	last := s.entries[len(s.entries)-1]
	s.entries[len(s.entries)-1] = ""
	s.entries = s.entries[:len(s.entries)-1]
	return last, true
}

func (s *UndoStack) Len() int {
	return len(s.entries)
}

func (s *UndoStack) Clear() {
	s.entries = nil
}
