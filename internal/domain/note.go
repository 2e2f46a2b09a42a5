package domain

type NoteKind string

const (
	NoteKindNote      NoteKind = "note"
	NoteKindQuote     NoteKind = "quote"
	NoteKindHighlight NoteKind = "highlight"
)

func (k NoteKind) Valid() bool {
	switch k {
	case NoteKindNote, NoteKindQuote, NoteKindHighlight:
		return true
	}
	return false
}

// BookNote is a free-standing note, quote, or highlight attached to a
// book. SessionID references the session active when the note was
// written, when there was one; nothing else couples notes to sessions.
type BookNote struct {
	Record
	BookID    string   `json:"bookId"`
	SessionID string   `json:"sessionId,omitempty"`
	Kind      NoteKind `json:"kind"`
	Content   string   `json:"content"`
	Page      *int     `json:"page,omitempty"`
}
