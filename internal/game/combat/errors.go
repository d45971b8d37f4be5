package combat

// ErrorKind classifies caller misuse reported by the combat core.
type ErrorKind string

const (
	// KindInvalidSessionState is reported when an action is submitted to a
	// missing or already-ended session.
	KindInvalidSessionState ErrorKind = "InvalidSessionState"
	// KindUnknownAction is reported for an unrecognised action tag.
	KindUnknownAction ErrorKind = "UnknownAction"
)

// Error is the typed failure returned by the combat core.
// Callers translate it into their own transport-level response.
type Error struct {
	Kind ErrorKind
	Msg  string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Msg == "" {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Msg
}

// Is matches any *Error of the same Kind, so errors.Is(err, ErrUnknownAction)
// holds regardless of the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinel values for errors.Is comparisons.
var (
	ErrInvalidSessionState = &Error{Kind: KindInvalidSessionState}
	ErrUnknownAction       = &Error{Kind: KindUnknownAction}
)

func invalidState(msg string) error {
	return &Error{Kind: KindInvalidSessionState, Msg: msg}
}
