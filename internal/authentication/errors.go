package authentication

// Error is an authentication failure. Detail is returned to the client as is.
type Error struct {
	Detail string
}

func (e *Error) Error() string { return e.Detail }

var (
	ErrNoCredentials    = &Error{Detail: "Invalid token header. No credentials provided."}
	ErrTokenHasSpaces   = &Error{Detail: "Invalid token header. Token string should not contain spaces."}
	ErrTokenInvalidUTF8 = &Error{Detail: "Invalid token header. Token string should not contain invalid characters."}
	ErrInvalidToken     = &Error{Detail: "Invalid token."}
	ErrUserInactive     = &Error{Detail: "User inactive or deleted."}
	ErrMissingHeader    = &Error{Detail: "Invalid or missing token header."}
	ErrNotStaff         = &Error{Detail: "Not allowed. Not a staff token."}
)
