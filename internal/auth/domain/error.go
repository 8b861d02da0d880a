package domain

import "errors"

const (
	UsernameMaxLength      = 30
	UsernameInvalidMessage = "Usernames must be between 2 and 30 characters in length, and may only consist of lowercase letters, numbers, and underscores, where the first character must be a letter."
)

var (
	ErrUserNotFound     = errors.New("user_not_found")
	ErrUserExists       = errors.New("user_exists")
	ErrTokenNotFound    = errors.New("token_not_found")
	ErrInvalidUsername  = errors.New("invalid_username")
	ErrInvalidPassword  = errors.New("invalid_password")
	ErrInvalidEmail     = errors.New("invalid_email")
	ErrInvalidFirstName = errors.New("invalid_first_name")
	ErrInvalidLastName  = errors.New("invalid_last_name")
)
