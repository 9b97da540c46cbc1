package service

import "errors"

var (
	ErrAlreadyExists      = errors.New("account already exists")
	ErrHashing            = errors.New("password hashing failed")
	ErrMissingCredentials = errors.New("email and password are required")
	ErrNotFound           = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
