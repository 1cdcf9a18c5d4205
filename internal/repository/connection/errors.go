package connection

import "errors"

var (
	ErrAlreadyExists = errors.New("connection already exists")
	ErrNotFound      = errors.New("connection not found")
	ErrAlreadyInRoom = errors.New("connection is already in a room")
	ErrNotInRoom     = errors.New("connection is not in a room")
)
