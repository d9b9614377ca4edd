package engine

import "github.com/pkg/errors"

var (
	ErrInvalidPlayer  = errors.New("invalid player")
	ErrMalformedBoard = errors.New("malformed board")
	ErrInvalidColumn  = errors.New("invalid column")
	ErrColumnFull     = errors.New("column is full")
	ErrNoMoves        = errors.New("no legal moves")
)
