package exception

import "github.com/yanun0323/errors"

var (
	ErrInvalidPrice      = errors.New("venue: invalid price")
	ErrUnknownSymbol     = errors.New("venue: unknown symbol")
	ErrSubscribeRejected = errors.New("venue: subscribe rejected")
	ErrConnectionClose   = errors.New("venue: connection closed")
)
