package tally

import "github.com/pkg/errors"

var (
	ErrBadRange            = errors.New("range start is after range end")
	ErrInsufficientBalance = errors.New("balance is insufficient")
	ErrSupplyOverflow      = errors.New("total supply would overflow")
)
