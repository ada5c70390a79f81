package wallet

import "errors"

// ErrInsufficientFunds indica saldo insuficiente para o débito do stake.
var ErrInsufficientFunds = errors.New("insufficient funds")
