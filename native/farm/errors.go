package farm

import "errors"

var (
	ErrNilState            = errors.New("farm engine: state not configured")
	ErrInvalidAmount       = errors.New("farm engine: amount must be positive")
	ErrUnknownStake        = errors.New("farm engine: unknown stake id")
	ErrInsufficientBalance = errors.New("farm engine: insufficient staked balance")
	ErrInsufficientFunding = errors.New("farm engine: reward pool cannot cover interest")
	ErrTransferRejected    = errors.New("farm engine: token transfer rejected")
)
