package nftfarm

import "errors"

var (
	ErrNilState            = errors.New("nftfarm engine: state not configured")
	ErrInvalidAmount       = errors.New("nftfarm engine: amount must be positive")
	ErrInsufficientBalance = errors.New("nftfarm engine: insufficient staked balance")
	ErrInsufficientFunding = errors.New("nftfarm engine: reward pool cannot cover interest")
	ErrNotWhitelisted      = errors.New("nftfarm engine: nft type has no configured apy")
	ErrTransferRejected    = errors.New("nftfarm engine: token transfer rejected")
	ErrBatchMismatch       = errors.New("nftfarm engine: batch ids and amounts differ in length")
)
