package rig

import (
	"math/big"

	"rignet/crypto"
)

// State is the mutable epoch record for a rig. It is replaced wholesale by a
// successful mine call and never deleted; epochs repeat indefinitely.
type State struct {
	// EpochID counts completed transfers, starting at 0 for the launch
	// epoch.
	EpochID uint64
	// InitPrice is the opening auction price of the current epoch.
	InitPrice *big.Int
	// EpochStart is the unix time the current epoch opened.
	EpochStart int64
	// Rate is the emission rate frozen for the current epoch.
	Rate *big.Int
	// Holder is the address accruing emission for the current epoch.
	Holder crypto.Address
	// Metadata is the opaque string supplied by the holder when they took
	// over.
	Metadata string
}

// Clone returns a deep copy of the epoch state.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	clone := &State{
		EpochID:    s.EpochID,
		EpochStart: s.EpochStart,
		Holder:     s.Holder,
		Metadata:   s.Metadata,
	}
	if s.InitPrice != nil {
		clone.InitPrice = new(big.Int).Set(s.InitPrice)
	}
	if s.Rate != nil {
		clone.Rate = new(big.Int).Set(s.Rate)
	}
	return clone
}
