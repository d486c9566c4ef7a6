package common

import (
	"errors"

	"rignet/crypto"
)

var (
	ErrUnauthorized = errors.New("owner capability: caller does not hold the capability")
	ErrZeroHolder   = errors.New("owner capability: holder must not be the zero address")
)

// Capability is a single-principal ownership handle guarding mutable engine
// configuration. The holder may exercise guarded operations and hand the
// capability to a successor; there is no multi-sig or voting layer.
type Capability struct {
	holder crypto.Address
}

// NewCapability creates a capability held by the provided principal.
func NewCapability(holder crypto.Address) (*Capability, error) {
	if holder.IsZero() {
		return nil, ErrZeroHolder
	}
	return &Capability{holder: holder}, nil
}

// Holder returns the current principal.
func (c *Capability) Holder() crypto.Address {
	if c == nil {
		return crypto.Address{}
	}
	return c.holder
}

// Authorize returns ErrUnauthorized unless the caller is the current holder.
func (c *Capability) Authorize(caller crypto.Address) error {
	if c == nil || !c.holder.Equal(caller) {
		return ErrUnauthorized
	}
	return nil
}

// Transfer hands the capability to a successor. Only the current holder may
// transfer, and the successor must be a live address.
func (c *Capability) Transfer(caller, next crypto.Address) error {
	if err := c.Authorize(caller); err != nil {
		return err
	}
	if next.IsZero() {
		return ErrZeroHolder
	}
	c.holder = next
	return nil
}
