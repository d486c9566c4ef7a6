package rig

import "math/big"

var basisPoints = big.NewInt(10_000)

// Wire-level fee shares in basis points. The treasury's nominal 1500 bps is
// never computed directly: the treasury takes the remainder, absorbing
// rounding dust and any disabled team/protocol share.
const (
	holderShareBps   = 8_000
	teamShareBps     = 400
	protocolShareBps = 100
)

// FeeSplit carries the four disbursements of a single mine payment. The
// amounts always sum exactly to the payment they were derived from.
type FeeSplit struct {
	PreviousHolder *big.Int
	Treasury       *big.Int
	Team           *big.Int
	Protocol       *big.Int
}

// SplitPayment divides payment between the outgoing holder, the treasury, and
// the optional team and protocol recipients. Disabled shares fold into the
// treasury along with rounding dust.
func SplitPayment(payment *big.Int, teamEnabled, protocolEnabled bool) FeeSplit {
	split := FeeSplit{
		PreviousHolder: big.NewInt(0),
		Treasury:       big.NewInt(0),
		Team:           big.NewInt(0),
		Protocol:       big.NewInt(0),
	}
	if payment == nil || payment.Sign() <= 0 {
		return split
	}
	split.PreviousHolder = shareOf(payment, holderShareBps)
	if teamEnabled {
		split.Team = shareOf(payment, teamShareBps)
	}
	if protocolEnabled {
		split.Protocol = shareOf(payment, protocolShareBps)
	}
	remainder := new(big.Int).Sub(payment, split.PreviousHolder)
	remainder.Sub(remainder, split.Team)
	remainder.Sub(remainder, split.Protocol)
	split.Treasury = remainder
	return split
}

func shareOf(payment *big.Int, bps int64) *big.Int {
	share := new(big.Int).Mul(payment, big.NewInt(bps))
	return share.Quo(share, basisPoints)
}

// Total returns the sum of the four disbursements.
func (s FeeSplit) Total() *big.Int {
	total := new(big.Int).Add(s.PreviousHolder, s.Treasury)
	total.Add(total, s.Team)
	return total.Add(total, s.Protocol)
}
