package events

import (
	"math/big"

	"rignet/core/types"
	"rignet/crypto"
)

const (
	TypeRigTransferred = "rig.transferred"
	TypeRigMinted      = "rig.minted"
	TypeRigFeePaid     = "rig.fee_paid"
)

// Fee recipient roles attached to rig.fee_paid events.
const (
	FeeRolePreviousHolder = "previousHolder"
	FeeRoleTreasury       = "treasury"
	FeeRoleTeam           = "team"
	FeeRoleProtocol       = "protocol"
)

// RigTransferred is emitted once per successful mine call, after the epoch has
// rolled over to the new holder.
type RigTransferred struct {
	Actor     [20]byte
	NewHolder [20]byte
	Price     *big.Int
	EpochID   uint64
	Metadata  string
}

func (RigTransferred) EventType() string { return TypeRigTransferred }

func (e RigTransferred) Event() *types.Event {
	return &types.Event{
		Type: TypeRigTransferred,
		Attributes: map[string]string{
			"actor":     crypto.NewAddress(crypto.RigPrefix, e.Actor[:]).String(),
			"newHolder": crypto.NewAddress(crypto.RigPrefix, e.NewHolder[:]).String(),
			"price":     formatAmount(e.Price),
			"epochId":   uintToString(e.EpochID),
			"metadata":  e.Metadata,
		},
	}
}

// RigMinted records the emission credited to the outgoing holder when they are
// displaced.
type RigMinted struct {
	Holder  [20]byte
	Amount  *big.Int
	EpochID uint64
}

func (RigMinted) EventType() string { return TypeRigMinted }

func (e RigMinted) Event() *types.Event {
	return &types.Event{
		Type: TypeRigMinted,
		Attributes: map[string]string{
			"holder":  crypto.NewAddress(crypto.RigPrefix, e.Holder[:]).String(),
			"amount":  formatAmount(e.Amount),
			"epochId": uintToString(e.EpochID),
		},
	}
}

// RigFeePaid is emitted once per non-zero disbursement of the mine payment.
type RigFeePaid struct {
	Role      string
	Recipient [20]byte
	Amount    *big.Int
	EpochID   uint64
}

func (RigFeePaid) EventType() string { return TypeRigFeePaid }

func (e RigFeePaid) Event() *types.Event {
	return &types.Event{
		Type: TypeRigFeePaid,
		Attributes: map[string]string{
			"role":      e.Role,
			"recipient": crypto.NewAddress(crypto.RigPrefix, e.Recipient[:]).String(),
			"amount":    formatAmount(e.Amount),
			"epochId":   uintToString(e.EpochID),
		},
	}
}
