package rig

import (
	"math/big"
	"math/rand"
	"testing"
)

func TestSplitPaymentShares(t *testing.T) {
	payment := big.NewInt(10_000)
	split := SplitPayment(payment, true, true)

	if split.PreviousHolder.Cmp(big.NewInt(8_000)) != 0 {
		t.Fatalf("previous holder share: got %s want 8000", split.PreviousHolder)
	}
	if split.Treasury.Cmp(big.NewInt(1_500)) != 0 {
		t.Fatalf("treasury share: got %s want 1500", split.Treasury)
	}
	if split.Team.Cmp(big.NewInt(400)) != 0 {
		t.Fatalf("team share: got %s want 400", split.Team)
	}
	if split.Protocol.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("protocol share: got %s want 100", split.Protocol)
	}
}

func TestSplitPaymentDisabledSharesFoldIntoTreasury(t *testing.T) {
	payment := big.NewInt(10_000)

	split := SplitPayment(payment, false, false)
	if split.Team.Sign() != 0 || split.Protocol.Sign() != 0 {
		t.Fatalf("disabled shares must be zero: team=%s protocol=%s", split.Team, split.Protocol)
	}
	if split.Treasury.Cmp(big.NewInt(2_000)) != 0 {
		t.Fatalf("treasury absorbs disabled shares: got %s want 2000", split.Treasury)
	}

	split = SplitPayment(payment, true, false)
	if split.Treasury.Cmp(big.NewInt(1_600)) != 0 {
		t.Fatalf("treasury absorbs protocol share: got %s want 1600", split.Treasury)
	}
}

func TestSplitPaymentSumsExactly(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	flags := []struct{ team, protocol bool }{
		{false, false}, {true, false}, {false, true}, {true, true},
	}
	for i := 0; i < 2_000; i++ {
		payment := new(big.Int).Rand(rng, new(big.Int).Lsh(big.NewInt(1), 128))
		for _, f := range flags {
			split := SplitPayment(payment, f.team, f.protocol)
			if split.Total().Cmp(payment) != 0 {
				t.Fatalf("split of %s (team=%v protocol=%v) sums to %s", payment, f.team, f.protocol, split.Total())
			}
			for _, share := range []*big.Int{split.PreviousHolder, split.Treasury, split.Team, split.Protocol} {
				if share.Sign() < 0 {
					t.Fatalf("negative share for payment %s", payment)
				}
			}
		}
	}
}

func TestSplitPaymentZeroAndDust(t *testing.T) {
	split := SplitPayment(big.NewInt(0), true, true)
	if split.Total().Sign() != 0 {
		t.Fatalf("zero payment must split to zero, got %s", split.Total())
	}

	// Payments too small for any bps share leave everything in the treasury.
	split = SplitPayment(big.NewInt(1), true, true)
	if split.PreviousHolder.Sign() != 0 || split.Team.Sign() != 0 || split.Protocol.Sign() != 0 {
		t.Fatalf("dust payment leaked shares: %+v", split)
	}
	if split.Treasury.Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("dust must accrue to treasury, got %s", split.Treasury)
	}
}
