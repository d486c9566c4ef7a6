package rig

import (
	"math/big"
	"testing"
)

const day = int64(24 * 60 * 60)

func TestEmissionRateHalvesAtExactBoundaries(t *testing.T) {
	// initialRate=8, tailRate=0.5 expressed in half-units so the tail stays
	// integral: 16 half-units halving down to 1 half-unit.
	initialRate := big.NewInt(16)
	tailRate := big.NewInt(1)

	cases := []struct {
		elapsedDays int64
		want        int64
	}{
		{0, 16},
		{1, 8},
		{2, 4},
		{3, 2},
		{4, 1},
		{5, 1},
		{400, 1},
	}
	for _, tc := range cases {
		now := tc.elapsedDays * day
		got := EmissionRate(initialRate, tailRate, day, 0, now)
		if got.Cmp(big.NewInt(tc.want)) != 0 {
			t.Fatalf("rate after %d days: got %s want %d", tc.elapsedDays, got, tc.want)
		}
	}

	// Just before a boundary the previous rate still applies.
	got := EmissionRate(initialRate, tailRate, day, 0, day-1)
	if got.Cmp(big.NewInt(16)) != 0 {
		t.Fatalf("rate just before first halving: got %s want 16", got)
	}
}

func TestEmissionRateBeforeStartTime(t *testing.T) {
	initialRate := big.NewInt(1_000)
	got := EmissionRate(initialRate, big.NewInt(10), day, 5_000, 4_000)
	if got.Cmp(initialRate) != 0 {
		t.Fatalf("rate before start: got %s want %s", got, initialRate)
	}
	got = EmissionRate(initialRate, big.NewInt(10), day, 5_000, 5_000)
	if got.Cmp(initialRate) != 0 {
		t.Fatalf("rate at start: got %s want %s", got, initialRate)
	}
}

func TestEmissionRateSaturatesBeyondBitWidth(t *testing.T) {
	initialRate := new(big.Int).Exp(big.NewInt(10), big.NewInt(24), nil)
	tailRate := big.NewInt(7)

	// 10^24 fits in 80 bits; hundreds of halvings must saturate to zero
	// before the tail clamp, never wrap.
	now := 500 * day
	got := EmissionRate(initialRate, tailRate, day, 0, now)
	if got.Cmp(tailRate) != 0 {
		t.Fatalf("saturated rate: got %s want %s", got, tailRate)
	}
}

func TestEmissionRateNeverOutsideBounds(t *testing.T) {
	initialRate := big.NewInt(1 << 20)
	tailRate := big.NewInt(3)
	for days := int64(0); days < 64; days++ {
		got := EmissionRate(initialRate, tailRate, day, 0, days*day)
		if got.Cmp(initialRate) > 0 {
			t.Fatalf("rate above initial after %d days: %s", days, got)
		}
		if got.Cmp(tailRate) < 0 {
			t.Fatalf("rate below tail after %d days: %s", days, got)
		}
	}
}
