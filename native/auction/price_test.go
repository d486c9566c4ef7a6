package auction

import (
	"math/big"
	"testing"
)

func TestCurrentPriceBoundaries(t *testing.T) {
	initPrice := big.NewInt(1_000_000_000)
	const epochStart = int64(1_000)
	const period = int64(3_600)

	if got := CurrentPrice(initPrice, epochStart, period, epochStart); got.Cmp(initPrice) != 0 {
		t.Fatalf("price at epoch start: got %s want %s", got, initPrice)
	}
	if got := CurrentPrice(initPrice, epochStart, period, epochStart+period); got.Sign() != 0 {
		t.Fatalf("price at epoch end: got %s want 0", got)
	}
	if got := CurrentPrice(initPrice, epochStart, period, epochStart+period+1_000_000); got.Sign() != 0 {
		t.Fatalf("price far after expiry: got %s want 0", got)
	}
	if got := CurrentPrice(initPrice, epochStart, period, epochStart-50); got.Cmp(initPrice) != 0 {
		t.Fatalf("price before epoch start: got %s want %s", got, initPrice)
	}

	half := CurrentPrice(initPrice, epochStart, period, epochStart+period/2)
	expected := new(big.Int).Quo(initPrice, big.NewInt(2))
	if half.Cmp(expected) != 0 {
		t.Fatalf("price at half decay: got %s want %s", half, expected)
	}
}

func TestCurrentPriceNonIncreasing(t *testing.T) {
	initPrice := big.NewInt(777_777_777)
	const epochStart = int64(0)
	const period = int64(86_400)

	previous := CurrentPrice(initPrice, epochStart, period, epochStart)
	for now := epochStart; now <= epochStart+period+600; now += 97 {
		price := CurrentPrice(initPrice, epochStart, period, now)
		if price.Cmp(previous) > 0 {
			t.Fatalf("price increased at t=%d: %s > %s", now, price, previous)
		}
		if price.Sign() < 0 {
			t.Fatalf("negative price at t=%d: %s", now, price)
		}
		if price.Cmp(initPrice) > 0 {
			t.Fatalf("price above init at t=%d: %s", now, price)
		}
		previous = price
	}
}

func TestNextInitPriceClamps(t *testing.T) {
	minInit := big.NewInt(1_000_000)
	double := new(big.Int).Mul(PricePrecision, big.NewInt(2))

	next := NextInitPrice(big.NewInt(500_000_000), double, minInit)
	if next.Cmp(big.NewInt(1_000_000_000)) != 0 {
		t.Fatalf("unexpected next init price: %s", next)
	}

	// A tiny clearing price resets to the floor.
	next = NextInitPrice(big.NewInt(3), double, minInit)
	if next.Cmp(minInit) != 0 {
		t.Fatalf("expected floor reset, got %s", next)
	}

	// A zero clearing price also resets to the floor.
	next = NextInitPrice(big.NewInt(0), double, minInit)
	if next.Cmp(minInit) != 0 {
		t.Fatalf("expected floor reset for zero price, got %s", next)
	}

	// Huge clearing prices clamp to the absolute ceiling.
	huge := new(big.Int).Lsh(big.NewInt(1), 200)
	next = NextInitPrice(huge, MaxPriceMultiplier, minInit)
	if next.Cmp(AbsMaxInitPrice) != 0 {
		t.Fatalf("expected ceiling clamp, got %s", next)
	}
}
