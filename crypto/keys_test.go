package crypto

import "testing"

func TestAddressEncodeDecodeRoundTrip(t *testing.T) {
	key, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	addr := key.PubKey().Address()
	if addr.Prefix() != RigPrefix {
		t.Fatalf("prefix: got %s want %s", addr.Prefix(), RigPrefix)
	}

	decoded, err := DecodeAddress(addr.String())
	if err != nil {
		t.Fatalf("decode address: %v", err)
	}
	if !decoded.Equal(addr) {
		t.Fatalf("round trip mismatch: %s vs %s", decoded, addr)
	}

	if _, err := DecodeAddress("rig1notbech32"); err == nil {
		t.Fatalf("expected decode failure")
	}
}

func TestAddressIsZero(t *testing.T) {
	var empty Address
	if !empty.IsZero() {
		t.Fatalf("unset address must be zero")
	}
	if !NewAddress(RigPrefix, make([]byte, 20)).IsZero() {
		t.Fatalf("all-zero bytes must be zero")
	}
	raw := make([]byte, 20)
	raw[19] = 1
	if NewAddress(RigPrefix, raw).IsZero() {
		t.Fatalf("live address must not be zero")
	}
}

func TestPrivateKeyBytesRoundTrip(t *testing.T) {
	key, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	restored, err := PrivateKeyFromBytes(key.Bytes())
	if err != nil {
		t.Fatalf("restore key: %v", err)
	}
	if !restored.PubKey().Address().Equal(key.PubKey().Address()) {
		t.Fatalf("restored key derives a different address")
	}
}
