package keys

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// Hardhat's first default development account.
const (
	devKey     = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	devAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

func TestDeriveAccount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "without prefix", input: devKey},
		{name: "with prefix", input: "0x" + devKey},
		{name: "upper prefix", input: "0X" + devKey},
		{name: "surrounding whitespace", input: "  " + devKey + "\n"},
		{name: "empty", input: "", wantErr: true},
		{name: "too short", input: "0x1234", wantErr: true},
		{name: "odd length", input: devKey[:63], wantErr: true},
		{name: "not hex", input: strings.Repeat("zz", 32), wantErr: true},
		{name: "zero scalar", input: strings.Repeat("00", 32), wantErr: true},
		{name: "above curve order", input: strings.Repeat("ff", 32), wantErr: true},
		{name: "too long", input: devKey + "00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acct, err := DeriveAccount(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidKey) {
					t.Fatalf("DeriveAccount(%q) error = %v, want ErrInvalidKey", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DeriveAccount(%q) unexpected error: %v", tt.input, err)
			}
			if got := acct.Address().Hex(); got != devAddress {
				t.Errorf("Address() = %s, want %s", got, devAddress)
			}
			if acct.PrivateKey() == nil {
				t.Error("PrivateKey() returned nil")
			}
		})
	}
}

func TestDeriveAccountIsDeterministic(t *testing.T) {
	a, err := DeriveAccount(devKey)
	if err != nil {
		t.Fatalf("DeriveAccount failed: %v", err)
	}
	b, err := DeriveAccount("0x" + devKey)
	if err != nil {
		t.Fatalf("DeriveAccount failed: %v", err)
	}
	if a.Address() != b.Address() {
		t.Errorf("same key produced %s and %s", a.Address().Hex(), b.Address().Hex())
	}
}

func TestAccountFormattingHidesSecrets(t *testing.T) {
	acct, err := DeriveAccount(devKey)
	if err != nil {
		t.Fatalf("DeriveAccount failed: %v", err)
	}

	for _, verb := range []string{"%v", "%s", "%+v", "%#v"} {
		out := fmt.Sprintf(verb, acct)
		if strings.Contains(strings.ToLower(out), strings.ToLower(devAddress[2:])) {
			t.Errorf("%s leaked the address: %s", verb, out)
		}
		if strings.Contains(out, devKey) {
			t.Errorf("%s leaked the key: %s", verb, out)
		}
	}
}

func TestDeriveAccountErrorDoesNotEchoKey(t *testing.T) {
	bad := strings.Repeat("ff", 32)
	_, err := DeriveAccount(bad)
	if err == nil {
		t.Fatal("expected error")
	}
	if strings.Contains(err.Error(), bad) {
		t.Errorf("error echoes the key: %v", err)
	}
}
