package domain

import (
	"errors"
	"testing"
)

const (
	genesisAccount = "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh"
	accountOne     = "rrrrrrrrrrrrrrrrrrrrBZbvji"
)

func TestValidateAccount(t *testing.T) {
	tests := []struct {
		name    string
		addr    string
		wantErr bool
	}{
		{"genesis", genesisAccount, false},
		{"account one", accountOne, false},
		{"empty", "", true},
		{"wrong prefix", "xHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh", true},
		{"bad checksum", "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTi", true},
		{"char outside alphabet", "rHb9CJAWyB4rj91VRWn96DkukG4bwdty0h", true},
		{"too short", "rHb9CJAW", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAccount(tt.addr)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidAccount) {
					t.Errorf("expected ErrInvalidAccount, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestTxIntent_Validate(t *testing.T) {
	valid := TxIntent{
		Kind:               IntentSimplePayment,
		AmountUnits:        1_000_000,
		SourceAccount:      genesisAccount,
		DestinationAccount: accountOne,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid intent rejected: %v", err)
	}

	unknown := valid
	unknown.Kind = "flash_loan"
	if err := unknown.Validate(); !errors.Is(err, ErrInvalidIntent) {
		t.Errorf("expected ErrInvalidIntent for unknown kind, got %v", err)
	}

	zero := valid
	zero.AmountUnits = 0
	if err := zero.Validate(); !errors.Is(err, ErrInvalidIntent) {
		t.Errorf("expected ErrInvalidIntent for zero amount, got %v", err)
	}

	self := valid
	self.DestinationAccount = genesisAccount
	if err := self.Validate(); !errors.Is(err, ErrInvalidIntent) {
		t.Errorf("expected ErrInvalidIntent for self payment, got %v", err)
	}
}

func TestTxIntent_MetaInt(t *testing.T) {
	intent := TxIntent{Metadata: map[string]string{
		MetaMilestones:  "4",
		MetaTimeoutDays: "soon",
	}}

	if got := intent.MetaInt(MetaMilestones, 1); got != 4 {
		t.Errorf("milestones: expected 4, got %d", got)
	}
	if got := intent.MetaInt(MetaTimeoutDays, 30); got != 30 {
		t.Errorf("malformed value should fall back, got %d", got)
	}
	if got := intent.MetaInt(MetaIntervalSeconds, 3600); got != 3600 {
		t.Errorf("missing value should fall back, got %d", got)
	}
}
