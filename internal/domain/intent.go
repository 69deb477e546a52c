package domain

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"strconv"

	"github.com/mr-tron/base58"
)

// IntentKind names the kind of payment a caller wants to plan.
type IntentKind string

const (
	IntentSimplePayment   IntentKind = "simple_payment"
	IntentEscrowMilestone IntentKind = "escrow_milestone"
	IntentStreamedSalary  IntentKind = "streamed_salary"
)

// IsValid checks if the kind is one of the known intents.
func (k IntentKind) IsValid() bool {
	return k == IntentSimplePayment || k == IntentEscrowMilestone || k == IntentStreamedSalary
}

// Metadata keys understood by the planner.
const (
	MetaMilestones      = "milestones"
	MetaTimeoutDays     = "timeout_days"
	MetaIntervalSeconds = "interval_seconds"
)

// ErrInvalidIntent is returned by TxIntent.Validate.
var ErrInvalidIntent = errors.New("invalid transaction intent")

// ErrInvalidAccount is returned when an address is not a valid XRPL classic address.
var ErrInvalidAccount = errors.New("invalid account address")

// TxIntent is a caller's request to plan a payment. AmountUnits is in drops.
type TxIntent struct {
	Kind               IntentKind        `json:"kind"`
	AmountUnits        int64             `json:"amount_units"`
	SourceAccount      string            `json:"source_account"`
	DestinationAccount string            `json:"destination_account"`
	Metadata           map[string]string `json:"metadata"`
}

// Validate checks required fields and account encodings.
func (i TxIntent) Validate() error {
	if !i.Kind.IsValid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidIntent, i.Kind)
	}
	if i.AmountUnits <= 0 {
		return fmt.Errorf("%w: amount_units must be positive", ErrInvalidIntent)
	}
	if err := ValidateAccount(i.SourceAccount); err != nil {
		return fmt.Errorf("%w: source: %v", ErrInvalidIntent, err)
	}
	if err := ValidateAccount(i.DestinationAccount); err != nil {
		return fmt.Errorf("%w: destination: %v", ErrInvalidIntent, err)
	}
	if i.SourceAccount == i.DestinationAccount {
		return fmt.Errorf("%w: source equals destination", ErrInvalidIntent)
	}
	return nil
}

// MetaInt reads an integer metadata value, returning def when absent or malformed.
func (i TxIntent) MetaInt(key string, def int) int {
	raw, ok := i.Metadata[key]
	if !ok {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// rippleAlphabet is the base58 dictionary used by XRPL addresses.
var rippleAlphabet = base58.NewAlphabet("rpshnaf39wBUDNEGHJKLM4PQRST7VWXYZ2bcdeCg65jkm8oFqi1tuvAxyz")

const (
	accountIDVersion = 0x00
	accountIDLen     = 20
	checksumLen      = 4
)

// ValidateAccount checks that addr is a classic address: ripple base58,
// version byte 0x00, 20-byte account id and a double-SHA256 checksum.
func ValidateAccount(addr string) error {
	if addr == "" {
		return fmt.Errorf("%w: empty", ErrInvalidAccount)
	}
	if addr[0] != 'r' {
		return fmt.Errorf("%w: %q must start with r", ErrInvalidAccount, addr)
	}
	raw, err := base58.DecodeAlphabet(addr, rippleAlphabet)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAccount, err)
	}
	if len(raw) != 1+accountIDLen+checksumLen {
		return fmt.Errorf("%w: decoded length %d", ErrInvalidAccount, len(raw))
	}
	if raw[0] != accountIDVersion {
		return fmt.Errorf("%w: version byte %#x", ErrInvalidAccount, raw[0])
	}
	body := raw[:1+accountIDLen]
	first := sha256.Sum256(body)
	second := sha256.Sum256(first[:])
	for i := 0; i < checksumLen; i++ {
		if raw[1+accountIDLen+i] != second[i] {
			return fmt.Errorf("%w: checksum mismatch", ErrInvalidAccount)
		}
	}
	return nil
}
