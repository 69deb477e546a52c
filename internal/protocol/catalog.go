// Package protocol selects and routes XRPL payment protocols for an intent.
package protocol

import (
	"errors"
	"fmt"
	"sort"

	"governor-xrpl-lab/internal/domain"
)

// ErrUnknownProtocol is returned by Lookup for names not in the catalog.
var ErrUnknownProtocol = errors.New("unknown protocol")

// Protocol names.
const (
	SimplePaymentV1   = "simple_payment_v1"
	SimplePaymentV2   = "simple_payment_v2"
	StreamPayV1       = "stream_pay_v1"
	EscrowMilestoneV1 = "escrow_milestone_v1"
)

// Spec describes one catalog protocol.
type Spec struct {
	Name   string
	Kind   domain.ProtocolKind
	Risk   int
	Tags   []string
	TxType string // XRPL TransactionType used by the offline template
	Steps  []domain.PlanStep
}

// Catalog is an immutable set of protocol specs.
type Catalog struct {
	byName map[string]Spec
	order  []string // by risk, then name
}

// NewCatalog builds a catalog from specs. Later duplicates replace earlier ones.
func NewCatalog(specs ...Spec) *Catalog {
	c := &Catalog{byName: make(map[string]Spec, len(specs))}
	for _, s := range specs {
		s.Risk = domain.ClampRisk(s.Risk)
		c.byName[s.Name] = s
	}
	for name := range c.byName {
		c.order = append(c.order, name)
	}
	sort.Slice(c.order, func(i, j int) bool {
		a, b := c.byName[c.order[i]], c.byName[c.order[j]]
		if a.Risk != b.Risk {
			return a.Risk < b.Risk
		}
		return a.Name < b.Name
	})
	return c
}

// DefaultCatalog returns the built-in protocol catalog.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		Spec{
			Name: SimplePaymentV1, Kind: domain.ProtocolPayment, Risk: 1,
			Tags: []string{"baseline", "cheap"}, TxType: "Payment",
			Steps: []domain.PlanStep{
				{Name: "prepare_payment", Description: "Build a direct XRP Payment from source to destination."},
				{Name: "apply_fee", Description: "Set Fee to the quoted final fee in drops."},
			},
		},
		Spec{
			Name: SimplePaymentV2, Kind: domain.ProtocolPayment, Risk: 2,
			Tags: []string{"dynamic_fee", "safer"}, TxType: "Payment",
			Steps: []domain.PlanStep{
				{Name: "prepare_payment", Description: "Build a direct XRP Payment from source to destination."},
				{Name: "apply_dynamic_fee", Description: "Use the safe fee and set LastLedgerSequence a few ledgers ahead."},
				{Name: "verify_delivery", Description: "Confirm delivered_amount on a validated ledger."},
			},
		},
		Spec{
			Name: StreamPayV1, Kind: domain.ProtocolStream, Risk: 3,
			Tags: []string{"salary", "subscription"}, TxType: "PaymentChannelCreate",
			Steps: []domain.PlanStep{
				{Name: "open_channel", Description: "Fund a payment channel for the full amount."},
				{Name: "issue_claims", Description: "Sign off-ledger claims at each interval."},
				{Name: "close_channel", Description: "Redeem the final claim and close the channel."},
			},
		},
		Spec{
			Name: EscrowMilestoneV1, Kind: domain.ProtocolEscrow, Risk: 3,
			Tags: []string{"milestone", "project"}, TxType: "EscrowCreate",
			Steps: []domain.PlanStep{
				{Name: "create_escrows", Description: "Create one time-locked escrow per milestone."},
				{Name: "finish_escrows", Description: "Finish each escrow once its milestone is met."},
				{Name: "cancel_expired", Description: "Cancel escrows that pass their timeout."},
			},
		},
	)
}

// Lookup returns the spec for name.
func (c *Catalog) Lookup(name string) (Spec, error) {
	s, ok := c.byName[name]
	if !ok {
		return Spec{}, fmt.Errorf("%w: %q", ErrUnknownProtocol, name)
	}
	return s, nil
}

// MustLookup is Lookup that panics on unknown names.
func (c *Catalog) MustLookup(name string) Spec {
	s, err := c.Lookup(name)
	if err != nil {
		panic(err)
	}
	return s
}

// ByKind returns the specs of a kind, lowest risk first.
func (c *Catalog) ByKind(kind domain.ProtocolKind) []Spec {
	var out []Spec
	for _, name := range c.order {
		if s := c.byName[name]; s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}

// Names returns every protocol name, lowest risk first.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.order...)
}

// KindForIntent maps an intent kind (or a bare protocol kind) to a catalog kind.
func KindForIntent(kind string) (domain.ProtocolKind, bool) {
	switch kind {
	case string(domain.IntentSimplePayment), string(domain.ProtocolPayment):
		return domain.ProtocolPayment, true
	case string(domain.IntentStreamedSalary), string(domain.ProtocolStream):
		return domain.ProtocolStream, true
	case string(domain.IntentEscrowMilestone), string(domain.ProtocolEscrow):
		return domain.ProtocolEscrow, true
	}
	return domain.ProtocolPayment, false
}
