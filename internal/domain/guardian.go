package domain

import "time"

// GuardianMode is the operational defensive posture.
type GuardianMode string

const (
	ModeCalm        GuardianMode = "calm"
	ModeNormal      GuardianMode = "normal"
	ModeFeePressure GuardianMode = "fee_pressure"
	ModeStress      GuardianMode = "stress"
	ModeAttack      GuardianMode = "attack"
)

var modeOrder = []GuardianMode{ModeCalm, ModeNormal, ModeFeePressure, ModeStress, ModeAttack}

// String returns the string representation of GuardianMode.
func (m GuardianMode) String() string {
	return string(m)
}

// Rank returns the severity order of the mode, or -1 for unknown modes.
func (m GuardianMode) Rank() int {
	for i, v := range modeOrder {
		if v == m {
			return i
		}
	}
	return -1
}

// IsValid checks if the mode is a known value.
func (m GuardianMode) IsValid() bool {
	return m.Rank() >= 0
}

// AtLeast reports whether m is as severe as other or more.
func (m GuardianMode) AtLeast(other GuardianMode) bool {
	return m.IsValid() && m.Rank() >= other.Rank()
}

// PolicyStatus is the compliance verdict attached to a guardian policy.
type PolicyStatus string

const (
	StatusCompliant         PolicyStatus = "compliant"
	StatusAttentionRequired PolicyStatus = "attention_required"
)

// PolicyPayload holds the raw metrics a policy was derived from.
type PolicyPayload struct {
	LedgerSeq      int64   `json:"ledger_seq"`
	MedianFee      int64   `json:"median_fee"`
	RecommendedFee int64   `json:"recommended_fee"`
	LoadFactor     float64 `json:"load_factor"`
}

// GuardianPolicy is an auditable policy record.
type GuardianPolicy struct {
	ID        string        `json:"id"`
	Mode      GuardianMode  `json:"mode"`
	Status    PolicyStatus  `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	Payload   PolicyPayload `json:"payload"`
}

// ForgeProposal is a draft upgrade suggestion derived from the guardian mode.
type ForgeProposal struct {
	UpgradeID    string       `json:"upgrade_id"`
	InferredMode GuardianMode `json:"inferred_mode"`
	Status       string       `json:"status"`
	Suggestions  []string     `json:"suggestions"`
}

// GuardianDecision bundles the policy with its explanation and forge proposal.
type GuardianDecision struct {
	Policy      GuardianPolicy `json:"policy"`
	Explanation string         `json:"explanation"`
	Forge       ForgeProposal  `json:"forge"`
}
