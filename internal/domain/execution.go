package domain

import "time"

// BundleVersion is the schema version stamped on execution bundles.
const BundleVersion = "1"

// FeeSignal fuses band, fee levels and guardian posture into a pressure reading.
type FeeSignal struct {
	Band              Band         `json:"band"`
	MedianFee         int64        `json:"median_fee"`
	RecommendedFee    int64        `json:"recommended_fee"`
	SafeFee           int64        `json:"safe_fee"`
	PressureScore     float64      `json:"pressure_score"`
	GuardianMode      GuardianMode `json:"guardian_mode"`
	AttentionRequired bool         `json:"attention_required"`
	Notes             []string     `json:"notes"`
}

// FeeQuote is the fee the bundle recommends, in drops.
type FeeQuote struct {
	BaseFee        int64  `json:"base_fee"`
	RecommendedFee int64  `json:"recommended_fee"`
	SafeFee        int64  `json:"safe_fee"`
	FinalFee       int64  `json:"final_fee"`
	Unit           string `json:"unit"`
}

// HintMode is the timing recommendation for submitting a transaction.
type HintMode string

const (
	HintImmediate        HintMode = "immediate"
	HintNormal           HintMode = "normal"
	HintAggressive       HintMode = "aggressive"
	HintDelayedOrBatched HintMode = "delayed_or_batched"
)

// ExecutionHint carries timing advice.
type ExecutionHint struct {
	Mode               HintMode `json:"mode"`
	BackoffSeconds     int      `json:"backoff_seconds"`
	BatchWindowSeconds int      `json:"batch_window_seconds"`
	Urgency            string   `json:"urgency"`
	Notes              []string `json:"notes"`
}

// TxTemplate is an unsigned transaction skeleton with placeholder fields
// the wallet owner must fill in before signing offline.
type TxTemplate struct {
	TransactionType string            `json:"TransactionType"`
	Account         string            `json:"Account"`
	Destination     string            `json:"Destination"`
	Amount          string            `json:"Amount"`
	Fee             string            `json:"Fee"`
	Flags           uint32            `json:"Flags"`
	Sequence        string            `json:"Sequence"`
	SigningPubKey   string            `json:"SigningPubKey"`
	TxnSignature    string            `json:"TxnSignature"`
	Fields          map[string]string `json:"Fields"`
}

// OfflineStep is one entry of the offline signing checklist.
type OfflineStep struct {
	Step        int         `json:"step"`
	Action      string      `json:"action"`
	Description string      `json:"description"`
	Transaction *TxTemplate `json:"transaction"`
	Constraints []string    `json:"constraints"`
}

// SafetyNotice states what the bundle does not do.
type SafetyNotice struct {
	Signing    string   `json:"signing"`
	Submission string   `json:"submission"`
	Scope      string   `json:"scope"`
	Warnings   []string `json:"warnings"`
}

// ExecutionBundle is the full advisory execution plan for an intent.
type ExecutionBundle struct {
	Version             string          `json:"version"`
	CreatedAt           time.Time       `json:"created_at"`
	Intent              TxIntent        `json:"intent"`
	Snapshot            NetworkSnapshot `json:"snapshot"`
	FeeBand             FeeBand         `json:"fee_band"`
	Horizon             FeeHorizon      `json:"horizon"`
	Guardian            GuardianPolicy  `json:"guardian"`
	Signal              FeeSignal       `json:"signal"`
	Plan                ProtocolPlan    `json:"plan"`
	Route               RouteDecision   `json:"route"`
	Fee                 FeeQuote        `json:"fee"`
	ExecutionHint       ExecutionHint   `json:"execution_hint"`
	OfflineInstructions []OfflineStep   `json:"offline_instructions"`
	Safety              SafetyNotice    `json:"safety"`
	Notes               []string        `json:"notes"`
}
