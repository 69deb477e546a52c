package execution

import (
	"fmt"
	"strconv"

	"governor-xrpl-lab/internal/domain"
)

// PressureThreshold defers execution regardless of band.
const PressureThreshold = 0.9

// BuildHint returns the timing advice for band and pressure.
func BuildHint(band domain.Band, pressure float64) domain.ExecutionHint {
	switch {
	case band.IsStressed() || pressure >= PressureThreshold:
		return domain.ExecutionHint{
			Mode:               domain.HintDelayedOrBatched,
			BackoffSeconds:     60,
			BatchWindowSeconds: 15 * 60,
			Urgency:            "high",
			Notes: []string{
				fmt.Sprintf("Band %s, pressure %.2f.", band, pressure),
				"Avoid unnecessary transactions.",
				"Batch or delay non-critical flows.",
			},
		}
	case band == domain.BandLow:
		return domain.ExecutionHint{
			Mode:    domain.HintAggressive,
			Urgency: "low",
			Notes:   []string{"Fees are at the floor; safe to proceed for most flows."},
		}
	default:
		return domain.ExecutionHint{
			Mode:    domain.HintNormal,
			Urgency: "normal",
			Notes:   []string{"Standard execution is acceptable."},
		}
	}
}

// Placeholders the wallet owner replaces before signing.
const (
	PlaceholderSequence  = "FILL_ME_FROM_ACCOUNT_INFO"
	PlaceholderPubKey    = "FILL_ME_WITH_WALLET_PUBKEY"
	PlaceholderSignature = "FILL_ME_WITH_OFFLINE_SIGNATURE"
)

// tfFullyCanonicalSig
const flagFullyCanonicalSig uint32 = 0x80000000

// OfflineInstructions returns the three-step offline checklist.
func OfflineInstructions(intent domain.TxIntent, txType string, fee int64) []domain.OfflineStep {
	tx := &domain.TxTemplate{
		TransactionType: txType,
		Account:         intent.SourceAccount,
		Destination:     intent.DestinationAccount,
		Amount:          strconv.FormatInt(intent.AmountUnits, 10),
		Fee:             strconv.FormatInt(fee, 10),
		Flags:           flagFullyCanonicalSig,
		Sequence:        PlaceholderSequence,
		SigningPubKey:   PlaceholderPubKey,
		TxnSignature:    PlaceholderSignature,
		Fields:          extraFields(intent, txType),
	}

	return []domain.OfflineStep{
		{
			Step:        1,
			Action:      "construct_transaction_json",
			Description: fmt.Sprintf("Build the %s transaction JSON offline and fill in the placeholders.", txType),
			Transaction: tx,
			Constraints: []string{"Read Sequence from account_info on a node you trust."},
		},
		{
			Step:        2,
			Action:      "sign_offline",
			Description: "Sign the transaction with a wallet or SDK you control.",
			Constraints: []string{
				"Signing must be done outside this system.",
				"Private keys must never be provided to this system.",
				"Use a hardware wallet or secure signing device where possible.",
			},
		},
		{
			Step:        3,
			Action:      "submit_via_own_node",
			Description: "Submit the signed blob through your own XRPL node or wallet provider.",
			Constraints: []string{"This system does not submit or broadcast transactions."},
		},
	}
}

func extraFields(intent domain.TxIntent, txType string) map[string]string {
	switch txType {
	case "EscrowCreate":
		return map[string]string{
			"FinishAfter": "FILL_ME_RIPPLE_EPOCH_SECONDS",
			"CancelAfter": "FILL_ME_RIPPLE_EPOCH_SECONDS",
			"Milestones":  strconv.Itoa(intent.MetaInt(domain.MetaMilestones, 1)),
			"TimeoutDays": strconv.Itoa(intent.MetaInt(domain.MetaTimeoutDays, 30)),
		}
	case "PaymentChannelCreate":
		return map[string]string{
			"SettleDelay":     strconv.Itoa(intent.MetaInt(domain.MetaIntervalSeconds, 86400)),
			"PublicKey":       PlaceholderPubKey,
			"IntervalSeconds": strconv.Itoa(intent.MetaInt(domain.MetaIntervalSeconds, 86400)),
		}
	}
	return map[string]string{}
}

// Safety returns the fixed out-of-scope notice.
func Safety() domain.SafetyNotice {
	return domain.SafetyNotice{
		Signing:    "out_of_scope",
		Submission: "out_of_scope",
		Scope:      "advisory_only",
		Warnings: []string{
			"This bundle contains no secret material and must never be given any.",
			"Signing and submission happen outside this system.",
			"Fees and timing are advice based on a point-in-time snapshot.",
		},
	}
}
