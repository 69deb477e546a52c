package xrpl

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Status values reported by rippled.
const (
	statusSuccess = "success"
	statusError   = "error"
)

// RPCError is an error reported by the ledger node itself.
// These are not retried.
type RPCError struct {
	Code      string `json:"error"`
	ErrorCode int    `json:"error_code"`
	Message   string `json:"error_message"`
}

func (e *RPCError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("RPC error %s (%d)", e.Code, e.ErrorCode)
	}
	return fmt.Sprintf("RPC error %s (%d): %s", e.Code, e.ErrorCode, e.Message)
}

// feeResultRaw is the raw fee result. rippled encodes drop amounts as strings.
type feeResultRaw struct {
	Status             string `json:"status"`
	LedgerCurrentIndex int64  `json:"ledger_current_index"`
	CurrentQueueSize   string `json:"current_queue_size"`
	ExpectedLedgerSize string `json:"expected_ledger_size"`
	Drops              struct {
		BaseFee       string `json:"base_fee"`
		MedianFee     string `json:"median_fee"`
		MinimumFee    string `json:"minimum_fee"`
		OpenLedgerFee string `json:"open_ledger_fee"`
	} `json:"drops"`
	Levels struct {
		MedianLevel     string `json:"median_level"`
		MinimumLevel    string `json:"minimum_level"`
		OpenLedgerLevel string `json:"open_ledger_level"`
		ReferenceLevel  string `json:"reference_level"`
	} `json:"levels"`
}

// decodeFeeResult converts the raw fee result into FeeResult.
func decodeFeeResult(raw json.RawMessage) (*FeeResult, error) {
	var r feeResultRaw
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("unmarshal fee result: %w", err)
	}

	out := &FeeResult{LedgerCurrentIndex: r.LedgerCurrentIndex}
	fields := []struct {
		name string
		src  string
		dst  *int64
	}{
		{"base_fee", r.Drops.BaseFee, &out.BaseFee},
		{"median_fee", r.Drops.MedianFee, &out.MedianFee},
		{"minimum_fee", r.Drops.MinimumFee, &out.MinimumFee},
		{"open_ledger_fee", r.Drops.OpenLedgerFee, &out.OpenLedgerFee},
		{"median_level", r.Levels.MedianLevel, &out.MedianLevel},
		{"open_ledger_level", r.Levels.OpenLedgerLevel, &out.OpenLedgerLevel},
		{"reference_level", r.Levels.ReferenceLevel, &out.ReferenceLevel},
		{"current_queue_size", r.CurrentQueueSize, &out.CurrentQueueSize},
		{"expected_ledger_size", r.ExpectedLedgerSize, &out.ExpectedLedgerSize},
	}
	for _, f := range fields {
		if f.src == "" {
			continue
		}
		v, err := strconv.ParseInt(f.src, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %s %q: %w", f.name, f.src, err)
		}
		*f.dst = v
	}

	if out.BaseFee == 0 && out.MedianFee == 0 && out.OpenLedgerFee == 0 {
		return nil, fmt.Errorf("fee result has no drops")
	}
	return out, nil
}

// serverInfoRaw is the raw server_info result.
type serverInfoRaw struct {
	Info struct {
		BuildVersion    string  `json:"build_version"`
		ServerState     string  `json:"server_state"`
		LoadFactor      float64 `json:"load_factor"`
		ValidatedLedger *struct {
			Seq        int64   `json:"seq"`
			BaseFeeXRP float64 `json:"base_fee_xrp"`
		} `json:"validated_ledger"`
	} `json:"info"`
}

func decodeServerInfo(raw json.RawMessage) (*ServerInfo, error) {
	var r serverInfoRaw
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("unmarshal server_info result: %w", err)
	}
	info := &ServerInfo{
		BuildVersion: r.Info.BuildVersion,
		ServerState:  r.Info.ServerState,
		LoadFactor:   r.Info.LoadFactor,
	}
	if r.Info.ValidatedLedger != nil {
		info.ValidatedLedgerSeq = r.Info.ValidatedLedger.Seq
		info.BaseFeeXRP = r.Info.ValidatedLedger.BaseFeeXRP
	}
	return info, nil
}
