package domain

import "time"

// HistoryPoint is one fee observation kept by the horizon predictor.
type HistoryPoint struct {
	Timestamp  time.Time `json:"ts"`
	LedgerSeq  int64     `json:"ledger_seq"`
	MedianFee  int64     `json:"median_fee"`
	LoadFactor float64   `json:"load_factor"`
	Band       Band      `json:"band"`
}

// PointFromSnapshot builds a history point from a snapshot and its band.
func PointFromSnapshot(s NetworkSnapshot, band Band) HistoryPoint {
	return HistoryPoint{
		Timestamp:  s.Timestamp,
		LedgerSeq:  s.LedgerSeq,
		MedianFee:  s.MedianFee,
		LoadFactor: s.LoadFactor,
		Band:       band,
	}
}
