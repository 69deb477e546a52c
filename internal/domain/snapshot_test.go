package domain

import (
	"errors"
	"testing"
	"time"
)

func TestNetworkSnapshot_Normalize(t *testing.T) {
	s := NetworkSnapshot{
		LedgerSeq:      -5,
		MedianFee:      0,
		RecommendedFee: 3,
		LoadFactor:     -1,
	}

	got := s.Normalize()

	if got.LedgerSeq != 0 {
		t.Errorf("ledger_seq: expected 0, got %d", got.LedgerSeq)
	}
	if got.BaseFee != FallbackBaseFee {
		t.Errorf("base_fee: expected %d, got %d", FallbackBaseFee, got.BaseFee)
	}
	if got.MedianFee != FallbackBaseFee {
		t.Errorf("median_fee: expected base fee, got %d", got.MedianFee)
	}
	if got.RecommendedFee < got.MedianFee {
		t.Errorf("recommended %d below median %d", got.RecommendedFee, got.MedianFee)
	}
	if got.LoadFactor != FallbackLoad {
		t.Errorf("load_factor: expected %v, got %v", FallbackLoad, got.LoadFactor)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("normalized snapshot should validate: %v", err)
	}
}

func TestNetworkSnapshot_Validate(t *testing.T) {
	if err := (NetworkSnapshot{}).Validate(); !errors.Is(err, ErrInvalidSnapshot) {
		t.Errorf("expected ErrInvalidSnapshot, got %v", err)
	}

	fb := FallbackSnapshot(time.Unix(0, 0).UTC())
	if err := fb.Validate(); err != nil {
		t.Errorf("fallback snapshot should validate: %v", err)
	}
	if fb.Source != SnapshotSourceFallback || fb.MedianFee != 5000 || fb.LoadFactor != 1.0 {
		t.Errorf("unexpected fallback snapshot: %+v", fb)
	}
}

func TestBandOrdering(t *testing.T) {
	if !BandExtreme.AtLeast(BandElevated) {
		t.Error("extreme should be at least elevated")
	}
	if BandLow.AtLeast(BandNormal) {
		t.Error("low should not be at least normal")
	}
	if Band("storm").IsValid() {
		t.Error("unknown band should be invalid")
	}
	if got := BandElevated.Escalate(); got != BandExtreme {
		t.Errorf("elevated escalates to extreme, got %s", got)
	}
	if got := BandExtreme.Escalate(); got != BandExtreme {
		t.Errorf("extreme is capped, got %s", got)
	}
	if !ModeAttack.AtLeast(ModeFeePressure) || ModeNormal.AtLeast(ModeFeePressure) {
		t.Error("guardian mode ordering broken")
	}
}
