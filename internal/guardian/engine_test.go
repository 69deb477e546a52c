package guardian

import (
	"strconv"
	"testing"
	"time"

	"governor-xrpl-lab/internal/domain"
)

func fixedEngine() *Engine {
	n := 0
	return NewEngine(DefaultThresholds(), Options{
		Clock: func() time.Time { return time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC) },
		NewID: func() string { n++; return "id-" + strconv.Itoa(n) },
	})
}

func TestEngine_Mode(t *testing.T) {
	e := fixedEngine()

	tests := []struct {
		name   string
		median int64
		load   float64
		want   domain.GuardianMode
	}{
		{"attack by median", 8000, 1.0, domain.ModeAttack},
		{"attack by load", 10, 6.0, domain.ModeAttack},
		{"stress by median", 2000, 1.0, domain.ModeStress},
		{"stress by load", 10, 4.5, domain.ModeStress},
		{"fee pressure by median", 200, 1.0, domain.ModeFeePressure},
		{"fee pressure by load", 10, 2.0, domain.ModeFeePressure},
		{"calm", 20, 1.2, domain.ModeCalm},
		{"normal median", 21, 1.0, domain.ModeNormal},
		{"normal load", 10, 1.5, domain.ModeNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Mode(tt.median, tt.load); got != tt.want {
				t.Errorf("Mode(%d, %.1f) = %s, want %s", tt.median, tt.load, got, tt.want)
			}
		})
	}
}

func TestEngine_ClassifyStatusAndPayload(t *testing.T) {
	e := fixedEngine()

	d := e.Classify(domain.NetworkSnapshot{
		LedgerSeq: 100, BaseFee: 10, MedianFee: 10000, RecommendedFee: 12000, LoadFactor: 4.5,
	})
	if d.Policy.Mode != domain.ModeAttack {
		t.Errorf("expected attack, got %s", d.Policy.Mode)
	}
	if d.Policy.Status != domain.StatusAttentionRequired {
		t.Errorf("expected attention_required, got %s", d.Policy.Status)
	}
	if d.Policy.Payload.RecommendedFee != 12000 || d.Policy.Payload.LedgerSeq != 100 {
		t.Errorf("unexpected payload: %+v", d.Policy.Payload)
	}
	if d.Forge.Status != "draft" || d.Forge.InferredMode != domain.ModeAttack {
		t.Errorf("unexpected forge proposal: %+v", d.Forge)
	}
	if n := len(d.Forge.Suggestions); n < 4 || n > 5 {
		t.Errorf("expected 4-5 suggestions, got %d", n)
	}
	if d.Forge.UpgradeID == d.Policy.ID {
		t.Error("forge upgrade id should differ from policy id")
	}
	if d.Explanation == "" {
		t.Error("explanation should not be empty")
	}

	calm := e.Classify(domain.NetworkSnapshot{BaseFee: 10, MedianFee: 10, LoadFactor: 1.0})
	if calm.Policy.Status != domain.StatusCompliant {
		t.Errorf("calm should be compliant, got %s", calm.Policy.Status)
	}
}

func TestEngine_Idempotent(t *testing.T) {
	e := NewEngine(DefaultThresholds(), Options{})
	s := domain.NetworkSnapshot{LedgerSeq: 5, BaseFee: 10, MedianFee: 450, RecommendedFee: 500, LoadFactor: 1.1}

	a := e.Classify(s)
	time.Sleep(time.Millisecond)
	b := e.Classify(s)

	if a.Policy.Mode != b.Policy.Mode || a.Policy.Status != b.Policy.Status {
		t.Errorf("mode/status should be stable: %s/%s vs %s/%s",
			a.Policy.Mode, a.Policy.Status, b.Policy.Mode, b.Policy.Status)
	}
	if a.Policy.ID == b.Policy.ID {
		t.Error("policy ids should differ between calls")
	}
	if !b.Policy.CreatedAt.After(a.Policy.CreatedAt) {
		t.Errorf("created_at should advance: %v then %v", a.Policy.CreatedAt, b.Policy.CreatedAt)
	}
}

func TestEngine_PartialSnapshot(t *testing.T) {
	e := fixedEngine()

	d := e.Classify(domain.NetworkSnapshot{})
	if !d.Policy.Mode.IsValid() {
		t.Fatalf("expected a valid mode for empty snapshot, got %q", d.Policy.Mode)
	}
	if d.Policy.Payload.LoadFactor != 1.0 {
		t.Errorf("load factor should default to 1.0, got %f", d.Policy.Payload.LoadFactor)
	}
}

func TestThresholds_Validate(t *testing.T) {
	if err := DefaultThresholds().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	bad := DefaultThresholds()
	bad.StressMedian = bad.AttackMedian
	if err := bad.Validate(); err == nil {
		t.Error("expected error for unordered medians")
	}

	e := NewEngine(bad, Options{})
	if e.Thresholds() != DefaultThresholds() {
		t.Error("invalid thresholds should fall back to defaults")
	}
}

func TestSuggestions_ReturnsCopy(t *testing.T) {
	s := Suggestions(domain.ModeCalm)
	s[0] = "mutated"
	if Suggestions(domain.ModeCalm)[0] == "mutated" {
		t.Error("Suggestions should return a copy")
	}
	if len(Suggestions(domain.GuardianMode("unknown"))) == 0 {
		t.Error("unknown mode should get the normal suggestions")
	}
}
