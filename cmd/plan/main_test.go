package main

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"governor-xrpl-lab/internal/config"
	"governor-xrpl-lab/internal/domain"
)

const intentJSON = `{"kind":"escrow_milestone","amount_units":5000000,
	"source_account":"rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh",
	"destination_account":"rrrrrrrrrrrrrrrrrrrrBZbvji",
	"metadata":{"milestones":"2"}}`

func TestReadIntent(t *testing.T) {
	intent, err := readIntent("-", strings.NewReader(intentJSON))
	require.NoError(t, err)
	assert.Equal(t, domain.IntentEscrowMilestone, intent.Kind)
	assert.Equal(t, 2, intent.MetaInt(domain.MetaMilestones, 0))

	path := filepath.Join(t.TempDir(), "intent.json")
	require.NoError(t, os.WriteFile(path, []byte(intentJSON), 0o600))
	fromFile, err := readIntent(path, nil)
	require.NoError(t, err)
	assert.Equal(t, intent, fromFile)

	_, err = readIntent("-", strings.NewReader("nope"))
	assert.Error(t, err)
}

func TestBuildPlanner_Offline(t *testing.T) {
	ctx := context.Background()
	history := filepath.Join(t.TempDir(), "history.jsonl")

	p, closeNodes, err := buildPlanner(ctx, config.Default(), history, true, log.New(io.Discard, "", 0))
	require.NoError(t, err)
	defer closeNodes()

	intent, err := readIntent("-", strings.NewReader(intentJSON))
	require.NoError(t, err)

	bundle := p.Plan(ctx, intent)
	assert.Equal(t, domain.SnapshotSourceFallback, bundle.Snapshot.Source)
	require.Len(t, bundle.OfflineInstructions, 3)
	assert.Equal(t, "out_of_scope", bundle.Safety.Signing)
}

func TestPublishOnce_NoneDriver(t *testing.T) {
	p, closeNodes, err := buildPlanner(context.Background(), config.Default(), "", true, log.New(io.Discard, "", 0))
	require.NoError(t, err)
	defer closeNodes()
	bundle := p.Plan(context.Background(), domain.TxIntent{Kind: domain.IntentSimplePayment, AmountUnits: 1})

	assert.NoError(t, publishOnce(context.Background(), config.PublishConfig{Driver: config.PublishNone}, bundle))
	assert.Error(t, publishOnce(context.Background(), config.PublishConfig{Driver: "kafka"}, bundle))
}
