package pipeline

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/casework/internal/extract"
	"github.com/ppiankov/casework/internal/logging"
	"github.com/ppiankov/casework/internal/metrics"
	"github.com/ppiankov/casework/internal/model"
)

func collect(t *testing.T, desk *fakeDesk, m *metrics.Metrics) (*model.Case, error) {
	t.Helper()
	c, err := extract.NewCaseExtractor().Extract(desk.page.html())
	require.NoError(t, err)
	return NewCollector(desk, m, logging.Discard()).Collect(context.Background(), c)
}

func TestCollectorRequestsMissingKindsInOrder(t *testing.T) {
	desk := &fakeDesk{page: newPage("BIZ TORCH", [2]string{"Case:", "#1"}), evidence: map[model.EvidenceKind]string{
		model.EvidenceFireInvestigation: "Suspect identity: Pyro",
		model.EvidenceFingerprint:       "Smudge, owner could be, Finger.",
		model.EvidenceDNA:               "None",
		model.EvidenceTravel:            model.NoTravelEvidence,
	}}
	m := metrics.New()

	c, err := collect(t, desk, m)
	require.NoError(t, err)
	assert.Equal(t, model.EvidenceKinds, desk.requests)
	assert.Equal(t, "Finger", c.Clues.FingerprintName)
	assert.Equal(t, model.StateBlank, c.Get(model.EvidenceDNA).State())
	series, err := testutil.GatherAndCount(m.Registry(), "casework_evidence_requests_total")
	require.NoError(t, err)
	assert.Equal(t, len(model.EvidenceKinds), series)
}

func TestCollectorSkipsFireOutsideTorch(t *testing.T) {
	desk := &fakeDesk{page: newPage("MUGGING", [2]string{"Case:", "#1"}), evidence: map[model.EvidenceKind]string{
		model.EvidenceTravel: model.NoTravelEvidence,
	}}

	_, err := collect(t, desk, nil)
	require.NoError(t, err)
	assert.Equal(t, []model.EvidenceKind{
		model.EvidenceFingerprint, model.EvidenceDNA, model.EvidenceTravel,
	}, desk.requests)
}

func TestCollectorRequestsBlankFireAgain(t *testing.T) {
	desk := &fakeDesk{page: newPage("BIZ TORCH",
		[2]string{"Case:", "#1"},
		[2]string{"Fire Investigation:", "None"},
		[2]string{"Fingerprint Evidence:", "None"},
		[2]string{"DNA Log:", "None"},
		[2]string{"Travel Log:", model.NoTravelEvidence},
	), evidence: map[model.EvidenceKind]string{
		model.EvidenceFireInvestigation: "Suspect name ended with: yro",
	}}

	c, err := collect(t, desk, nil)
	require.NoError(t, err)
	assert.Equal(t, []model.EvidenceKind{model.EvidenceFireInvestigation}, desk.requests)
	assert.Equal(t, model.StateValue, c.Get(model.EvidenceFireInvestigation).State())
}

func TestCollectorStopsAtPendingDNA(t *testing.T) {
	desk := &fakeDesk{page: newPage("MUGGING",
		[2]string{"Case:", "#1"},
		[2]string{"DNA Log:", "Sample awaiting results"},
	)}

	_, err := collect(t, desk, nil)
	assert.ErrorIs(t, err, ErrEvidencePending)
	assert.Equal(t, []model.EvidenceKind{model.EvidenceFingerprint}, desk.requests)
}

func TestCollectorReportsFailedRequests(t *testing.T) {
	desk := &fakeDesk{
		page:        newPage("MUGGING", [2]string{"Case:", "#1"}),
		failRequest: map[model.EvidenceKind]bool{model.EvidenceDNA: true},
	}

	_, err := collect(t, desk, nil)
	assert.ErrorIs(t, err, ErrCollectionIncomplete)
	assert.NotErrorIs(t, err, ErrEvidencePending)
	assert.Equal(t, []model.EvidenceKind{model.EvidenceFingerprint, model.EvidenceTravel}, desk.requests,
		"a failed kind does not stop the others")
}

func TestCollectorNeverRerequestsTravelText(t *testing.T) {
	desk := &fakeDesk{page: newPage("MUGGING",
		[2]string{"Case:", "#1"},
		[2]string{"DNA Log:", "None"},
		[2]string{"Fingerprint Evidence:", "None"},
		[2]string{"Travel Log:", model.NoTravelEvidence},
	)}

	_, err := collect(t, desk, nil)
	require.NoError(t, err)
	assert.Empty(t, desk.requests)
}
