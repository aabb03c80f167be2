package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/casework/internal/browser"
	"github.com/ppiankov/casework/internal/extract"
	"github.com/ppiankov/casework/internal/game"
	"github.com/ppiankov/casework/internal/model"
	"github.com/ppiankov/casework/internal/resolve"
	"github.com/ppiankov/casework/internal/store"
)

const (
	crimeAt  = "3/14/2025 1:05:09 PM"
	operator = "Detective"
)

func mugging(rows ...[2]string) *casePage {
	base := [][2]string{
		{"Case:", "#777"},
		{"Time of Crime:", crimeAt},
		{"Victim:", `<a href="profile.asp?username=Alice">Alice</a>`},
		{"Victim Statement:", "I was mugged."},
	}
	return newPage("MUGGING", append(base, rows...)...)
}

func run(t *testing.T, h *harness) Outcome {
	t.Helper()
	out, err := h.pipeline().Run(context.Background(), operator)
	require.NoError(t, err)
	return out
}

func TestScenarioA_DNANameClosesWithoutPhonebook(t *testing.T) {
	h := newHarness(t, mugging(
		[2]string{"DNA Log:", "The DNA revealed JohnDoe42 was at the crime scene"},
		[2]string{"Fingerprint Evidence:", "None"},
		[2]string{"Travel Log:", model.NoTravelEvidence},
	))

	out := run(t, h)
	assert.Equal(t, model.DispositionClosed, out.Disposition)
	assert.Equal(t, "JohnDoe42", out.Suspect)
	assert.Equal(t, resolve.SourceDNA, out.Source)
	assert.True(t, out.Progress)
	assert.Equal(t, []string{"JohnDoe42"}, h.desk.suspects)
	assert.Empty(t, h.directory.searches)
	assert.Empty(t, h.desk.requests, "present evidence is never re-requested")
}

func TestScenarioB_AmbiguousPhonebookBuries(t *testing.T) {
	page := mugging(
		[2]string{"DNA Log:", "None"},
		[2]string{"Fingerprint Evidence:", "None"},
		[2]string{"Travel Log:", model.NoTravelEvidence},
	)
	page.set("Victim Statement:", "Their name ended with xyz.")
	h := newHarness(t, page)
	h.directory.results = extract.DirectoryResults{Alive: []string{"Alexyz", "Bobxyz"}}
	h.bulletins.list = []model.Bulletin{{Time: crimeAt, Victim: "Someone", Suspect: "xyz", OnlineUsers: []string{"Alexyz"}}}

	out := run(t, h)
	assert.Equal(t, model.DispositionBuried, out.Disposition)
	assert.Equal(t, "phonebook ambiguous", out.Reason)
	assert.Equal(t, []string{"xyz"}, h.directory.searches)
	assert.Equal(t, 1, h.bulletins.reads, "911 log consulted before burying")
	assert.Empty(t, h.desk.suspects)
	assert.Equal(t, "bury", h.desk.last())
}

func TestScenarioB_AmbiguousPhonebookResolvedBy911(t *testing.T) {
	page := mugging(
		[2]string{"DNA Log:", "None"},
		[2]string{"Fingerprint Evidence:", "None"},
		[2]string{"Travel Log:", model.NoTravelEvidence},
	)
	page.set("Victim Statement:", "Their name ended with xyz.")
	h := newHarness(t, page)
	// Profiles cannot be opened, so both alive matches stay candidates
	h.directory.results = extract.DirectoryResults{Alive: []string{"Alexyz", "Bobxyz"}}
	h.bulletins.list = []model.Bulletin{{Time: crimeAt, Victim: "Alice", Suspect: "xyz", OnlineUsers: []string{"Bobxyz", "Carl"}}}

	out := run(t, h)
	assert.Equal(t, model.DispositionClosed, out.Disposition)
	assert.Equal(t, "Bobxyz", out.Suspect)
	assert.Equal(t, resolve.SourceBulletin, out.Source)
	assert.Equal(t, []string{"xyz"}, h.directory.searches)
	assert.Equal(t, 1, h.bulletins.reads)
	assert.Equal(t, []string{"Bobxyz"}, h.desk.suspects)
	require.Len(t, h.notifier.messages, 1)
}

func TestScenarioC_NumericDNAWithoutMatchFallsBackToClues(t *testing.T) {
	h := newHarness(t, mugging(
		[2]string{"DNA Log:", "123456"},
		[2]string{"Fingerprint Evidence:", "None"},
		[2]string{"Travel Log:", model.NoTravelEvidence},
		[2]string{"Witness Statement:", "The attacker's name ended with oe."},
	))
	h.directory.results = extract.DirectoryResults{Alive: []string{"JohnDoe", "Zed"}}

	out := run(t, h)
	assert.Equal(t, []string{"dna:123456"}, h.records.calls)
	assert.Equal(t, model.DispositionClosed, out.Disposition)
	assert.Equal(t, "JohnDoe", out.Suspect)
	assert.Equal(t, resolve.SourcePhonebook, out.Source)
	assert.NotContains(t, h.desk.suspects, "123456")
}

func TestScenarioC_NumericDNAMatch(t *testing.T) {
	h := newHarness(t, mugging(
		[2]string{"DNA Log:", "123 456"},
		[2]string{"Fingerprint Evidence:", "None"},
		[2]string{"Travel Log:", model.NoTravelEvidence},
	))
	h.records.names = map[string]string{"123 456": "Matched"}

	out := run(t, h)
	assert.Equal(t, model.DispositionClosed, out.Disposition)
	assert.Equal(t, "Matched", out.Suspect)
	assert.Equal(t, resolve.SourceDNA, out.Source)
}

func TestScenarioD_SingleLetterClueSkipsPhonebook(t *testing.T) {
	page := mugging(
		[2]string{"DNA Log:", "None"},
		[2]string{"Fingerprint Evidence:", "None"},
		[2]string{"Travel Log:", model.NoTravelEvidence},
	)
	page.set("Victim Statement:", "Their name ended with x.")
	h := newHarness(t, page)

	out := run(t, h)
	assert.Equal(t, model.DispositionBuried, out.Disposition)
	assert.Equal(t, "single letter clue", out.Reason)
	assert.Empty(t, h.directory.searches)
}

func TestScenarioD_SingleLetterClueResolvedBy911(t *testing.T) {
	page := mugging(
		[2]string{"DNA Log:", "None"},
		[2]string{"Fingerprint Evidence:", "None"},
		[2]string{"Travel Log:", model.NoTravelEvidence},
	)
	page.set("Victim Statement:", "Their name ended with x.")
	h := newHarness(t, page)
	h.bulletins.list = []model.Bulletin{{Time: crimeAt, Victim: "alice", Suspect: "ax", OnlineUsers: []string{"Max", "Rex"}}}

	out := run(t, h)
	assert.Equal(t, model.DispositionClosed, out.Disposition)
	assert.Equal(t, "Max", out.Suspect)
	assert.Equal(t, resolve.SourceBulletin, out.Source)
	require.Len(t, h.notifier.messages, 1)
	assert.Contains(t, h.notifier.messages[0], "Max")
}

func TestScenarioE_NeverAccusesSelf(t *testing.T) {
	h := newHarness(t, mugging(
		[2]string{"DNA Log:", "The DNA revealed detective was at the crime scene"},
		[2]string{"Fingerprint Evidence:", "Smudge, owner could be, Detective."},
		[2]string{"Travel Log:", model.NoTravelEvidence},
	))

	out := run(t, h)
	assert.Equal(t, model.DispositionBuried, out.Disposition)
	assert.Equal(t, "self accusation", out.Reason)
	assert.Empty(t, h.desk.suspects)
}

func TestScenarioE_PageNameCountsAsSelf(t *testing.T) {
	h := newHarness(t, mugging(
		[2]string{"DNA Log:", "The DNA revealed Someone was at the crime scene"},
		[2]string{"Fingerprint Evidence:", "None"},
		[2]string{"Travel Log:", model.NoTravelEvidence},
	))
	h.desk.player = "Someone"

	out, err := h.pipeline().Run(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, model.DispositionBuried, out.Disposition)
}

func TestPendingDNAAlwaysReturns(t *testing.T) {
	h := newHarness(t, mugging(
		[2]string{"Fingerprint Evidence:", "Smudge, owner could be, Finger."},
		[2]string{"Travel Log:", ""},
	))
	h.desk.evidence[model.EvidenceDNA] = "Sample sent, awaiting results"

	out := run(t, h)
	assert.Equal(t, model.DispositionReturned, out.Disposition)
	assert.Equal(t, "return", h.desk.last())
	assert.Equal(t, []model.EvidenceKind{model.EvidenceDNA}, h.desk.requests, "collection stops at pending DNA")
	assert.Empty(t, h.desk.suspects)
}

func TestTorchWithoutFireIdentityReturns(t *testing.T) {
	h := newHarness(t, newPage("BIZ TORCH",
		[2]string{"Case:", "#9"},
		[2]string{"Victim Statement:", "Burnt."},
		[2]string{"DNA Log:", "The DNA revealed Arsonist was at the crime scene"},
		[2]string{"Fingerprint Evidence:", "None"},
		[2]string{"Travel Log:", model.NoTravelEvidence},
	))
	h.desk.evidence[model.EvidenceFireInvestigation] = "Investigation underway"

	out := run(t, h)
	assert.Equal(t, model.DispositionReturned, out.Disposition)
	assert.Equal(t, "fire investigation pending", out.Reason)
	assert.Equal(t, []model.EvidenceKind{model.EvidenceFireInvestigation}, h.desk.requests)
}

func TestTorchFireIdentityGoesThroughPhonebook(t *testing.T) {
	h := newHarness(t, newPage("BIZ TORCH",
		[2]string{"Case:", "#9"},
		[2]string{"Victim Statement:", "Burnt."},
		[2]string{"DNA Log:", "None"},
		[2]string{"Fingerprint Evidence:", "None"},
		[2]string{"Travel Log:", model.NoTravelEvidence},
	))
	h.desk.evidence[model.EvidenceFireInvestigation] = "The arsonist identity: xyz"
	h.directory.results = extract.DirectoryResults{Alive: []string{"Bobxyz"}}

	out := run(t, h)
	assert.Equal(t, model.DispositionClosed, out.Disposition)
	assert.Equal(t, "Bobxyz", out.Suspect)
	assert.Equal(t, resolve.SourcePhonebook, out.Source)
	assert.Equal(t, []string{"xyz"}, h.directory.searches)
	assert.Equal(t, []string{"Bobxyz"}, h.desk.suspects)
}

func TestWitnessOnlyBuriedBeforeCollection(t *testing.T) {
	h := newHarness(t, newPage("MUGGING",
		[2]string{"Case:", "#5"},
		[2]string{"Witness Statement:", "Their name ended with abc."},
	))

	out := run(t, h)
	assert.Equal(t, model.DispositionBuried, out.Disposition)
	assert.Equal(t, "witness only", out.Reason)
	assert.Empty(t, h.desk.requests)
}

func TestFailedEvidenceRequestReturns(t *testing.T) {
	h := newHarness(t, mugging(
		[2]string{"DNA Log:", "The DNA revealed JohnDoe42 was at the crime scene"},
		[2]string{"Travel Log:", model.NoTravelEvidence},
	))
	h.desk.failRequest = map[model.EvidenceKind]bool{model.EvidenceFingerprint: true}

	out := run(t, h)
	assert.Equal(t, model.DispositionReturned, out.Disposition)
	assert.Empty(t, h.desk.suspects, "an incomplete collection is never guessed")
}

func TestUnreadableCaseReturns(t *testing.T) {
	h := newHarness(t, mugging())
	h.desk.readErr = browser.ErrTransient

	out := run(t, h)
	assert.Equal(t, model.DispositionReturned, out.Disposition)
	assert.Equal(t, "return", h.desk.last())
}

func noLeads() *casePage {
	return mugging(
		[2]string{"DNA Log:", "None"},
		[2]string{"Fingerprint Evidence:", "None"},
		[2]string{"Travel Log:", model.NoTravelEvidence},
	)
}

func TestNoLeads_911ClosesAndNotifies(t *testing.T) {
	h := newHarness(t, noLeads())
	h.bulletins.list = []model.Bulletin{{Time: crimeAt, Victim: "Alice", Suspect: "xyz", OnlineUsers: []string{"Alexyz", "Bob"}}}

	out := run(t, h)
	assert.Equal(t, model.DispositionClosed, out.Disposition)
	assert.Equal(t, "Alexyz", out.Suspect)
	assert.Equal(t, resolve.SourceBulletin, out.Source)
	require.Len(t, h.notifier.messages, 1)
	assert.Equal(t, "Closed via 911: "+crimeAt+" | Alice -> **Alexyz**", h.notifier.messages[0])
}

func TestNoLeads_ForensicsDisabledBuries(t *testing.T) {
	h := newHarness(t, noLeads())

	out := run(t, h)
	assert.Equal(t, model.DispositionBuried, out.Disposition)
	assert.Equal(t, "no evidence or clues", out.Reason)
	assert.Zero(t, h.forensics.request)
}

func TestNoLeads_ForensicsWaitsForAction(t *testing.T) {
	h := newHarness(t, noLeads())
	h.police.DoForensics = true
	h.deps.Clock = FixedClock(2 * time.Minute)

	out := run(t, h)
	assert.Equal(t, model.DispositionReturned, out.Disposition)
	assert.True(t, h.pending.Contains(777))
	assert.Zero(t, h.forensics.request)
}

func TestNoLeads_ForensicsNamesSuspect(t *testing.T) {
	h := newHarness(t, noLeads())
	h.police.DoForensics = true
	h.forensics.suffix = "The suspect's name is Sneaky!"
	require.NoError(t, h.pending.Add(777))

	out := run(t, h)
	assert.Equal(t, 1, h.forensics.request)
	assert.Equal(t, model.DispositionClosed, out.Disposition)
	assert.Equal(t, "Sneaky", out.Suspect)
	assert.Equal(t, resolve.SourceForensics, out.Source)
	assert.False(t, h.pending.Contains(777))
}

func TestNoLeads_ForensicsSuffixUsesPhonebook(t *testing.T) {
	h := newHarness(t, noLeads())
	h.police.DoForensics = true
	h.forensics.suffix = "The suspect's name ended with eak!"
	h.directory.results = extract.DirectoryResults{Deceased: []string{"Sneak"}}

	out := run(t, h)
	assert.Equal(t, model.DispositionClosed, out.Disposition)
	assert.Equal(t, "Sneak", out.Suspect)
	assert.Equal(t, []string{"eak"}, h.directory.searches)
}

func TestNoLeads_ForensicsNothingBuries(t *testing.T) {
	h := newHarness(t, noLeads())
	h.police.DoForensics = true
	h.forensics.suffix = "Nothing found."

	out := run(t, h)
	assert.Equal(t, model.DispositionBuried, out.Disposition)
}

func TestNoLeads_ExistingForensicLogNotRequestedAgain(t *testing.T) {
	page := noLeads()
	page.set("Forensic Log:", "Nothing found.")
	h := newHarness(t, page)
	h.police.DoForensics = true

	out := run(t, h)
	assert.Equal(t, model.DispositionBuried, out.Disposition)
	assert.Equal(t, "forensics found nothing", out.Reason)
	assert.Zero(t, h.forensics.request)
	assert.False(t, h.pending.Contains(777))
}

func TestSubmit_DeadSuspectBuries(t *testing.T) {
	h := newHarness(t, mugging(
		[2]string{"DNA Log:", "The DNA revealed Ghost was at the crime scene"},
		[2]string{"Fingerprint Evidence:", "None"},
		[2]string{"Travel Log:", model.NoTravelEvidence},
	))
	h.desk.bannerAfter = "Ghost is now dead"

	out := run(t, h)
	assert.Equal(t, model.DispositionBuried, out.Disposition)
	assert.Equal(t, "suspect is dead", out.Reason)
	assert.Equal(t, []string{"update", "bury"}, h.desk.actions)
}

func TestSubmit_FailedCloseBuries(t *testing.T) {
	h := newHarness(t, mugging(
		[2]string{"DNA Log:", "The DNA revealed JohnDoe42 was at the crime scene"},
		[2]string{"Fingerprint Evidence:", "None"},
		[2]string{"Travel Log:", model.NoTravelEvidence},
	))
	h.desk.failClose = true

	out := run(t, h)
	assert.Equal(t, model.DispositionBuried, out.Disposition)
	assert.Equal(t, "close failed", out.Reason)
}

func TestSubmit_FailedEntryReturns(t *testing.T) {
	h := newHarness(t, mugging(
		[2]string{"DNA Log:", "The DNA revealed JohnDoe42 was at the crime scene"},
		[2]string{"Fingerprint Evidence:", "None"},
		[2]string{"Travel Log:", model.NoTravelEvidence},
	))
	h.desk.failEnter = true

	out := run(t, h)
	assert.Equal(t, model.DispositionReturned, out.Disposition)
}

func TestClosedCaseLeavesPendingSetAndJournal(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, mugging(
		[2]string{"DNA Log:", "The DNA revealed JohnDoe42 was at the crime scene"},
		[2]string{"Fingerprint Evidence:", "None"},
		[2]string{"Travel Log:", model.NoTravelEvidence},
	))
	require.NoError(t, h.pending.Add(777))

	journal, err := store.OpenJournal(ctx, ":memory:")
	require.NoError(t, err)
	defer journal.Close()
	h.deps.Journal = journal

	p := h.pipeline()
	progress, err := p.PrepareAndResolveOneCase(ctx, operator)
	require.NoError(t, err)
	assert.True(t, progress)
	assert.False(t, h.pending.Contains(777))

	entries, err := journal.ForCase(ctx, 777)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, p.RunID(), entries[0].RunID)
	assert.Equal(t, "closed", entries[0].Disposition)
	assert.Equal(t, "JohnDoe42", entries[0].Suspect)
	assert.Equal(t, "dna", entries[0].Source)
}

func TestSettledCaseNotRevisited(t *testing.T) {
	h := newHarness(t, mugging(
		[2]string{"DNA Log:", "The DNA revealed JohnDoe42 was at the crime scene"},
		[2]string{"Fingerprint Evidence:", "None"},
		[2]string{"Travel Log:", model.NoTravelEvidence},
	))
	p := h.pipeline()

	out, err := p.Run(context.Background(), operator)
	require.NoError(t, err)
	require.Equal(t, model.DispositionClosed, out.Disposition)

	h.desk.active = true
	out, err = p.Run(context.Background(), operator)
	require.NoError(t, err)
	assert.Empty(t, out.Disposition)
	assert.False(t, out.Progress)
	assert.Equal(t, []string{"JohnDoe42"}, h.desk.suspects)
}

func TestSelection_PicksEligibleTrayRow(t *testing.T) {
	h := newHarness(t, mugging(
		[2]string{"DNA Log:", "The DNA revealed JohnDoe42 was at the crime scene"},
		[2]string{"Fingerprint Evidence:", "None"},
		[2]string{"Travel Log:", model.NoTravelEvidence},
	))
	h.desk.active = false
	waiting := model.TrayRow{CaseID: 1}
	waiting.Shades[model.ColDNA] = "#e68f12"
	h.desk.tray = game.Tray{Rows: []model.TrayRow{waiting, {CaseID: 777}}}

	out := run(t, h)
	assert.Equal(t, []int{777}, h.desk.selected)
	assert.Equal(t, model.DispositionClosed, out.Disposition)
}

func TestSelection_AllWaitingBacksOff(t *testing.T) {
	h := newHarness(t, mugging())
	h.desk.active = false
	waiting := model.TrayRow{CaseID: 1}
	waiting.Shades[model.ColWitness] = "rgb(230,143,18)"
	h.desk.tray = game.Tray{Rows: []model.TrayRow{waiting}}

	out := run(t, h)
	assert.True(t, out.Progress)
	assert.Empty(t, h.desk.selected)
	assert.Equal(t, "all in-tray cases waiting on evidence", out.Reason)
	assert.GreaterOrEqual(t, out.Wait, 5*time.Minute)
}

func TestSelection_Banners(t *testing.T) {
	h := newHarness(t, mugging())
	h.desk.active = false

	h.desk.tray = game.Tray{Banner: "you must wait at least 30 seconds between views"}
	out := run(t, h)
	assert.True(t, out.Progress)
	assert.LessOrEqual(t, out.Wait, 42*time.Second)

	h.desk.tray = game.Tray{Banner: "there are currently no new cases"}
	out = run(t, h)
	assert.False(t, out.Progress)
	assert.GreaterOrEqual(t, out.Wait, 10*time.Minute)
	assert.Empty(t, h.desk.selected)
}

func TestSelection_ReportedFallback(t *testing.T) {
	h := newHarness(t, mugging(
		[2]string{"DNA Log:", "The DNA revealed JohnDoe42 was at the crime scene"},
		[2]string{"Fingerprint Evidence:", "None"},
		[2]string{"Travel Log:", model.NoTravelEvidence},
	))
	h.desk.active = false
	green := model.TrayRow{CaseID: 777}
	green.Shades[model.ColDNA] = "#4c8a23"
	h.desk.reports = []model.TrayRow{{CaseID: 3}, green}

	out := run(t, h)
	assert.Equal(t, []int{777}, h.desk.selected)
	assert.Equal(t, model.DispositionClosed, out.Disposition)

	h.desk.active = false
	h.desk.reports = nil
	out = run(t, h)
	assert.False(t, out.Progress)
}

func TestGuardHeldElsewhere(t *testing.T) {
	h := newHarness(t, mugging())
	guard := browser.NewGuard()
	require.True(t, guard.TryAcquire())
	h.deps.Guard = guard

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	progress, err := h.pipeline().PrepareAndResolveOneCase(ctx, operator)
	assert.Error(t, err)
	assert.False(t, progress)
	assert.Empty(t, h.desk.actions)
}

func TestRetryAfter(t *testing.T) {
	for range 50 {
		short := RetryAfter(true)
		assert.GreaterOrEqual(t, short, 30*time.Second)
		assert.LessOrEqual(t, short, 45*time.Second)

		long := RetryAfter(false)
		assert.GreaterOrEqual(t, long, 10*time.Minute)
		assert.LessOrEqual(t, long, 15*time.Minute)
	}
}
