package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/ppiankov/casework/internal/extract"
	"github.com/ppiankov/casework/internal/game"
	"github.com/ppiankov/casework/internal/logging"
	"github.com/ppiankov/casework/internal/model"
	"github.com/ppiankov/casework/internal/store"
)

// casePage is an editable case body
type casePage struct {
	crime string
	rows  [][2]string
}

func newPage(crime string, rows ...[2]string) *casePage {
	return &casePage{crime: crime, rows: rows}
}

func (p *casePage) set(label, value string) {
	for i := range p.rows {
		if p.rows[i][0] == label {
			p.rows[i][1] = value
			return
		}
	}
	p.rows = append(p.rows, [2]string{label, value})
}

func (p *casePage) html() string {
	var b strings.Builder
	b.WriteString(`<div class="body"><h2>` + p.crime + `</h2><table>`)
	for _, r := range p.rows {
		b.WriteString(`<tr><td>` + r[0] + `</td><td>` + r[1] + `</td></tr>`)
	}
	b.WriteString(`</table></div>`)
	return b.String()
}

// fakeDesk plays the police screens over a casePage
type fakeDesk struct {
	page    *casePage
	active  bool
	tray    game.Tray
	reports []model.TrayRow

	// evidence sets the page value written when a kind is requested
	evidence    map[model.EvidenceKind]string
	failRequest map[model.EvidenceKind]bool
	bannerAfter string // fail box text shown after Update
	player      string
	failEnter   bool
	failUpdate  bool
	failClose   bool
	readErr     error

	banner   string
	requests []model.EvidenceKind
	actions  []string
	selected []int
	suspects []string
}

func (d *fakeDesk) OpenPolice(context.Context) (bool, error) { return d.active, nil }

func (d *fakeDesk) OpenTray(context.Context) (game.Tray, error) { return d.tray, nil }

func (d *fakeDesk) OpenReported(context.Context) ([]model.TrayRow, error) { return d.reports, nil }

func (d *fakeDesk) SelectCase(_ context.Context, id int) bool {
	d.selected = append(d.selected, id)
	d.active = true
	return true
}

func (d *fakeDesk) ReadCase(context.Context) (string, error) {
	if d.readErr != nil {
		return "", d.readErr
	}
	return d.page.html(), nil
}

func (d *fakeDesk) RequestEvidence(_ context.Context, kind model.EvidenceKind, _ bool) bool {
	if d.failRequest[kind] {
		return false
	}
	d.requests = append(d.requests, kind)
	value, ok := d.evidence[kind]
	if !ok {
		value = "None"
	}
	d.page.set(kind.Label(), value)
	return true
}

func (d *fakeDesk) EnterSuspect(_ context.Context, name string) bool {
	if d.failEnter {
		return false
	}
	d.suspects = append(d.suspects, name)
	return true
}

func (d *fakeDesk) Update(context.Context, bool) bool {
	if d.failUpdate {
		return false
	}
	d.actions = append(d.actions, "update")
	d.banner = d.bannerAfter
	return true
}

func (d *fakeDesk) Banner(context.Context) string { return strings.ToLower(d.banner) }

func (d *fakeDesk) PlayerName(context.Context) (string, bool) { return d.player, d.player != "" }

func (d *fakeDesk) Close(context.Context) bool {
	if d.failClose {
		return false
	}
	d.actions = append(d.actions, "close")
	d.active = false
	return true
}

func (d *fakeDesk) Bury(context.Context) bool {
	d.actions = append(d.actions, "bury")
	d.active = false
	return true
}

func (d *fakeDesk) Return(context.Context) bool {
	d.actions = append(d.actions, "return")
	d.active = false
	return true
}

func (d *fakeDesk) last() string {
	if len(d.actions) == 0 {
		return ""
	}
	return d.actions[len(d.actions)-1]
}

type fakeRecords struct {
	names map[string]string
	calls []string
}

func (r *fakeRecords) Lookup(_ context.Context, kind model.EvidenceKind, code string) (string, bool, error) {
	r.calls = append(r.calls, string(kind)+":"+code)
	name, ok := r.names[code]
	return name, ok, nil
}

type fakeDirectory struct {
	results  extract.DirectoryResults
	searches []string
}

func (d *fakeDirectory) Search(_ context.Context, term string) (extract.DirectoryResults, error) {
	d.searches = append(d.searches, term)
	return d.results, nil
}

func (d *fakeDirectory) LastOnline(context.Context, string) (string, bool) { return "", false }

type fakeForensics struct {
	desk    *fakeDesk
	suffix  string // forensics log written on request
	fail    bool
	request int
}

func (f *fakeForensics) RequestForensics(context.Context) bool {
	if f.fail {
		return false
	}
	f.request++
	f.desk.page.set("Forensic Log:", f.suffix)
	return true
}

type fakeBulletins struct {
	list  []model.Bulletin
	reads int
}

func (b *fakeBulletins) ReadAll() []model.Bulletin {
	b.reads++
	return b.list
}

type recordingNotifier struct {
	messages []string
}

func (n *recordingNotifier) Notify(_ context.Context, message string) error {
	n.messages = append(n.messages, message)
	return nil
}

// harness bundles a pipeline with its fakes
type harness struct {
	desk      *fakeDesk
	records   *fakeRecords
	directory *fakeDirectory
	forensics *fakeForensics
	bulletins *fakeBulletins
	pending   *store.PendingForensics
	notifier  *recordingNotifier
	deps      Deps
	police    model.PoliceConfig
}

func newHarness(t *testing.T, page *casePage) *harness {
	t.Helper()
	desk := &fakeDesk{page: page, active: true, evidence: map[model.EvidenceKind]string{
		model.EvidenceTravel: model.NoTravelEvidence,
	}}
	h := &harness{
		desk:      desk,
		records:   &fakeRecords{},
		directory: &fakeDirectory{},
		forensics: &fakeForensics{desk: desk},
		bulletins: &fakeBulletins{},
		pending:   store.NewPendingForensics(t.TempDir(), logging.Discard()),
		notifier:  &recordingNotifier{},
	}
	h.deps = Deps{
		Desk:      desk,
		Records:   h.records,
		Directory: h.directory,
		Forensics: h.forensics,
		Clock:     FixedClock(0),
		Pending:   h.pending,
		Bulletins: h.bulletins,
		Notifier:  h.notifier,
		Logger:    logging.Discard(),
	}
	return h
}

func (h *harness) pipeline() *Pipeline {
	return New(h.deps, h.police)
}
