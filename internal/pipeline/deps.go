package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/ppiankov/casework/internal/browser"
	"github.com/ppiankov/casework/internal/game"
	"github.com/ppiankov/casework/internal/metrics"
	"github.com/ppiankov/casework/internal/model"
	"github.com/ppiankov/casework/internal/notify"
	"github.com/ppiankov/casework/internal/resolve"
	"github.com/ppiankov/casework/internal/store"
)

// CaseDesk is the police screen as the controller drives it
type CaseDesk interface {
	OpenPolice(ctx context.Context) (active bool, err error)
	OpenTray(ctx context.Context) (game.Tray, error)
	OpenReported(ctx context.Context) ([]model.TrayRow, error)
	SelectCase(ctx context.Context, caseID int) bool
	ReadCase(ctx context.Context) (string, error)
	RequestEvidence(ctx context.Context, kind model.EvidenceKind, torch bool) bool
	EnterSuspect(ctx context.Context, name string) bool
	Update(ctx context.Context, torch bool) bool
	Banner(ctx context.Context) string
	PlayerName(ctx context.Context) (string, bool)
	Close(ctx context.Context) bool
	Bury(ctx context.Context) bool
	Return(ctx context.Context) bool
}

// Forensics requests a forensics sweep of the open case
type Forensics interface {
	RequestForensics(ctx context.Context) bool
}

// ActionClock reports how long until the player's action resource is
// available again
type ActionClock interface {
	ActionRemaining(ctx context.Context) time.Duration
}

// FixedClock always reports the same remaining time
type FixedClock time.Duration

func (f FixedClock) ActionRemaining(context.Context) time.Duration {
	return time.Duration(f)
}

// PendingSet is the persisted set of cases deferred for forensics
type PendingSet interface {
	Read() map[int]bool
	Add(id int) error
	Remove(id int) error
}

// IdentityReader reads the shared player knowledge base
type IdentityReader interface {
	Identity(player string) (model.Identity, bool)
}

// Journal records settled cases
type Journal interface {
	Record(ctx context.Context, e store.JournalEntry) error
}

// Deps carries every collaborator the engine touches. Desk, Records,
// Directory, Forensics, Clock, Pending and Bulletins are required; the
// rest may be nil.
type Deps struct {
	Desk       CaseDesk
	Records    resolve.RecordsLookup
	Directory  resolve.Directory
	Forensics  Forensics
	Clock      ActionClock
	Pending    PendingSet
	Bulletins  resolve.BulletinSource
	Identities IdentityReader
	Journal    Journal
	Notifier   notify.Notifier
	Metrics    *metrics.Metrics
	Guard      *browser.Guard
	Logger     *slog.Logger
}
