package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/casework/internal/extract"
	"github.com/ppiankov/casework/internal/game"
	"github.com/ppiankov/casework/internal/logging"
	"github.com/ppiankov/casework/internal/model"
	"github.com/ppiankov/casework/internal/resolve"
	"github.com/ppiankov/casework/internal/score"
	"github.com/ppiankov/casework/internal/store"
)

// Outcome describes what one invocation did
type Outcome struct {
	CaseID      int
	Disposition model.Disposition // Empty when no case was settled
	Suspect     string
	Source      resolve.Source
	Reason      string
	Progress    bool
	Wait        time.Duration // Suggested wait before the next invocation
}

// Pipeline is the case disposition controller. It investigates exactly one
// case per invocation.
type Pipeline struct {
	deps   Deps
	police model.PoliceConfig
	runID  string

	extractor  *extract.CaseExtractor
	collector  *Collector
	scorer     *score.TrayScorer
	resolver   *resolve.SuspectResolver
	crossRef   *resolve.CrossReference
	phonebook  *resolve.Phonebook
	bulletins  *resolve.BulletinMatcher
	settledRun map[int]model.Disposition
	logger     *slog.Logger
}

// New wires a controller over deps. Each Pipeline gets its own run ID,
// used to correlate journal entries.
func New(deps Deps, police model.PoliceConfig) *Pipeline {
	logger := logging.OrDefault(deps.Logger, "pipeline")
	runID := uuid.NewString()
	logger = logger.With("run_id", runID)

	return &Pipeline{
		deps:       deps,
		police:     police,
		runID:      runID,
		extractor:  extract.NewCaseExtractor(),
		collector:  NewCollector(deps.Desk, deps.Metrics, logger),
		scorer:     score.NewTrayScorer(),
		resolver:   resolve.NewSuspectResolver(),
		crossRef:   resolve.NewCrossReference(deps.Records, logger),
		phonebook:  resolve.NewPhonebook(deps.Directory, logger),
		bulletins:  resolve.NewBulletinMatcher(deps.Bulletins, logger),
		settledRun: make(map[int]model.Disposition),
		logger:     logger,
	}
}

// RunID identifies this invocation in logs and the journal
func (p *Pipeline) RunID() string {
	return p.runID
}

// PrepareAndResolveOneCase opens the active case, or assigns one from the
// in-tray or reported cases, and drives it to a disposition. It reports
// whether forward progress occurred.
func (p *Pipeline) PrepareAndResolveOneCase(ctx context.Context, operatingName string) (bool, error) {
	out, err := p.Run(ctx, operatingName)
	return out.Progress, err
}

// Run is PrepareAndResolveOneCase with the full outcome. Errors are only
// returned when no case could be reached; once a case is open every
// failure becomes a Return.
func (p *Pipeline) Run(ctx context.Context, operatingName string) (Outcome, error) {
	if p.deps.Guard != nil {
		if err := p.deps.Guard.Acquire(ctx); err != nil {
			return Outcome{Wait: RetryAfter(false)}, err
		}
		defer p.deps.Guard.Release()
	}

	active, err := p.deps.Desk.OpenPolice(ctx)
	if err != nil {
		return Outcome{Wait: RetryAfter(false)}, fmt.Errorf("open police: %w", err)
	}
	if !active {
		out, done, err := p.openNextCase(ctx)
		if done {
			if out.Wait == 0 {
				out.Wait = RetryAfter(out.Progress)
			}
			return out, err
		}
	}

	out := p.investigate(ctx, operatingName)
	if out.Wait == 0 {
		out.Wait = RetryAfter(out.Progress)
	}
	return out, nil
}

// investigate runs the disposition state machine on the open case
func (p *Pipeline) investigate(ctx context.Context, operatingName string) Outcome {
	c, err := p.readCase(ctx)
	if err != nil {
		return p.settle(ctx, model.NewCase(), model.DispositionReturned, "", "", "case unreadable: "+err.Error())
	}
	log := p.logger.With("case_id", c.ID)

	if prior, ok := p.settledRun[c.ID]; ok {
		log.Warn("case already settled this run", "disposition", prior)
		return Outcome{CaseID: c.ID, Reason: "already settled this run"}
	}

	if c.WitnessOnly {
		return p.settle(ctx, c, model.DispositionBuried, "", "", "witness only")
	}

	c, err = p.collector.Collect(ctx, c)
	switch {
	case errors.Is(err, ErrEvidencePending):
		return p.settle(ctx, c, model.DispositionReturned, "", "", "dna awaiting results")
	case err != nil:
		return p.settle(ctx, c, model.DispositionReturned, "", "", err.Error())
	}

	if _, err := p.crossRef.Apply(ctx, c); err != nil {
		return p.settle(ctx, c, model.DispositionReturned, "", "", err.Error())
	}

	if pending, reason := c.EvidencePending(); pending {
		return p.settle(ctx, c, model.DispositionReturned, "", "", reason)
	}

	return p.decide(ctx, c, operatingName)
}

// decide walks the resolution fallbacks in order: a full name, then the
// no-lead path (911 log, forensics), then the name-ending clue (phonebook,
// 911 log). Ambiguity always falls through; it is never settled by choice.
func (p *Pipeline) decide(ctx context.Context, c *model.Case, operatingName string) Outcome {
	res := p.resolver.Resolve(c)
	if res.Resolved() {
		return p.submit(ctx, c, operatingName, res.Name, res.Source)
	}

	if c.NoForensicLeads() && !c.Clues.HasNameClue() {
		if name, ok := p.bulletins.Resolve(c); ok {
			return p.submit(ctx, c, operatingName, name, resolve.SourceBulletin)
		}
		if c.ForensicLog {
			// Forensics already ran on this case and named nobody
			return p.settle(ctx, c, model.DispositionBuried, "", "", "forensics found nothing")
		}
		if !p.police.DoForensics {
			return p.settle(ctx, c, model.DispositionBuried, "", "", "no evidence or clues")
		}
		if p.deps.Clock.ActionRemaining(ctx) > 0 {
			if err := p.deps.Pending.Add(c.ID); err != nil {
				p.logger.Warn("could not mark case pending forensics", "case_id", c.ID, "error", err)
			}
			return p.settle(ctx, c, model.DispositionReturned, "", "", "forensics waiting for action")
		}
		if !p.deps.Forensics.RequestForensics(ctx) {
			return p.settle(ctx, c, model.DispositionReturned, "", "", "forensics request failed")
		}
		p.deps.Metrics.EvidenceRequest("forensics")
		if err := p.deps.Pending.Remove(c.ID); err != nil {
			p.logger.Warn("could not unmark case pending forensics", "case_id", c.ID, "error", err)
		}

		fresh, err := p.readCase(ctx)
		if err != nil {
			return p.settle(ctx, c, model.DispositionReturned, "", "", "case unreadable after forensics")
		}
		c = fresh
		if res = p.resolver.Resolve(c); res.Resolved() {
			return p.submit(ctx, c, operatingName, res.Name, res.Source)
		}
	}

	switch n := res.ClueLen(); {
	case n == 0:
		return p.settle(ctx, c, model.DispositionBuried, "", "", "no usable clue")
	case n < resolve.MinPhonebookClue:
		if name, ok := p.bulletins.Resolve(c); ok {
			return p.submit(ctx, c, operatingName, name, resolve.SourceBulletin)
		}
		return p.settle(ctx, c, model.DispositionBuried, "", "", "single letter clue")
	}

	found, err := p.phonebook.Resolve(ctx, res.Clue, c.TimeOfCrime)
	if active, openErr := p.deps.Desk.OpenPolice(ctx); openErr != nil || !active {
		return p.settle(ctx, c, model.DispositionReturned, "", "", "case not reopened after phonebook")
	}
	if err != nil {
		return p.settle(ctx, c, model.DispositionReturned, "", "", "phonebook: "+err.Error())
	}
	if found.Resolved() {
		return p.submit(ctx, c, operatingName, found.Name, resolve.SourcePhonebook)
	}
	if name, ok := p.bulletins.Resolve(c); ok {
		return p.submit(ctx, c, operatingName, name, resolve.SourceBulletin)
	}
	return p.settle(ctx, c, model.DispositionBuried, "", "", "phonebook ambiguous")
}

// submit names the suspect and closes the case. It never accuses the
// operating character and never leaves a half-processed case open.
func (p *Pipeline) submit(ctx context.Context, c *model.Case, operatingName, suspect string, source resolve.Source) Outcome {
	p.deps.Metrics.Resolution(string(source))

	if p.isSelf(ctx, operatingName, suspect) {
		return p.settle(ctx, c, model.DispositionBuried, suspect, source, "self accusation")
	}
	if !p.deps.Desk.EnterSuspect(ctx, suspect) {
		return p.settle(ctx, c, model.DispositionReturned, suspect, source, "could not enter suspect")
	}
	if !p.deps.Desk.Update(ctx, c.IsTorch()) {
		return p.settle(ctx, c, model.DispositionReturned, suspect, source, "could not update case")
	}
	if strings.Contains(p.deps.Desk.Banner(ctx), game.BannerDead) {
		return p.settle(ctx, c, model.DispositionBuried, suspect, source, "suspect is dead")
	}
	if !p.deps.Desk.Close(ctx) {
		return p.settle(ctx, c, model.DispositionBuried, suspect, source, "close failed")
	}

	out := p.settle(ctx, c, model.DispositionClosed, suspect, source, "suspect named")
	if out.Disposition == model.DispositionClosed && source == resolve.SourceBulletin {
		p.notify(ctx, fmt.Sprintf("Closed via 911: %s | %s -> **%s**", c.TimeOfCrime, c.Victim, suspect))
	}
	return out
}

func (p *Pipeline) isSelf(ctx context.Context, operatingName, suspect string) bool {
	names := []string{operatingName, p.police.Character}
	if onPage, ok := p.deps.Desk.PlayerName(ctx); ok {
		names = append(names, onPage)
	}
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" && strings.EqualFold(name, strings.TrimSpace(suspect)) {
			return true
		}
	}
	return false
}

// settle applies a disposition on the page and records it. Returned cases
// are given back even when ctx is already cancelled.
func (p *Pipeline) settle(ctx context.Context, c *model.Case, d model.Disposition, suspect string, source resolve.Source, reason string) Outcome {
	log := p.logger.With("case_id", c.ID)

	var clicked bool
	switch d {
	case model.DispositionBuried:
		clicked = p.deps.Desk.Bury(ctx)
	case model.DispositionReturned:
		clicked = p.deps.Desk.Return(context.WithoutCancel(ctx))
	case model.DispositionClosed:
		clicked = true
	}
	if !clicked {
		log.Warn("disposition button failed", "disposition", d)
	}

	if err := c.Settle(d, suspect); err != nil {
		log.Error("illegal disposition", "disposition", d, "error", err)
		return Outcome{CaseID: c.ID, Reason: err.Error()}
	}

	if d.Terminal() {
		p.settledRun[c.ID] = d
		if err := p.deps.Pending.Remove(c.ID); err != nil {
			log.Warn("could not clear pending forensics", "error", err)
		}
	}

	attrs := []any{"disposition", d, "reason", reason}
	if suspect != "" {
		attrs = append(attrs, "suspect", suspect, "source", source)
		if p.deps.Identities != nil {
			if id, ok := p.deps.Identities.Identity(suspect); ok && id.HomeCity != "" {
				attrs = append(attrs, "home_city", id.HomeCity)
			}
		}
	}
	log.Info("case settled", attrs...)

	p.deps.Metrics.Disposition(string(d), reason)
	p.record(ctx, c, source, reason)

	return Outcome{
		CaseID:      c.ID,
		Disposition: d,
		Suspect:     c.Suspect,
		Source:      source,
		Reason:      reason,
		Progress:    true,
	}
}

func (p *Pipeline) record(ctx context.Context, c *model.Case, source resolve.Source, reason string) {
	if p.deps.Journal == nil {
		return
	}
	err := p.deps.Journal.Record(context.WithoutCancel(ctx), store.JournalEntry{
		RunID:       p.runID,
		CaseID:      c.ID,
		Crime:       string(c.Crime),
		Victim:      c.Victim,
		TimeOfCrime: c.TimeOfCrime,
		Disposition: string(c.Disposition),
		Suspect:     c.Suspect,
		Source:      string(source),
		Reason:      reason,
	})
	if err != nil {
		p.logger.Warn("journal write failed", "case_id", c.ID, "error", err)
	}
}

func (p *Pipeline) notify(ctx context.Context, message string) {
	if p.deps.Notifier == nil {
		return
	}
	if err := p.deps.Notifier.Notify(ctx, message); err != nil {
		p.logger.Warn("notification failed", "error", err)
	}
}

func (p *Pipeline) readCase(ctx context.Context) (*model.Case, error) {
	markup, err := p.deps.Desk.ReadCase(ctx)
	if err != nil {
		return nil, err
	}
	return p.extractor.Extract(markup)
}
