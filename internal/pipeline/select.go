package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/casework/internal/game"
	"github.com/ppiankov/casework/internal/score"
)

// openNextCase assigns a case when none is active. It returns done with an
// outcome when the invocation ends here: banners, nothing eligible, or a
// row that would not open.
func (p *Pipeline) openNextCase(ctx context.Context) (Outcome, bool, error) {
	tray, err := p.deps.Desk.OpenTray(ctx)
	if err != nil {
		return Outcome{}, true, err
	}

	switch {
	case strings.Contains(tray.Banner, game.BannerTooFast):
		p.logger.Info("viewed unassigned cases too quickly, backing off")
		return Outcome{Progress: true, Wait: tooFastWait.pick(), Reason: "tray viewed too quickly"}, true, nil
	case strings.Contains(tray.Banner, game.BannerNoCases):
		p.logger.Info("no new cases available")
		return Outcome{Wait: idleWait.pick(), Reason: "no new cases"}, true, nil
	}

	var choice score.Choice
	if len(tray.Rows) > 0 {
		available := p.deps.Clock.ActionRemaining(ctx) <= 0
		choice = p.scorer.PickInTray(tray.Rows, p.deps.Pending.Read(), available)
		if !choice.Found() {
			reason := "no eligible in-tray case"
			if p.scorer.AllWaiting(choice) {
				reason = "all in-tray cases waiting on evidence"
			}
			p.logSignals(choice)
			return Outcome{Progress: true, Wait: waitingWait.pick(), Reason: reason}, true, nil
		}
	} else {
		rows, err := p.deps.Desk.OpenReported(ctx)
		if err != nil {
			return Outcome{}, true, err
		}
		choice = p.scorer.PickReported(rows)
		if !choice.Found() {
			p.logSignals(choice)
			return Outcome{Wait: idleWait.pick(), Reason: "no eligible reported case"}, true, nil
		}
	}

	p.logSignals(choice)
	if !p.deps.Desk.SelectCase(ctx, choice.Row.CaseID) {
		return Outcome{CaseID: choice.Row.CaseID, Wait: idleWait.pick(), Reason: "case row would not open"}, true,
			fmt.Errorf("open case %d: selection failed", choice.Row.CaseID)
	}
	return Outcome{}, false, nil
}

func (p *Pipeline) logSignals(choice score.Choice) {
	for _, sig := range choice.Signals {
		p.logger.Debug(sig.Description, "signal", sig.Type)
	}
}
