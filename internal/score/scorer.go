package score

import (
	"fmt"
	"strings"

	"github.com/ppiankov/casework/internal/model"
)

// Status cell shades as rendered by the case lists
var (
	shadeWaiting = []string{"#e68f12", "rgb(230,143,18)"}
	shadeGreen   = []string{"#4c8a23", "rgb(76,138,35)"}
	shadeYellow  = []string{"#e8d71d", "rgb(232,215,29)"}
)

// Choice is the outcome of scanning a case list
type Choice struct {
	Row     *model.TrayRow
	Score   int
	Signals []Signal
}

// Found reports whether a row was picked
func (c Choice) Found() bool {
	return c.Row != nil
}

// Signal explains why rows were skipped or chosen
type Signal struct {
	Type        string
	Description string
	Data        map[string]interface{}
}

// Signal types
const (
	SignalSkippedWhack   = "skipped_whack"
	SignalSkippedWaiting = "skipped_waiting"
	SignalSkippedPending = "skipped_pending_forensics"
	SignalPicked         = "picked"
)

// TrayScorer picks which listed case to open next
type TrayScorer struct{}

// NewTrayScorer creates a new scorer
func NewTrayScorer() *TrayScorer {
	return &TrayScorer{}
}

// PickInTray returns the first in-tray row that is not a whacking, shows
// no waiting cell, and is not deferred for forensics while the action
// resource is unavailable.
func (s *TrayScorer) PickInTray(rows []model.TrayRow, pending map[int]bool, actionAvailable bool) Choice {
	var choice Choice
	whack, waiting, deferred := 0, 0, 0

	for i := range rows {
		row := &rows[i]
		switch {
		case row.Whack:
			whack++
		case s.waiting(*row):
			waiting++
		case !actionAvailable && pending[row.CaseID]:
			deferred++
		default:
			choice.Row = row
		}
		if choice.Found() {
			break
		}
	}

	choice.Signals = s.skipSignals(whack, waiting, deferred)
	if choice.Found() {
		choice.Signals = append(choice.Signals, pickedSignal(choice.Row, 0))
	}
	return choice
}

// AllWaiting reports whether every non-whacking row is still waiting on
// evidence
func (s *TrayScorer) AllWaiting(c Choice) bool {
	for _, sig := range c.Signals {
		if sig.Type == SignalSkippedPending {
			return false
		}
	}
	return !c.Found()
}

// PickReported scores reported cases by their DNA and fingerprint cells
// (green 2, yellow 1) and returns the best row without a waiting cell.
// Ties keep the earlier row.
func (s *TrayScorer) PickReported(rows []model.TrayRow) Choice {
	choice := Choice{Score: -1}
	whack, waiting := 0, 0

	for i := range rows {
		row := &rows[i]
		if row.Whack {
			whack++
			continue
		}
		if s.waiting(*row) {
			waiting++
			continue
		}
		if score := s.rowScore(*row); score > choice.Score {
			choice.Row = row
			choice.Score = score
		}
	}

	choice.Signals = s.skipSignals(whack, waiting, 0)
	if !choice.Found() {
		choice.Score = 0
		return choice
	}
	choice.Signals = append(choice.Signals, pickedSignal(choice.Row, choice.Score))
	return choice
}

func (s *TrayScorer) rowScore(row model.TrayRow) int {
	score := 0
	for _, col := range []model.TrayColumn{model.ColDNA, model.ColFingerprint} {
		switch shade := row.Shade(col); {
		case matches(shade, shadeGreen):
			score += 2
		case matches(shade, shadeYellow):
			score++
		}
	}
	return score
}

func (s *TrayScorer) waiting(row model.TrayRow) bool {
	for _, shade := range row.Shades {
		if matches(shade, shadeWaiting) {
			return true
		}
	}
	return false
}

func (s *TrayScorer) skipSignals(whack, waiting, deferred int) []Signal {
	var signals []Signal
	if whack > 0 {
		signals = append(signals, Signal{
			Type:        SignalSkippedWhack,
			Description: fmt.Sprintf("Skipped %d whacking case(s)", whack),
			Data:        map[string]interface{}{"count": whack},
		})
	}
	if waiting > 0 {
		signals = append(signals, Signal{
			Type:        SignalSkippedWaiting,
			Description: fmt.Sprintf("Skipped %d case(s) still waiting on evidence", waiting),
			Data:        map[string]interface{}{"count": waiting},
		})
	}
	if deferred > 0 {
		signals = append(signals, Signal{
			Type:        SignalSkippedPending,
			Description: fmt.Sprintf("Skipped %d case(s) awaiting action for forensics", deferred),
			Data:        map[string]interface{}{"count": deferred},
		})
	}
	return signals
}

func pickedSignal(row *model.TrayRow, score int) Signal {
	return Signal{
		Type:        SignalPicked,
		Description: fmt.Sprintf("Picked case %d (score %d)", row.CaseID, score),
		Data: map[string]interface{}{
			"case_id": row.CaseID,
			"score":   score,
			"formula": "green=2, yellow=1 over dna and fingerprint cells",
		},
	}
}

func matches(shade string, palette []string) bool {
	shade = strings.ToLower(strings.ReplaceAll(shade, " ", ""))
	for _, p := range palette {
		if strings.Contains(shade, p) {
			return true
		}
	}
	return false
}
