package store

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/ppiankov/casework/internal/logging"
	"github.com/ppiankov/casework/internal/model"
)

// BulletinsFile is the file name of the 911 cache in the data dir
const BulletinsFile = "police_911_cache.json"

// bulletinRecord is the on-disk shape of one bulletin
type bulletinRecord struct {
	Time        string `json:"time"`
	Crime       string `json:"crime"`
	Victim      string `json:"victim"`
	Suspect     string `json:"suspect"`
	OnlineUsers string `json:"online_users,omitempty"`
}

// Bulletins is the append-only log of copied 911 reports
type Bulletins struct {
	path   string
	logger *slog.Logger
}

// NewBulletins opens the bulletin log stored under dataDir
func NewBulletins(dataDir string, logger *slog.Logger) *Bulletins {
	return &Bulletins{
		path:   filepath.Join(dataDir, BulletinsFile),
		logger: logging.OrDefault(logger, "bulletins"),
	}
}

// ReadAll returns every stored bulletin. An unreadable file reads as empty.
func (b *Bulletins) ReadAll() []model.Bulletin {
	records, err := b.read()
	if err != nil {
		b.logger.Warn("bulletin log unreadable, treating as empty", "path", b.path, "error", err)
		return nil
	}
	out := make([]model.Bulletin, 0, len(records))
	for _, r := range records {
		out = append(out, fromRecord(r))
	}
	return out
}

// AppendUnique stores the bulletins not already logged and reports how
// many were added. Identity is (time, crime, victim, suspect).
func (b *Bulletins) AppendUnique(entries []model.Bulletin) (int, error) {
	records, err := b.read()
	if err != nil {
		b.logger.Warn("bulletin log unreadable, starting a new one", "path", b.path, "error", err)
		records = nil
	}

	seen := make(map[string]bool, len(records))
	for _, r := range records {
		seen[fromRecord(r).Key()] = true
	}

	added := 0
	for _, e := range entries {
		key := e.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		records = append(records, toRecord(e))
		added++
	}
	if added == 0 {
		return 0, nil
	}
	if err := writeJSON(b.path, records); err != nil {
		return 0, fmt.Errorf("append bulletins: %w", err)
	}
	return added, nil
}

func (b *Bulletins) read() ([]bulletinRecord, error) {
	var records []bulletinRecord
	if err := readJSON(b.path, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func toRecord(b model.Bulletin) bulletinRecord {
	return bulletinRecord{
		Time:        b.Time,
		Crime:       b.Crime,
		Victim:      b.Victim,
		Suspect:     b.Suspect,
		OnlineUsers: strings.Join(b.OnlineUsers, ", "),
	}
}

func fromRecord(r bulletinRecord) model.Bulletin {
	b := model.Bulletin{
		Time:    r.Time,
		Crime:   r.Crime,
		Victim:  r.Victim,
		Suspect: r.Suspect,
	}
	for _, name := range strings.Split(r.OnlineUsers, ",") {
		if name = strings.TrimSpace(name); name != "" {
			b.OnlineUsers = append(b.OnlineUsers, name)
		}
	}
	return b
}
