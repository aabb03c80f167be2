package store

import (
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/ppiankov/casework/internal/logging"
)

// PendingForensicsFile is the file name of the pending set in the data dir
const PendingForensicsFile = "pending_forensics.json"

// PendingForensics is the persisted set of case IDs waiting for the action
// resource before forensics can be requested. It is stored as a sorted
// JSON array of integers.
type PendingForensics struct {
	path   string
	logger *slog.Logger
}

// NewPendingForensics opens the pending set stored under dataDir
func NewPendingForensics(dataDir string, logger *slog.Logger) *PendingForensics {
	return &PendingForensics{
		path:   filepath.Join(dataDir, PendingForensicsFile),
		logger: logging.OrDefault(logger, "pending-forensics"),
	}
}

// Read returns the current set. An unreadable file reads as empty.
func (p *PendingForensics) Read() map[int]bool {
	var ids []int
	if err := readJSON(p.path, &ids); err != nil {
		p.logger.Warn("pending set unreadable, treating as empty", "path", p.path, "error", err)
		ids = nil
	}
	set := make(map[int]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// Write replaces the stored set
func (p *PendingForensics) Write(set map[int]bool) error {
	ids := make([]int, 0, len(set))
	for id, ok := range set {
		if ok {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return writeJSON(p.path, ids)
}

// Contains reports whether id is marked pending
func (p *PendingForensics) Contains(id int) bool {
	return p.Read()[id]
}

// Add marks id as pending
func (p *PendingForensics) Add(id int) error {
	set := p.Read()
	if set[id] {
		return nil
	}
	set[id] = true
	return p.Write(set)
}

// Remove clears id from the set. Removing an absent id does not touch the file.
func (p *PendingForensics) Remove(id int) error {
	set := p.Read()
	if !set[id] {
		return nil
	}
	delete(set, id)
	return p.Write(set)
}

// Clear empties the set
func (p *PendingForensics) Clear() error {
	return p.Write(nil)
}
