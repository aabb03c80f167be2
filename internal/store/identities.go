package store

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/ppiankov/casework/internal/logging"
	"github.com/ppiankov/casework/internal/model"
)

// IdentitiesFile is the file name of the identity store in the data dir
const IdentitiesFile = "player_data.json"

// Identities is the local knowledge base about players, a JSON object
// keyed by player name whose values map field names to strings
type Identities struct {
	path   string
	logger *slog.Logger
}

// NewIdentities opens the identity store under dataDir
func NewIdentities(dataDir string, logger *slog.Logger) *Identities {
	return &Identities{
		path:   filepath.Join(dataDir, IdentitiesFile),
		logger: logging.OrDefault(logger, "identities"),
	}
}

// Get returns one field of a player record
func (s *Identities) Get(player, key string) (string, bool) {
	fields, ok := s.load()[player]
	if !ok {
		return "", false
	}
	v, ok := fields[key]
	return v, ok
}

// Set writes one field of a player record, creating the record if needed
func (s *Identities) Set(player, key, value string) error {
	all := s.load()
	if all[player] == nil {
		all[player] = make(map[string]string)
	}
	all[player][key] = value
	if err := writeJSON(s.path, all); err != nil {
		return fmt.Errorf("set %s.%s: %w", player, key, err)
	}
	return nil
}

// Delete removes a player record. Deleting an unknown player is a no-op.
func (s *Identities) Delete(player string) error {
	all := s.load()
	if _, ok := all[player]; !ok {
		return nil
	}
	delete(all, player)
	if err := writeJSON(s.path, all); err != nil {
		return fmt.Errorf("delete %s: %w", player, err)
	}
	return nil
}

// Identity decodes a player record. Cooldown fields that do not parse are skipped.
func (s *Identities) Identity(player string) (model.Identity, bool) {
	fields, ok := s.load()[player]
	if !ok {
		return model.Identity{}, false
	}
	id := model.Identity{
		Name:      player,
		HomeCity:  fields[model.HomeCityKey],
		Cooldowns: make(map[model.CrimeType]time.Time),
	}
	for key, value := range fields {
		if key == model.HomeCityKey {
			continue
		}
		t, err := time.Parse(model.CooldownLayout, value)
		if err != nil {
			continue
		}
		id.Cooldowns[model.CrimeType(key)] = t
	}
	return id, true
}

// SetCooldown records when a crime type becomes available again for player
func (s *Identities) SetCooldown(player string, crime model.CrimeType, until time.Time) error {
	return s.Set(player, string(crime), until.Format(model.CooldownLayout))
}

// Players lists every stored player name
func (s *Identities) Players() []string {
	all := s.load()
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (s *Identities) load() map[string]map[string]string {
	all := make(map[string]map[string]string)
	if err := readJSON(s.path, &all); err != nil {
		s.logger.Warn("identity store unreadable, treating as empty", "path", s.path, "error", err)
		return make(map[string]map[string]string)
	}
	if all == nil {
		all = make(map[string]map[string]string)
	}
	return all
}
