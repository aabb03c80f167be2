package model

import "time"

// CooldownLayout is the timestamp format used by the identity store
const CooldownLayout = "2006-01-02 15:04:05.000000"

// HomeCityKey is the identity field holding the player's home city
const HomeCityKey = "home_city"

// Identity is what the local knowledge base holds about one player
type Identity struct {
	Name      string
	HomeCity  string
	Cooldowns map[CrimeType]time.Time
}
