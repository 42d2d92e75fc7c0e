package game

import "github.com/samdwyer/sagequest/internal/gamedata"

// MapSet names the map resources a session loads.
type MapSet struct {
	Overworld  string
	HouseSmall string
	HouseLarge string
	// Dungeon is a format pattern taking the level number.
	Dungeon string
}

// Config holds game configuration options.
type Config struct {
	// Seed for random number generation. Used for NPC skins and answer order.
	// A seed of 0 means a random seed will be generated.
	Seed int64
	// Locale selects the dialogue and quiz resources ("en", "es").
	Locale string
	// TickRate is the number of loop ticks per second.
	TickRate int
	// KeyHold is how many ticks a tapped movement key stays held.
	KeyHold int

	LocationsFile string
	Maps          MapSet
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() Config {
	return Config{
		Locale:        "en",
		TickRate:      120,
		KeyHold:       18,
		LocationsFile: gamedata.LocationsFile,
		Maps: MapSet{
			Overworld:  "maps/overworld.tmx",
			HouseSmall: "maps/house_small.tmx",
			HouseLarge: "maps/house_large.tmx",
			Dungeon:    "maps/dungeon%d.tmx",
		},
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Locale == "" {
		c.Locale = d.Locale
	}
	if c.TickRate <= 0 {
		c.TickRate = d.TickRate
	}
	if c.KeyHold <= 0 {
		c.KeyHold = d.KeyHold
	}
	if c.LocationsFile == "" {
		c.LocationsFile = d.LocationsFile
	}
	if c.Maps == (MapSet{}) {
		c.Maps = d.Maps
	}
	return c
}
