// Package settings holds the driver configuration: which process to attach
// to, how fast to poll, and which events actually split. The Tracker emits
// everything it sees; only the driver filters, so recording and filtering
// stay independent.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"ffsplit/game"
	"ffsplit/splits"
)

// BattleSplit selects which battle timing forwards as the split for bosses
// that emit both.
type BattleSplit string

const (
	// SplitDeathAnimation splits when the win is decided, while the battle
	// scene is still up.
	SplitDeathAnimation BattleSplit = "death_animation"

	// SplitBattleEnd splits when the battle scene unloads.
	SplitBattleEnd BattleSplit = "battle_end"
)

type LogSettings struct {
	// EventsDB is the sqlite file events are recorded to. Empty disables
	// recording.
	EventsDB string `yaml:"events_db"`
}

type MonitorSettings struct {
	// Listen is the host:port of the status endpoint. Empty disables it.
	Listen      string `yaml:"listen"`
	OpenBrowser bool   `yaml:"open_browser"`
}

type Settings struct {
	Process        string          `yaml:"process"`
	TickHz         int             `yaml:"tick_hz"`
	Offsets        string          `yaml:"offsets"`
	BattleSplit    BattleSplit     `yaml:"battle_split"`
	StartOnNewGame bool            `yaml:"start_on_new_game"`
	LiveSplit      string          `yaml:"livesplit"`
	Splits         map[string]bool `yaml:"splits"`
	Log            LogSettings     `yaml:"log"`
	Monitor        MonitorSettings `yaml:"monitor"`
}

// Default returns the stock configuration: the Steam process name, 60 Hz
// polling, and every known boss and pickup enabled.
func Default() Settings {
	s := Settings{
		Process:        "FINAL FANTASY.exe",
		TickHz:         60,
		Offsets:        "offsets/ffpr-1.0.yaml",
		BattleSplit:    SplitDeathAnimation,
		StartOnNewGame: true,
		Splits:         make(map[string]bool),
	}
	for _, m := range game.KnownMonsters() {
		s.Splits[toggleName(m.String())] = true
	}
	for _, p := range game.KnownPickups() {
		s.Splits[toggleName(p.String())] = true
	}
	return s
}

// Load reads a settings file over the defaults. A missing file is not an
// error; it just means stock settings. Partial files override only the keys
// they name, including individual split toggles.
func Load(path string) (Settings, error) {
	s := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return s, fmt.Errorf("load settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return s, s.validate()
}

func (s Settings) validate() error {
	switch s.BattleSplit {
	case SplitDeathAnimation, SplitBattleEnd:
	default:
		return fmt.Errorf("battle_split: unknown mode %q", s.BattleSplit)
	}
	if s.TickHz <= 0 || s.TickHz > 1000 {
		return fmt.Errorf("tick_hz: %d out of range", s.TickHz)
	}
	return nil
}

// TickInterval converts the poll rate to a ticker period.
func (s Settings) TickInterval() time.Duration {
	return time.Second / time.Duration(s.TickHz)
}

// Filter reports whether an event should be forwarded as a split. Chaos is
// special: it only ever emits BattleWon, so its toggle applies in both
// timing modes.
func (s Settings) Filter(ev splits.Event) bool {
	switch ev.Kind {
	case splits.RunStart:
		return s.StartOnNewGame

	case splits.ItemPickup:
		return s.Splits[toggleName(ev.Item.String())]

	case splits.BattleWon:
		if ev.Monster != game.MonsterChaos && s.BattleSplit != SplitDeathAnimation {
			return false
		}
		return s.Splits[toggleName(ev.Monster.String())]

	case splits.BattleEnded:
		if s.BattleSplit != SplitBattleEnd {
			return false
		}
		return s.Splits[toggleName(ev.Monster.String())]
	}
	return false
}

func toggleName(name string) string {
	return strings.ToLower(name)
}
