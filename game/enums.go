package game

import (
	"fmt"
	"slices"
)

// BattleResult is how the last battle ended, as the battle end judgment
// object stores it.
type BattleResult uint32

const (
	BattleResultNone BattleResult = iota
	BattleResultWin
	BattleResultLose
	BattleResultEscape
	BattleResultForced
	BattleResultRestart

	// BattleResultUnknown is never written by the game. It is returned when
	// the raw value is outside the known range, so callers never mistake a
	// garbage read for None.
	BattleResultUnknown BattleResult = ^BattleResult(0)
)

func (b BattleResult) String() string {
	switch b {
	case BattleResultNone:
		return "None"
	case BattleResultWin:
		return "Win"
	case BattleResultLose:
		return "Lose"
	case BattleResultEscape:
		return "Escape"
	case BattleResultForced:
		return "Forced"
	case BattleResultRestart:
		return "Restart"
	case BattleResultUnknown:
		return "Unknown"
	}
	return fmt.Sprintf("BattleResult(%d)", uint32(b))
}

// Monster is a monster party id. Only the encounters a run can split on are
// named; everything else prints as its raw id.
type Monster uint32

const (
	MonsterPiscodemons Monster = 88
	MonsterDeathEye    Monster = 197
	MonsterBlueDragon  Monster = 239
	MonsterEvilEye     Monster = 312
	MonsterLich2       Monster = 338
	MonsterMarilith2   Monster = 339
	MonsterKraken2     Monster = 340
	MonsterTiamat2     Monster = 341
	MonsterTiamat      Monster = 342
	MonsterKraken      Monster = 343
	MonsterMarilith    Monster = 344
	MonsterLich        Monster = 345
	MonsterChaos       Monster = 346
	MonsterVampire     Monster = 347
	MonsterAstos       Monster = 348
	MonsterPirates     Monster = 349
	MonsterGarland     Monster = 350
)

var monsterNames = map[Monster]string{
	MonsterPiscodemons: "Piscodemons",
	MonsterDeathEye:    "DeathEye",
	MonsterBlueDragon:  "BlueDragon",
	MonsterEvilEye:     "EvilEye",
	MonsterLich2:       "Lich2",
	MonsterMarilith2:   "Marilith2",
	MonsterKraken2:     "Kraken2",
	MonsterTiamat2:     "Tiamat2",
	MonsterTiamat:      "Tiamat",
	MonsterKraken:      "Kraken",
	MonsterMarilith:    "Marilith",
	MonsterLich:        "Lich",
	MonsterChaos:       "Chaos",
	MonsterVampire:     "Vampire",
	MonsterAstos:       "Astos",
	MonsterPirates:     "Pirates",
	MonsterGarland:     "Garland",
}

// route order for an any% run
var allMonsters = []Monster{
	MonsterGarland,
	MonsterPirates,
	MonsterPiscodemons,
	MonsterAstos,
	MonsterVampire,
	MonsterLich,
	MonsterEvilEye,
	MonsterKraken,
	MonsterBlueDragon,
	MonsterTiamat,
	MonsterMarilith,
	MonsterDeathEye,
	MonsterLich2,
	MonsterMarilith2,
	MonsterKraken2,
	MonsterTiamat2,
	MonsterChaos,
}

// KnownMonsters returns every named encounter, in route order.
func KnownMonsters() []Monster {
	return slices.Clone(allMonsters)
}

func (m Monster) String() string {
	if name, ok := monsterNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Monster(%d)", uint32(m))
}

// Pickup is the content id of a key item or vehicle. All ids the run cares
// about are below 64, which lets trackers keep seen pickups in one word.
type Pickup uint32

const (
	PickupAirShip       Pickup = 3
	PickupShip          Pickup = 4
	PickupLute          Pickup = 44
	PickupCrown         Pickup = 45
	PickupCrystalEye    Pickup = 46
	PickupTonic         Pickup = 47
	PickupMysticKey     Pickup = 48
	PickupNitro         Pickup = 49
	PickupRosettaStone  Pickup = 51
	PickupStarRuby      Pickup = 52
	PickupEarthRod      Pickup = 53
	PickupLeviStone     Pickup = 54
	PickupChime         Pickup = 55
	PickupWarpCube      Pickup = 57
	PickupBottledFaerie Pickup = 58
	PickupOxyale        Pickup = 59
	PickupCanoe         Pickup = 60
)

var pickupNames = map[Pickup]string{
	PickupAirShip:       "AirShip",
	PickupShip:          "Ship",
	PickupLute:          "Lute",
	PickupCrown:         "Crown",
	PickupCrystalEye:    "CrystalEye",
	PickupTonic:         "Tonic",
	PickupMysticKey:     "MysticKey",
	PickupNitro:         "Nitro",
	PickupRosettaStone:  "RosettaStone",
	PickupStarRuby:      "StarRuby",
	PickupEarthRod:      "EarthRod",
	PickupLeviStone:     "LeviStone",
	PickupChime:         "Chime",
	PickupWarpCube:      "WarpCube",
	PickupBottledFaerie: "BottledFaerie",
	PickupOxyale:        "Oxyale",
	PickupCanoe:         "Canoe",
}

// route order for an any% run
var allPickups = []Pickup{
	PickupLute,
	PickupShip,
	PickupCrown,
	PickupCrystalEye,
	PickupTonic,
	PickupMysticKey,
	PickupNitro,
	PickupStarRuby,
	PickupEarthRod,
	PickupCanoe,
	PickupLeviStone,
	PickupAirShip,
	PickupWarpCube,
	PickupBottledFaerie,
	PickupOxyale,
	PickupRosettaStone,
	PickupChime,
}

// KnownPickups returns every named pickup, in route order.
func KnownPickups() []Pickup {
	return slices.Clone(allPickups)
}

func (p Pickup) String() string {
	if name, ok := pickupNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Pickup(%d)", uint32(p))
}
