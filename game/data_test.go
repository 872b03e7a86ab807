package game_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ffsplit/game"
	"ffsplit/il2cpp"
	"ffsplit/process_blob"
)

// One fake GameAssembly region carrying every manager the facade touches.
const (
	moduleBase = 0x200000
	regionSize = 0x1000

	bpStaticOff = 0x40
	udStaticOff = 0x48
	fmStaticOff = 0x50

	bpInstance   = 0x200100
	instMgr      = 0x200180
	enemyData    = 0x2001C0
	judgment     = 0x200200
	eventCmd     = 0x200240
	partyObj     = 0x200280
	partyArray   = 0x2002C0
	udInstance   = 0x200300
	itemDict     = 0x200340
	itemSlots    = 0x200380
	itemObjA     = 0x200440
	itemObjB     = 0x200470
	vehicleList  = 0x200500
	vehicleItems = 0x200540
	vehObjA      = 0x200580
	vehObjB      = 0x2005C0
	fadeInstance = 0x200600

	isBattleOff     = 0x28
	instMgrOff      = 0x30
	judgmentOff     = 0x38
	eventCmdOff     = 0x40
	enemyDataOff    = 0x18
	partyObjOff     = 0x20
	valueIntListOff = 0x10
	resultTypeOff   = 0x14
	battlePlayOff   = 0x19
	itemDictOff     = 0x20
	vehicleListOff  = 0x28
	fadeOutOff      = 0x1C
	itemIDOff       = 0x10
	saveDataOff     = 0x14
)

func putU32(data []byte, addr uint64, v uint32) {
	binary.LittleEndian.PutUint32(data[addr-moduleBase:], v)
}

func putU64(data []byte, addr uint64, v uint64) {
	binary.LittleEndian.PutUint64(data[addr-moduleBase:], v)
}

func buildRegion() []byte {
	data := make([]byte, regionSize)

	putU64(data, moduleBase+bpStaticOff, bpInstance)
	putU64(data, moduleBase+udStaticOff, udInstance)
	putU64(data, moduleBase+fmStaticOff, fadeInstance)

	data[bpInstance-moduleBase+isBattleOff] = 1
	putU64(data, bpInstance+instMgrOff, instMgr)
	putU64(data, bpInstance+judgmentOff, judgment)
	putU64(data, bpInstance+eventCmdOff, eventCmd)

	putU64(data, instMgr+enemyDataOff, enemyData)
	putU64(data, enemyData+partyObjOff, partyObj)
	putU64(data, partyObj+valueIntListOff, partyArray)

	putU32(data, partyArray+0x18, 3)
	putU32(data, partyArray+0x20, uint32(game.MonsterGarland))
	putU32(data, partyArray+0x24, 12)
	putU32(data, partyArray+0x28, 13)

	putU32(data, judgment+resultTypeOff, uint32(game.BattleResultWin))
	data[eventCmd-moduleBase+battlePlayOff] = 1

	putU64(data, udInstance+itemDictOff, itemDict)
	putU64(data, udInstance+vehicleListOff, vehicleList)

	putU64(data, itemDict+0x18, itemSlots)
	putU32(data, itemDict+0x20, 2)
	putU32(data, itemSlots+0x18, 4)
	// slot 0 live, slot 1 tombstone, slot 2 live, slot 3 free
	putU32(data, itemSlots+0x20, 7)
	putU32(data, itemSlots+0x20+8, uint32(game.PickupLute))
	putU64(data, itemSlots+0x20+16, itemObjA)
	putU32(data, itemSlots+0x20+48, 3)
	putU32(data, itemSlots+0x20+48+4, 1)
	putU32(data, itemSlots+0x20+48+8, uint32(game.PickupMysticKey))
	putU64(data, itemSlots+0x20+48+16, itemObjB)

	putU32(data, itemObjA+itemIDOff, uint32(game.PickupLute))
	putU32(data, itemObjB+itemIDOff, uint32(game.PickupMysticKey))

	putU64(data, vehicleList+0x10, vehicleItems)
	putU32(data, vehicleList+0x18, 2)
	putU32(data, vehicleItems+0x18, 4)
	putU64(data, vehicleItems+0x20, vehObjA)
	putU64(data, vehicleItems+0x28, vehObjB)

	putU32(data, vehObjA+saveDataOff, uint32(game.PickupShip))
	putU32(data, vehObjA+saveDataOff+4, 1)
	putU32(data, vehObjB+saveDataOff, uint32(game.PickupAirShip))
	putU32(data, vehObjB+saveDataOff+4, ^uint32(0)) // MapID -1, not placed yet

	data[fadeInstance-moduleBase+fadeOutOff] = 0

	return data
}

func offsetTable() il2cpp.Table {
	return il2cpp.Table{
		Module: "GameAssembly.dll",
		Paths: map[string]il2cpp.PathSpec{
			"BattlePlugManager.instance.isBattle": {
				Root: bpStaticOff, Offsets: []uint64{0x0, isBattleOff}},
			"BattlePlugManager.instance.<InstantiateManager>k__BackingField.<battleEnemyInstanceData>k__BackingField.<monsterParty>k__BackingField.valueIntList": {
				Root: bpStaticOff, Offsets: []uint64{0x0, instMgrOff, enemyDataOff, partyObjOff, valueIntListOff}},
			"BattlePlugManager.instance.<BattleEndJugment>k__BackingField.resultType": {
				Root: bpStaticOff, Offsets: []uint64{0x0, judgmentOff, resultTypeOff}},
			"BattlePlugManager.instance.<EventCommand>k__BackingField.<isBattlePlay>k__BackingField": {
				Root: bpStaticOff, Offsets: []uint64{0x0, eventCmdOff, battlePlayOff}},
			"UserDataManager.instance.importantOwendItems": {
				Root: udStaticOff, Offsets: []uint64{0x0, itemDictOff}},
			"UserDataManager.instance.<OwnedTransportationList>k__BackingField": {
				Root: udStaticOff, Offsets: []uint64{0x0, vehicleListOff}},
			"FadeManager.instance.isFadeOut": {
				Root: fmStaticOff, Offsets: []uint64{0x0, fadeOutOff}},
		},
		Classes: map[string]map[string]uint64{
			"OwnedItemData":           {"<ItemId>k__BackingField": itemIDOff},
			"OwnedTransportationData": {"saveData": saveDataOff},
		},
	}
}

func newData(data []byte) (*game.Data, *process_blob.ProcessBlob) {
	blob := process_blob.NewProcessBlob(moduleBase, data)
	res := il2cpp.NewTableResolverAt(offsetTable(), moduleBase)
	return game.New(res), blob
}

func TestBattleFlags(t *testing.T) {
	data := buildRegion()
	d, blob := newData(data)

	active, err := d.BattleActive(blob)
	require.NoError(t, err)
	assert.True(t, active)

	playing, err := d.BattlePlaying(blob)
	require.NoError(t, err)
	assert.True(t, playing)

	fade, err := d.TitleFadeOut(blob)
	require.NoError(t, err)
	assert.False(t, fade)

	data[bpInstance-moduleBase+isBattleOff] = 0
	active, err = d.BattleActive(blob)
	require.NoError(t, err)
	assert.False(t, active)
}

func TestBattleFlagRejectsGarbage(t *testing.T) {
	data := buildRegion()
	d, blob := newData(data)

	// A mid-write or wrong-build read must not pass for a bool.
	data[bpInstance-moduleBase+isBattleOff] = 2

	_, err := d.BattleActive(blob)
	assert.Error(t, err)
}

func TestEncounter(t *testing.T) {
	data := buildRegion()
	d, blob := newData(data)

	m, err := d.Encounter(blob)
	require.NoError(t, err)
	assert.Equal(t, game.MonsterGarland, m)
	assert.Equal(t, "Garland", m.String())
}

func TestEncounterEmptyParty(t *testing.T) {
	data := buildRegion()
	d, blob := newData(data)

	putU32(data, partyArray+0x18, 0)

	_, err := d.Encounter(blob)
	assert.Error(t, err)
}

func TestBattleResult(t *testing.T) {
	data := buildRegion()
	d, blob := newData(data)

	res, err := d.BattleResult(blob)
	require.NoError(t, err)
	assert.Equal(t, game.BattleResultWin, res)

	putU32(data, judgment+resultTypeOff, 99)
	res, err = d.BattleResult(blob)
	assert.Error(t, err)
	assert.Equal(t, game.BattleResultUnknown, res)
}

func TestKeyItems(t *testing.T) {
	data := buildRegion()
	d, blob := newData(data)

	var got []game.Pickup
	err := d.KeyItems(blob, func(p game.Pickup) { got = append(got, p) })
	require.NoError(t, err)
	assert.Equal(t, []game.Pickup{game.PickupLute, game.PickupMysticKey}, got)
}

func TestVehiclesSkipUnplaced(t *testing.T) {
	data := buildRegion()
	d, blob := newData(data)

	var got []game.Pickup
	err := d.Vehicles(blob, func(p game.Pickup) { got = append(got, p) })
	require.NoError(t, err)
	assert.Equal(t, []game.Pickup{game.PickupShip}, got)

	// Airship takes off. Now both vehicles count.
	putU32(data, vehObjB+saveDataOff+4, 2)

	got = got[:0]
	err = d.Vehicles(blob, func(p game.Pickup) { got = append(got, p) })
	require.NoError(t, err)
	assert.Equal(t, []game.Pickup{game.PickupShip, game.PickupAirShip}, got)
}

func TestBrokenChainSurfacesError(t *testing.T) {
	data := buildRegion()
	d, blob := newData(data)

	// Scene change dropped the manager. Every battle accessor must fail
	// rather than report a stale value.
	putU64(data, moduleBase+bpStaticOff, 0)

	_, err := d.BattleActive(blob)
	assert.Error(t, err)
	_, err = d.Encounter(blob)
	assert.Error(t, err)
	_, err = d.BattleResult(blob)
	assert.Error(t, err)
	_, err = d.BattlePlaying(blob)
	assert.Error(t, err)
}

func TestResolverAgainstSnapshotModuleBase(t *testing.T) {
	data := buildRegion()

	snap := process_blob.NewSnapshot()
	snap.AddRegion(moduleBase, "r-xp", "/game/GameAssembly.dll", data)

	res, err := il2cpp.NewTableResolver(offsetTable(), snap)
	require.NoError(t, err)
	assert.Equal(t, il2cpp.Address(moduleBase), res.Base())

	d := game.New(res)
	active, err := d.BattleActive(snap)
	require.NoError(t, err)
	assert.True(t, active)
}
