// Package game binds the pointer paths and class layouts of the Pixel
// Remaster to typed accessors. Everything here reads through an
// il2cpp.Resolver, so the same bindings work against a live process or a
// snapshot as long as the offset table matches the build.
package game

import (
	"fmt"

	"ffsplit/il2cpp"
	"ffsplit/pod"
	"ffsplit/process"
)

// Class and field names as they appear in the IL2CPP metadata. Compiler
// generated backing fields keep their mangled names, and the misspelled
// importantOwendItems is the game's own.
const (
	classBattlePlug     = "BattlePlugManager"
	classUserData       = "UserDataManager"
	classFade           = "FadeManager"
	classOwnedItem      = "OwnedItemData"
	classTransportation = "OwnedTransportationData"

	fieldItemID   = "<ItemId>k__BackingField"
	fieldSaveData = "saveData"
)

// OwnedItem and OwnedTransportation are opaque heap objects. Their fields
// are read at offsets from the resolver, never by Go struct layout.
type (
	OwnedItem           struct{}
	OwnedTransportation struct{}
)

// TransportationSave is the serialized state the game keeps per owned
// vehicle. MapID is negative until the vehicle is placed on the world map.
type TransportationSave struct {
	ID    uint32
	MapID int32
}

// fieldOffset lazily resolves one class field offset and caches it on
// success, mirroring Value's resolve-once behavior.
type fieldOffset struct {
	class    string
	field    string
	off      process.ProcessMemorySize
	resolved bool
}

func (f *fieldOffset) get(r il2cpp.Resolver) (process.ProcessMemorySize, error) {
	if !f.resolved {
		off, err := r.FieldOffset(f.class, f.field)
		if err != nil {
			return 0, err
		}
		f.off = off
		f.resolved = true
	}
	return f.off, nil
}

// Data exposes the game state an autosplitter polls. Every accessor returns
// an error when any hop of its pointer path cannot be read; callers treat
// that as "unknown this poll" and keep the previous observation.
type Data struct {
	resolver il2cpp.Resolver

	battleActive  *il2cpp.Value[byte]
	monsterParty  *il2cpp.Value[il2cpp.Array[uint32]]
	battleResult  *il2cpp.Value[uint32]
	battlePlaying *il2cpp.Value[byte]
	keyItems      *il2cpp.Value[il2cpp.Map[uint32, il2cpp.Ptr[OwnedItem]]]
	vehicles      *il2cpp.Value[il2cpp.List[il2cpp.Ptr[OwnedTransportation]]]
	titleFade     *il2cpp.Value[byte]

	itemID   fieldOffset
	saveData fieldOffset
}

func New(r il2cpp.Resolver) *Data {
	return &Data{
		resolver: r,

		battleActive: il2cpp.NewValue[byte](r,
			classBattlePlug, "instance", "isBattle"),
		monsterParty: il2cpp.NewValue[il2cpp.Array[uint32]](r,
			classBattlePlug, "instance",
			"<InstantiateManager>k__BackingField",
			"<battleEnemyInstanceData>k__BackingField",
			"<monsterParty>k__BackingField",
			"valueIntList"),
		battleResult: il2cpp.NewValue[uint32](r,
			classBattlePlug, "instance",
			"<BattleEndJugment>k__BackingField", "resultType"),
		battlePlaying: il2cpp.NewValue[byte](r,
			classBattlePlug, "instance",
			"<EventCommand>k__BackingField", "<isBattlePlay>k__BackingField"),
		keyItems: il2cpp.NewValue[il2cpp.Map[uint32, il2cpp.Ptr[OwnedItem]]](r,
			classUserData, "instance", "importantOwendItems"),
		vehicles: il2cpp.NewValue[il2cpp.List[il2cpp.Ptr[OwnedTransportation]]](r,
			classUserData, "instance", "<OwnedTransportationList>k__BackingField"),
		titleFade: il2cpp.NewValue[byte](r,
			classFade, "instance", "isFadeOut"),

		itemID:   fieldOffset{class: classOwnedItem, field: fieldItemID},
		saveData: fieldOffset{class: classTransportation, field: fieldSaveData},
	}
}

// BattleActive reports whether a battle scene is loaded.
func (d *Data) BattleActive(p process.ProcessRead) (bool, error) {
	return d.checkedBool(p, d.battleActive)
}

// BattlePlaying reports whether the battle event command is running. It
// stays true for a few frames after BattleActive drops on normal wins and
// drops together with it on resets, which is what tells the two apart.
func (d *Data) BattlePlaying(p process.ProcessRead) (bool, error) {
	return d.checkedBool(p, d.battlePlaying)
}

// TitleFadeOut reports whether the title screen is fading to black, the
// first observable moment of a new run.
func (d *Data) TitleFadeOut(p process.ProcessRead) (bool, error) {
	return d.checkedBool(p, d.titleFade)
}

func (d *Data) checkedBool(p process.ProcessRead, v *il2cpp.Value[byte]) (bool, error) {
	raw, err := v.Read(p)
	if err != nil {
		return false, err
	}
	b, err := pod.Bool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: %w", v.Path(), err)
	}
	return b, nil
}

// Encounter returns the id of the monster party the current battle was
// started with.
func (d *Data) Encounter(p process.ProcessRead) (Monster, error) {
	party, err := d.monsterParty.Read(p)
	if err != nil {
		return 0, err
	}
	if party.IsNull() {
		return 0, fmt.Errorf("monster party: %w", process.ErrInvalidPointer)
	}

	n, err := party.Len(p)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, fmt.Errorf("monster party: empty")
	}

	id, err := party.At(p, 0)
	if err != nil {
		return 0, err
	}
	return Monster(id), nil
}

// BattleResult returns the outcome of the most recent battle. Raw values
// outside the known range come back as BattleResultUnknown with an error.
func (d *Data) BattleResult(p process.ProcessRead) (BattleResult, error) {
	raw, err := d.battleResult.Read(p)
	if err != nil {
		return BattleResultUnknown, err
	}
	res, err := pod.Enum(raw, BattleResultRestart)
	if err != nil {
		return BattleResultUnknown, fmt.Errorf("resultType: %w", err)
	}
	return res, nil
}

// KeyItems calls yield for every key item in the owned item table, in slot
// order. An unreadable entry aborts the walk so a half observed inventory
// is never mistaken for the real one.
func (d *Data) KeyItems(p process.ProcessRead, yield func(Pickup)) error {
	off, err := d.itemID.get(d.resolver)
	if err != nil {
		return err
	}

	table, err := d.keyItems.Read(p)
	if err != nil {
		return err
	}
	if table.IsNull() {
		return fmt.Errorf("key item table: %w", process.ErrInvalidPointer)
	}

	it := table.Iter(p)
	for e, ok := it.Next(); ok; e, ok = it.Next() {
		if e.Value.IsNull() {
			continue
		}
		id, err := process.ReadUINT32(p, e.Value.Addr+process.ProcessMemoryAddress(off))
		if err != nil {
			return fmt.Errorf("key item %v: %w", e.Value, err)
		}
		yield(Pickup(id))
	}
	return it.Err()
}

// Vehicles calls yield for every owned vehicle already placed on the world
// map, in list order. Entries with a negative MapID are owned but not yet
// usable and are skipped.
func (d *Data) Vehicles(p process.ProcessRead, yield func(Pickup)) error {
	off, err := d.saveData.get(d.resolver)
	if err != nil {
		return err
	}

	list, err := d.vehicles.Read(p)
	if err != nil {
		return err
	}
	if list.IsNull() {
		return fmt.Errorf("transportation list: %w", process.ErrInvalidPointer)
	}

	it := list.Iter(p)
	for ptr, ok := it.Next(); ok; ptr, ok = it.Next() {
		if ptr.IsNull() {
			continue
		}
		save, err := pod.ReadT[TransportationSave](p, ptr.Addr+process.ProcessMemoryAddress(off))
		if err != nil {
			return fmt.Errorf("transportation %v: %w", ptr, err)
		}
		if save.MapID < 0 {
			continue
		}
		yield(Pickup(save.ID))
	}
	return it.Err()
}
