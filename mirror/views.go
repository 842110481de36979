package mirror

import (
	"fmt"

	"wizmind/telemetry"
)

// Entity is a decoded entity record
type Entity struct {
	stamp
	addr telemetry.Ptr32
	raw  telemetry.Entity

	inventory []*Item
}

func (m *Mirror) newEntity(addr telemetry.Ptr32) (*Entity, error) {
	raw, err := telemetry.ReadRecord[telemetry.Entity](m.reader, addr)
	if err != nil {
		return nil, err
	}
	return &Entity{stamp: m.stamp(), addr: addr, raw: raw}, nil
}

func (e *Entity) Address() telemetry.Ptr32 { return e.addr }

// Raw returns the record as read, without the stale check
func (e *Entity) Raw() telemetry.Entity { return e.raw }

func (e *Entity) ID() int32               { e.check(); return e.raw.ID }
func (e *Entity) Name() string            { e.check(); return e.m.names.EntityName(e.raw.ID) }
func (e *Entity) Integrity() int32        { e.check(); return e.raw.Integrity }
func (e *Entity) Relation() int32         { e.check(); return e.raw.Relation }
func (e *Entity) ActiveState() int32      { e.check(); return e.raw.ActiveState }
func (e *Entity) Exposure() int32         { e.check(); return e.raw.Exposure }
func (e *Entity) Energy() int32           { e.check(); return e.raw.Energy }
func (e *Entity) Matter() int32           { e.check(); return e.raw.Matter }
func (e *Entity) Heat() int32             { e.check(); return e.raw.Heat }
func (e *Entity) SystemCorruption() int32 { e.check(); return e.raw.SystemCorruption }
func (e *Entity) Speed() int32            { e.check(); return e.raw.Speed }

// Inventory decodes the entity's items on first call
func (e *Entity) Inventory() ([]*Item, error) {
	e.check()
	if e.inventory != nil {
		return e.inventory, nil
	}

	raw, err := telemetry.ReadArray[telemetry.Item](e.m.reader, e.raw.Inventory, int(e.raw.InventorySize))
	if err != nil {
		return nil, fmt.Errorf("inventory of entity %d: %w", e.raw.ID, err)
	}
	items := make([]*Item, len(raw))
	for i, it := range raw {
		addr := e.raw.Inventory + telemetry.Ptr32(uintptr(i)*telemetry.ItemLayout.Stride)
		items[i] = &Item{stamp: e.stamp, addr: addr, raw: it}
	}
	e.inventory = items
	return items, nil
}

// Item is a decoded item record
type Item struct {
	stamp
	addr telemetry.Ptr32
	raw  telemetry.Item
}

func (m *Mirror) newItem(addr telemetry.Ptr32) (*Item, error) {
	raw, err := telemetry.ReadRecord[telemetry.Item](m.reader, addr)
	if err != nil {
		return nil, err
	}
	return &Item{stamp: m.stamp(), addr: addr, raw: raw}, nil
}

func (i *Item) Address() telemetry.Ptr32 { return i.addr }
func (i *Item) Raw() telemetry.Item      { return i.raw }
func (i *Item) ID() int32                { i.check(); return i.raw.ID }
func (i *Item) Name() string             { i.check(); return i.m.names.ItemName(i.raw.ID) }
func (i *Item) Integrity() int32         { i.check(); return i.raw.Integrity }
func (i *Item) Equipped() bool           { i.check(); return i.raw.Equipped }

// Prop is a decoded prop record
type Prop struct {
	stamp
	addr telemetry.Ptr32
	raw  telemetry.Prop
}

func (m *Mirror) newProp(addr telemetry.Ptr32) (*Prop, error) {
	raw, err := telemetry.ReadRecord[telemetry.Prop](m.reader, addr)
	if err != nil {
		return nil, err
	}
	return &Prop{stamp: m.stamp(), addr: addr, raw: raw}, nil
}

func (p *Prop) Address() telemetry.Ptr32 { return p.addr }
func (p *Prop) Raw() telemetry.Prop      { return p.raw }
func (p *Prop) ID() int32                { p.check(); return p.raw.ID }
func (p *Prop) Name() string             { p.check(); return p.m.names.PropName(p.raw.ID) }

// InteractivePiece reports whether this is the part of a machine the
// player interacts with
func (p *Prop) InteractivePiece() bool { p.check(); return p.raw.InteractivePiece }

// Hacking is a decoded hacking popup record
type Hacking struct {
	stamp
	addr telemetry.Ptr32
	raw  telemetry.Hacking
}

func (h *Hacking) Address() telemetry.Ptr32 { return h.addr }
func (h *Hacking) Raw() telemetry.Hacking   { return h.raw }

// ActionReady is the popup's own counter. It is 0 until the popup accepts
// input and changes once per resolved hack.
func (h *Hacking) ActionReady() int32   { h.check(); return h.raw.ActionReady }
func (h *Hacking) DetectChance() int32  { h.check(); return h.raw.DetectChance }
func (h *Hacking) TraceProgress() int32 { h.check(); return h.raw.TraceProgress }
func (h *Hacking) LastHackSuccess() bool {
	h.check()
	return h.raw.LastHackSuccess
}

// Tile is one decoded map cell. Its prop, item and entity are read on
// first access.
type Tile struct {
	stamp
	x, y int
	addr telemetry.Ptr32
	raw  telemetry.Tile

	prop   *Prop
	item   *Item
	entity *Entity
}

func (t *Tile) X() int                   { return t.x }
func (t *Tile) Y() int                   { return t.y }
func (t *Tile) Address() telemetry.Ptr32 { return t.addr }
func (t *Tile) Raw() telemetry.Tile      { return t.raw }
func (t *Tile) Cell() int32              { t.check(); return t.raw.Cell }
func (t *Tile) Name() string             { t.check(); return t.m.names.CellName(t.raw.Cell) }
func (t *Tile) DoorOpen() bool           { t.check(); return t.raw.DoorOpen }
func (t *Tile) LastAction() int32        { t.check(); return t.raw.LastAction }
func (t *Tile) LastFov() int32           { t.check(); return t.raw.LastFov }
func (t *Tile) HasProp() bool            { t.check(); return !t.raw.Prop.IsNull() }
func (t *Tile) HasItem() bool            { t.check(); return !t.raw.Item.IsNull() }
func (t *Tile) HasEntity() bool          { t.check(); return !t.raw.Entity.IsNull() }

// Prop returns the tile's prop, nil when there is none
func (t *Tile) Prop() (*Prop, error) {
	t.check()
	if t.raw.Prop.IsNull() || t.prop != nil {
		return t.prop, nil
	}
	p, err := t.m.newProp(t.raw.Prop)
	if err != nil {
		return nil, fmt.Errorf("prop at (%d, %d): %w", t.x, t.y, err)
	}
	p.stamp = t.stamp
	t.prop = p
	return p, nil
}

// Item returns the item on the tile, nil when there is none
func (t *Tile) Item() (*Item, error) {
	t.check()
	if t.raw.Item.IsNull() || t.item != nil {
		return t.item, nil
	}
	it, err := t.m.newItem(t.raw.Item)
	if err != nil {
		return nil, fmt.Errorf("item at (%d, %d): %w", t.x, t.y, err)
	}
	it.stamp = t.stamp
	t.item = it
	return it, nil
}

// Entity returns the entity on the tile, nil when there is none
func (t *Tile) Entity() (*Entity, error) {
	t.check()
	if t.raw.Entity.IsNull() || t.entity != nil {
		return t.entity, nil
	}
	e, err := t.m.newEntity(t.raw.Entity)
	if err != nil {
		return nil, fmt.Errorf("entity at (%d, %d): %w", t.x, t.y, err)
	}
	e.stamp = t.stamp
	t.entity = e
	return e, nil
}
