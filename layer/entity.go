package layer

import (
	"fmt"

	"github.com/lixenwraith/tilegrid/tile"
)

// EntityID addresses a slot in an EntityPool; 0 is the nil link
type EntityID uint32

// Entity is a free-floating tile drawn after a layer's grid
type Entity struct {
	Tile     tile.Tile
	Position tile.Vector2 // absolute cell-space position

	prev, next EntityID
	list       *EntityList
	live       bool
}

// Linked reports whether the entity currently sits in a list
func (e *Entity) Linked() bool {
	return e.list != nil
}

// EntityList is a doubly-linked list threaded through an EntityPool
// next links drive iteration, prev links give O(1) unlink
type EntityList struct {
	head, tail EntityID
}

// Head returns the first entity or 0
func (l *EntityList) Head() EntityID { return l.head }

// Tail returns the last entity or 0
func (l *EntityList) Tail() EntityID { return l.tail }

// Empty reports whether the list has no entities
func (l *EntityList) Empty() bool { return l.head == 0 }

// EntityPool is the arena owning entity storage
// Links are slot indices, so growing the arena never invalidates a list
type EntityPool struct {
	slots []Entity
	free  []EntityID
	live  int
}

// NewEntityPool returns an empty pool
func NewEntityPool() *EntityPool {
	return &EntityPool{slots: make([]Entity, 0, 16)}
}

// New allocates an unlinked entity, reusing released slots first
func (p *EntityPool) New(t tile.Tile, pos tile.Vector2) EntityID {
	var id EntityID
	if n := len(p.free); n > 0 {
		id = p.free[n-1]
		p.free = p.free[:n-1]
	} else {
		p.slots = append(p.slots, Entity{})
		id = EntityID(len(p.slots))
	}
	p.slots[id-1] = Entity{Tile: t, Position: pos, live: true}
	p.live++
	return id
}

// Len returns the number of allocated entities
func (p *EntityPool) Len() int {
	return p.live
}

// Get returns the entity for id or nil
// The pointer is valid until the next call to New
func (p *EntityPool) Get(id EntityID) *Entity {
	if id == 0 || int(id) > len(p.slots) {
		return nil
	}
	e := &p.slots[id-1]
	if !e.live {
		return nil
	}
	return e
}

func (p *EntityPool) lookup(id EntityID) (*Entity, error) {
	e := p.Get(id)
	if e == nil {
		return nil, fmt.Errorf("%w: %d", ErrUnknownEntity, id)
	}
	return e, nil
}

// unlink detaches id from its neighbours and from its list's head/tail
func (p *EntityPool) unlink(e *Entity, id EntityID) {
	if e.next != 0 {
		p.slots[e.next-1].prev = e.prev
	} else if e.list != nil && e.list.tail == id {
		e.list.tail = e.prev
	}
	if e.prev != 0 {
		p.slots[e.prev-1].next = e.next
	} else if e.list != nil && e.list.head == id {
		e.list.head = e.next
	}
	e.prev, e.next, e.list = 0, 0, nil
}

func (p *EntityPool) link(l *EntityList, e *Entity, id EntityID) {
	if l.head == 0 {
		l.head, l.tail = id, id
	} else {
		p.slots[l.tail-1].next = id
		e.prev = l.tail
		l.tail = id
	}
	e.list = l
}

// Append moves id to the tail of l
// The entity is removed from whichever list held it, including l itself;
// appending the current tail is a no-op
func (p *EntityPool) Append(l *EntityList, id EntityID) error {
	e, err := p.lookup(id)
	if err != nil {
		return err
	}
	if e.list == l && l.tail == id {
		return nil
	}
	p.unlink(e, id)
	p.link(l, e, id)
	return nil
}

// AppendUnchecked appends id to l guarding only against re-adding the tail
// Only the entity's neighbours are rewired: its own links and the former
// list's head/tail are left in place. Re-adding an entity from the middle of
// a list, or moving a list head elsewhere, leaves both lists corrupt.
// Append is the membership-aware replacement
func (p *EntityPool) AppendUnchecked(l *EntityList, id EntityID) error {
	e, err := p.lookup(id)
	if err != nil {
		return err
	}
	if l.head != 0 && l.tail == id {
		return nil
	}
	if e.next != 0 {
		p.slots[e.next-1].prev = e.prev
	}
	if e.prev != 0 {
		p.slots[e.prev-1].next = e.next
	}
	if l.head == 0 {
		l.head, l.tail = id, id
	} else {
		p.slots[l.tail-1].next = id
		e.prev = l.tail
		l.tail = id
	}
	e.list = l
	return nil
}

// Remove unlinks id from its list; unlinked entities are left untouched
func (p *EntityPool) Remove(id EntityID) error {
	e, err := p.lookup(id)
	if err != nil {
		return err
	}
	p.unlink(e, id)
	return nil
}

// Release unlinks id and returns its slot to the pool
func (p *EntityPool) Release(id EntityID) error {
	e, err := p.lookup(id)
	if err != nil {
		return err
	}
	p.unlink(e, id)
	*e = Entity{}
	p.free = append(p.free, id)
	p.live--
	return nil
}

// Each visits l in list order
// Iteration stops with ErrListCorrupt once it has taken more steps than the
// pool has slots, which only happens when the links form a cycle
func (p *EntityPool) Each(l *EntityList, fn func(id EntityID, e *Entity)) error {
	steps := 0
	for id := l.head; id != 0; {
		if steps >= len(p.slots) {
			return ErrListCorrupt
		}
		steps++
		if int(id) > len(p.slots) {
			return fmt.Errorf("%w: dangling link %d", ErrListCorrupt, id)
		}
		e := &p.slots[id-1]
		next := e.next
		fn(id, e)
		id = next
	}
	return nil
}

// IDs returns the ids of l in list order
func (p *EntityPool) IDs(l *EntityList) ([]EntityID, error) {
	var ids []EntityID
	err := p.Each(l, func(id EntityID, _ *Entity) {
		ids = append(ids, id)
	})
	return ids, err
}
