package scene

import (
	"reflect"

	"github.com/spaghettifunk/sdengine/engine/core"
)

// Scene is a minimal entity/component store. It is owned by the frame thread
// and is not safe for concurrent use.
//
// Pointers returned by Add and Get point into packed storage; they stay valid
// until the next Add or Remove of the same component type.
type Scene struct {
	name   string
	next   Entity
	alive  map[Entity]struct{}
	order  []Entity
	stores map[reflect.Type]componentStore
}

func NewScene(name string) *Scene {
	return &Scene{
		name:   name,
		next:   1,
		alive:  make(map[Entity]struct{}),
		stores: make(map[reflect.Type]componentStore),
	}
}

func (s *Scene) Name() string {
	return s.name
}

func (s *Scene) CreateEntity() Entity {
	e := s.next
	s.next++
	s.alive[e] = struct{}{}
	s.order = append(s.order, e)
	return e
}

// DestroyEntity removes e and all of its components. Unknown entities are
// ignored.
func (s *Scene) DestroyEntity(e Entity) {
	if _, ok := s.alive[e]; !ok {
		return
	}
	for _, st := range s.stores {
		st.remove(e)
	}
	delete(s.alive, e)
	for i, o := range s.order {
		if o == e {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Scene) Alive(e Entity) bool {
	_, ok := s.alive[e]
	return ok
}

// Entities returns the live entities in creation order.
func (s *Scene) Entities() []Entity {
	out := make([]Entity, len(s.order))
	copy(out, s.order)
	return out
}

func (s *Scene) Len() int {
	return len(s.alive)
}

func storeOf[T any](s *Scene, create bool) *store[T] {
	t := reflect.TypeOf((*T)(nil)).Elem()
	st, ok := s.stores[t]
	if !ok {
		if !create {
			return nil
		}
		st = newStore[T]()
		s.stores[t] = st
	}
	return st.(*store[T])
}

// Add sets the T component of e, replacing any existing one, and returns a
// pointer to the stored value. Adding to a dead entity returns nil.
func Add[T any](s *Scene, e Entity, component T) *T {
	if !s.Alive(e) {
		core.LogWarn("scene '%s': cannot add %T to unknown entity %d", s.name, component, e)
		return nil
	}
	return storeOf[T](s, true).set(e, component)
}

func Get[T any](s *Scene, e Entity) (*T, bool) {
	st := storeOf[T](s, false)
	if st == nil {
		return nil, false
	}
	return st.get(e)
}

func Has[T any](s *Scene, e Entity) bool {
	st := storeOf[T](s, false)
	return st != nil && st.has(e)
}

// Remove drops the T component of e and reports whether there was one.
func Remove[T any](s *Scene, e Entity) bool {
	st := storeOf[T](s, false)
	return st != nil && st.remove(e)
}

// Count returns how many entities hold a T.
func Count[T any](s *Scene) int {
	st := storeOf[T](s, false)
	if st == nil {
		return 0
	}
	return st.len()
}

// View calls fn for every entity holding a T, in the order the components
// were added. fn must not add or remove T components.
func View[T any](s *Scene, fn func(Entity, *T)) {
	st := storeOf[T](s, false)
	if st == nil {
		return
	}
	for i := range st.dense {
		fn(st.entities[i], &st.dense[i])
	}
}

// View2 calls fn for every entity holding both an A and a B, in the order
// the A components were added.
func View2[A, B any](s *Scene, fn func(Entity, *A, *B)) {
	sa := storeOf[A](s, false)
	sb := storeOf[B](s, false)
	if sa == nil || sb == nil {
		return
	}
	for i := range sa.dense {
		e := sa.entities[i]
		if b, ok := sb.get(e); ok {
			fn(e, &sa.dense[i], b)
		}
	}
}
