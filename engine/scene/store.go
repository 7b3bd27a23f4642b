package scene

// Entity identifies an object in a scene. Zero is never handed out.
type Entity uint32

const InvalidEntity Entity = 0

// componentStore provides type-erased operations so a scene can drop an
// entity from every store without knowing the component types.
type componentStore interface {
	remove(e Entity) bool
	has(e Entity) bool
	len() int
}

// store is a sparse set for one component type. Components are packed in a
// dense slice in insertion order; removal compacts the slice so iteration
// order stays stable.
type store[T any] struct {
	index    map[Entity]int
	entities []Entity
	dense    []T
}

func newStore[T any]() *store[T] {
	return &store[T]{
		index:    make(map[Entity]int),
		entities: make([]Entity, 0, 64),
		dense:    make([]T, 0, 64),
	}
}

func (s *store[T]) set(e Entity, val T) *T {
	if i, ok := s.index[e]; ok {
		s.dense[i] = val
		return &s.dense[i]
	}
	s.index[e] = len(s.dense)
	s.entities = append(s.entities, e)
	s.dense = append(s.dense, val)
	return &s.dense[len(s.dense)-1]
}

func (s *store[T]) get(e Entity) (*T, bool) {
	i, ok := s.index[e]
	if !ok {
		return nil, false
	}
	return &s.dense[i], true
}

func (s *store[T]) has(e Entity) bool {
	_, ok := s.index[e]
	return ok
}

func (s *store[T]) remove(e Entity) bool {
	i, ok := s.index[e]
	if !ok {
		return false
	}
	delete(s.index, e)
	copy(s.entities[i:], s.entities[i+1:])
	s.entities = s.entities[:len(s.entities)-1]
	copy(s.dense[i:], s.dense[i+1:])
	var zero T
	s.dense[len(s.dense)-1] = zero
	s.dense = s.dense[:len(s.dense)-1]
	for j := i; j < len(s.entities); j++ {
		s.index[s.entities[j]] = j
	}
	return true
}

func (s *store[T]) len() int {
	return len(s.dense)
}
