package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/sdengine/engine/math"
)

type health struct{ hp int }

type tag struct{ name string }

func TestEntitiesAndComponents(t *testing.T) {
	s := NewScene("level")
	a := s.CreateEntity()
	b := s.CreateEntity()
	assert.NotEqual(t, InvalidEntity, a)
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, s.Len())

	p := Add(s, a, health{hp: 10})
	require.NotNil(t, p)
	p.hp = 7
	got, ok := Get[health](s, a)
	require.True(t, ok)
	assert.Equal(t, 7, got.hp)

	assert.True(t, Has[health](s, a))
	assert.False(t, Has[health](s, b))
	assert.False(t, Has[tag](s, a))

	Add(s, a, health{hp: 3})
	assert.Equal(t, 1, Count[health](s))
	got, _ = Get[health](s, a)
	assert.Equal(t, 3, got.hp)

	assert.True(t, Remove[health](s, a))
	assert.False(t, Remove[health](s, a))
	assert.False(t, Remove[tag](s, a))
}

func TestAddToDeadEntity(t *testing.T) {
	s := NewScene("level")
	e := s.CreateEntity()
	s.DestroyEntity(e)
	assert.Nil(t, Add(s, e, health{}))
	assert.Nil(t, Add(s, Entity(99), health{}))
	s.DestroyEntity(e)
}

func TestDestroyEntityDropsComponents(t *testing.T) {
	s := NewScene("level")
	a := s.CreateEntity()
	b := s.CreateEntity()
	Add(s, a, health{hp: 1})
	Add(s, a, tag{name: "a"})
	Add(s, b, health{hp: 2})

	s.DestroyEntity(a)
	assert.False(t, s.Alive(a))
	assert.False(t, Has[health](s, a))
	assert.False(t, Has[tag](s, a))
	assert.Equal(t, []Entity{b}, s.Entities())

	got, ok := Get[health](s, b)
	require.True(t, ok)
	assert.Equal(t, 2, got.hp)
}

func TestViewKeepsInsertionOrder(t *testing.T) {
	s := NewScene("level")
	var es []Entity
	for i := 0; i < 5; i++ {
		e := s.CreateEntity()
		Add(s, e, health{hp: i})
		es = append(es, e)
	}
	Remove[health](s, es[1])

	var order []int
	View(s, func(e Entity, h *health) {
		order = append(order, h.hp)
		h.hp *= 10
	})
	assert.Equal(t, []int{0, 2, 3, 4}, order)

	got, _ := Get[health](s, es[4])
	assert.Equal(t, 40, got.hp)
}

func TestView2(t *testing.T) {
	s := NewScene("level")
	a := s.CreateEntity()
	b := s.CreateEntity()
	c := s.CreateEntity()
	Add(s, a, health{hp: 1})
	Add(s, b, health{hp: 2})
	Add(s, c, health{hp: 3})
	Add(s, c, tag{name: "c"})
	Add(s, a, tag{name: "a"})

	var seen []Entity
	View2(s, func(e Entity, h *health, tg *tag) {
		seen = append(seen, e)
	})
	assert.Equal(t, []Entity{a, c}, seen)

	View2(s, func(Entity, *health, *Camera) {
		t.Fatal("no entity holds a camera")
	})
}

func TestComponentDefaults(t *testing.T) {
	cam := NewCamera()
	assert.True(t, cam.Primary)
	assert.Equal(t, DEFAULT_CAMERA_NAME, cam.Name)
	assert.Equal(t, math.NewMat4Identity(), cam.ViewProjection())

	light := NewDirectionalLight(math.NewVec3(0, -2, 0))
	assert.Equal(t, math.NewVec3(0, -1, 0), light.Direction)

	tr := NewTransform(math.NewVec3(1, 2, 3))
	assert.Equal(t, math.NewVec3(1, 2, 3), tr.GetWorld().Position())
}
