package ecs_test

import (
	"testing"

	"github.com/l1jgo/server/internal/core/ecs"
	"github.com/stretchr/testify/require"
)

func newPVMManager(t *testing.T) (*ecs.EntityManager, *ecs.EntitySet3[Position, Velocity, Mass]) {
	t.Helper()
	mgr := ecs.NewEntityManager(3)
	_, err := ecs.RegisterComponent[Position](mgr)
	require.NoError(t, err)
	_, err = ecs.RegisterComponent[Velocity](mgr)
	require.NoError(t, err)
	_, err = ecs.RegisterComponent[Mass](mgr)
	require.NoError(t, err)
	set, err := ecs.RegisterEntitySet3[Position, Velocity, Mass](mgr)
	require.NoError(t, err)
	return mgr, set
}

// S3 — HeterogeneousSet
func TestHeterogeneousSet(t *testing.T) {
	mgr, set := newPVMManager(t)

	entities := make([]ecs.Entity, 30)
	for i := 0; i < 30; i++ {
		e := mgr.CreateEntity()
		entities[i] = e
		if i%2 == 0 {
			_, err := ecs.AddComponent(mgr, e, Position{X: x(i), Y: y(i)})
			require.NoError(t, err)
		}
		if i%3 == 0 {
			_, err := ecs.AddComponent(mgr, e, Velocity{X: vx(i), Y: vy(i)})
			require.NoError(t, err)
		}
		if i%5 == 0 {
			_, err := ecs.AddComponent(mgr, e, Mass{V: m(i)})
			require.NoError(t, err)
		}
	}

	require.Equal(t, 1, set.Len(), "only i=0 satisfies i%%2==0 && i%%3==0 && i%%5==0")

	e6 := entities[6]
	hasPV, err := ecs.HasComponents2[Position, Velocity](mgr, e6)
	require.NoError(t, err)
	require.True(t, hasPV)

	hasVM, err := ecs.HasComponents2[Velocity, Mass](mgr, e6)
	require.NoError(t, err)
	require.False(t, hasVM)
}

// S6 — AddRemoveAddInterleave
func TestAddRemoveAddInterleave(t *testing.T) {
	mgr, set := newPVMManager(t)

	type original struct {
		e             ecs.Entity
		hasPos        bool
		hasVel        bool
		hasMass       bool
		pos           Position
		vel           Velocity
		mass          Mass
		removed       bool
	}

	originals := make([]original, 100)
	for i := 0; i < 100; i++ {
		e := mgr.CreateEntity()
		o := original{e: e}
		if i%2 == 0 {
			_, err := ecs.AddComponent(mgr, e, Position{X: x(i), Y: y(i)})
			require.NoError(t, err)
			o.hasPos = true
			o.pos = Position{X: x(i), Y: y(i)}
		}
		if i%3 == 0 {
			_, err := ecs.AddComponent(mgr, e, Velocity{X: vx(i), Y: vy(i)})
			require.NoError(t, err)
			o.hasVel = true
			o.vel = Velocity{X: vx(i), Y: vy(i)}
		}
		if i%5 == 0 {
			_, err := ecs.AddComponent(mgr, e, Mass{V: m(i)})
			require.NoError(t, err)
			o.hasMass = true
			o.mass = Mass{V: m(i)}
		}
		originals[i] = o
	}

	// Remove every 3rd original entity.
	for i := 0; i < len(originals); i += 3 {
		require.NoError(t, mgr.RemoveEntity(originals[i].e))
		require.False(t, mgr.Alive(originals[i].e))
		originals[i].removed = true
	}

	// Create another 100 with the complementary graded pattern.
	const threshold = 2
	freshEntities := make([]ecs.Entity, 100)
	freshHasAll := 0
	for i := 0; i < 100; i++ {
		e := mgr.CreateEntity()
		freshEntities[i] = e
		present := i%4 < threshold
		if present {
			_, err := ecs.AddComponent(mgr, e, Position{X: x(i), Y: y(i)})
			require.NoError(t, err)
			_, err = ecs.AddComponent(mgr, e, Velocity{X: vx(i), Y: vy(i)})
			require.NoError(t, err)
			_, err = ecs.AddComponent(mgr, e, Mass{V: m(i)})
			require.NoError(t, err)
			freshHasAll++
		}
	}

	// Retained originals still carry exactly their original components
	// with original values.
	retainedAllCount := 0
	for i, o := range originals {
		if o.removed {
			require.False(t, mgr.Alive(o.e))
			continue
		}
		hasPos, err := ecs.HasComponent[Position](mgr, o.e)
		require.NoError(t, err)
		require.Equal(t, o.hasPos, hasPos, "entity %d Position presence changed", i)
		if hasPos {
			pos, err := ecs.GetComponent[Position](mgr, o.e)
			require.NoError(t, err)
			require.Equal(t, o.pos, *pos)
		}

		hasVel, err := ecs.HasComponent[Velocity](mgr, o.e)
		require.NoError(t, err)
		require.Equal(t, o.hasVel, hasVel, "entity %d Velocity presence changed", i)
		if hasVel {
			vel, err := ecs.GetComponent[Velocity](mgr, o.e)
			require.NoError(t, err)
			require.Equal(t, o.vel, *vel)
		}

		hasMass, err := ecs.HasComponent[Mass](mgr, o.e)
		require.NoError(t, err)
		require.Equal(t, o.hasMass, hasMass, "entity %d Mass presence changed", i)
		if hasMass {
			mass, err := ecs.GetComponent[Mass](mgr, o.e)
			require.NoError(t, err)
			require.Equal(t, o.mass, *mass)
		}

		if o.hasPos && o.hasVel && o.hasMass {
			retainedAllCount++
		}
	}

	// New entities carry their intended components.
	for i, e := range freshEntities {
		present := i%4 < threshold
		has, err := ecs.HasComponents3[Position, Velocity, Mass](mgr, e)
		require.NoError(t, err)
		require.Equal(t, present, has, "fresh entity %d", i)
	}

	require.Equal(t, retainedAllCount+freshHasAll, set.Len())
}

// P3 / P4 — set membership tracks HasComponents exactly, and stays
// consistent after removing an unrelated entity.
func TestSetMembershipConsistency(t *testing.T) {
	mgr, set := newPVMManager(t)

	var withAll, others []ecs.Entity
	for i := 0; i < 40; i++ {
		e := mgr.CreateEntity()
		_, err := ecs.AddComponent(mgr, e, Position{X: x(i), Y: y(i)})
		require.NoError(t, err)
		_, err = ecs.AddComponent(mgr, e, Velocity{X: vx(i), Y: vy(i)})
		require.NoError(t, err)
		if i%2 == 0 {
			_, err = ecs.AddComponent(mgr, e, Mass{V: m(i)})
			require.NoError(t, err)
			withAll = append(withAll, e)
		} else {
			others = append(others, e)
		}
	}

	memberSet := membersOf3(mgr, set)
	require.ElementsMatch(t, withAll, memberSet)

	// P4: remove an entity NOT in the set; membership must be unaffected.
	require.NoError(t, mgr.RemoveEntity(others[0]))
	memberSet = membersOf3(mgr, set)
	require.ElementsMatch(t, withAll, memberSet)
	require.Equal(t, len(withAll), set.Len())
}

func membersOf3(mgr *ecs.EntityManager, set *ecs.EntitySet3[Position, Velocity, Mass]) []ecs.Entity {
	var out []ecs.Entity
	set.ForEach(func(e ecs.Entity, _ *Position, _ *Velocity, _ *Mass) {
		out = append(out, e)
	})
	return out
}

func TestEntitySetListeners(t *testing.T) {
	mgr := newPositionManager(t)
	set, err := ecs.RegisterEntitySet1[Position](mgr)
	require.NoError(t, err)

	var added, removed []ecs.Entity
	addID := set.AddAddedListener(func(e ecs.Entity) { added = append(added, e) })
	removeID := set.AddRemovedListener(func(e ecs.Entity) { removed = append(removed, e) })

	e := mgr.CreateEntity()
	_, err = ecs.AddComponent(mgr, e, Position{})
	require.NoError(t, err)
	require.Equal(t, []ecs.Entity{e}, added)

	require.NoError(t, ecs.RemoveComponent[Position](mgr, e))
	require.Equal(t, []ecs.Entity{e}, removed)

	set.RemoveAddedListener(addID)
	set.RemoveRemovedListener(removeID)

	e2 := mgr.CreateEntity()
	_, err = ecs.AddComponent(mgr, e2, Position{})
	require.NoError(t, err)
	require.Equal(t, []ecs.Entity{e}, added, "listener removed, should not fire again")
}

// Registering an EntitySet against a manager that already has matching
// live entities must backfill them immediately, and registering the same
// signature again must not re-run the backfill.
func TestRegisterEntitySetBackfillsExisting(t *testing.T) {
	mgr := ecs.NewEntityManager(2)
	_, err := ecs.RegisterComponent[Position](mgr)
	require.NoError(t, err)

	var withPos, withoutPos []ecs.Entity
	for i := 0; i < 20; i++ {
		e := mgr.CreateEntity()
		if i%2 == 0 {
			_, err := ecs.AddComponent(mgr, e, Position{X: x(i), Y: y(i)})
			require.NoError(t, err)
			withPos = append(withPos, e)
		} else {
			withoutPos = append(withoutPos, e)
		}
	}

	set, err := ecs.RegisterEntitySet1[Position](mgr)
	require.NoError(t, err)
	require.Equal(t, len(withPos), set.Len())

	var added []ecs.Entity
	set.AddAddedListener(func(e ecs.Entity) { added = append(added, e) })

	// A second registration of the same signature must return the
	// existing set without re-running the backfill (no duplicate
	// added-listener fires, no double-counted membership).
	again, err := ecs.RegisterEntitySet1[Position](mgr)
	require.NoError(t, err)
	require.Same(t, set, again)
	require.Empty(t, added)
	require.Equal(t, len(withPos), set.Len())

	members := membersOf1(set)
	require.ElementsMatch(t, withPos, members)
	for _, e := range withoutPos {
		require.NotContains(t, members, e)
	}
}

func membersOf1(set *ecs.EntitySet1[Position]) []ecs.Entity {
	var out []ecs.Entity
	set.ForEach(func(e ecs.Entity, _ *Position) {
		out = append(out, e)
	})
	return out
}

// Removing a component of a tuple type takes the entity out of the set;
// re-adding it brings the entity back with the new ComponentID, so
// iteration yields the re-added value.
func TestRefreshesComponentIDOnReAdd(t *testing.T) {
	mgr := ecs.NewEntityManager(2)
	_, err := ecs.RegisterComponent[Position](mgr)
	require.NoError(t, err)
	_, err = ecs.RegisterComponent[Velocity](mgr)
	require.NoError(t, err)
	set, err := ecs.RegisterEntitySet2[Position, Velocity](mgr)
	require.NoError(t, err)

	e := mgr.CreateEntity()
	_, err = ecs.AddComponent(mgr, e, Position{X: 1, Y: 1})
	require.NoError(t, err)
	_, err = ecs.AddComponent(mgr, e, Velocity{X: 1, Y: 1})
	require.NoError(t, err)
	require.Equal(t, 1, set.Len())

	// Force a different, non-empty backing store so the freed
	// ComponentID for Position gets reused by another entity's Position,
	// then re-add Position to e — the set must read e's *new* id.
	other := mgr.CreateEntity()
	_, err = ecs.AddComponent(mgr, other, Position{X: 999, Y: 999})
	require.NoError(t, err)

	require.NoError(t, ecs.RemoveComponent[Position](mgr, e))
	require.Equal(t, 0, set.Len())

	_, err = ecs.AddComponent(mgr, e, Position{X: 5, Y: 5})
	require.NoError(t, err)
	require.Equal(t, 1, set.Len())

	set.ForEach(func(got ecs.Entity, pos *Position, _ *Velocity) {
		require.Equal(t, e, got)
		require.Equal(t, Position{X: 5, Y: 5}, *pos)
	})
}
