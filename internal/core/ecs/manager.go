package ecs

import (
	"fmt"
	"reflect"
)

// EntityManager is the façade of the ECS core: it owns the entity table,
// every component store, and the entity-set registry, and it implements
// the update protocol that fans out each add/remove to affected sets.
//
// Go has no variadic generics, so the type-parameterized operations that
// spec.md writes as EntityManager methods (register_component<T>,
// add_component<T>, get_entity_set<T...>, ...) are package-level
// functions taking *EntityManager as their first argument — a method
// cannot introduce its own type parameter in Go.
type EntityManager struct {
	table     *EntityTable
	stores    []componentStore
	typeIndex map[reflect.Type]ComponentType
	registry  *setRegistry
}

// NewEntityManager preallocates the per-component-type slice to
// componentCount slots. componentCount is a sizing hint, not a hard cap —
// RegisterComponent still works past it, just with a reallocation.
func NewEntityManager(componentCount int) *EntityManager {
	return &EntityManager{
		table:     NewEntityTable(),
		stores:    make([]componentStore, 0, componentCount),
		typeIndex: make(map[reflect.Type]ComponentType, componentCount),
		registry:  newSetRegistry(),
	}
}

// Reserve forwards to the entity table and every registered component
// store.
func (m *EntityManager) Reserve(n int) {
	m.table.Reserve(n)
	for _, s := range m.stores {
		s.reserve(n)
	}
}

// CreateEntity allocates a new Entity with no components.
func (m *EntityManager) CreateEntity() Entity {
	return m.table.Create()
}

// RemoveEntity destroys e: every component it carries is erased from its
// store, every registered EntitySet is notified, and only then is the
// entity handle itself freed for reuse. Sets are notified while e is
// still live in the table; each set's onEntityRemoved consults only its
// own membership map, not e's component map.
func (m *EntityManager) RemoveEntity(e Entity) error {
	if !m.table.Has(e) {
		return fmt.Errorf("remove entity %d: %w", e, ErrDeadEntity)
	}
	data := m.table.Get(e)
	for t, cid := range data {
		m.stores[t].remove(cid)
	}
	m.registry.notifyEntityRemoved(e)
	m.table.Erase(e)
	return nil
}

// Alive reports whether e refers to a live entity.
func (m *EntityManager) Alive(e Entity) bool {
	return m.table.Has(e)
}

// EntityCount returns the number of currently live entities.
func (m *EntityManager) EntityCount() int {
	return m.table.Len()
}

func componentTypeOf[T any](m *EntityManager) (ComponentType, bool) {
	t, ok := m.typeIndex[reflect.TypeOf((*T)(nil)).Elem()]
	return t, ok
}

func componentStoreFor[T any](m *EntityManager, t ComponentType) *ComponentStore[T] {
	cs, _ := m.stores[t].(*ComponentStore[T])
	return cs
}

// RegisterComponent installs a fresh, empty ComponentStore[T] and
// assigns T the next unused ComponentType in registration order —
// no global counter, no static-initializer ordering hazard. Must
// precede any other operation involving T.
func RegisterComponent[T any](m *EntityManager) (ComponentType, error) {
	rt := reflect.TypeOf((*T)(nil)).Elem()
	if _, ok := m.typeIndex[rt]; ok {
		return 0, fmt.Errorf("register component %s: %w", rt, ErrComponentAlreadyRegistered)
	}
	t := ComponentType(len(m.stores))
	m.typeIndex[rt] = t
	m.stores = append(m.stores, NewComponentStore[T]())
	return t, nil
}

// AddComponent stores value as e's T in a new slot of T's store. If e
// already carries a T, e's component map is repointed at the new value
// and the previous value is not erased from the store (the caller should
// RemoveComponent first — AddComponent does not check for that). It returns
// a pointer to the stored copy, valid until the next mutating call on
// T's store.
func AddComponent[T any](m *EntityManager, e Entity, value T) (*T, error) {
	t, ok := componentTypeOf[T](m)
	if !ok {
		return nil, fmt.Errorf("add component: %w", ErrUnknownComponentType)
	}
	if !m.table.Has(e) {
		return nil, fmt.Errorf("add component to entity %d: %w", e, ErrDeadEntity)
	}
	store := componentStoreFor[T](m, t)
	cid, ptr := store.Emplace(value)
	m.table.Get(e)[t] = cid
	m.registry.notifyComponentChanged(t, e)
	return ptr, nil
}

// RemoveComponent erases e's T from its store and from e's component
// map, then notifies every EntitySet watching T.
func RemoveComponent[T any](m *EntityManager, e Entity) error {
	t, ok := componentTypeOf[T](m)
	if !ok {
		return fmt.Errorf("remove component: %w", ErrUnknownComponentType)
	}
	if !m.table.Has(e) {
		return fmt.Errorf("remove component from entity %d: %w", e, ErrDeadEntity)
	}
	data := m.table.Get(e)
	cid, ok := data[t]
	if !ok {
		return fmt.Errorf("remove component from entity %d: %w", e, ErrMissingComponent)
	}
	delete(data, t)
	m.stores[t].remove(cid)
	m.registry.notifyComponentChanged(t, e)
	return nil
}

// HasComponent reports whether e currently carries a T.
func HasComponent[T any](m *EntityManager, e Entity) (bool, error) {
	t, ok := componentTypeOf[T](m)
	if !ok {
		return false, fmt.Errorf("has component: %w", ErrUnknownComponentType)
	}
	if !m.table.Has(e) {
		return false, fmt.Errorf("has component on entity %d: %w", e, ErrDeadEntity)
	}
	return m.table.Get(e).has(t), nil
}

// GetComponent returns a pointer to e's T. The pointer is invalidated by
// the next mutating call on T's store.
func GetComponent[T any](m *EntityManager, e Entity) (*T, error) {
	t, ok := componentTypeOf[T](m)
	if !ok {
		return nil, fmt.Errorf("get component: %w", ErrUnknownComponentType)
	}
	if !m.table.Has(e) {
		return nil, fmt.Errorf("get component from entity %d: %w", e, ErrDeadEntity)
	}
	cid, ok := m.table.Get(e)[t]
	if !ok {
		return nil, fmt.Errorf("get component from entity %d: %w", e, ErrMissingComponent)
	}
	return componentStoreFor[T](m, t).Get(cid), nil
}

// HasComponents2 reports whether e carries both T1 and T2.
func HasComponents2[T1, T2 any](m *EntityManager, e Entity) (bool, error) {
	a, err := HasComponent[T1](m, e)
	if err != nil || !a {
		return false, err
	}
	return HasComponent[T2](m, e)
}

// HasComponents3 reports whether e carries T1, T2 and T3.
func HasComponents3[T1, T2, T3 any](m *EntityManager, e Entity) (bool, error) {
	ok, err := HasComponents2[T1, T2](m, e)
	if err != nil || !ok {
		return false, err
	}
	return HasComponent[T3](m, e)
}

// HasComponents4 reports whether e carries T1, T2, T3 and T4.
func HasComponents4[T1, T2, T3, T4 any](m *EntityManager, e Entity) (bool, error) {
	ok, err := HasComponents3[T1, T2, T3](m, e)
	if err != nil || !ok {
		return false, err
	}
	return HasComponent[T4](m, e)
}

// GetComponents2 returns pointers to e's T1 and T2 together, failing on
// the first one e doesn't carry.
func GetComponents2[T1, T2 any](m *EntityManager, e Entity) (*T1, *T2, error) {
	c1, err := GetComponent[T1](m, e)
	if err != nil {
		return nil, nil, err
	}
	c2, err := GetComponent[T2](m, e)
	if err != nil {
		return nil, nil, err
	}
	return c1, c2, nil
}

// GetComponents3 returns pointers to e's T1, T2 and T3 together, failing
// on the first one e doesn't carry.
func GetComponents3[T1, T2, T3 any](m *EntityManager, e Entity) (*T1, *T2, *T3, error) {
	c1, c2, err := GetComponents2[T1, T2](m, e)
	if err != nil {
		return nil, nil, nil, err
	}
	c3, err := GetComponent[T3](m, e)
	if err != nil {
		return nil, nil, nil, err
	}
	return c1, c2, c3, nil
}

// GetComponents4 returns pointers to e's T1, T2, T3 and T4 together,
// failing on the first one e doesn't carry.
func GetComponents4[T1, T2, T3, T4 any](m *EntityManager, e Entity) (*T1, *T2, *T3, *T4, error) {
	c1, c2, c3, err := GetComponents3[T1, T2, T3](m, e)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	c4, err := GetComponent[T4](m, e)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return c1, c2, c3, c4, nil
}

// ComponentCount returns the number of live T components across every
// entity, forwarding to the type-erased store's own len().
func ComponentCount[T any](m *EntityManager) (int, error) {
	t, ok := componentTypeOf[T](m)
	if !ok {
		return 0, fmt.Errorf("component count: %w", ErrUnknownComponentType)
	}
	return m.stores[t].len(), nil
}

// backfillEntitySet runs onEntityUpdated for every currently live entity
// against a freshly registered set, so that registering an EntitySet
// against a populated manager immediately reflects every pre-existing
// entity that already satisfies its signature. Idempotent re-registration
// skips this — RegisterEntitySetN only calls it once, right after a set
// is first constructed.
func (m *EntityManager) backfillEntitySet(s entitySet) {
	m.table.ForEach(func(e Entity, _ EntityData) {
		s.onEntityUpdated(e)
	})
}

// RegisterEntitySet1 registers (or, if already registered, returns) the
// EntitySet over component T1.
func RegisterEntitySet1[T1 any](m *EntityManager) (*EntitySet1[T1], error) {
	t1, ok := componentTypeOf[T1](m)
	if !ok {
		return nil, fmt.Errorf("register entity set: %w", ErrUnknownComponentType)
	}
	sig := []ComponentType{t1}
	if existing, ok := m.registry.get(sig); ok {
		return existing.(*EntitySet1[T1]), nil
	}
	s := newEntitySet1[T1](m.table, componentStoreFor[T1](m, t1), t1)
	m.registry.register(s)
	m.backfillEntitySet(s)
	return s, nil
}

// GetEntitySet1 returns the previously registered EntitySet over T1.
func GetEntitySet1[T1 any](m *EntityManager) (*EntitySet1[T1], error) {
	t1, ok := componentTypeOf[T1](m)
	if !ok {
		return nil, fmt.Errorf("get entity set: %w", ErrUnknownComponentType)
	}
	s, ok := m.registry.get([]ComponentType{t1})
	if !ok {
		return nil, fmt.Errorf("get entity set: %w", ErrMissingEntitySet)
	}
	return s.(*EntitySet1[T1]), nil
}

// RegisterEntitySet2 registers (or returns) the EntitySet over the
// ordered pair (T1, T2). (T1, T2) and (T2, T1) are distinct sets.
func RegisterEntitySet2[T1, T2 any](m *EntityManager) (*EntitySet2[T1, T2], error) {
	t1, ok1 := componentTypeOf[T1](m)
	t2, ok2 := componentTypeOf[T2](m)
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("register entity set: %w", ErrUnknownComponentType)
	}
	sig := []ComponentType{t1, t2}
	if existing, ok := m.registry.get(sig); ok {
		return existing.(*EntitySet2[T1, T2]), nil
	}
	s := newEntitySet2[T1, T2](m.table, componentStoreFor[T1](m, t1), componentStoreFor[T2](m, t2), t1, t2)
	m.registry.register(s)
	m.backfillEntitySet(s)
	return s, nil
}

// GetEntitySet2 returns the previously registered EntitySet over (T1, T2).
func GetEntitySet2[T1, T2 any](m *EntityManager) (*EntitySet2[T1, T2], error) {
	t1, ok1 := componentTypeOf[T1](m)
	t2, ok2 := componentTypeOf[T2](m)
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("get entity set: %w", ErrUnknownComponentType)
	}
	s, ok := m.registry.get([]ComponentType{t1, t2})
	if !ok {
		return nil, fmt.Errorf("get entity set: %w", ErrMissingEntitySet)
	}
	return s.(*EntitySet2[T1, T2]), nil
}

// RegisterEntitySet3 registers (or returns) the EntitySet over the
// ordered triple (T1, T2, T3).
func RegisterEntitySet3[T1, T2, T3 any](m *EntityManager) (*EntitySet3[T1, T2, T3], error) {
	t1, ok1 := componentTypeOf[T1](m)
	t2, ok2 := componentTypeOf[T2](m)
	t3, ok3 := componentTypeOf[T3](m)
	if !ok1 || !ok2 || !ok3 {
		return nil, fmt.Errorf("register entity set: %w", ErrUnknownComponentType)
	}
	sig := []ComponentType{t1, t2, t3}
	if existing, ok := m.registry.get(sig); ok {
		return existing.(*EntitySet3[T1, T2, T3]), nil
	}
	s := newEntitySet3[T1, T2, T3](m.table, componentStoreFor[T1](m, t1), componentStoreFor[T2](m, t2), componentStoreFor[T3](m, t3), t1, t2, t3)
	m.registry.register(s)
	m.backfillEntitySet(s)
	return s, nil
}

// GetEntitySet3 returns the previously registered EntitySet over
// (T1, T2, T3).
func GetEntitySet3[T1, T2, T3 any](m *EntityManager) (*EntitySet3[T1, T2, T3], error) {
	t1, ok1 := componentTypeOf[T1](m)
	t2, ok2 := componentTypeOf[T2](m)
	t3, ok3 := componentTypeOf[T3](m)
	if !ok1 || !ok2 || !ok3 {
		return nil, fmt.Errorf("get entity set: %w", ErrUnknownComponentType)
	}
	s, ok := m.registry.get([]ComponentType{t1, t2, t3})
	if !ok {
		return nil, fmt.Errorf("get entity set: %w", ErrMissingEntitySet)
	}
	return s.(*EntitySet3[T1, T2, T3]), nil
}

// RegisterEntitySet4 registers (or returns) the EntitySet over the
// ordered quadruple (T1, T2, T3, T4).
func RegisterEntitySet4[T1, T2, T3, T4 any](m *EntityManager) (*EntitySet4[T1, T2, T3, T4], error) {
	t1, ok1 := componentTypeOf[T1](m)
	t2, ok2 := componentTypeOf[T2](m)
	t3, ok3 := componentTypeOf[T3](m)
	t4, ok4 := componentTypeOf[T4](m)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return nil, fmt.Errorf("register entity set: %w", ErrUnknownComponentType)
	}
	sig := []ComponentType{t1, t2, t3, t4}
	if existing, ok := m.registry.get(sig); ok {
		return existing.(*EntitySet4[T1, T2, T3, T4]), nil
	}
	s := newEntitySet4[T1, T2, T3, T4](m.table,
		componentStoreFor[T1](m, t1), componentStoreFor[T2](m, t2),
		componentStoreFor[T3](m, t3), componentStoreFor[T4](m, t4),
		t1, t2, t3, t4)
	m.registry.register(s)
	m.backfillEntitySet(s)
	return s, nil
}

// GetEntitySet4 returns the previously registered EntitySet over
// (T1, T2, T3, T4).
func GetEntitySet4[T1, T2, T3, T4 any](m *EntityManager) (*EntitySet4[T1, T2, T3, T4], error) {
	t1, ok1 := componentTypeOf[T1](m)
	t2, ok2 := componentTypeOf[T2](m)
	t3, ok3 := componentTypeOf[T3](m)
	t4, ok4 := componentTypeOf[T4](m)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return nil, fmt.Errorf("get entity set: %w", ErrUnknownComponentType)
	}
	s, ok := m.registry.get([]ComponentType{t1, t2, t3, t4})
	if !ok {
		return nil, fmt.Errorf("get entity set: %w", ErrMissingEntitySet)
	}
	return s.(*EntitySet4[T1, T2, T3, T4]), nil
}
