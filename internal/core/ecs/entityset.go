package ecs

// entitySet is the type-erased side of EntitySetN the EntityManager and
// registry need: routing add/remove notifications doesn't require
// knowing the tuple's concrete types.
type entitySet interface {
	onEntityUpdated(e Entity)
	onEntityRemoved(e Entity)
	signature() []ComponentType
}

// listeners holds the add/remove callbacks of one EntitySetN. Listener
// ids are handed out by a SparseSet — the same container primitive used
// for components — so deregistration is O(1) and ids are recycled.
type listeners struct {
	added   *SparseSet[ListenerID, func(Entity)]
	removed *SparseSet[ListenerID, func(Entity)]
}

func newListeners() listeners {
	return listeners{
		added:   NewSparseSet[ListenerID, func(Entity)](),
		removed: NewSparseSet[ListenerID, func(Entity)](),
	}
}

func (l *listeners) fireAdded(e Entity) {
	for _, fn := range l.added.Values() {
		fn(e)
	}
}

func (l *listeners) fireRemoved(e Entity) {
	for _, fn := range l.removed.Values() {
		fn(e)
	}
}

// EntitySet1 is a materialized, incrementally maintained view over
// entities that carry component T1.
type EntitySet1[T1 any] struct {
	sig     [1]ComponentType
	table   *EntityTable
	store1  *ComponentStore[T1]

	entry struct {
		entity []Entity
		id1    []ComponentID
	}
	entityToSlot map[Entity]int
	listeners    listeners
}

func newEntitySet1[T1 any](table *EntityTable, s1 *ComponentStore[T1], t1 ComponentType) *EntitySet1[T1] {
	return &EntitySet1[T1]{
		sig:          [1]ComponentType{t1},
		table:        table,
		store1:       s1,
		entityToSlot: make(map[Entity]int),
		listeners:    newListeners(),
	}
}

func (s *EntitySet1[T1]) signature() []ComponentType { return s.sig[:] }

// Len returns the number of entities currently in the set.
func (s *EntitySet1[T1]) Len() int { return len(s.entry.entity) }

// ForEach visits every entity in the set along with a pointer to its T1.
// Do not mutate the manager (add/remove entities or components) while
// iterating; the set's backing arrays may relocate under you.
func (s *EntitySet1[T1]) ForEach(fn func(Entity, *T1)) {
	for i, e := range s.entry.entity {
		fn(e, s.store1.Get(s.entry.id1[i]))
	}
}

// AddAddedListener registers fn to be called whenever an entity enters
// the set. Returns an id usable with RemoveAddedListener.
func (s *EntitySet1[T1]) AddAddedListener(fn func(Entity)) ListenerID {
	id, _ := s.listeners.added.Emplace(fn)
	return id
}

// RemoveAddedListener deregisters a listener by id.
func (s *EntitySet1[T1]) RemoveAddedListener(id ListenerID) { s.listeners.added.Erase(id) }

// AddRemovedListener registers fn to be called whenever an entity leaves
// the set. Returns an id usable with RemoveRemovedListener.
func (s *EntitySet1[T1]) AddRemovedListener(fn func(Entity)) ListenerID {
	id, _ := s.listeners.removed.Emplace(fn)
	return id
}

// RemoveRemovedListener deregisters a listener by id.
func (s *EntitySet1[T1]) RemoveRemovedListener(id ListenerID) { s.listeners.removed.Erase(id) }

func (s *EntitySet1[T1]) satisfies(data EntityData) bool {
	_, ok := data[s.sig[0]]
	return ok
}

func (s *EntitySet1[T1]) add(e Entity, data EntityData) {
	s.entityToSlot[e] = len(s.entry.entity)
	s.entry.entity = append(s.entry.entity, e)
	s.entry.id1 = append(s.entry.id1, data[s.sig[0]])
	s.listeners.fireAdded(e)
}

func (s *EntitySet1[T1]) remove(e Entity) {
	s.listeners.fireRemoved(e)
	i := s.entityToSlot[e]
	last := len(s.entry.entity) - 1

	s.entry.entity[i] = s.entry.entity[last]
	s.entry.id1[i] = s.entry.id1[last]
	s.entityToSlot[s.entry.entity[i]] = i

	s.entry.entity = s.entry.entity[:last]
	s.entry.id1 = s.entry.id1[:last]
	delete(s.entityToSlot, e)
}

func (s *EntitySet1[T1]) onEntityUpdated(e Entity) {
	data := s.table.Get(e)
	satisfied := s.satisfies(data)
	_, managed := s.entityToSlot[e]
	switch {
	case satisfied && !managed:
		s.add(e, data)
	case !satisfied && managed:
		s.remove(e)
	case satisfied && managed:
		// AddComponent for a T1 that e already carries repoints e's
		// component map at a new id without changing membership, so
		// the cached id can be stale. Refresh it.
		s.entry.id1[s.entityToSlot[e]] = data[s.sig[0]]
	}
}

func (s *EntitySet1[T1]) onEntityRemoved(e Entity) {
	if _, managed := s.entityToSlot[e]; managed {
		s.remove(e)
	}
}

// EntitySet2 is a materialized view over entities that carry both T1 and
// T2, ordered — (T1, T2) and (T2, T1) are distinct registrations.
type EntitySet2[T1, T2 any] struct {
	sig    [2]ComponentType
	table  *EntityTable
	store1 *ComponentStore[T1]
	store2 *ComponentStore[T2]

	entry struct {
		entity []Entity
		id1    []ComponentID
		id2    []ComponentID
	}
	entityToSlot map[Entity]int
	listeners    listeners
}

func newEntitySet2[T1, T2 any](table *EntityTable, s1 *ComponentStore[T1], s2 *ComponentStore[T2], t1, t2 ComponentType) *EntitySet2[T1, T2] {
	return &EntitySet2[T1, T2]{
		sig:          [2]ComponentType{t1, t2},
		table:        table,
		store1:       s1,
		store2:       s2,
		entityToSlot: make(map[Entity]int),
		listeners:    newListeners(),
	}
}

func (s *EntitySet2[T1, T2]) signature() []ComponentType { return s.sig[:] }
func (s *EntitySet2[T1, T2]) Len() int                   { return len(s.entry.entity) }

func (s *EntitySet2[T1, T2]) ForEach(fn func(Entity, *T1, *T2)) {
	for i, e := range s.entry.entity {
		fn(e, s.store1.Get(s.entry.id1[i]), s.store2.Get(s.entry.id2[i]))
	}
}

func (s *EntitySet2[T1, T2]) AddAddedListener(fn func(Entity)) ListenerID {
	id, _ := s.listeners.added.Emplace(fn)
	return id
}
func (s *EntitySet2[T1, T2]) RemoveAddedListener(id ListenerID) { s.listeners.added.Erase(id) }
func (s *EntitySet2[T1, T2]) AddRemovedListener(fn func(Entity)) ListenerID {
	id, _ := s.listeners.removed.Emplace(fn)
	return id
}
func (s *EntitySet2[T1, T2]) RemoveRemovedListener(id ListenerID) { s.listeners.removed.Erase(id) }

func (s *EntitySet2[T1, T2]) satisfies(data EntityData) bool {
	_, ok1 := data[s.sig[0]]
	_, ok2 := data[s.sig[1]]
	return ok1 && ok2
}

func (s *EntitySet2[T1, T2]) add(e Entity, data EntityData) {
	s.entityToSlot[e] = len(s.entry.entity)
	s.entry.entity = append(s.entry.entity, e)
	s.entry.id1 = append(s.entry.id1, data[s.sig[0]])
	s.entry.id2 = append(s.entry.id2, data[s.sig[1]])
	s.listeners.fireAdded(e)
}

func (s *EntitySet2[T1, T2]) remove(e Entity) {
	s.listeners.fireRemoved(e)
	i := s.entityToSlot[e]
	last := len(s.entry.entity) - 1

	s.entry.entity[i] = s.entry.entity[last]
	s.entry.id1[i] = s.entry.id1[last]
	s.entry.id2[i] = s.entry.id2[last]
	s.entityToSlot[s.entry.entity[i]] = i

	s.entry.entity = s.entry.entity[:last]
	s.entry.id1 = s.entry.id1[:last]
	s.entry.id2 = s.entry.id2[:last]
	delete(s.entityToSlot, e)
}

func (s *EntitySet2[T1, T2]) onEntityUpdated(e Entity) {
	data := s.table.Get(e)
	satisfied := s.satisfies(data)
	_, managed := s.entityToSlot[e]
	switch {
	case satisfied && !managed:
		s.add(e, data)
	case !satisfied && managed:
		s.remove(e)
	case satisfied && managed:
		i := s.entityToSlot[e]
		s.entry.id1[i] = data[s.sig[0]]
		s.entry.id2[i] = data[s.sig[1]]
	}
}

func (s *EntitySet2[T1, T2]) onEntityRemoved(e Entity) {
	if _, managed := s.entityToSlot[e]; managed {
		s.remove(e)
	}
}

// EntitySet3 is a materialized view over entities that carry T1, T2 and T3.
type EntitySet3[T1, T2, T3 any] struct {
	sig    [3]ComponentType
	table  *EntityTable
	store1 *ComponentStore[T1]
	store2 *ComponentStore[T2]
	store3 *ComponentStore[T3]

	entry struct {
		entity []Entity
		id1    []ComponentID
		id2    []ComponentID
		id3    []ComponentID
	}
	entityToSlot map[Entity]int
	listeners    listeners
}

func newEntitySet3[T1, T2, T3 any](table *EntityTable, s1 *ComponentStore[T1], s2 *ComponentStore[T2], s3 *ComponentStore[T3], t1, t2, t3 ComponentType) *EntitySet3[T1, T2, T3] {
	return &EntitySet3[T1, T2, T3]{
		sig:          [3]ComponentType{t1, t2, t3},
		table:        table,
		store1:       s1,
		store2:       s2,
		store3:       s3,
		entityToSlot: make(map[Entity]int),
		listeners:    newListeners(),
	}
}

func (s *EntitySet3[T1, T2, T3]) signature() []ComponentType { return s.sig[:] }
func (s *EntitySet3[T1, T2, T3]) Len() int                   { return len(s.entry.entity) }

func (s *EntitySet3[T1, T2, T3]) ForEach(fn func(Entity, *T1, *T2, *T3)) {
	for i, e := range s.entry.entity {
		fn(e, s.store1.Get(s.entry.id1[i]), s.store2.Get(s.entry.id2[i]), s.store3.Get(s.entry.id3[i]))
	}
}

func (s *EntitySet3[T1, T2, T3]) AddAddedListener(fn func(Entity)) ListenerID {
	id, _ := s.listeners.added.Emplace(fn)
	return id
}
func (s *EntitySet3[T1, T2, T3]) RemoveAddedListener(id ListenerID) { s.listeners.added.Erase(id) }
func (s *EntitySet3[T1, T2, T3]) AddRemovedListener(fn func(Entity)) ListenerID {
	id, _ := s.listeners.removed.Emplace(fn)
	return id
}
func (s *EntitySet3[T1, T2, T3]) RemoveRemovedListener(id ListenerID) {
	s.listeners.removed.Erase(id)
}

func (s *EntitySet3[T1, T2, T3]) satisfies(data EntityData) bool {
	_, ok1 := data[s.sig[0]]
	_, ok2 := data[s.sig[1]]
	_, ok3 := data[s.sig[2]]
	return ok1 && ok2 && ok3
}

func (s *EntitySet3[T1, T2, T3]) add(e Entity, data EntityData) {
	s.entityToSlot[e] = len(s.entry.entity)
	s.entry.entity = append(s.entry.entity, e)
	s.entry.id1 = append(s.entry.id1, data[s.sig[0]])
	s.entry.id2 = append(s.entry.id2, data[s.sig[1]])
	s.entry.id3 = append(s.entry.id3, data[s.sig[2]])
	s.listeners.fireAdded(e)
}

func (s *EntitySet3[T1, T2, T3]) remove(e Entity) {
	s.listeners.fireRemoved(e)
	i := s.entityToSlot[e]
	last := len(s.entry.entity) - 1

	s.entry.entity[i] = s.entry.entity[last]
	s.entry.id1[i] = s.entry.id1[last]
	s.entry.id2[i] = s.entry.id2[last]
	s.entry.id3[i] = s.entry.id3[last]
	s.entityToSlot[s.entry.entity[i]] = i

	s.entry.entity = s.entry.entity[:last]
	s.entry.id1 = s.entry.id1[:last]
	s.entry.id2 = s.entry.id2[:last]
	s.entry.id3 = s.entry.id3[:last]
	delete(s.entityToSlot, e)
}

func (s *EntitySet3[T1, T2, T3]) onEntityUpdated(e Entity) {
	data := s.table.Get(e)
	satisfied := s.satisfies(data)
	_, managed := s.entityToSlot[e]
	switch {
	case satisfied && !managed:
		s.add(e, data)
	case !satisfied && managed:
		s.remove(e)
	case satisfied && managed:
		i := s.entityToSlot[e]
		s.entry.id1[i] = data[s.sig[0]]
		s.entry.id2[i] = data[s.sig[1]]
		s.entry.id3[i] = data[s.sig[2]]
	}
}

func (s *EntitySet3[T1, T2, T3]) onEntityRemoved(e Entity) {
	if _, managed := s.entityToSlot[e]; managed {
		s.remove(e)
	}
}

// EntitySet4 is a materialized view over entities that carry T1, T2, T3
// and T4.
type EntitySet4[T1, T2, T3, T4 any] struct {
	sig    [4]ComponentType
	table  *EntityTable
	store1 *ComponentStore[T1]
	store2 *ComponentStore[T2]
	store3 *ComponentStore[T3]
	store4 *ComponentStore[T4]

	entry struct {
		entity []Entity
		id1    []ComponentID
		id2    []ComponentID
		id3    []ComponentID
		id4    []ComponentID
	}
	entityToSlot map[Entity]int
	listeners    listeners
}

func newEntitySet4[T1, T2, T3, T4 any](table *EntityTable, s1 *ComponentStore[T1], s2 *ComponentStore[T2], s3 *ComponentStore[T3], s4 *ComponentStore[T4], t1, t2, t3, t4 ComponentType) *EntitySet4[T1, T2, T3, T4] {
	return &EntitySet4[T1, T2, T3, T4]{
		sig:          [4]ComponentType{t1, t2, t3, t4},
		table:        table,
		store1:       s1,
		store2:       s2,
		store3:       s3,
		store4:       s4,
		entityToSlot: make(map[Entity]int),
		listeners:    newListeners(),
	}
}

func (s *EntitySet4[T1, T2, T3, T4]) signature() []ComponentType { return s.sig[:] }
func (s *EntitySet4[T1, T2, T3, T4]) Len() int                   { return len(s.entry.entity) }

func (s *EntitySet4[T1, T2, T3, T4]) ForEach(fn func(Entity, *T1, *T2, *T3, *T4)) {
	for i, e := range s.entry.entity {
		fn(e, s.store1.Get(s.entry.id1[i]), s.store2.Get(s.entry.id2[i]), s.store3.Get(s.entry.id3[i]), s.store4.Get(s.entry.id4[i]))
	}
}

func (s *EntitySet4[T1, T2, T3, T4]) AddAddedListener(fn func(Entity)) ListenerID {
	id, _ := s.listeners.added.Emplace(fn)
	return id
}
func (s *EntitySet4[T1, T2, T3, T4]) RemoveAddedListener(id ListenerID) {
	s.listeners.added.Erase(id)
}
func (s *EntitySet4[T1, T2, T3, T4]) AddRemovedListener(fn func(Entity)) ListenerID {
	id, _ := s.listeners.removed.Emplace(fn)
	return id
}
func (s *EntitySet4[T1, T2, T3, T4]) RemoveRemovedListener(id ListenerID) {
	s.listeners.removed.Erase(id)
}

func (s *EntitySet4[T1, T2, T3, T4]) satisfies(data EntityData) bool {
	_, ok1 := data[s.sig[0]]
	_, ok2 := data[s.sig[1]]
	_, ok3 := data[s.sig[2]]
	_, ok4 := data[s.sig[3]]
	return ok1 && ok2 && ok3 && ok4
}

func (s *EntitySet4[T1, T2, T3, T4]) add(e Entity, data EntityData) {
	s.entityToSlot[e] = len(s.entry.entity)
	s.entry.entity = append(s.entry.entity, e)
	s.entry.id1 = append(s.entry.id1, data[s.sig[0]])
	s.entry.id2 = append(s.entry.id2, data[s.sig[1]])
	s.entry.id3 = append(s.entry.id3, data[s.sig[2]])
	s.entry.id4 = append(s.entry.id4, data[s.sig[3]])
	s.listeners.fireAdded(e)
}

func (s *EntitySet4[T1, T2, T3, T4]) remove(e Entity) {
	s.listeners.fireRemoved(e)
	i := s.entityToSlot[e]
	last := len(s.entry.entity) - 1

	s.entry.entity[i] = s.entry.entity[last]
	s.entry.id1[i] = s.entry.id1[last]
	s.entry.id2[i] = s.entry.id2[last]
	s.entry.id3[i] = s.entry.id3[last]
	s.entry.id4[i] = s.entry.id4[last]
	s.entityToSlot[s.entry.entity[i]] = i

	s.entry.entity = s.entry.entity[:last]
	s.entry.id1 = s.entry.id1[:last]
	s.entry.id2 = s.entry.id2[:last]
	s.entry.id3 = s.entry.id3[:last]
	s.entry.id4 = s.entry.id4[:last]
	delete(s.entityToSlot, e)
}

func (s *EntitySet4[T1, T2, T3, T4]) onEntityUpdated(e Entity) {
	data := s.table.Get(e)
	satisfied := s.satisfies(data)
	_, managed := s.entityToSlot[e]
	switch {
	case satisfied && !managed:
		s.add(e, data)
	case !satisfied && managed:
		s.remove(e)
	case satisfied && managed:
		i := s.entityToSlot[e]
		s.entry.id1[i] = data[s.sig[0]]
		s.entry.id2[i] = data[s.sig[1]]
		s.entry.id3[i] = data[s.sig[2]]
		s.entry.id4[i] = data[s.sig[3]]
	}
}

func (s *EntitySet4[T1, T2, T3, T4]) onEntityRemoved(e Entity) {
	if _, managed := s.entityToSlot[e]; managed {
		s.remove(e)
	}
}
