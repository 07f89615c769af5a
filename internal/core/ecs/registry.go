package ecs

import "strconv"

// signatureKey turns an ordered tuple of component types into a map key.
// Order matters — (Position, Velocity) and (Velocity, Position) are
// distinct entity sets — so the encoding must not sort or otherwise
// normalize the tuple.
func signatureKey(types []ComponentType) string {
	// Component-type counts per manager are small (single/double digit),
	// so a decimal join is cheap and, unlike a numeric hash, never
	// collides.
	key := make([]byte, 0, len(types)*3)
	for i, t := range types {
		if i > 0 {
			key = append(key, ',')
		}
		key = strconv.AppendUint(key, uint64(t), 10)
	}
	return string(key)
}

// setRegistry owns every registered EntitySetN, keyed by its signature,
// plus the per-component-type inverted index ("which sets care about
// type τ") the manager uses to route add/remove notifications.
type setRegistry struct {
	byKey         map[string]entitySet
	byComponent   map[ComponentType][]entitySet
	registerOrder []entitySet
}

func newSetRegistry() *setRegistry {
	return &setRegistry{
		byKey:       make(map[string]entitySet),
		byComponent: make(map[ComponentType][]entitySet),
	}
}

// register indexes s under its signature and appends it to every
// component-type bucket its signature touches. Idempotent: registering
// the same signature twice is a no-op that returns the existing set —
// this is the Open Question decision in DESIGN.md, made to avoid
// order-of-initialization hazards between packages that both want a
// (Position, Velocity) view.
func (r *setRegistry) register(s entitySet) (entitySet, bool) {
	key := signatureKey(s.signature())
	if existing, ok := r.byKey[key]; ok {
		return existing, false
	}
	r.byKey[key] = s
	r.registerOrder = append(r.registerOrder, s)
	for _, t := range s.signature() {
		r.byComponent[t] = append(r.byComponent[t], s)
	}
	return s, true
}

func (r *setRegistry) get(types []ComponentType) (entitySet, bool) {
	s, ok := r.byKey[signatureKey(types)]
	return s, ok
}

// notifyComponentChanged fans out to every set watching componentType, in
// registration order.
func (r *setRegistry) notifyComponentChanged(componentType ComponentType, e Entity) {
	for _, s := range r.byComponent[componentType] {
		s.onEntityUpdated(e)
	}
}

// notifyEntityRemoved broadcasts to every registered set; each set
// self-filters via its own membership check.
func (r *setRegistry) notifyEntityRemoved(e Entity) {
	for _, s := range r.registerOrder {
		s.onEntityRemoved(e)
	}
}
