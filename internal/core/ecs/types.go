package ecs

// Entity is an opaque handle into the entity table. Its value is drawn
// from a pool of dense small integers recycled on removal — it carries
// no generation counter. Holding an Entity past RemoveEntity is a
// use-after-free of the handle; the manager does not detect it.
type Entity uint32

// ComponentType identifies a kind of component. It is assigned by
// EntityManager.RegisterComponent in registration order and stays stable
// for the lifetime of the manager.
type ComponentType uint16

// ComponentID is a handle into a single ComponentStore. It is not stable
// across insert/erase on that store — only the value it currently
// refers to is valid until the store is next mutated. Never exposed on
// EntityManager's public surface.
type ComponentID uint32

// ListenerID identifies a registered EntitySet add/remove listener,
// returned by AddAddedListener / AddRemovedListener so it can later be
// passed to RemoveAddedListener / RemoveRemovedListener.
type ListenerID uint32
