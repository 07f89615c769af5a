package ecs

import "errors"

// Errors returned at the EntityManager public API boundary. Internal
// invariant violations that a caller cannot trigger through the public
// surface (a corrupted free list, an out-of-range dense index) panic
// instead, the same posture the teacher's EntityPool/Registry took.
var (
	ErrUnknownComponentType       = errors.New("ecs: unknown component type")
	ErrComponentAlreadyRegistered = errors.New("ecs: component type already registered")
	ErrMissingComponent           = errors.New("ecs: entity does not have component")
	ErrDeadEntity                 = errors.New("ecs: entity is not alive")
	ErrDuplicateEntitySet         = errors.New("ecs: entity set already registered")
	ErrMissingEntitySet           = errors.New("ecs: entity set not registered")
)
