// Package world declares the contracts the combatant core consumes from the
// rest of the game: physics queries, character state and weapon inventory.
// Nothing here is implemented by the core itself.
package world

import "github.com/go-gl/mathgl/mgl64"

// EntityID is a stable handle for a character in the world.
type EntityID int

// NoEntity marks the absence of an entity.
const NoEntity EntityID = -1

// Pose is where an entity stands and which way it faces.
type Pose struct {
	Position mgl64.Vec3
	Forward  mgl64.Vec3 // unit vector on the ground plane
}

// TraceResult is the outcome of a line trace.
type TraceResult struct {
	Hit      bool
	Point    mgl64.Vec3
	Distance float64  // from the trace origin to Point
	Entity   EntityID // NoEntity when the trace hit static geometry
}

// Tracer casts line traces through the world.
type Tracer interface {
	Trace(from, to mgl64.Vec3) TraceResult
}

// Walkability answers ground/obstacle queries.
type Walkability interface {
	IsWalkable(p mgl64.Vec3) bool
}

// WalkFunc adapts a plain predicate to Walkability.
type WalkFunc func(p mgl64.Vec3) bool

// IsWalkable implements Walkability.
func (f WalkFunc) IsWalkable(p mgl64.Vec3) bool { return f(p) }

// TargetSource enumerates opposing characters that may be sensed.
type TargetSource interface {
	CandidateTargets(self EntityID, radius float64) []EntityID
}

// Characters exposes read-only character state.
type Characters interface {
	Exists(id EntityID) bool
	Pose(id EntityID) Pose
	Team(id EntityID) int
	Health(id EntityID) float64 // 0-1
	Velocity(id EntityID) mgl64.Vec3
	Weapon(id EntityID) Weapon
	InCover(id EntityID) bool
}

// Inventory is the weapon collaborator of an agent.
type Inventory interface {
	Weapons(self EntityID) []Weapon
	Current(self EntityID) (Weapon, bool)
	SwitchWeapon(self EntityID, weaponID string) bool
	FireWeapon(self EntityID, aim mgl64.Vec3)
	HasAmmo(self EntityID) bool
	RequestReload(self EntityID)
	Grenades(self EntityID, kind GrenadeKind) int
	ThrowGrenade(self EntityID, kind GrenadeKind, at mgl64.Vec3) bool
}

// CoverFinder locates registered cover points.
type CoverFinder interface {
	NearestCover(from mgl64.Vec3, maxDist float64) (mgl64.Vec3, bool)
}

// Neighborhood answers radius queries over live characters.
type Neighborhood interface {
	Within(center mgl64.Vec3, radius float64) []EntityID
}

// World bundles every collaborator the core depends on.
type World interface {
	Tracer
	Walkability
	TargetSource
	Characters
	Inventory
	CoverFinder
	Neighborhood
}
