// Package units provides the unit data model, the unit table, and the
// placement operation that keeps tile occupancy and unit positions in step.
package units

import (
	"strings"

	"github.com/talgya/hex-tactics/internal/world"
)

// Faction is the side a unit fights for.
type Faction uint8

const (
	FactionPlayer  Faction = iota // Human-controlled
	FactionEnemy                  // Opposing side, auto-resolved
	FactionAlly                   // Friendly, not controllable
	FactionNeutral                // Bystanders
)

// String returns the faction name.
func (f Faction) String() string {
	switch f {
	case FactionPlayer:
		return "Player"
	case FactionEnemy:
		return "Enemy"
	case FactionAlly:
		return "Ally"
	case FactionNeutral:
		return "Neutral"
	default:
		return "Unknown"
	}
}

// ParseFaction is the inverse of Faction.String, case-insensitive.
func ParseFaction(name string) (Faction, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "player":
		return FactionPlayer, true
	case "enemy":
		return FactionEnemy, true
	case "ally":
		return FactionAlly, true
	case "neutral":
		return FactionNeutral, true
	default:
		return FactionNeutral, false
	}
}

// Class is the unit's troop type.
type Class uint8

const (
	ClassInfantry Class = iota
	ClassCavalry
	ClassArcher
	ClassMage
	ClassPriest
	ClassKnight
	ClassDragon
)

var classNames = [...]string{"Infantry", "Cavalry", "Archer", "Mage", "Priest", "Knight", "Dragon"}

// String returns the class name.
func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return "Unknown"
}

// ParseClass is the inverse of Class.String, case-insensitive.
func ParseClass(name string) (Class, bool) {
	for i, n := range classNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return Class(i), true
		}
	}
	return ClassInfantry, false
}

// Default movement stats used when a template leaves them unset.
const (
	DefaultMoveRange   = 3
	DefaultAttackRange = 1
)

// Unit is the part of a game unit the tactical core reads and writes.
type Unit struct {
	ID      world.UnitID `json:"id"`
	Name    string       `json:"name"`
	Class   Class        `json:"class"`
	Faction Faction      `json:"faction"`

	// Position is only meaningful while Placed is true.
	Position world.HexCoord `json:"position"`
	Placed   bool           `json:"placed"`

	MoveRange   int `json:"move_range"`
	AttackRange int `json:"attack_range"`

	HasActed bool `json:"has_acted"`
	Alive    bool `json:"alive"`
}
