package server

import (
	"context"
	"strings"

	"duskhollow/server/internal/storage"
)

// EquipmentBonus holds the equipment-derived stats layered on top of a
// player's base attributes. Totals are summed on read, never persisted.
type EquipmentBonus struct {
	AttackPower  float64 `json:"attackPower"`
	DefensePower float64 `json:"defensePower"`
	AttackSpeed  float64 `json:"attackSpeed"`
}

// EquipmentCalculator resolves a durable record's equipped item list to the
// bonus totals. The gateway calls it before inserting a player into the live
// table.
type EquipmentCalculator interface {
	BonusesFor(ctx context.Context, record storage.PlayerRecord) (EquipmentBonus, error)
}

// CatalogCalculator sums catalog modifiers for every equipped item. Items
// missing from the catalog fall back to name inference so a stale equipment
// list degrades instead of erroring.
type CatalogCalculator struct{}

func (CatalogCalculator) BonusesFor(_ context.Context, record storage.PlayerRecord) (EquipmentBonus, error) {
	var bonus EquipmentBonus
	for _, itemID := range record.EquippedItems {
		if def, ok := ItemDefinitionFor(ItemType(itemID)); ok {
			for _, mod := range def.Modifiers {
				switch mod.Type {
				case modifierAttackPower:
					bonus.AttackPower += mod.Magnitude
				case modifierDefensePower:
					bonus.DefensePower += mod.Magnitude
				case modifierAttackSpeed:
					bonus.AttackSpeed += mod.Magnitude
				}
			}
			continue
		}
		inferred := inferBonusFromName(itemID)
		bonus.AttackPower += inferred.AttackPower
		bonus.DefensePower += inferred.DefensePower
		bonus.AttackSpeed += inferred.AttackSpeed
	}
	return bonus, nil
}

// inferBonusFromName is a heuristic fallback for items that predate the
// catalog. It keys off common equipment words in the identifier.
func inferBonusFromName(itemID string) EquipmentBonus {
	name := strings.ToLower(itemID)
	switch {
	case containsAny(name, "sword", "blade", "dagger", "axe", "spear"):
		return EquipmentBonus{AttackPower: 2}
	case containsAny(name, "shield", "helm", "plate", "cuirass", "mail"):
		return EquipmentBonus{DefensePower: 2}
	case containsAny(name, "boots", "charm", "band", "talisman"):
		return EquipmentBonus{AttackSpeed: 0.1}
	default:
		return EquipmentBonus{}
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
