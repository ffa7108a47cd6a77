package server

import (
	"fmt"
	"math/rand"
	"sort"
)

type ItemType string

type Rarity string

const (
	RarityCommon Rarity = "common"
	RarityRare   Rarity = "rare"
	RarityEpic   Rarity = "epic"
)

const (
	ItemTypeRustedShortsword  ItemType = "rusted_shortsword"
	ItemTypeLeatherCuirass    ItemType = "leather_cuirass"
	ItemTypeQuickstepBoots    ItemType = "quickstep_boots"
	ItemTypeIronLongsword     ItemType = "iron_longsword"
	ItemTypeTowerShield       ItemType = "tower_shield"
	ItemTypeFalconTalisman    ItemType = "falcon_talisman"
	ItemTypeWardensGreatblade ItemType = "wardens_greatblade"
	ItemTypeAegisOfDawn       ItemType = "aegis_of_dawn"
	ItemTypeStormcallerBand   ItemType = "stormcaller_band"
)

// ItemModifier is a flat stat adjustment contributed by an item.
type ItemModifier struct {
	Type      string  `json:"type"`
	Magnitude float64 `json:"magnitude"`
}

const (
	modifierAttackPower  = "attack_power"
	modifierDefensePower = "defense_power"
	modifierAttackSpeed  = "attack_speed"
)

// ItemDefinition describes one catalog entry.
type ItemDefinition struct {
	ID          ItemType       `json:"id"`
	Name        string         `json:"name"`
	Rarity      Rarity         `json:"rarity"`
	Slot        string         `json:"slot,omitempty"`
	Modifiers   []ItemModifier `json:"modifiers,omitempty"`
	Description string         `json:"description,omitempty"`
}

// RarityWeights drives the weighted drop pick. The 70/25/5 split is tuning,
// not an invariant; override it through HubConfig.
type RarityWeights struct {
	Common int
	Rare   int
	Epic   int
}

func DefaultRarityWeights() RarityWeights {
	return RarityWeights{Common: 70, Rare: 25, Epic: 5}
}

var itemCatalog = buildItemCatalog()

func buildItemCatalog() map[ItemType]ItemDefinition {
	defs := []ItemDefinition{
		mustDefine(ItemDefinition{
			ID:          ItemTypeRustedShortsword,
			Name:        "Rusted Shortsword",
			Rarity:      RarityCommon,
			Slot:        "weapon",
			Modifiers:   []ItemModifier{{Type: modifierAttackPower, Magnitude: 2}},
			Description: "A pitted blade scavenged from the arena floor.",
		}),
		mustDefine(ItemDefinition{
			ID:          ItemTypeLeatherCuirass,
			Name:        "Leather Cuirass",
			Rarity:      RarityCommon,
			Slot:        "armor",
			Modifiers:   []ItemModifier{{Type: modifierDefensePower, Magnitude: 3}},
			Description: "Simple body armor providing modest protection.",
		}),
		mustDefine(ItemDefinition{
			ID:          ItemTypeQuickstepBoots,
			Name:        "Quickstep Boots",
			Rarity:      RarityCommon,
			Slot:        "boots",
			Modifiers:   []ItemModifier{{Type: modifierAttackSpeed, Magnitude: 0.1}},
			Description: "Worn soles that shave a beat off every swing.",
		}),
		mustDefine(ItemDefinition{
			ID:          ItemTypeIronLongsword,
			Name:        "Iron Longsword",
			Rarity:      RarityRare,
			Slot:        "weapon",
			Modifiers:   []ItemModifier{{Type: modifierAttackPower, Magnitude: 5}},
			Description: "A balanced blade suited for long bouts.",
		}),
		mustDefine(ItemDefinition{
			ID:          ItemTypeTowerShield,
			Name:        "Tower Shield",
			Rarity:      RarityRare,
			Slot:        "shield",
			Modifiers:   []ItemModifier{{Type: modifierDefensePower, Magnitude: 6}},
			Description: "Covers most of the body when braced.",
		}),
		mustDefine(ItemDefinition{
			ID:          ItemTypeFalconTalisman,
			Name:        "Falcon Talisman",
			Rarity:      RarityRare,
			Slot:        "accessory",
			Modifiers:   []ItemModifier{{Type: modifierAttackSpeed, Magnitude: 0.25}},
			Description: "A charm that quickens the wearer's strikes.",
		}),
		mustDefine(ItemDefinition{
			ID:     ItemTypeWardensGreatblade,
			Name:   "Warden's Greatblade",
			Rarity: RarityEpic,
			Slot:   "weapon",
			Modifiers: []ItemModifier{
				{Type: modifierAttackPower, Magnitude: 9},
			},
			Description: "Carried by the arena wardens of the old levels.",
		}),
		mustDefine(ItemDefinition{
			ID:          ItemTypeAegisOfDawn,
			Name:        "Aegis of Dawn",
			Rarity:      RarityEpic,
			Slot:        "shield",
			Modifiers:   []ItemModifier{{Type: modifierDefensePower, Magnitude: 10}},
			Description: "Turns aside blows that should have landed.",
		}),
		mustDefine(ItemDefinition{
			ID:     ItemTypeStormcallerBand,
			Name:   "Stormcaller Band",
			Rarity: RarityEpic,
			Slot:   "accessory",
			Modifiers: []ItemModifier{
				{Type: modifierAttackSpeed, Magnitude: 0.5},
			},
			Description: "Hums faintly between swings.",
		}),
	}

	catalog := make(map[ItemType]ItemDefinition, len(defs))
	for _, def := range defs {
		catalog[def.ID] = def
	}
	return catalog
}

func mustDefine(def ItemDefinition) ItemDefinition {
	if def.ID == "" || def.Name == "" || def.Rarity == "" {
		panic(fmt.Sprintf("incomplete item definition %+v", def))
	}
	return def
}

// ItemDefinitionFor fetches the definition for a given item type.
func ItemDefinitionFor(itemType ItemType) (ItemDefinition, bool) {
	def, ok := itemCatalog[itemType]
	return def, ok
}

// ItemDefinitions returns the list of definitions sorted by identifier.
func ItemDefinitions() []ItemDefinition {
	defs := make([]ItemDefinition, 0, len(itemCatalog))
	for _, def := range itemCatalog {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool {
		return defs[i].ID < defs[j].ID
	})
	return defs
}

// weightedPick selects a rarity tier by weight, then an item uniformly
// within that tier.
func weightedPick(rng *rand.Rand, weights RarityWeights) ItemDefinition {
	total := weights.Common + weights.Rare + weights.Epic
	if total <= 0 {
		weights = DefaultRarityWeights()
		total = weights.Common + weights.Rare + weights.Epic
	}
	roll := rng.Intn(total)
	var rarity Rarity
	switch {
	case roll < weights.Common:
		rarity = RarityCommon
	case roll < weights.Common+weights.Rare:
		rarity = RarityRare
	default:
		rarity = RarityEpic
	}

	candidates := make([]ItemDefinition, 0, len(itemCatalog))
	for _, def := range ItemDefinitions() {
		if def.Rarity == rarity {
			candidates = append(candidates, def)
		}
	}
	if len(candidates) == 0 {
		candidates = ItemDefinitions()
	}
	return candidates[rng.Intn(len(candidates))]
}
