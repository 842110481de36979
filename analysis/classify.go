package analysis

import "strings"

// Rule matches a name exactly, or by prefix when Prefix is set
type Rule struct {
	Name   string
	Prefix bool
}

func (r Rule) Match(name string) bool {
	if r.Prefix {
		return strings.HasPrefix(name, r.Name)
	}
	return name == r.Name
}

func exact(name string) Rule  { return Rule{Name: name} }
func prefix(name string) Rule { return Rule{Name: name, Prefix: true} }

// Classifier maps names to categories through a static rule table. Results
// are remembered per name.
type Classifier[C comparable] struct {
	rules map[C][]Rule
	order []C
	memo  map[string]C
	none  C
}

// NewClassifier builds a classifier. order fixes which category wins when
// several match; none is returned for names no rule matches.
func NewClassifier[C comparable](none C, order []C, rules map[C][]Rule) *Classifier[C] {
	return &Classifier[C]{rules: rules, order: order, memo: make(map[string]C), none: none}
}

func (c *Classifier[C]) Classify(name string) C {
	if category, ok := c.memo[name]; ok {
		return category
	}
	category := c.none
	for _, candidate := range c.order {
		if matchAny(c.rules[candidate], name) {
			category = candidate
			break
		}
	}
	c.memo[name] = category
	return category
}

// Is reports whether name belongs to category
func (c *Classifier[C]) Is(name string, category C) bool {
	return c.Classify(name) == category
}

func matchAny(rules []Rule, name string) bool {
	for _, r := range rules {
		if r.Match(name) {
			return true
		}
	}
	return false
}

type TileType int

const (
	TileOther TileType = iota
	TileUnknown
	TileStairs
	TileDoor
	TileWall
	TileFloor
)

var tileTypes = []TileType{TileUnknown, TileStairs, TileDoor, TileWall, TileFloor}

var tileRules = map[TileType][]Rule{
	TileUnknown: {exact("UNKNOWN")},
	TileStairs:  {prefix("STAIRS"), prefix("EXIT")},
	TileDoor:    {prefix("DOOR"), prefix("GATE")},
	TileWall:    {prefix("WALL"), exact("EARTH")},
	TileFloor:   {prefix("FLOOR")},
}

// NewTileClassifier classifies cell names
func NewTileClassifier() *Classifier[TileType] {
	return NewClassifier(TileOther, tileTypes, tileRules)
}

type PropType int

const (
	PropOther PropType = iota
	PropGarrisonAccess
	PropGarrisonTerminal
	PropRifInstaller
	PropTerminal
	PropFabricator
	PropRepairStation
	PropRecyclingUnit
	PropScanalyzer
)

// order matters: Garrison Terminal before the Terminal prefix
var propTypes = []PropType{
	PropGarrisonAccess, PropGarrisonTerminal, PropRifInstaller, PropTerminal,
	PropFabricator, PropRepairStation, PropRecyclingUnit, PropScanalyzer,
}

var propRules = map[PropType][]Rule{
	PropGarrisonAccess:   {exact("Garrison Access")},
	PropGarrisonTerminal: {exact("Garrison Terminal")},
	PropRifInstaller:     {exact("RIF Installer")},
	PropTerminal:         {prefix("Terminal"), exact("Door Terminal")},
	PropFabricator:       {prefix("Fabricator")},
	PropRepairStation:    {prefix("Repair Station")},
	PropRecyclingUnit:    {prefix("Recycling Unit")},
	PropScanalyzer:       {prefix("Scanalyzer")},
}

// NewPropClassifier classifies prop names
func NewPropClassifier() *Classifier[PropType] {
	return NewClassifier(PropOther, propTypes, propRules)
}

// FindTilesByType returns the cells whose cell name falls in tileType
func FindTilesByType(g *Grid, c *Classifier[TileType], tileType TileType) []*Cell {
	return g.Find(func(cell *Cell) bool {
		return c.Is(cell.Name, tileType)
	})
}

// FindPropTiles returns the cells holding a prop of propType. With
// interactiveOnly only the interactive piece of each machine is returned.
func FindPropTiles(g *Grid, c *Classifier[PropType], propType PropType, interactiveOnly bool) []*Cell {
	return g.Find(func(cell *Cell) bool {
		if cell.Prop == nil || (interactiveOnly && !cell.Prop.Interactive) {
			return false
		}
		return c.Is(cell.Prop.Name, propType)
	})
}
