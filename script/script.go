// Package script holds the data collection loops and the runner that
// repeats them across fresh runs of the game
package script

import (
	"fmt"
	"sort"

	"wizmind/action"
)

// Script is one pass of a data collection loop, played from a fresh run on
// the Scrapyard. The runner self destructs between passes.
type Script interface {
	Name() string
	Run(c *action.Controller, rec Record) error
}

// Record collects the counts of one pass by kind
type Record map[string]map[string]int

// Add merges counts into kind
func (r Record) Add(kind string, counts map[string]int) {
	into, ok := r[kind]
	if !ok {
		into = map[string]int{}
		r[kind] = into
	}
	for name, n := range counts {
		into[name] += n
	}
}

// AddDepth merges counts into kind and into the kind for depth
func (r Record) AddDepth(kind string, depth int, counts map[string]int) {
	r.Add(kind, counts)
	r.Add(DepthKind(kind, depth), counts)
}

// DepthKind names the per depth bucket of kind, "items@5" for items at -5
func DepthKind(kind string, depth int) string {
	return fmt.Sprintf("%s@%d", kind, depth)
}

// Count kinds
const (
	KindItems     = "items"
	KindProps     = "props"
	KindTiles     = "tiles"
	KindGarrisons = "garrisons"
)

var registry = map[string]func() Script{}

func register(newScript func() Script) {
	registry[newScript().Name()] = newScript
}

func init() {
	register(func() Script { return QuarantineContents{} })
	register(func() Script { return GarrisonContents{} })
	register(func() Script { return GarrisonEntry{} })
}

// Lookup returns a new instance of the named script
func Lookup(name string) (Script, error) {
	newScript, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown script %q, have %v", name, Names())
	}
	return newScript(), nil
}

// Names lists the registered scripts
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
