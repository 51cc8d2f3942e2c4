// Package taxontree aggregates classified photos into a sorted
// order, family, genus, species hierarchy with rollup counts.
package taxontree

import (
	"sort"

	"birdsort/internal/scanner"
	"birdsort/internal/taxonomy"
)

// Photo is one classified file.
type Photo struct {
	Path     string `json:"path"`
	FileName string `json:"fileName"`
}

// SpeciesNode holds the photos of one species.
type SpeciesNode struct {
	Latin     string  `json:"latin"`
	Localized string  `json:"localized"`
	Count     int     `json:"count"`
	Photos    []Photo `json:"photos"`
}

// GenusNode groups species sharing a genus.
type GenusNode struct {
	Name    string        `json:"name"`
	Count   int           `json:"count"`
	Species []SpeciesNode `json:"species"`
}

// FamilyNode groups genera.
type FamilyNode struct {
	Name   string      `json:"name"`
	Count  int         `json:"count"`
	Genera []GenusNode `json:"genera"`
}

// OrderNode groups families.
type OrderNode struct {
	Name     string       `json:"name"`
	Count    int          `json:"count"`
	Families []FamilyNode `json:"families"`
}

// Tree is the top of the hierarchy.
type Tree struct {
	Orders []OrderNode `json:"orders"`
}

// Level identifies a node depth for Walk.
type Level int

const (
	LevelOrder Level = iota
	LevelFamily
	LevelGenus
	LevelSpecies
	LevelPhoto
)

// Node is the view of a tree node passed to Walk callbacks.
type Node struct {
	Level Level
	Name  string
	Count int
	// Localized is set on species nodes.
	Localized string
	// Path is set on photo nodes.
	Path string
}

type speciesAgg struct {
	entry  taxonomy.Entry
	photos []Photo
}

type genusAgg map[string]*speciesAgg
type familyAgg map[string]genusAgg
type orderAgg map[string]familyAgg

// Build groups matches by the catalog entry they resolved to. Every level is
// sorted by name (species by latin, photos by file name then path) so the
// result does not depend on the order matches arrive in. Matches pointing
// outside entries are ignored.
func Build(entries []taxonomy.Entry, matches []scanner.Match) Tree {
	orders := make(map[string]orderAgg)
	for _, m := range matches {
		if m.SpeciesIndex < 0 || m.SpeciesIndex >= len(entries) {
			continue
		}
		entry := entries[m.SpeciesIndex]

		families, ok := orders[entry.Order]
		if !ok {
			families = make(orderAgg)
			orders[entry.Order] = families
		}
		genera, ok := families[entry.Family]
		if !ok {
			genera = make(familyAgg)
			families[entry.Family] = genera
		}
		genus := entry.Genus()
		species, ok := genera[genus]
		if !ok {
			species = make(genusAgg)
			genera[genus] = species
		}
		agg, ok := species[entry.Latin]
		if !ok {
			agg = &speciesAgg{entry: entry}
			species[entry.Latin] = agg
		}
		agg.photos = append(agg.photos, Photo{Path: m.Path, FileName: m.FileName})
	}

	tree := Tree{Orders: make([]OrderNode, 0, len(orders))}
	for _, name := range sortedKeys(orders) {
		tree.Orders = append(tree.Orders, buildOrder(name, orders[name]))
	}
	return tree
}

func buildOrder(name string, families orderAgg) OrderNode {
	node := OrderNode{Name: name, Families: make([]FamilyNode, 0, len(families))}
	for _, familyName := range sortedKeys(families) {
		family := buildFamily(familyName, families[familyName])
		node.Count += family.Count
		node.Families = append(node.Families, family)
	}
	return node
}

func buildFamily(name string, genera familyAgg) FamilyNode {
	node := FamilyNode{Name: name, Genera: make([]GenusNode, 0, len(genera))}
	for _, genusName := range sortedKeys(genera) {
		genus := buildGenus(genusName, genera[genusName])
		node.Count += genus.Count
		node.Genera = append(node.Genera, genus)
	}
	return node
}

func buildGenus(name string, species genusAgg) GenusNode {
	node := GenusNode{Name: name, Species: make([]SpeciesNode, 0, len(species))}
	for _, latin := range sortedKeys(species) {
		agg := species[latin]
		photos := agg.photos
		sort.Slice(photos, func(i, j int) bool {
			if photos[i].FileName != photos[j].FileName {
				return photos[i].FileName < photos[j].FileName
			}
			return photos[i].Path < photos[j].Path
		})
		node.Count += len(photos)
		node.Species = append(node.Species, SpeciesNode{
			Latin:     agg.entry.Latin,
			Localized: agg.entry.Localized,
			Count:     len(photos),
			Photos:    photos,
		})
	}
	return node
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Count returns the number of photos in the tree.
func (t Tree) Count() int {
	total := 0
	for _, order := range t.Orders {
		total += order.Count
	}
	return total
}

// SpeciesCount returns the number of distinct species with at least one photo.
func (t Tree) SpeciesCount() int {
	total := 0
	for _, order := range t.Orders {
		for _, family := range order.Families {
			for _, genus := range family.Genera {
				total += len(genus.Species)
			}
		}
	}
	return total
}

// Walk visits every node depth-first in tree order. Returning false from fn
// skips the node's children.
func (t Tree) Walk(fn func(Node) bool) {
	for _, order := range t.Orders {
		if !fn(Node{Level: LevelOrder, Name: order.Name, Count: order.Count}) {
			continue
		}
		for _, family := range order.Families {
			if !fn(Node{Level: LevelFamily, Name: family.Name, Count: family.Count}) {
				continue
			}
			for _, genus := range family.Genera {
				if !fn(Node{Level: LevelGenus, Name: genus.Name, Count: genus.Count}) {
					continue
				}
				for _, species := range genus.Species {
					if !fn(Node{Level: LevelSpecies, Name: species.Latin, Count: species.Count, Localized: species.Localized}) {
						continue
					}
					for _, photo := range species.Photos {
						fn(Node{Level: LevelPhoto, Name: photo.FileName, Count: 1, Path: photo.Path})
					}
				}
			}
		}
	}
}
