package internal

import (
	"iter"
	"maps"
	"slices"
)

// Defines merges tables of assembler defines into one sequence, ordered
// by name. A name in a later table replaces the same name in an earlier one.
func Defines(tables ...iter.Seq2[string, string]) iter.Seq2[string, string] {
	merged := map[string]string{}
	for _, table := range tables {
		maps.Insert(merged, table)
	}

	return func(yield func(string, string) bool) {
		for _, name := range slices.Sorted(maps.Keys(merged)) {
			if !yield(name, merged[name]) {
				return
			}
		}
	}
}
