package collectionutil

import (
	"cmp"
	"slices"
)

// SortedKeys returns the keys of every map in `maps`, each key once, in ascending order.
//
// Examples:
//   - SortedKeys(map[string]int{"b": 1, "a": 2}) => []string{"a", "b"}
//   - SortedKeys(map[string]int{"a": 1}, map[string]int{"c": 1, "a": 2}) => []string{"a", "c"}
func SortedKeys[K cmp.Ordered, V any](maps ...map[K]V) []K {
	seen := make(map[K]struct{})
	var keys []K
	for _, m := range maps {
		for k := range m {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}
