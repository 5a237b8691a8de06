package dashboard

import (
	"slices"
	"strings"
)

// SortPlugins sorts plugins in place by lowercase(category+name), keeping the
// relative order of equal keys.
func SortPlugins(plugins []NormalizedPlugin) {
	slices.SortStableFunc(plugins, func(a, b NormalizedPlugin) int {
		return strings.Compare(sortKey(a), sortKey(b))
	})
}

func sortKey(p NormalizedPlugin) string {
	return strings.ToLower(p.Category + p.Name)
}
