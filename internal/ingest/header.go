package ingest

import "strings"

// FragmentSet is one candidate header signature: every fragment must appear
// (case-insensitive) somewhere in the concatenated row text.
type FragmentSet []string

// HeaderSpec is an ordered list of fragment sets tried in priority order,
// typically the native-language export header first and the English variant
// as fallback. First match wins.
type HeaderSpec struct {
	Sets   []FragmentSet
	Window int // rows scanned from the top; bounds the search so a large body is never mistaken for headers
}

const defaultHeaderWindow = 50

// LocateHeader returns the index of the first row within the window whose
// concatenated lowercased text contains every fragment of some set, trying
// sets in priority order. Returns -1 if no row matches any set.
func LocateHeader(rows [][]string, spec HeaderSpec) int {
	window := spec.Window
	if window <= 0 {
		window = defaultHeaderWindow
	}
	if window > len(rows) {
		window = len(rows)
	}

	for _, set := range spec.Sets {
		for i := 0; i < window; i++ {
			rowText := strings.ToLower(strings.Join(rows[i], " "))
			if containsAll(rowText, set) {
				return i
			}
		}
	}
	return -1
}

func containsAll(rowText string, set FragmentSet) bool {
	for _, frag := range set {
		if !strings.Contains(rowText, strings.ToLower(frag)) {
			return false
		}
	}
	return true
}
