// Package menu models the navigation tree, caches it in storage with an
// expiry, and maps URL paths back to the program that owns them.
package menu

// Item is one node in the navigation tree returned by the backend.
type Item struct {
	Level           int    `json:"level"`
	SystemID        string `json:"systemId"`
	ProgramNo       string `json:"programNo"`
	ParentProgramNo string `json:"parentProgramNo"`
	ProgramName     string `json:"programName"`
	Path            string `json:"path"`
	Icon            string `json:"icon,omitempty"`
	UseYn           string `json:"useYn"`
	SortOrder       int    `json:"sortOrder"`
	Children        []Item `json:"children,omitempty"`
}

// Enabled reports whether the menu is switched on.
func (i Item) Enabled() bool {
	return i.UseYn == "" || i.UseYn == "Y"
}

// IsLeaf reports whether the node has no children.
func (i Item) IsLeaf() bool {
	return len(i.Children) == 0
}

// Flatten returns the tree in pre-order: a parent precedes its children and
// sibling order is preserved.
func Flatten(tree []Item) []Item {
	out := make([]Item, 0, len(tree))
	var walk func(nodes []Item)
	walk = func(nodes []Item) {
		for _, n := range nodes {
			out = append(out, n)
			if len(n.Children) > 0 {
				walk(n.Children)
			}
		}
	}
	walk(tree)
	return out
}

// Find returns the first item in pre-order with the given program number.
func Find(tree []Item, programNo string) (Item, bool) {
	if programNo == "" {
		return Item{}, false
	}
	for _, it := range Flatten(tree) {
		if it.ProgramNo == programNo {
			return it, true
		}
	}
	return Item{}, false
}
