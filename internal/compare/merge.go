package compare

import "dirdoc/internal/tree"

// TransferDescriptions copies recorded descriptions onto the matching nodes
// of actual. Matching and descent follow Compare. Only Description fields of
// actual are written; recorded is left untouched.
func TransferDescriptions(recorded, actual *tree.Node) {
	if recorded.Description != "" {
		actual.Description = recorded.Description
	}
	transferLevel(recorded, actual)
}

func transferLevel(recorded, actual *tree.Node) {
	recordedIndex := index(recorded)
	for _, act := range actual.Children {
		rec, ok := recordedIndex[key{act.Name, act.Kind}]
		if !ok {
			continue
		}
		if rec.Description != "" {
			act.Description = rec.Description
		}
		if rec.HasChildren() && act.HasChildren() {
			transferLevel(rec, act)
		}
	}
}
