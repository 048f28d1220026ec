package compare

import (
	"sort"
	"unicode/utf8"

	"dirdoc/internal/tree"
)

// Item locates one node in a compared tree.
type Item struct {
	Path        string
	Name        string
	Kind        tree.Kind
	Description string
}

// DescriptionChange is a matched pair whose descriptions drifted apart.
type DescriptionChange struct {
	Item
	Recorded string
	Actual   string
}

type Result struct {
	// MissingInActual holds recorded entries with no counterpart on disk.
	MissingInActual []Item
	// MissingInRecorded holds entries on disk the recorded tree does not list.
	MissingInRecorded []Item
	// DifferentDescriptions is only filled when the actual side carries a
	// non-empty description; a blank scan never counts as drift.
	DifferentDescriptions []DescriptionChange
	// ShortOrMissingDescriptions covers every recorded node, root included.
	ShortOrMissingDescriptions []Item
}

// HasDiscrepancies reports whether the two trees list different entries.
func (r *Result) HasDiscrepancies() bool {
	return len(r.MissingInActual) > 0 || len(r.MissingInRecorded) > 0
}

func (r *Result) HasDescriptionIssues() bool {
	return len(r.ShortOrMissingDescriptions) > 0
}

type key struct {
	name string
	kind tree.Kind
}

// Compare reports how recorded differs from actual. Children are matched by
// (name, kind) at each level, first match wins. A matched pair is descended
// into only when both sides have children, so a subtree that one side lists
// and the other leaves unexpanded is not reported entry by entry.
func Compare(recorded, actual *tree.Node, minDescriptionLength int) *Result {
	result := &Result{
		MissingInActual:            make([]Item, 0),
		MissingInRecorded:          make([]Item, 0),
		DifferentDescriptions:      make([]DescriptionChange, 0),
		ShortOrMissingDescriptions: make([]Item, 0),
	}

	compareLevel(recorded, actual, tree.RootPath, result)

	recorded.Walk(func(p string, node *tree.Node) {
		if utf8.RuneCountInString(node.Description) < minDescriptionLength {
			result.ShortOrMissingDescriptions = append(result.ShortOrMissingDescriptions, newItem(p, node))
		}
	})

	// Sort for deterministic output
	sortItems(result.MissingInActual)
	sortItems(result.MissingInRecorded)
	sortItems(result.ShortOrMissingDescriptions)
	sort.SliceStable(result.DifferentDescriptions, func(i, j int) bool {
		return itemLess(result.DifferentDescriptions[i].Item, result.DifferentDescriptions[j].Item)
	})

	return result
}

func compareLevel(recorded, actual *tree.Node, dirPath string, result *Result) {
	actualIndex := index(actual)
	for _, rec := range recorded.Children {
		childPath := tree.ChildPath(dirPath, rec.Name)
		act, ok := actualIndex[key{rec.Name, rec.Kind}]
		if !ok {
			result.MissingInActual = append(result.MissingInActual, newItem(childPath, rec))
			continue
		}

		if rec.Description != act.Description && act.Description != "" {
			result.DifferentDescriptions = append(result.DifferentDescriptions, DescriptionChange{
				Item:     newItem(childPath, rec),
				Recorded: rec.Description,
				Actual:   act.Description,
			})
		}

		if rec.HasChildren() && act.HasChildren() {
			compareLevel(rec, act, childPath, result)
		}
	}

	recordedIndex := index(recorded)
	for _, act := range actual.Children {
		if _, ok := recordedIndex[key{act.Name, act.Kind}]; !ok {
			result.MissingInRecorded = append(result.MissingInRecorded, newItem(tree.ChildPath(dirPath, act.Name), act))
		}
	}
}

// index maps each (name, kind) to its first child.
func index(n *tree.Node) map[key]*tree.Node {
	idx := make(map[key]*tree.Node, len(n.Children))
	for _, child := range n.Children {
		k := key{child.Name, child.Kind}
		if _, seen := idx[k]; !seen {
			idx[k] = child
		}
	}
	return idx
}

func newItem(p string, n *tree.Node) Item {
	return Item{Path: p, Name: n.Name, Kind: n.Kind, Description: n.Description}
}

func sortItems(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return itemLess(items[i], items[j])
	})
}

func itemLess(a, b Item) bool {
	if a.Path != b.Path {
		return a.Path < b.Path
	}
	return a.Kind < b.Kind
}
