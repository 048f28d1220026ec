package tree

import (
	"sort"
	"strings"
)

// Sort orders every level of the tree for stable output: directories first,
// then files, each group by case-insensitive name with exact name breaking
// ties. Children slices are replaced with sorted copies; the nodes themselves
// are not touched.
func Sort(root *Node) *Node {
	if !root.HasChildren() {
		return root
	}

	directories := make([]*Node, 0, len(root.Children))
	files := make([]*Node, 0, len(root.Children))
	for _, child := range root.Children {
		Sort(child)
		if child.IsDir() {
			directories = append(directories, child)
		} else {
			files = append(files, child)
		}
	}

	sortByName(directories)
	sortByName(files)

	root.Children = append(directories, files...)
	return root
}

func sortByName(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return nameLess(nodes[i].Name, nodes[j].Name)
	})
}

// nameLess orders case-insensitively, falling back to the raw bytes so names
// that differ only in case do not depend on listing order.
func nameLess(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}

// IsSorted reports whether every level already satisfies Sort's order.
func IsSorted(root *Node) bool {
	seenFile := false
	for i, child := range root.Children {
		if child.IsDir() && seenFile {
			return false
		}
		if !child.IsDir() {
			seenFile = true
		}
		if i > 0 {
			prev := root.Children[i-1]
			if prev.IsDir() == child.IsDir() && nameLess(child.Name, prev.Name) {
				return false
			}
		}
		if !IsSorted(child) {
			return false
		}
	}
	return true
}
