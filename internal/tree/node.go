package tree

import "path"

type Kind string

const (
	Directory Kind = "directory"
	File      Kind = "file"
)

// RootPath is the report path of the tree root. Descendants are joined onto it
// with slashes, so a child of the root is reported by its bare name.
const RootPath = "."

// Node is one directory or file entry. AbsolutePath is only filled in by the
// walker and is never written to a document.
type Node struct {
	Name         string
	Kind         Kind
	Description  string
	Children     []*Node
	AbsolutePath string
}

func NewDirectory(name, description string) *Node {
	return &Node{Name: name, Kind: Directory, Description: description}
}

func NewFile(name, description string) *Node {
	return &Node{Name: name, Kind: File, Description: description}
}

func (n *Node) IsDir() bool {
	return n.Kind == Directory
}

func (n *Node) HasChildren() bool {
	return len(n.Children) > 0
}

func (n *Node) AddChild(child *Node) {
	n.Children = append(n.Children, child)
}

// Child returns the first child with the given name and kind, or nil.
func (n *Node) Child(name string, kind Kind) *Node {
	for _, child := range n.Children {
		if child.Name == name && child.Kind == kind {
			return child
		}
	}
	return nil
}

// Walk visits n and every descendant in pre-order. p is the slash-joined
// path relative to n, which itself is reported as RootPath.
func (n *Node) Walk(fn func(p string, node *Node)) {
	n.walk(RootPath, fn)
}

func (n *Node) walk(p string, fn func(string, *Node)) {
	fn(p, n)
	for _, child := range n.Children {
		child.walk(ChildPath(p, child.Name), fn)
	}
}

// ChildPath joins a child name onto a report path.
func ChildPath(parent, name string) string {
	return path.Join(parent, name)
}

// Len counts n and all of its descendants.
func (n *Node) Len() int {
	count := 0
	n.Walk(func(string, *Node) { count++ })
	return count
}
