package validate

import (
	"unicode/utf8"

	"dirdoc/internal/tree"
)

type Options struct {
	// RequireDescription flags nodes whose description is empty.
	RequireDescription bool
	// MinDescriptionLength is counted in characters, not bytes.
	MinDescriptionLength int
}

// Issue is one node that failed a description rule.
type Issue struct {
	Path        string
	Name        string
	Kind        tree.Kind
	Description string
	MinLength   int
}

type Result struct {
	Pass                 bool
	WithoutDescription   []Issue
	WithShortDescription []Issue
}

// Validate checks every node, root included. A node lands in at most one
// list: an empty description is never also reported as short.
func Validate(root *tree.Node, opts Options) *Result {
	result := &Result{
		WithoutDescription:   make([]Issue, 0),
		WithShortDescription: make([]Issue, 0),
	}

	root.Walk(func(p string, node *tree.Node) {
		issue := Issue{
			Path:        p,
			Name:        node.Name,
			Kind:        node.Kind,
			Description: node.Description,
			MinLength:   opts.MinDescriptionLength,
		}

		switch {
		case node.Description == "":
			if opts.RequireDescription {
				result.WithoutDescription = append(result.WithoutDescription, issue)
			}
		case utf8.RuneCountInString(node.Description) < opts.MinDescriptionLength:
			result.WithShortDescription = append(result.WithShortDescription, issue)
		}
	})

	result.Pass = len(result.WithoutDescription) == 0 && len(result.WithShortDescription) == 0
	return result
}
