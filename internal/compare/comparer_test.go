package compare

import (
	"strings"
	"testing"

	"github.com/go-test/deep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirdoc/internal/tree"
)

// recordedTree is a previously saved document for a small project.
func recordedTree() *tree.Node {
	root := tree.NewDirectory("project", "Project root directory")
	src := tree.NewDirectory("src", "Application source code")
	src.AddChild(tree.NewFile("main.go", "Program entry point"))
	util := tree.NewDirectory("util", "Shared helper functions")
	util.AddChild(tree.NewFile("strings.go", "String helpers"))
	src.AddChild(util)
	root.AddChild(src)
	root.AddChild(tree.NewFile("README.md", "Project overview and usage"))
	return root
}

// scannedTree is the same project as seen by a fresh scan, without util.
func scannedTree() *tree.Node {
	root := tree.NewDirectory("project", "Project root directory")
	src := tree.NewDirectory("src", "")
	src.AddChild(tree.NewFile("main.go", ""))
	root.AddChild(src)
	root.AddChild(tree.NewFile("README.md", ""))
	return root
}

func paths(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Path)
	}
	return out
}

func TestCompare_IdenticalTrees(t *testing.T) {
	result := Compare(recordedTree(), recordedTree(), 10)

	assert.False(t, result.HasDiscrepancies())
	assert.Empty(t, result.DifferentDescriptions)
	assert.False(t, result.HasDescriptionIssues())
}

func TestCompare_MissingDirectory(t *testing.T) {
	result := Compare(recordedTree(), scannedTree(), 10)

	require.Len(t, result.MissingInActual, 1)
	assert.Equal(t, Item{
		Path:        "src/util",
		Name:        "util",
		Kind:        tree.Directory,
		Description: "Shared helper functions",
	}, result.MissingInActual[0])
	assert.Empty(t, result.MissingInRecorded)
	assert.True(t, result.HasDiscrepancies())
}

func TestCompare_NewFile(t *testing.T) {
	actual := recordedTree()
	actual.AddChild(tree.NewFile("new.txt", ""))

	result := Compare(recordedTree(), actual, 10)

	require.Equal(t, []string{"new.txt"}, paths(result.MissingInRecorded))
	assert.Equal(t, tree.File, result.MissingInRecorded[0].Kind)
	assert.Empty(t, result.MissingInActual)
}

func TestCompare_Symmetry(t *testing.T) {
	a := recordedTree()
	a.AddChild(tree.NewDirectory("docs", "Documentation"))
	b := scannedTree()
	b.AddChild(tree.NewFile("Makefile", ""))
	b.AddChild(tree.NewFile("docs", ""))

	forward := Compare(a, b, 0)
	backward := Compare(b, a, 0)

	if diff := deep.Equal(forward.MissingInActual, backward.MissingInRecorded); diff != nil {
		t.Error(strings.Join(diff, "\n"))
	}
	if diff := deep.Equal(forward.MissingInRecorded, backward.MissingInActual); diff != nil {
		t.Error(strings.Join(diff, "\n"))
	}
	require.Equal(t, []string{"docs", "src/util"}, paths(forward.MissingInActual))
	require.Equal(t, []string{"Makefile", "docs"}, paths(forward.MissingInRecorded))
}

func TestCompare_KindIsPartOfIdentity(t *testing.T) {
	recorded := tree.NewDirectory("project", "")
	recorded.AddChild(tree.NewDirectory("build", ""))
	actual := tree.NewDirectory("project", "")
	actual.AddChild(tree.NewFile("build", ""))

	result := Compare(recorded, actual, 0)

	require.Len(t, result.MissingInActual, 1)
	require.Len(t, result.MissingInRecorded, 1)
	assert.Equal(t, tree.Directory, result.MissingInActual[0].Kind)
	assert.Equal(t, tree.File, result.MissingInRecorded[0].Kind)
}

func TestCompare_ShallowStop(t *testing.T) {
	// A recorded subtree that the scan did not expand is not reported.
	actual := scannedTree()
	actual.Child("src", tree.Directory).Children = nil

	result := Compare(recordedTree(), actual, 0)

	assert.False(t, result.HasDiscrepancies())
}

func TestCompare_DescriptionDrift(t *testing.T) {
	actual := recordedTree()
	actual.Child("README.md", tree.File).Description = "Rewritten overview"
	actual.Child("src", tree.Directory).Description = ""

	result := Compare(recordedTree(), actual, 0)

	require.Len(t, result.DifferentDescriptions, 1)
	change := result.DifferentDescriptions[0]
	assert.Equal(t, "README.md", change.Path)
	assert.Equal(t, "Project overview and usage", change.Recorded)
	assert.Equal(t, "Rewritten overview", change.Actual)
}

func TestCompare_ShortOrMissingDescriptions(t *testing.T) {
	recorded := recordedTree()
	recorded.Description = ""
	recorded.Child("README.md", tree.File).Description = "Short"
	recorded.AddChild(tree.NewFile("日本語.md", "日本語の説明"))

	// The scan side plays no part in this classification.
	result := Compare(recorded, tree.NewDirectory("project", ""), 10)

	require.Equal(t, []string{".", "README.md", "日本語.md"}, paths(result.ShortOrMissingDescriptions))
	assert.True(t, result.HasDescriptionIssues())
}

func TestCompare_DuplicateNamesMatchFirst(t *testing.T) {
	recorded := tree.NewDirectory("project", "")
	recorded.AddChild(tree.NewFile("a.txt", "first"))
	actual := tree.NewDirectory("project", "")
	actual.AddChild(tree.NewFile("a.txt", "first"))
	actual.AddChild(tree.NewFile("a.txt", "second"))

	result := Compare(recorded, actual, 0)

	assert.False(t, result.HasDiscrepancies())
	require.Len(t, result.DifferentDescriptions, 0)
}

func TestCompare_DoesNotMutate(t *testing.T) {
	recorded := recordedTree()
	actual := scannedTree()

	Compare(recorded, actual, 10)

	if diff := deep.Equal(recorded, recordedTree()); diff != nil {
		t.Error(strings.Join(diff, "\n"))
	}
	if diff := deep.Equal(actual, scannedTree()); diff != nil {
		t.Error(strings.Join(diff, "\n"))
	}
}
