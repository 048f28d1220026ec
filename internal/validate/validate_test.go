package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirdoc/internal/tree"
)

func documentedTree() *tree.Node {
	root := tree.NewDirectory("project", "Project root directory")
	src := tree.NewDirectory("src", "Application source code")
	src.AddChild(tree.NewFile("main.go", "Program entry point"))
	root.AddChild(src)
	root.AddChild(tree.NewFile("README.md", "Project overview and usage"))
	return root
}

func TestValidate_Pass(t *testing.T) {
	result := Validate(documentedTree(), Options{RequireDescription: true, MinDescriptionLength: 10})

	assert.True(t, result.Pass)
	assert.Empty(t, result.WithoutDescription)
	assert.Empty(t, result.WithShortDescription)
}

func TestValidate_ShortDescription(t *testing.T) {
	root := documentedTree()
	root.Child("README.md", tree.File).Description = "Short"

	result := Validate(root, Options{RequireDescription: true, MinDescriptionLength: 10})

	require.False(t, result.Pass)
	require.Len(t, result.WithShortDescription, 1)
	assert.Equal(t, Issue{
		Path:        "README.md",
		Name:        "README.md",
		Kind:        tree.File,
		Description: "Short",
		MinLength:   10,
	}, result.WithShortDescription[0])
	assert.Empty(t, result.WithoutDescription)
}

func TestValidate_MissingDescription(t *testing.T) {
	root := documentedTree()
	root.Description = ""
	root.Child("src", tree.Directory).Child("main.go", tree.File).Description = ""

	result := Validate(root, Options{RequireDescription: true, MinDescriptionLength: 10})

	require.False(t, result.Pass)
	require.Len(t, result.WithoutDescription, 2)
	assert.Equal(t, ".", result.WithoutDescription[0].Path)
	assert.Equal(t, "src/main.go", result.WithoutDescription[1].Path)
	assert.Empty(t, result.WithShortDescription)
}

func TestValidate_MissingNotRequired(t *testing.T) {
	root := documentedTree()
	root.Child("src", tree.Directory).Description = ""

	result := Validate(root, Options{RequireDescription: false, MinDescriptionLength: 10})

	assert.True(t, result.Pass)
	assert.Empty(t, result.WithShortDescription)
}

func TestValidate_Exclusive(t *testing.T) {
	root := tree.NewDirectory("project", "")
	root.AddChild(tree.NewFile("a", ""))
	root.AddChild(tree.NewFile("b", "tiny"))
	root.AddChild(tree.NewFile("c", "long enough text"))

	for _, required := range []bool{true, false} {
		result := Validate(root, Options{RequireDescription: required, MinDescriptionLength: 10})

		seen := map[string]int{}
		for _, issue := range result.WithoutDescription {
			seen[issue.Path]++
		}
		for _, issue := range result.WithShortDescription {
			seen[issue.Path]++
		}
		for p, count := range seen {
			assert.Equal(t, 1, count, "path %s classified twice", p)
		}
		require.Len(t, result.WithShortDescription, 1)
		assert.Equal(t, "b", result.WithShortDescription[0].Path)
	}
}

func TestValidate_CountsCharacters(t *testing.T) {
	root := tree.NewDirectory("project", "プロジェクトのルート")

	result := Validate(root, Options{MinDescriptionLength: 10})
	assert.True(t, result.Pass)

	result = Validate(root, Options{MinDescriptionLength: 11})
	assert.False(t, result.Pass)
}

func TestValidate_ZeroMinimum(t *testing.T) {
	root := tree.NewDirectory("project", "x")

	result := Validate(root, Options{RequireDescription: true})
	assert.True(t, result.Pass)
}
