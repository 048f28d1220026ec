package tree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrParse is returned when a document is not valid structured text or its
// top level is not a keyed structure.
var ErrParse = errors.New("invalid tree document")

// WriteError reports a document that could not be persisted.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// document is the persisted shape of a Node. Children is omitted for
// childless nodes.
type document struct {
	Name        string     `json:"name" yaml:"name"`
	Type        string     `json:"type" yaml:"type"`
	Description string     `json:"description" yaml:"description"`
	Children    []document `json:"children,omitempty" yaml:"children,omitempty"`
}

// FormatFor picks the document format from a file extension.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

func toDocument(n *Node) document {
	doc := document{
		Name:        n.Name,
		Type:        string(n.Kind),
		Description: n.Description,
	}
	for _, child := range n.Children {
		doc.Children = append(doc.Children, toDocument(child))
	}
	return doc
}

// Encode serializes root. Compact JSON has no whitespace; compact YAML is
// written in flow style. Names and descriptions must be valid UTF-8.
func Encode(root *Node, format Format, pretty bool) ([]byte, error) {
	if err := checkText(root); err != nil {
		return nil, err
	}
	doc := toDocument(root)

	var buf bytes.Buffer
	switch format {
	case FormatYAML:
		var node yaml.Node
		if err := node.Encode(doc); err != nil {
			return nil, errors.Wrap(err, "encode yaml")
		}
		if !pretty {
			node.Style = yaml.FlowStyle
		}
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(&node); err != nil {
			return nil, errors.Wrap(err, "encode yaml")
		}
		if err := enc.Close(); err != nil {
			return nil, errors.Wrap(err, "encode yaml")
		}
	default:
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if pretty {
			enc.SetIndent("", "    ")
		}
		if err := enc.Encode(doc); err != nil {
			return nil, errors.Wrap(err, "encode json")
		}
		out := unescapeSeparators(buf.Bytes())
		if !pretty {
			return bytes.TrimRight(out, "\n"), nil
		}
		return out, nil
	}

	return buf.Bytes(), nil
}

// checkText rejects strings that would not survive a round trip: both
// encoders replace invalid UTF-8 with U+FFFD.
func checkText(root *Node) error {
	var bad string
	root.Walk(func(p string, node *Node) {
		if bad == "" && (!utf8.ValidString(node.Name) || !utf8.ValidString(node.Description)) {
			bad = p
		}
	})
	if bad != "" {
		return errors.Errorf("encode %q: text is not valid UTF-8", bad)
	}
	return nil
}

// unescapeSeparators turns the \u2028 and \u2029 escapes encoding/json always
// emits back into raw characters. Escape pairs are skipped as a unit so an
// escaped backslash followed by "u2028" is left alone.
func unescapeSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}

	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] != '\\' || i+1 >= len(data) {
			out = append(out, data[i])
			continue
		}
		if i+5 < len(data) && data[i+1] == 'u' && string(data[i+2:i+5]) == "202" && (data[i+5] == '8' || data[i+5] == '9') {
			if data[i+5] == '8' {
				out = append(out, "\u2028"...)
			} else {
				out = append(out, "\u2029"...)
			}
			i += 5
			continue
		}
		out = append(out, data[i], data[i+1])
		i++
	}
	return out
}

// Decode rebuilds a tree from document text. Anything that parses to a keyed
// structure is accepted; missing or mistyped fields fall back to empty values.
func Decode(data []byte, format Format) (*Node, error) {
	var raw interface{}
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &raw)
	default:
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, errors.Wrap(ErrParse, err.Error())
	}

	fields, ok := asMap(raw)
	if !ok {
		return nil, errors.Wrapf(ErrParse, "top level is %T, want a keyed structure", raw)
	}

	return fromMap(fields), nil
}

func fromMap(fields map[string]interface{}) *Node {
	node := &Node{
		Name:        stringField(fields, "name"),
		Kind:        Kind(stringField(fields, "type")),
		Description: stringField(fields, "description"),
	}

	children, ok := fields["children"].([]interface{})
	if !ok {
		return node
	}
	for _, child := range children {
		childFields, ok := asMap(child)
		if !ok {
			continue
		}
		node.AddChild(fromMap(childFields))
	}
	return node
}

func stringField(fields map[string]interface{}, key string) string {
	s, _ := fields[key].(string)
	return s
}

// asMap accepts both map shapes yaml.v3 can produce for a mapping.
func asMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}

// Load reads and decodes a whole document file.
func Load(fs afero.Fs, path string) (*Node, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}

	root, err := Decode(data, FormatFor(path))
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return root, nil
}

// Save writes data as the whole content of path.
func Save(fs afero.Fs, path string, data []byte) error {
	if err := afero.WriteFile(fs, path, data, 0644); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}
