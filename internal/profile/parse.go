// SPDX-License-Identifier: MPL-2.0

package profile

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Reserved attribute keys. Anything else inside an entry is preserved by the
// YAML parser but ignored here, so older binaries keep working against newer
// configuration files.
const (
	attrType     = "type"
	attrExtends  = "extends"
	attrEnabled  = "enabled"
	attrShare    = "share"
	attrBind     = "bind"
	attrRoBind   = "ro_bind"
	attrDevBind  = "dev_bind"
	attrTmpfs    = "tmpfs"
	attrEnv      = "env"
	attrUnsetEnv = "unset_env"
)

// typeModel marks an entry as a reusable, non-executable model.
const typeModel = "model"

// Parse turns the contents of one configuration source into an attribute
// tree. It goes through yaml.Node rather than direct struct decoding so that
// entry declaration order survives and duplicate entry names are rejected
// instead of silently collapsing.
func Parse(data []byte) (*Tree, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Msg: err.Error()}
	}

	tree := &Tree{entries: make(map[string]*Entry)}

	// An empty file is a valid, empty tree.
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return tree, nil
	}

	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return tree, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, &ParseError{Line: root.Line, Msg: "top level must be a mapping of entry names to attributes"}
	}

	for i := 0; i < len(root.Content); i += 2 {
		keyNode, valNode := root.Content[i], root.Content[i+1]
		name := keyNode.Value
		if _, exists := tree.entries[name]; exists {
			return nil, &ParseError{Line: keyNode.Line, Msg: fmt.Sprintf("entry %q declared twice", name)}
		}
		entry, err := parseEntry(name, keyNode, valNode)
		if err != nil {
			return nil, err
		}
		tree.entries[name] = entry
		tree.order = append(tree.order, name)
	}

	return tree, nil
}

// parseEntry decodes one entry's attribute mapping. A null value is legal
// and yields an entry with no attributes at all, which still resolves to the
// fully isolated default policy.
func parseEntry(name string, keyNode, valNode *yaml.Node) (*Entry, error) {
	entry := &Entry{Name: name, Line: keyNode.Line}

	if valNode.Kind == yaml.ScalarNode && valNode.Tag == "!!null" {
		return entry, nil
	}
	if valNode.Kind != yaml.MappingNode {
		return nil, &ParseError{Line: valNode.Line, Msg: fmt.Sprintf("entry %q must be a mapping of attributes", name)}
	}

	for i := 0; i < len(valNode.Content); i += 2 {
		attrNode, attrVal := valNode.Content[i], valNode.Content[i+1]
		switch attrNode.Value {
		case attrType:
			typ, err := scalarAttr(name, attrNode.Value, attrVal)
			if err != nil {
				return nil, err
			}
			entry.IsModel = typ == typeModel
		case attrExtends:
			target, err := scalarAttr(name, attrNode.Value, attrVal)
			if err != nil {
				return nil, err
			}
			entry.Extends = target
		case attrEnabled:
			var enabled bool
			if err := attrVal.Decode(&enabled); err != nil {
				return nil, &ParseError{Line: attrVal.Line, Msg: fmt.Sprintf("entry %q: enabled must be a boolean", name)}
			}
			entry.Enabled = &enabled
		case attrShare:
			list, err := stringListAttr(name, attrNode.Value, attrVal)
			if err != nil {
				return nil, err
			}
			entry.Share = list
		case attrBind:
			list, err := stringListAttr(name, attrNode.Value, attrVal)
			if err != nil {
				return nil, err
			}
			entry.Bind = list
		case attrRoBind:
			list, err := stringListAttr(name, attrNode.Value, attrVal)
			if err != nil {
				return nil, err
			}
			entry.RoBind = list
		case attrDevBind:
			list, err := stringListAttr(name, attrNode.Value, attrVal)
			if err != nil {
				return nil, err
			}
			entry.DevBind = list
		case attrTmpfs:
			list, err := stringListAttr(name, attrNode.Value, attrVal)
			if err != nil {
				return nil, err
			}
			entry.Tmpfs = list
		case attrEnv:
			env, err := envAttr(name, attrVal)
			if err != nil {
				return nil, err
			}
			entry.Env = env
		case attrUnsetEnv:
			list, err := stringListAttr(name, attrNode.Value, attrVal)
			if err != nil {
				return nil, err
			}
			entry.UnsetEnv = list
		default:
			// Unknown attribute: ignored for forward compatibility.
		}
	}

	return entry, nil
}

// scalarAttr decodes a string-valued attribute.
func scalarAttr(entry, attr string, node *yaml.Node) (string, error) {
	if node.Kind != yaml.ScalarNode {
		return "", &ParseError{Line: node.Line, Msg: fmt.Sprintf("entry %q: %s must be a string", entry, attr)}
	}
	return node.Value, nil
}

// stringListAttr decodes a sequence-of-strings attribute.
func stringListAttr(entry, attr string, node *yaml.Node) ([]string, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, &ParseError{Line: node.Line, Msg: fmt.Sprintf("entry %q: %s must be a list", entry, attr)}
	}
	list := make([]string, 0, len(node.Content))
	for _, item := range node.Content {
		if item.Kind != yaml.ScalarNode {
			return nil, &ParseError{Line: item.Line, Msg: fmt.Sprintf("entry %q: %s entries must be strings", entry, attr)}
		}
		list = append(list, item.Value)
	}
	return list, nil
}

// envAttr decodes the `env` mapping, keeping declaration order. A key
// repeated within the same mapping keeps its first position with the last
// value, matching the merge semantics used during resolution.
func envAttr(entry string, node *yaml.Node) ([]EnvVar, error) {
	if node.Kind != yaml.MappingNode {
		return nil, &ParseError{Line: node.Line, Msg: fmt.Sprintf("entry %q: env must be a mapping", entry)}
	}
	var env []EnvVar
	index := make(map[string]int)
	for i := 0; i < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		if valNode.Kind != yaml.ScalarNode {
			return nil, &ParseError{Line: valNode.Line, Msg: fmt.Sprintf("entry %q: env values must be scalars", entry)}
		}
		if at, seen := index[keyNode.Value]; seen {
			env[at].Value = valNode.Value
			continue
		}
		index[keyNode.Value] = len(env)
		env = append(env, EnvVar{Name: keyNode.Value, Value: valNode.Value})
	}
	return env, nil
}
