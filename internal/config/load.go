package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFile is read from the working directory when no --config is given.
const DefaultFile = "shoal.yml"

// Load reads a YAML configuration file into properties.
//
// Nested mappings flatten into dotted keys, sequences of scalars join with ","
// and scalars are kept verbatim:
//
//	shoal:
//	  pool:
//	    serial:
//	      hdpi: [S1, S2]
//
// yields shoal.pool.serial.hdpi=S1,S2.
func Load(path string) (*Properties, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	props, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", path, err)
	}
	return props, nil
}

// Parse flattens YAML data into properties. Empty documents yield empty properties.
func Parse(data []byte) (*Properties, error) {
	props := NewProperties()
	if len(bytes.TrimSpace(data)) == 0 {
		return props, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(doc.Content) == 0 {
		return props, nil
	}

	root := resolveAlias(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("top level must be a mapping (line %d)", root.Line)
	}

	if err := flatten(props, "", root); err != nil {
		return nil, err
	}
	return props, nil
}

func flatten(props *Properties, prefix string, node *yaml.Node) error {
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], resolveAlias(node.Content[i+1])
		if keyNode.Kind != yaml.ScalarNode || strings.TrimSpace(keyNode.Value) == "" {
			return fmt.Errorf("invalid key at line %d: keys must be non-empty scalars", keyNode.Line)
		}
		key := prefix + keyNode.Value

		switch valueNode.Kind {
		case yaml.MappingNode:
			if err := flatten(props, key+".", valueNode); err != nil {
				return err
			}
		case yaml.SequenceNode:
			items := make([]string, 0, len(valueNode.Content))
			for _, item := range valueNode.Content {
				item = resolveAlias(item)
				if item.Kind != yaml.ScalarNode {
					return fmt.Errorf("%s: list items must be scalars (line %d)", key, item.Line)
				}
				items = append(items, item.Value)
			}
			props.Set(key, strings.Join(items, ","))
		case yaml.ScalarNode:
			if valueNode.Tag == "!!null" {
				props.Set(key, "")
			} else {
				props.Set(key, valueNode.Value)
			}
		default:
			return fmt.Errorf("%s: unsupported value (line %d)", key, valueNode.Line)
		}
	}
	return nil
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}
