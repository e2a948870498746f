package model

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

var allowedModelKeys = map[string]bool{
	"table":        true,
	"attributes":   true,
	"relations":    true,
	"primary_keys": true,
}

var allowedRelationKeys = map[string]bool{
	"model":   true,
	"type":    true,
	"fk":      true,
	"pk":      true,
	"through": true,
	"where":   true,
}

var allowedRelationTypes = map[string]bool{
	BelongsTo: true,
	HasOne:    true,
	HasMany:   true,
}

// validateYAMLNode rejects unknown keys so that typos in model files fail at load time.
func validateYAMLNode(node *yaml.Node, context string) error {
	switch node.Kind {
	case yaml.DocumentNode:
		for _, child := range node.Content {
			if err := validateYAMLNode(child, "model"); err != nil {
				return err
			}
		}

	case yaml.MappingNode:
		var allowedKeys map[string]bool
		switch context {
		case "model":
			allowedKeys = allowedModelKeys
		case "relation":
			allowedKeys = allowedRelationKeys
		default:
			allowedKeys = nil
		}

		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode := node.Content[i]
			valNode := node.Content[i+1]
			key := keyNode.Value

			if allowedKeys != nil && !allowedKeys[key] {
				return fmt.Errorf("unknown key '%s' in %s (line %d)", key, context, keyNode.Line)
			}
			if context == "relation" && key == "type" && !allowedRelationTypes[valNode.Value] {
				return fmt.Errorf("unknown relation type '%s' (line %d)", valNode.Value, valNode.Line)
			}
			if context == "model" && key == "attributes" && valNode.Kind != yaml.SequenceNode {
				return fmt.Errorf("attributes must be a list (line %d)", valNode.Line)
			}

			nextContext := context
			switch {
			case context == "model" && key == "relations":
				nextContext = "relations-map"
			case context == "relations-map":
				nextContext = "relation"
			case context == "model":
				nextContext = "model-value"
			}

			if err := validateYAMLNode(valNode, nextContext); err != nil {
				return err
			}
		}

	case yaml.SequenceNode:
		for _, item := range node.Content {
			if err := validateYAMLNode(item, context); err != nil {
				return err
			}
		}

	case yaml.ScalarNode:
		// scalars carry no keys
	}

	return nil
}
