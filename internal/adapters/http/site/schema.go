package site

import (
	"github.com/okian/arcade/internal/domain/schema"
)

const maxSchemaDepth = 8

// schemaNode is a tool parameter schema flattened for the template, with
// references resolved against the root's $defs.
type schemaNode struct {
	Name        string
	Label       string
	Title       string
	Description string
	Required    bool
	Closed      bool
	Children    []*schemaNode
}

func buildSchemaTree(root, s *schema.Schema, name string, required bool, depth int) *schemaNode {
	n := &schemaNode{
		Name:        name,
		Label:       s.Label(),
		Title:       s.Title,
		Description: s.Description,
		Required:    required,
		Closed:      s.ClosedObject(),
	}
	if depth >= maxSchemaDepth {
		return n
	}
	switch s.Kind {
	case schema.KindObject:
		for _, p := range s.Properties {
			n.Children = append(n.Children, buildSchemaTree(root, p.Schema, p.Name, p.Required, depth+1))
		}
	case schema.KindArray:
		if s.Items != nil {
			n.Children = append(n.Children, buildSchemaTree(root, s.Items, "items", false, depth+1))
		}
	case schema.KindRef:
		if target, ok := root.Resolve(s.Ref); ok {
			resolved := buildSchemaTree(root, target, "", false, depth+1)
			n.Children = resolved.Children
			n.Closed = resolved.Closed
			if n.Description == "" {
				n.Description = resolved.Description
			}
		}
	case schema.KindAnyOf:
		for _, alt := range s.AnyOf {
			n.Children = append(n.Children, buildSchemaTree(root, alt, "", false, depth+1))
		}
	}
	return n
}
