// Package schema parses tool parameter schemas into a tagged recursive variant.
//
// Consumers switch on Kind instead of probing optional keys. Object properties
// and $defs keep the order in which upstream wrote them.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// ErrInvalidSchema is returned when a schema document cannot be interpreted.
var ErrInvalidSchema = errors.New("invalid schema")

const (
	defsPrefix = "#/$defs/"
	maxDepth   = 32
)

// Kind tags a Schema node.
type Kind int

// Schema kinds.
const (
	KindUnknown Kind = iota
	KindObject
	KindArray
	KindString
	KindNumber
	KindInteger
	KindBoolean
	KindNull
	KindRef
	KindAnyOf
)

var kindNames = [...]string{
	KindUnknown: "unknown",
	KindObject:  "object",
	KindArray:   "array",
	KindString:  "string",
	KindNumber:  "number",
	KindInteger: "integer",
	KindBoolean: "boolean",
	KindNull:    "null",
	KindRef:     "ref",
	KindAnyOf:   "anyOf",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Property is a named member of an object schema.
type Property struct {
	Name     string
	Required bool
	Schema   *Schema
}

// Def is a named entry of $defs.
type Def struct {
	Name   string
	Schema *Schema
}

// Schema is one node of a parameter schema.
type Schema struct {
	Kind Kind
	// Type is the raw "type" keyword, joined with " | " when it is a list.
	Type        string
	Title       string
	Description string

	// KindObject
	Properties           []Property
	AdditionalProperties *bool

	// KindArray
	Items *Schema

	// KindRef
	Ref string

	// KindAnyOf
	AnyOf []*Schema

	// Defs is only populated on the node that declares $defs.
	Defs []Def

	// Raw is the node's original JSON.
	Raw json.RawMessage
}

// Parse decodes a JSON schema document. Empty input and null yield a
// KindUnknown node.
func Parse(raw []byte) (*Schema, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return &Schema{Kind: KindUnknown}, nil
	}
	return parseNode(trimmed, 0)
}

func parseNode(raw json.RawMessage, depth int) (*Schema, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("%w: nesting deeper than %d", ErrInvalidSchema, maxDepth)
	}
	_, fields, err := orderedObject(raw)
	if err != nil {
		return nil, err
	}

	s := &Schema{Raw: raw}
	if err := decodeString(fields, "title", &s.Title); err != nil {
		return nil, err
	}
	if err := decodeString(fields, "description", &s.Description); err != nil {
		return nil, err
	}
	if err := decodeString(fields, "$ref", &s.Ref); err != nil {
		return nil, err
	}
	typeNames, err := decodeType(fields["type"])
	if err != nil {
		return nil, err
	}
	s.Type = strings.Join(typeNames, " | ")

	if v, ok := fields["additionalProperties"]; ok {
		var b bool
		if json.Unmarshal(v, &b) == nil {
			s.AdditionalProperties = &b
		}
	}

	if v, ok := fields["$defs"]; ok {
		names, defs, err := orderedObject(v)
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			child, err := parseNode(defs[name], depth+1)
			if err != nil {
				return nil, fmt.Errorf("$defs.%s: %w", name, err)
			}
			s.Defs = append(s.Defs, Def{Name: name, Schema: child})
		}
	}

	if v, ok := fields["properties"]; ok {
		var required []string
		if r, ok := fields["required"]; ok {
			if err := json.Unmarshal(r, &required); err != nil {
				return nil, fmt.Errorf("%w: required must be a list of names", ErrInvalidSchema)
			}
		}
		names, props, err := orderedObject(v)
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			child, err := parseNode(props[name], depth+1)
			if err != nil {
				return nil, fmt.Errorf("properties.%s: %w", name, err)
			}
			s.Properties = append(s.Properties, Property{
				Name:     name,
				Required: slices.Contains(required, name),
				Schema:   child,
			})
		}
	}

	if v, ok := fields["items"]; ok {
		child, err := parseNode(v, depth+1)
		if err != nil {
			return nil, fmt.Errorf("items: %w", err)
		}
		s.Items = child
	}

	for _, key := range []string{"anyOf", "oneOf"} {
		v, ok := fields[key]
		if !ok {
			continue
		}
		var variants []json.RawMessage
		if err := json.Unmarshal(v, &variants); err != nil {
			return nil, fmt.Errorf("%w: %s must be a list", ErrInvalidSchema, key)
		}
		for i, variant := range variants {
			child, err := parseNode(variant, depth+1)
			if err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
			}
			s.AnyOf = append(s.AnyOf, child)
		}
	}

	s.Kind = classify(s, typeNames)
	return s, nil
}

func classify(s *Schema, typeNames []string) Kind {
	switch {
	case s.Ref != "":
		return KindRef
	case len(s.AnyOf) > 0:
		return KindAnyOf
	}
	for _, t := range typeNames {
		if t == "null" && len(typeNames) > 1 {
			continue
		}
		switch t {
		case "object":
			return KindObject
		case "array":
			return KindArray
		case "string":
			return KindString
		case "number":
			return KindNumber
		case "integer":
			return KindInteger
		case "boolean":
			return KindBoolean
		case "null":
			return KindNull
		}
	}
	switch {
	case len(s.Properties) > 0:
		return KindObject
	case s.Items != nil:
		return KindArray
	}
	return KindUnknown
}

// Resolve looks up a "#/$defs/Name" reference among the node's Defs.
func (s *Schema) Resolve(ref string) (*Schema, bool) {
	if s == nil || !strings.HasPrefix(ref, defsPrefix) {
		return nil, false
	}
	name := RefName(ref)
	for _, d := range s.Defs {
		if d.Name == name {
			return d.Schema, true
		}
	}
	return nil, false
}

// Label is the badge text for a node: the declared type, the formatted
// reference, or the kind name.
func (s *Schema) Label() string {
	if s == nil {
		return KindUnknown.String()
	}
	switch s.Kind {
	case KindRef:
		return FormatRef(s.Ref)
	case KindAnyOf:
		return KindAnyOf.String()
	}
	if s.Type != "" {
		return s.Type
	}
	return s.Kind.String()
}

// ClosedObject reports whether additionalProperties is explicitly false.
func (s *Schema) ClosedObject() bool {
	return s != nil && s.AdditionalProperties != nil && !*s.AdditionalProperties
}

// RefName strips the "#/$defs/" prefix.
func RefName(ref string) string {
	return strings.TrimPrefix(ref, defsPrefix)
}

var upperRun = regexp.MustCompile(`([A-Z])`)

// FormatRef turns "#/$defs/WeaponSlot" into "Weapon Slot".
func FormatRef(ref string) string {
	if ref == "" {
		return "Unknown"
	}
	return strings.TrimSpace(upperRun.ReplaceAllString(RefName(ref), " $1"))
}

// orderedObject reads a JSON object preserving key order.
func orderedObject(raw json.RawMessage) ([]string, map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, fmt.Errorf("%w: expected object", ErrInvalidSchema)
	}
	var keys []string
	fields := make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
		}
		key, _ := tok.(string)
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
		}
		if _, dup := fields[key]; !dup {
			keys = append(keys, key)
		}
		fields[key] = value
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}
	return keys, fields, nil
}

func decodeString(fields map[string]json.RawMessage, key string, dst *string) error {
	v, ok := fields[key]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(v, dst); err != nil {
		return fmt.Errorf("%w: %s must be a string", ErrInvalidSchema, key)
	}
	return nil
}

func decodeType(v json.RawMessage) ([]string, error) {
	if len(v) == 0 {
		return nil, nil
	}
	var one string
	if err := json.Unmarshal(v, &one); err == nil {
		return []string{one}, nil
	}
	var many []string
	if err := json.Unmarshal(v, &many); err != nil {
		return nil, fmt.Errorf("%w: type must be a string or list", ErrInvalidSchema)
	}
	return many, nil
}
