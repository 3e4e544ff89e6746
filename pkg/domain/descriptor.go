package domain

import (
	"fmt"
	"strings"
)

// ParameterLocation identifies where an argument is placed on the wire.
type ParameterLocation string

const (
	LocationPath  ParameterLocation = "path"
	LocationQuery ParameterLocation = "query"
	LocationBody  ParameterLocation = "body"
)

// ParameterType is the semantic type derived from the OpenAPI schema type.
// Unknown or missing types collapse to TypeString.
type ParameterType string

const (
	TypeString  ParameterType = "string"
	TypeInteger ParameterType = "integer"
	TypeNumber  ParameterType = "number"
	TypeBoolean ParameterType = "boolean"
	TypeArray   ParameterType = "array"
	TypeObject  ParameterType = "object"
)

// ParameterDescriptor describes a single input of an operation.
// It is immutable once built by the extractor.
type ParameterDescriptor struct {
	Name        string            `json:"name" yaml:"name" mapstructure:"name"`
	Location    ParameterLocation `json:"location" yaml:"location" mapstructure:"location"`
	Type        ParameterType     `json:"type" yaml:"type" mapstructure:"type"`
	Required    bool              `json:"required" yaml:"required" mapstructure:"required"`
	Default     any               `json:"default,omitempty" yaml:"default,omitempty" mapstructure:"default"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
}

// OperationDescriptor is the normalized representation of one (path, method)
// pair of an OpenAPI document. Descriptors carry no unresolved references:
// body schemas are flattened into Parameters before a descriptor is emitted.
type OperationDescriptor struct {
	ToolName     string                `json:"tool_name" yaml:"tool_name" mapstructure:"tool_name"`
	Method       string                `json:"method" yaml:"method" mapstructure:"method"`
	PathTemplate string                `json:"path" yaml:"path" mapstructure:"path"`
	Summary      string                `json:"summary,omitempty" yaml:"summary,omitempty" mapstructure:"summary"`
	Parameters   []ParameterDescriptor `json:"parameters,omitempty" yaml:"parameters,omitempty" mapstructure:"parameters"`
	ReadOnly     bool                  `json:"read_only" yaml:"read_only" mapstructure:"read_only"`
	Destructive  bool                  `json:"destructive" yaml:"destructive" mapstructure:"destructive"`
}

// Signature returns the parameters in call-signature order: required
// parameters first (path params before declared ones), then optional
// parameters in declaration order.
func (d OperationDescriptor) Signature() []ParameterDescriptor {
	ordered := make([]ParameterDescriptor, 0, len(d.Parameters))
	for _, p := range d.Parameters {
		if p.Required {
			ordered = append(ordered, p)
		}
	}
	for _, p := range d.Parameters {
		if !p.Required {
			ordered = append(ordered, p)
		}
	}
	return ordered
}

// Param looks up a parameter by name.
func (d OperationDescriptor) Param(name string) (ParameterDescriptor, bool) {
	for _, p := range d.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return ParameterDescriptor{}, false
}

// HasBodyParams reports whether any parameter is body-located.
func (d OperationDescriptor) HasBodyParams() bool {
	for _, p := range d.Parameters {
		if p.Location == LocationBody {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer for logs and listings.
func (d OperationDescriptor) String() string {
	return fmt.Sprintf("%s (%s %s)", d.ToolName, strings.ToUpper(d.Method), d.PathTemplate)
}
