// Package openapi derives normalized operation descriptors from OpenAPI 3
// documents. Extraction is a pure, total transform: a structurally valid
// document always yields a descriptor per (path, method) pair, and malformed
// parameter blocks degrade to string/optional instead of failing the pass.
package openapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/aretw0/forno/pkg/domain"
)

// schemaRefPrefix is the only $ref form the body flattener accepts.
const schemaRefPrefix = "#/components/schemas/"

var pathTokenRe = regexp.MustCompile(`\{([^/{}]+)\}`)

// Document wraps a loaded OpenAPI document together with its descriptive
// header. The underlying document is treated as immutable input.
type Document struct {
	Title   string
	Version string

	doc *openapi3.T
}

// Load parses an OpenAPI 3 document from raw JSON or YAML bytes.
func Load(raw []byte) (*Document, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse openapi document: %w", err)
	}
	return wrap(doc), nil
}

// Fetch retrieves and parses a document from a /openapi.json style endpoint.
func Fetch(ctx context.Context, client *http.Client, url string) (*Document, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch openapi document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch openapi document: HTTP %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return Load(raw)
}

func wrap(doc *openapi3.T) *Document {
	d := &Document{doc: doc}
	if doc.Info != nil {
		d.Title = doc.Info.Title
		d.Version = doc.Info.Version
	}
	return d
}

// Extract derives one descriptor per (path, method) pair for the methods
// GET, POST, PUT, PATCH and DELETE.
//
// The source document iterates paths in an unordered map, so ordering is
// made deterministic instead: paths are sorted, and methods within a path
// follow a fixed GET, POST, PUT, PATCH, DELETE sequence. The same document
// always yields the same descriptors in the same order.
func (d *Document) Extract() ([]domain.OperationDescriptor, error) {
	if d == nil || d.doc == nil || d.doc.Paths == nil {
		return nil, domain.ErrNoDocument
	}

	pathMap := d.doc.Paths.Map()
	paths := make([]string, 0, len(pathMap))
	for path := range pathMap {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	names := make(uniqueNames)
	var descriptors []domain.OperationDescriptor
	for _, path := range paths {
		item := pathMap[path]
		if item == nil {
			continue
		}
		for _, entry := range []struct {
			method string
			op     *openapi3.Operation
		}{
			{http.MethodGet, item.Get},
			{http.MethodPost, item.Post},
			{http.MethodPut, item.Put},
			{http.MethodPatch, item.Patch},
			{http.MethodDelete, item.Delete},
		} {
			if entry.op == nil {
				continue
			}
			descriptors = append(descriptors, d.buildDescriptor(names, path, entry.method, entry.op))
		}
	}
	return descriptors, nil
}

func (d *Document) buildDescriptor(names uniqueNames, path, method string, op *openapi3.Operation) domain.OperationDescriptor {
	summary := op.Summary
	if summary == "" {
		summary = op.Description
	}
	if summary == "" {
		summary = fmt.Sprintf("%s %s", method, path)
	}

	desc := domain.OperationDescriptor{
		ToolName:     names.claim(deriveToolName(op.OperationID, strings.ToLower(method), path)),
		Method:       method,
		PathTemplate: path,
		Summary:      strings.TrimSpace(summary),
		ReadOnly:     method == http.MethodGet,
		Destructive:  method == http.MethodDelete || method == http.MethodPatch,
	}

	desc.Parameters = append(desc.Parameters, pathParameters(path, op)...)
	desc.Parameters = append(desc.Parameters, queryParameters(op)...)
	desc.Parameters = append(desc.Parameters, bodyParameters(op)...)
	return desc
}

// pathParameters yields one required string descriptor per {name} token,
// in left-to-right order of appearance. Descriptions are taken from a
// matching declared path parameter when the document provides one.
func pathParameters(path string, op *openapi3.Operation) []domain.ParameterDescriptor {
	matches := pathTokenRe.FindAllStringSubmatch(path, -1)
	params := make([]domain.ParameterDescriptor, 0, len(matches))
	for _, m := range matches {
		name := m[1]
		description := "Path parameter: " + name
		if declared := findParameter(op, name, openapi3.ParameterInPath); declared != nil && declared.Description != "" {
			description = declared.Description
		}
		params = append(params, domain.ParameterDescriptor{
			Name:        name,
			Location:    domain.LocationPath,
			Type:        domain.TypeString,
			Required:    true,
			Description: description,
		})
	}
	return params
}

func queryParameters(op *openapi3.Operation) []domain.ParameterDescriptor {
	var params []domain.ParameterDescriptor
	for _, ref := range op.Parameters {
		if ref == nil || ref.Value == nil || ref.Value.In != openapi3.ParameterInQuery {
			continue
		}
		p := ref.Value
		var schema *openapi3.Schema
		if p.Schema != nil {
			schema = p.Schema.Value
		}
		params = append(params, domain.ParameterDescriptor{
			Name:        p.Name,
			Location:    domain.LocationQuery,
			Type:        semanticType(schema),
			Required:    p.Required,
			Default:     schemaDefault(schema),
			Description: p.Description,
		})
	}
	return params
}

// bodyParameters flattens the operation's application/json request body
// schema into one descriptor per property. A $ref is honored only in the
// canonical #/components/schemas/<Name> form; a schema with neither a
// resolvable $ref nor inline properties yields no descriptors.
func bodyParameters(op *openapi3.Operation) []domain.ParameterDescriptor {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	media := op.RequestBody.Value.Content.Get("application/json")
	if media == nil || media.Schema == nil {
		return nil
	}
	schemaRef := media.Schema
	if schemaRef.Ref != "" && !strings.HasPrefix(schemaRef.Ref, schemaRefPrefix) {
		return nil
	}
	schema := schemaRef.Value
	if schema == nil || len(schema.Properties) == 0 {
		return nil
	}

	requiredSet := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		requiredSet[name] = true
	}

	// Schema properties live in a map; sort the names so the same document
	// always yields the same parameter order.
	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	params := make([]domain.ParameterDescriptor, 0, len(names))
	for _, name := range names {
		var prop *openapi3.Schema
		if ref := schema.Properties[name]; ref != nil {
			prop = ref.Value
		}
		p := domain.ParameterDescriptor{
			Name:     name,
			Location: domain.LocationBody,
			Type:     semanticType(prop),
			Required: requiredSet[name],
		}
		if prop != nil {
			p.Description = prop.Description
		}
		if !p.Required {
			p.Default = schemaDefault(prop)
		}
		params = append(params, p)
	}
	return params
}

func findParameter(op *openapi3.Operation, name, in string) *openapi3.Parameter {
	for _, ref := range op.Parameters {
		if ref == nil || ref.Value == nil {
			continue
		}
		if ref.Value.Name == name && ref.Value.In == in {
			return ref.Value
		}
	}
	return nil
}

// semanticType collapses the OpenAPI schema type to the descriptor type
// enum, defaulting to string when the schema or its type is absent.
func semanticType(schema *openapi3.Schema) domain.ParameterType {
	if schema == nil || schema.Type == nil {
		return domain.TypeString
	}
	switch {
	case schema.Type.Is(openapi3.TypeInteger):
		return domain.TypeInteger
	case schema.Type.Is(openapi3.TypeNumber):
		return domain.TypeNumber
	case schema.Type.Is(openapi3.TypeBoolean):
		return domain.TypeBoolean
	case schema.Type.Is(openapi3.TypeArray):
		return domain.TypeArray
	case schema.Type.Is(openapi3.TypeObject):
		return domain.TypeObject
	default:
		return domain.TypeString
	}
}

// schemaDefault passes the declared default through as a raw value.
// Object and array defaults stay whatever the JSON decoder produced.
func schemaDefault(schema *openapi3.Schema) any {
	if schema == nil {
		return nil
	}
	return schema.Default
}
