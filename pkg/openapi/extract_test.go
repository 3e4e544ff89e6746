package openapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/forno/pkg/domain"
)

const sampleDocument = `{
  "openapi": "3.0.3",
  "info": {"title": "Sample API", "version": "1.2.3"},
  "paths": {
    "/items": {
      "get": {
        "operationId": "list_items",
        "summary": "List all items.",
        "parameters": [
          {"name": "limit", "in": "query", "schema": {"type": "integer", "default": 20}},
          {"name": "tag", "in": "query", "required": true, "schema": {"type": "string"}, "description": "Filter tag"}
        ]
      },
      "post": {
        "operationId": "create_item",
        "summary": "Create an item.",
        "requestBody": {
          "content": {
            "application/json": {
              "schema": {"$ref": "#/components/schemas/ItemRequest"}
            }
          }
        }
      }
    },
    "/items/{item_id}": {
      "get": {
        "operationId": "get_item",
        "summary": "Fetch one item.",
        "parameters": [
          {"name": "item_id", "in": "path", "required": true, "schema": {"type": "string"}, "description": "The item identifier"}
        ]
      },
      "delete": {
        "operationId": "delete_item",
        "summary": "Delete one item."
      }
    }
  },
  "components": {
    "schemas": {
      "ItemRequest": {
        "type": "object",
        "required": ["name"],
        "properties": {
          "name": {"type": "string", "description": "Item name"},
          "count": {"type": "integer", "default": 1},
          "price": {"type": "number"},
          "active": {"type": "boolean", "default": true}
        }
      }
    }
  }
}`

func loadSample(t *testing.T) *Document {
	t.Helper()
	doc, err := Load([]byte(sampleDocument))
	require.NoError(t, err)
	return doc
}

func TestLoad_Header(t *testing.T) {
	doc := loadSample(t)
	assert.Equal(t, "Sample API", doc.Title)
	assert.Equal(t, "1.2.3", doc.Version)
}

func TestExtract_OneDescriptorPerOperation(t *testing.T) {
	doc := loadSample(t)
	descs, err := doc.Extract()
	require.NoError(t, err)
	require.Len(t, descs, 4)

	// Paths sorted, methods in fixed order within a path.
	names := make([]string, 0, len(descs))
	for _, d := range descs {
		names = append(names, d.ToolName)
	}
	assert.Equal(t, []string{"list_items", "create_item", "get_item", "delete_item"}, names)
}

func TestExtract_PathParameters(t *testing.T) {
	doc := loadSample(t)
	descs, err := doc.Extract()
	require.NoError(t, err)

	var getItem domain.OperationDescriptor
	for _, d := range descs {
		if d.ToolName == "get_item" {
			getItem = d
		}
	}
	require.Len(t, getItem.Parameters, 1)

	p := getItem.Parameters[0]
	assert.Equal(t, "item_id", p.Name)
	assert.Equal(t, domain.LocationPath, p.Location)
	assert.Equal(t, domain.TypeString, p.Type)
	assert.True(t, p.Required)
	assert.Equal(t, "The item identifier", p.Description)

	// Undeclared token still yields a required string parameter.
	var deleteItem domain.OperationDescriptor
	for _, d := range descs {
		if d.ToolName == "delete_item" {
			deleteItem = d
		}
	}
	require.Len(t, deleteItem.Parameters, 1)
	assert.Equal(t, "Path parameter: item_id", deleteItem.Parameters[0].Description)
	assert.True(t, deleteItem.Parameters[0].Required)
}

func TestExtract_QueryParameters(t *testing.T) {
	doc := loadSample(t)
	descs, err := doc.Extract()
	require.NoError(t, err)

	list := descs[0]
	require.Equal(t, "list_items", list.ToolName)
	require.Len(t, list.Parameters, 2)

	limit, ok := list.Param("limit")
	require.True(t, ok)
	assert.Equal(t, domain.LocationQuery, limit.Location)
	assert.Equal(t, domain.TypeInteger, limit.Type)
	assert.False(t, limit.Required)
	assert.EqualValues(t, 20, limit.Default)

	tag, ok := list.Param("tag")
	require.True(t, ok)
	assert.True(t, tag.Required)
	assert.Equal(t, "Filter tag", tag.Description)
}

func TestExtract_BodyParameters(t *testing.T) {
	doc := loadSample(t)
	descs, err := doc.Extract()
	require.NoError(t, err)

	create := descs[1]
	require.Equal(t, "create_item", create.ToolName)
	require.True(t, create.HasBodyParams())

	// Property names sorted for deterministic ordering.
	var names []string
	for _, p := range create.Parameters {
		names = append(names, p.Name)
		assert.Equal(t, domain.LocationBody, p.Location)
	}
	assert.Equal(t, []string{"active", "count", "name", "price"}, names)

	name, _ := create.Param("name")
	assert.True(t, name.Required)
	assert.Nil(t, name.Default)

	count, _ := create.Param("count")
	assert.False(t, count.Required)
	assert.EqualValues(t, 1, count.Default)
	assert.Equal(t, domain.TypeInteger, count.Type)

	active, _ := create.Param("active")
	assert.Equal(t, domain.TypeBoolean, active.Type)
	assert.Equal(t, true, active.Default)

	price, _ := create.Param("price")
	assert.Equal(t, domain.TypeNumber, price.Type)
}

func TestExtract_Annotations(t *testing.T) {
	doc := loadSample(t)
	descs, err := doc.Extract()
	require.NoError(t, err)

	for _, d := range descs {
		switch d.Method {
		case http.MethodGet:
			assert.True(t, d.ReadOnly, d.ToolName)
			assert.False(t, d.Destructive, d.ToolName)
		case http.MethodDelete:
			assert.True(t, d.Destructive, d.ToolName)
			assert.False(t, d.ReadOnly, d.ToolName)
		default:
			assert.False(t, d.ReadOnly, d.ToolName)
		}
	}
}

func TestExtract_MissingOperationID(t *testing.T) {
	raw := `{
	  "openapi": "3.0.3",
	  "info": {"title": "t", "version": "1"},
	  "paths": {
	    "/things/{id}": {
	      "get": {"summary": "Fetch a thing."}
	    }
	  }
	}`
	doc, err := Load([]byte(raw))
	require.NoError(t, err)

	descs, err := doc.Extract()
	require.NoError(t, err)
	require.Len(t, descs, 1)
	assert.Equal(t, "get_things_id", descs[0].ToolName)
}

func TestExtract_SummaryFallback(t *testing.T) {
	raw := `{
	  "openapi": "3.0.3",
	  "info": {"title": "t", "version": "1"},
	  "paths": {
	    "/a": {"get": {"operationId": "a_desc", "description": "From description."}},
	    "/b": {"get": {"operationId": "b_bare"}}
	  }
	}`
	doc, err := Load([]byte(raw))
	require.NoError(t, err)

	descs, err := doc.Extract()
	require.NoError(t, err)
	require.Len(t, descs, 2)
	assert.Equal(t, "From description.", descs[0].Summary)
	assert.Equal(t, "GET /b", descs[1].Summary)
}

func TestExtract_NameCollision(t *testing.T) {
	raw := `{
	  "openapi": "3.0.3",
	  "info": {"title": "t", "version": "1"},
	  "paths": {
	    "/a": {"get": {"operationId": "dup"}},
	    "/b": {"get": {"operationId": "dup"}}
	  }
	}`
	doc, err := Load([]byte(raw))
	require.NoError(t, err)

	descs, err := doc.Extract()
	require.NoError(t, err)
	require.Len(t, descs, 2)
	assert.Equal(t, "dup", descs[0].ToolName)
	assert.Equal(t, "dup_2", descs[1].ToolName)
}

func TestExtract_NoDocument(t *testing.T) {
	var doc *Document
	_, err := doc.Extract()
	assert.ErrorIs(t, err, domain.ErrNoDocument)
}

func TestExtract_BodyWithoutJSONContent(t *testing.T) {
	raw := `{
	  "openapi": "3.0.3",
	  "info": {"title": "t", "version": "1"},
	  "paths": {
	    "/upload": {
	      "post": {
	        "operationId": "upload",
	        "requestBody": {
	          "content": {
	            "text/plain": {"schema": {"type": "string"}}
	          }
	        }
	      }
	    }
	  }
	}`
	doc, err := Load([]byte(raw))
	require.NoError(t, err)

	descs, err := doc.Extract()
	require.NoError(t, err)
	require.Len(t, descs, 1)
	assert.Empty(t, descs[0].Parameters)
}

func TestExtract_MalformedParametersDegradeToString(t *testing.T) {
	raw := `{
	  "openapi": "3.0.3",
	  "info": {"title": "t", "version": "1"},
	  "paths": {
	    "/search": {
	      "get": {
	        "operationId": "search",
	        "parameters": [
	          {"name": "bare", "in": "query"},
	          {"name": "odd", "in": "query", "schema": {"type": "whatever"}}
	        ]
	      }
	    }
	  }
	}`
	doc, err := Load([]byte(raw))
	require.NoError(t, err)

	descs, err := doc.Extract()
	require.NoError(t, err)
	require.Len(t, descs, 1)

	// A parameter with no schema, or an unrecognized type, still yields a
	// descriptor: string-typed and optional.
	require.Len(t, descs[0].Parameters, 2)
	for _, p := range descs[0].Parameters {
		assert.Equal(t, domain.LocationQuery, p.Location)
		assert.Equal(t, domain.TypeString, p.Type)
		assert.False(t, p.Required)
	}
}

func TestExtract_NonCanonicalBodyRef(t *testing.T) {
	raw := `{
	  "openapi": "3.0.3",
	  "info": {"title": "t", "version": "1"},
	  "paths": {
	    "/orders": {
	      "post": {
	        "operationId": "create",
	        "requestBody": {
	          "content": {
	            "application/json": {
	              "schema": {"$ref": "#/components/requestBodies/Order"}
	            }
	          }
	        }
	      }
	    }
	  },
	  "components": {
	    "requestBodies": {
	      "Order": {"type": "object", "properties": {"id": {"type": "string"}}}
	    }
	  }
	}`
	doc, err := Load([]byte(raw))
	require.NoError(t, err)

	descs, err := doc.Extract()
	require.NoError(t, err)
	require.Len(t, descs, 1)

	// Only #/components/schemas/ refs are flattened into body parameters.
	assert.Empty(t, descs[0].Parameters)
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleDocument))
	}))
	defer srv.Close()

	doc, err := Fetch(context.Background(), srv.Client(), srv.URL+"/openapi.json")
	require.NoError(t, err)
	assert.Equal(t, "Sample API", doc.Title)
}

func TestFetch_Non200(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := Fetch(context.Background(), srv.Client(), srv.URL+"/openapi.json")
	assert.Error(t, err)
}
