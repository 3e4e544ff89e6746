/*
Package forno turns an OpenAPI document into a registry of callable tools.

It parses a service description, extracts each (path, method) pair into a
normalized operation descriptor, and binds the descriptors to a generic
HTTP invoker. The result is a uniform call surface: a tool name plus an
argument mapping in, a single JSON text block out. Every failure mode of
an invocation (unreachable backend, non-2xx status, malformed response,
bad call) is folded into that JSON contract; callers never handle a
propagated fault.

# Key Entities

  - OperationDescriptor: the normalized form of one API operation, with
    path, query and body parameters flattened into a single list.
  - Invoker: executes a descriptor against a live backend over HTTP.
  - Registry: the data-driven dispatch point for HTTP and local tools.
  - Toolbox: the high-level facade binding a document to a registry.

# Usage

Discover a backend and call one of its operations:

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/forno"
	)

	func main() {
		ctx := context.Background()

		tb, err := forno.Discover(ctx,
			"http://localhost:8000/openapi.json",
			"http://localhost:8000",
		)
		if err != nil {
			log.Fatal(err)
		}

		for _, tool := range tb.Tools() {
			fmt.Println(tool)
		}

		result := tb.Call(ctx, "create_order", map[string]any{
			"pizza_type": "margherita",
			"quantity":   2,
		})
		fmt.Println(result.Render())
	}

Adapters under pkg/adapters expose the same registry over MCP, and
pkg/flow builds a two-stage ordering workflow on top of it.
*/
package forno
