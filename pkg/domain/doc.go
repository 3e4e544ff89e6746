/*
Package domain contains the core domain models for Forno.

It defines the normalized representation of API operations and their
invocation outcomes, independent of any source document format. This
package is kept pure and free of external dependencies like I/O or
HTTP, following Hexagonal Architecture principles.

# Key Entities

  - OperationDescriptor: One (path, HTTP method) pair of a document, with a derived tool name.
  - ParameterDescriptor: A single operation input (name, location, type, required, default).
  - InvocationResult: The data-only outcome of a tool call (payload or classified failure).
*/
package domain
