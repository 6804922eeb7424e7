// Package api carries the OpenAPI description of the REST surface.
package api

import _ "embed"

// OpenAPISpec is served at /swagger/doc.json when Swagger is enabled.
//
//go:embed openapi.json
var OpenAPISpec []byte
