// Package spec embeds the OpenAPI description of the travel journal API.
// The dev server serves it at /openapi.yaml so client work can be checked
// against the contract without digging through handler code.
package spec

import _ "embed"

// OpenAPI contains the raw bytes of openapi.yaml, embedded at compile time.
//
//go:embed openapi.yaml
var OpenAPI []byte
