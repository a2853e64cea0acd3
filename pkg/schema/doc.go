// Package schema converts form definitions to and from OpenAPI 3 schemas.
//
// FromDefinition describes the payload a rendered form submits: one property
// per field keyed by id, nested objects for groups, and the field validators
// as schema constraints. Document wraps that schema in a minimal validated
// OpenAPI document. Import goes the other way and builds a definition from a
// request body in an existing document.
package schema
