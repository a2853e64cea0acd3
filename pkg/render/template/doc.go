// Package template defines the template engine seam used by the preview page
// and any renderer that produces markup from a form definition.
package template
