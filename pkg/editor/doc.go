// Package editor owns one editing session over a form definition.
//
// A Session holds the definition, its control tree, a drag-drop reconciler
// and the store the definition is persisted to. Every gesture runs as one
// unit under the session lock: the definition is mutated, the control tree
// is patched to match, the result is saved, and only then are subscribers
// notified with a cloned snapshot. No caller can observe a control that has
// left one scope and not yet joined another.
package editor
