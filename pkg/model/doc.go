// Package model defines the form definition tree edited by the builder. A
// Definition owns an ordered list of top-level elements; each element is
// either a Field (a single input with validators, options and a current value)
// or a Group (a named container of fields). Elements carry a Kind tag and the
// traversal code switches on that tag, so trees restored from JSON behave
// exactly like trees built in memory.
//
// Groups nest one level deep: a Group only ever holds Fields. Element ids are
// unique across the whole tree, which keeps FindChildByID and UpdateElement
// deterministic.
//
// Structural mistakes (blank labels, duplicate validators or options,
// validators that do not apply to a field kind) are reported as errors that
// wrap the sentinel values in errors.go. Lookups that simply miss return a
// boolean instead.
package model
