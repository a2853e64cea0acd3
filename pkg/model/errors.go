package model

import "errors"

var (
	ErrEmptyLabel             = errors.New("model: label cannot be empty")
	ErrEmptyID                = errors.New("model: element id cannot be empty")
	ErrDuplicateID            = errors.New("model: duplicate element id")
	ErrInvalidFieldType       = errors.New("model: invalid field type")
	ErrUnknownValidator       = errors.New("model: unknown validator")
	ErrDuplicateValidator     = errors.New("model: validator already exists")
	ErrValidatorValueMissing  = errors.New("model: validator requires a value")
	ErrValidatorNotApplicable = errors.New("model: validator not applicable to field type")
	ErrOptionsNotSupported    = errors.New("model: field type does not support options")
	ErrDuplicateOption        = errors.New("model: option already exists")
	ErrEmptyOption            = errors.New("model: option label cannot be empty")
	ErrNestedGroup            = errors.New("model: groups cannot contain groups")
	ErrNilElement             = errors.New("model: element is nil")
	ErrGroupNotInTree         = errors.New("model: group is not part of the definition")
	// ErrInvalidDefinition wraps every failure returned by FromJSON.
	ErrInvalidDefinition = errors.New("model: invalid form definition")
)
