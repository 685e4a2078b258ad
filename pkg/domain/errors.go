package domain

import "errors"

// ErrSchemaViolation is returned when orchestrator output does not describe a valid tree.
var ErrSchemaViolation = errors.New("schema violation")

// ErrUnknownVariant is returned when a component is not one of the five known variants.
// It signals a bug (a validator/lowering mismatch) and must never be swallowed.
var ErrUnknownVariant = errors.New("unknown component variant")

// ErrAppNotFound is returned when an application identifier has no stored tree.
var ErrAppNotFound = errors.New("app not found")

// ErrOrchestrator is returned when the tree generator (a language model provider) fails.
var ErrOrchestrator = errors.New("orchestrator failure")

// ErrInvalidAppID is returned for empty or malformed application identifiers.
var ErrInvalidAppID = errors.New("invalid app id")

// ErrInvalidInput is returned for user input that is rejected before any work starts.
var ErrInvalidInput = errors.New("invalid input")
