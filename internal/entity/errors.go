package entity

import "errors"

// Auth / identity errors.
var (
	ErrInvalidCredentials = errors.New("entity: invalid username or password")
	ErrAccessURINotFound  = errors.New("entity: access uri not found")
	ErrAccessURIRevoked   = errors.New("entity: access uri revoked")
	ErrTokenScopeMismatch = errors.New("entity: token scope does not match requested document")
	ErrUnauthorized       = errors.New("entity: unauthorized")
	ErrForbidden          = errors.New("entity: forbidden")
)

// Business errors.
var (
	ErrBusinessNotFound = errors.New("entity: business not found")
)

// User / account errors.
var (
	ErrUserNotFound        = errors.New("entity: user not found")
	ErrUserAlreadyExists   = errors.New("entity: user already exists")
	ErrUserDeleted         = errors.New("entity: user is deleted")
	ErrUserNotDeleted      = errors.New("entity: user is not deleted")
	ErrUserHasNoPassword   = errors.New("entity: user has no password set")
	ErrInvalidEmail        = errors.New("entity: invalid email address")
	ErrEmptyPassword       = errors.New("entity: password must not be empty")
)

// Document errors.
var (
	ErrDocumentNotFound       = errors.New("entity: document not found")
	ErrUnsupportedContentType = errors.New("entity: unsupported content type")
	ErrPayloadTooLarge        = errors.New("entity: payload too large")
	ErrFieldInfoNotReady      = errors.New("entity: field info not ready yet")
	ErrNotAcceptable          = errors.New("entity: no acceptable representation")
	ErrRenderedPageNotFound   = errors.New("entity: rendered page not found")
	ErrNoSignableFields       = errors.New("entity: caller has no fields to sign on this document")
)

// Field / usage errors.
var (
	ErrFieldNotFound              = errors.New("entity: field not found")
	ErrFieldDoesNotBelongToCaller = errors.New("entity: field does not belong to caller")
	ErrUnknownSignatorField       = errors.New("entity: signator field not declared in uploaded pdf")
	ErrInvalidFieldType           = errors.New("entity: invalid field type for signator")
	ErrParentMustBeDate           = errors.New("entity: field with a parent must be of type date")
	ErrUnknownParentField         = errors.New("entity: referenced parent field does not exist")
	ErrParentNotSignatureOrText   = errors.New("entity: parent field must be signature or text")
	ErrUnsupportedDependentType   = errors.New("entity: only date is a supported dependent field type")
	ErrUserNotOnDocument          = errors.New("entity: user is not associated with the document")
)

// Validation / generic input errors.
var (
	ErrInvalidInput  = errors.New("entity: invalid input")
	ErrInvalidSignators = errors.New("entity: invalid signators payload")
)

// Database / infrastructure errors.
var (
	ErrNotFound  = errors.New("entity: row not found")
	ErrConflict  = errors.New("entity: conflict")
	ErrUpstream  = errors.New("entity: upstream service failure")
)
