// Provides common humpack error definitions.
package humpack_errors

import "errors"

var (
	ErrDuplicateType     = errors.New("humpack: type id already registered")
	ErrBadClass          = errors.New("humpack: incomplete class registration")
	ErrUnknownType       = errors.New("humpack: unknown type id")
	ErrNotPackable       = errors.New("humpack: value is not packable")
	ErrMalformedDocument = errors.New("humpack: malformed document")
	ErrBadSyntax         = errors.New("humpack: bad document syntax")

	ErrBadRecord = errors.New("humpack: bad store record")
	ErrClosed    = errors.New("humpack: store is closed")
)
