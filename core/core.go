package core

import (
	"errors"
	"fmt"
)

// ErrNotSupported is the sentinel every NotSupportedError matches with
// errors.Is.
var ErrNotSupported = errors.New("not supported")

// Signer signs payloads on behalf of a DID. Alg returns the JWS algorithm
// name of the signatures, e.g. EdDSA.
type Signer interface {
	Sign(data []byte) ([]byte, error)
	Alg() string

	// KID returns the full verification method ID (DID URL) of the key.
	KID() string
}

// Identity is a DID that can sign for itself.
type Identity interface {
	Signer
	DID() string
}

// NotSupportedError tells that a DID method lacks the capability for the
// operation, e.g. publishing a did:key.
type NotSupportedError struct {
	Method    string
	Operation string
}

func (e *NotSupportedError) Error() string {
	return fmt.Sprintf("%s: did:%s does not support %s",
		ErrNotSupported, e.Method, e.Operation)
}

func (e *NotSupportedError) Is(target error) bool {
	return target == ErrNotSupported
}

// NotSupported is a helper to build a NotSupportedError.
func NotSupported(method, op string) error {
	return &NotSupportedError{Method: method, Operation: op}
}
