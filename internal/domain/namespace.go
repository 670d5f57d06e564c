package domain

import (
	"fmt"
	"strings"
)

// DefaultCollection is the shared collection used when no tenant is given.
const DefaultCollection = "shifts"

// Namespace selects the collection a record lives in. The zero value is the
// shared default namespace; a non-empty value is a user id whose records live
// under users/{id}/shifts. This is a key-prefixing convention only: nothing
// here checks that the caller is that user.
type Namespace string

// Collection returns the store collection path for the namespace.
func (n Namespace) Collection() string {
	if n == "" {
		return DefaultCollection
	}
	return "users/" + string(n) + "/" + DefaultCollection
}

// Validate rejects user ids that would escape or blur the path convention.
func (n Namespace) Validate() error {
	if n == "" {
		return nil
	}
	if strings.TrimSpace(string(n)) == "" || strings.Contains(string(n), "/") {
		return fmt.Errorf("%w: invalid user id %q", ErrValidation, string(n))
	}
	return nil
}
