// Package polyenum is the runtime support imported by code that the
// polyenum generator emits.
//
// Generated unions panic through this package when a value is used in a way
// the caller should have ruled out: projecting a union onto a case it does
// not hold, or dispatching on a zero union that holds no case. Both panics
// carry an error value that can be recovered and inspected:
//
//	defer func() {
//		if r := recover(); r != nil {
//			if err, ok := r.(error); ok && errors.Is(err, polyenum.ErrProjectionMismatch) {
//				// ...
//			}
//		}
//	}()
//	attack := moves.AsAttack()
//
// Use the generated TryV methods to avoid the panic altogether.
package polyenum

import (
	"errors"
	"fmt"
)

var (
	// ErrProjectionMismatch matches every *ProjectionMismatch.
	ErrProjectionMismatch = errors.New("polyenum: projection mismatch")

	// ErrNoCase matches every *CaseError.
	ErrNoCase = errors.New("polyenum: union holds no case")
)

// ProjectionMismatch is raised by a generated AsV method when the union
// holds a case other than V.
type ProjectionMismatch struct {
	// Union is the name of the union type.
	Union string
	// Case is the name of the case the union holds.
	Case string
	// Target is the product type that was requested.
	Target string
}

func (e *ProjectionMismatch) Error() string {
	return fmt.Sprintf("polyenum: cannot project %s holding %s onto %s", e.Union, e.Case, e.Target)
}

// Is reports whether target is ErrProjectionMismatch.
func (e *ProjectionMismatch) Is(target error) bool { return target == ErrProjectionMismatch }

// Mismatch returns the error a projection panics with. held is the kind of
// the case the union holds.
func Mismatch(union string, held fmt.Stringer, target string) *ProjectionMismatch {
	return &ProjectionMismatch{Union: union, Case: held.String(), Target: target}
}

// CaseError is raised by a generated dispatcher called on a union that
// holds no case, usually the zero value.
type CaseError struct {
	Union string
	Kind  string
}

func (e *CaseError) Error() string {
	return fmt.Sprintf("polyenum: %s holds no case (kind %s)", e.Union, e.Kind)
}

// Is reports whether target is ErrNoCase.
func (e *CaseError) Is(target error) bool { return target == ErrNoCase }

// NoCase returns the error a dispatcher panics with.
func NoCase(union string, kind fmt.Stringer) *CaseError {
	return &CaseError{Union: union, Kind: kind.String()}
}
