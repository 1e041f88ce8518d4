package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition = errors.New("illegal transition of sale state")
	ErrSessionBusy       = errors.New("sale session has an operation in progress")
	ErrScanCooldown      = errors.New("scan ignored, scanner is cooling down")
	ErrNoPendingCancel   = errors.New("no cancel confirmation is pending")
	ErrTotalMismatch     = errors.New("document total does not match cart total")
	ErrSessionNotFound   = errors.New("sale session not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrProductExists     = errors.New("product already exists")
)

// FetchError reports that the catalog could not be loaded.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch data: %v", e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// NotFoundError reports a scanned code with no catalog match.
type NotFoundError struct {
	Code string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("product %q not found in the catalog", e.Code)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrProductNotFound
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PrintError reports a print sink failure. The document that failed is not
// lost; the caller may retry.
type PrintError struct {
	DocumentID string
	Err        error
}

func (e *PrintError) Error() string {
	return fmt.Sprintf("failed to print document %s: %v", e.DocumentID, e.Err)
}

func (e *PrintError) Unwrap() error { return e.Err }
