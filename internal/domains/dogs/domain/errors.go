package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidZipCode   = errors.New("zip code must be exactly five digits")
	ErrInvalidAge       = errors.New("age range is invalid")
	ErrInvalidSort      = errors.New("unsupported sort option")
	ErrInvalidPageSize  = errors.New("page size is out of range")
	ErrEmptySelection   = errors.New("no dogs selected")
	ErrNoNextPage       = errors.New("no next page")
	ErrNoPrevPage       = errors.New("no previous page")
	ErrNotAuthenticated = errors.New("session is not authenticated")
)

// Query operations named in QueryError.
const (
	OpSearch = "search"
	OpFetch  = "fetch"
	OpMatch  = "match"
)

// QueryError is a non-session failure of a search, fetch or match call.
type QueryError struct {
	Op     string
	Status int
	Err    error
}

func (e *QueryError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s dogs: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s dogs: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// UserMessage is the notification text for the failed operation.
func (e *QueryError) UserMessage() string {
	switch e.Op {
	case OpMatch:
		return "Failed to find match. Please try again."
	case OpFetch:
		return "Failed to load dog details. Please try again."
	default:
		return "Failed to load dogs. Please try again."
	}
}

// UserMessage renders err as visitor facing text, falling back to err.Error().
func UserMessage(err error) string {
	var qe *QueryError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &qe):
		return qe.UserMessage()
	case errors.Is(err, ErrInvalidZipCode):
		return "Please enter a valid 5-digit zip code."
	case errors.Is(err, ErrInvalidAge):
		return "Please enter a valid age range."
	case errors.Is(err, ErrEmptySelection):
		return "Select at least one dog to find a match."
	case errors.Is(err, ErrInvalidSort), errors.Is(err, ErrInvalidPageSize):
		return "That option is not available."
	}
	return err.Error()
}
