package rules

import (
	"errors"
	"fmt"

	"github.com/gokaycavdar/go-ipreputation/pkg/models"
)

var (
	ErrInvalidRule      = models.ErrInvalidRule
	ErrUnknownAttribute = models.ErrUnknownAttribute
	ErrNoFocusAttribute = errors.New("no focus attribute")
	ErrGroupNotFound    = errors.New("rule group not found")
	ErrIndexOutOfRange  = errors.New("rule index out of range")
	ErrFileNotFound     = errors.New("rule file not found")
	ErrMalformedData    = errors.New("malformed rule data")
)

// BuildError records which RuleSet operation failed.
type BuildError struct {
	Op  string
	Err error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("ruleset %s: %v", e.Op, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

func newBuildError(op string, err error) error {
	return &BuildError{Op: op, Err: err}
}
