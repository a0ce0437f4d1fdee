package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTokenStore    = errors.New("token store error")
	ErrFetch         = errors.New("fetch error")
	ErrMaterialize   = errors.New("materialize error")
	ErrTransform     = errors.New("transform error")
	ErrLocked        = errors.New("refresh already running")
	ErrPreflight     = errors.New("preflight failed")
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
)

// Kind names the failure class recorded for a run.
type Kind string

const (
	KindNone        Kind = ""
	KindTokenStore  Kind = "token_store"
	KindFetch       Kind = "fetch"
	KindMaterialize Kind = "materialize"
	KindTransform   Kind = "transform"
	KindLock        Kind = "lock"
	KindPreflight   Kind = "preflight"
	KindUnknown     Kind = "unknown"
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of
// the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Classify maps a refresh error to the kind the orchestrator records.
// Pipeline markers win over the generic ones because a materialize failure
// is usually also an external tool failure.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrLocked):
		return KindLock
	case errors.Is(err, ErrPreflight):
		return KindPreflight
	case errors.Is(err, ErrTokenStore):
		return KindTokenStore
	case errors.Is(err, ErrFetch):
		return KindFetch
	case errors.Is(err, ErrMaterialize):
		return KindMaterialize
	case errors.Is(err, ErrTransform):
		return KindTransform
	default:
		return KindUnknown
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "refresh failure"
	}
	return strings.Join(parts, ": ")
}
