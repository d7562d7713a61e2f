package legistar

import (
	"errors"
	"fmt"
)

var (
	// ErrSkipItem means the configured data point is absent for this
	// particular record. expected and recoverable: the enclosing field
	// generator omits its key and the record carries on.
	ErrSkipItem = errors.New("field not present on this record")

	// ErrConfigurationMissing means a required jurisdiction config key
	// is absent. this is a setup bug, fatal for the run.
	ErrConfigurationMissing = errors.New("jurisdiction configuration key missing")

	// ErrProtocolViolation means a page lacks a structural marker the
	// traversal depends on (hidden session field, results table, mode
	// control). fatal for the current traversal, the site markup has
	// changed incompatibly.
	ErrProtocolViolation = errors.New("page missing expected marker")

	// ErrDuplicateKey means two field generators in one record declare
	// the same output key. a configuration error.
	ErrDuplicateKey = errors.New("duplicate record key")
)

func configMissing(key string) error {
	return fmt.Errorf("%w: %s", ErrConfigurationMissing, key)
}

func protocolViolation(url, marker string) error {
	return fmt.Errorf("%w: %s at %s", ErrProtocolViolation, marker, url)
}
