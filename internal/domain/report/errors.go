package report

import "errors"

// Sentinel error kinds for this package. Parsing itself never fails.
var (
	ErrUnknownStyle = errors.New("unknown report style")
)
