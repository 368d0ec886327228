package telemetry

import "errors"

// ErrMeterNil is returned when a metrics constructor receives a nil meter.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")
