package influxdb

import "errors"

// Sentinel errors for telemetry operations, checkable with errors.Is.
// Write failures are not represented here; they arrive asynchronously via
// the SetOnError callback.
var (
	// ErrNotConnected indicates the client is not connected to InfluxDB.
	ErrNotConnected = errors.New("influxdb: not connected")

	// ErrConnectionFailed indicates the initial connection attempt failed.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrDisabled indicates telemetry is switched off in config.
	ErrDisabled = errors.New("influxdb: disabled in configuration")
)
