package alfred

import "errors"

// Sentinel errors for daemon invocations. The transport layer treats both
// as "no data available"; they exist so logs can say which side failed.
var (
	// ErrPublishFailed is returned when the daemon rejects or times out a
	// publish invocation.
	ErrPublishFailed = errors.New("alfred: publish failed")

	// ErrFetchFailed is returned when a fetch invocation fails or times out.
	ErrFetchFailed = errors.New("alfred: fetch failed")
)
