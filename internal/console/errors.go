package console

import "errors"

// ErrClosed signals that the operator closed the console (/quit or
// EOF). It is a shutdown request, not a fault.
var ErrClosed = errors.New("console: closed")
