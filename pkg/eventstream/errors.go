package eventstream

import "errors"

// ErrNilEvent indicates a nil rebuild event payload was provided to a publisher.
var ErrNilEvent = errors.New("nil rebuild event")
