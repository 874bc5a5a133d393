package engine

import "errors"

// ErrOrderNotFound is returned by Cancel when order_id is unknown or
// already terminal. It never mutates state.
var ErrOrderNotFound = errors.New("engine: order not found")
