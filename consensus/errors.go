package consensus

import "errors"

// errBlockBroken is a cause of errors for relay blocks which cannot be
// turned into records. Reader skips such blocks.
var errBlockBroken = errors.New("relay block is malformed")
