package cache

import "errors"

// ErrComputationFailed wraps every error returned by a compute function.
// The cause stays reachable through errors.Is/As.
var ErrComputationFailed = errors.New("computation failed")
