package dummy

import "github.com/cockroachdb/errors"

var NetworkFailure = errors.New("Dummy network failure")
