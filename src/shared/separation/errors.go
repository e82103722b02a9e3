package separation

import "github.com/cockroachdb/errors"

var (
	JobNotFoundMark  = errors.New("The provider has no job for this ID")
	UpstreamMark     = errors.New("The separation service returned an error")
	DefaultErrorMark = errors.New("Unknown separation service error")
)
