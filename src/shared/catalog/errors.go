package catalog

import "github.com/cockroachdb/errors"

var (
	TrackNotFoundMark     = errors.New("The track for this ID can't be found")
	StreamURLNotFoundMark = errors.New("No playable stream link resolved for this track")
	DefaultErrorMark      = errors.New("Unknown catalog service error")
)
