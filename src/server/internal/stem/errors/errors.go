package stemerrors

import "github.com/veedubyou/audius-shake-be/src/server/internal/errors/api"

const (
	TrackNotFoundCode      = api.ErrorCode("track_not_found")
	StreamURLNotFoundCode  = api.ErrorCode("stream_url_not_found")
	JobNotFoundCode        = api.ErrorCode("job_not_found")
	SeparationUpstreamCode = api.ErrorCode("separation_upstream")
	CatalogUpstreamCode    = api.ErrorCode("catalog_upstream")
	StemUploadFailedCode   = api.ErrorCode("stem_upload_failed")
	BadRequestDataCode     = api.ErrorCode("bad_request_data")
	InvalidAmountCode      = api.ErrorCode("invalid_amount")
	PollTimeoutCode        = api.ErrorCode("poll_timeout")
)
