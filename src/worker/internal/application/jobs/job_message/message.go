package job_message

import (
	stementity "github.com/veedubyou/audius-shake-be/src/shared/stem/entity"
)

// StemBatch is the wire shape of a watch_stems message - one batch per
// generate request, covering every submitted job for the track.
type StemBatch struct {
	BatchID     string                    `json:"batch_id"`
	TrackID     string                    `json:"track_id"`
	UserID      string                    `json:"user_id"`
	Jobs        []stementity.SubmittedJob `json:"jobs"`
	IsMonetized bool                      `json:"is_monetized"`
	Amount      int                       `json:"amount"`
}
