package dummy

import (
	"context"
	"fmt"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/veedubyou/audius-shake-be/src/shared/lib/errors/mark"
	"github.com/veedubyou/audius-shake-be/src/shared/separation"
)

var _ separation.Client = &Separation{}

func NewDummySeparation() *Separation {
	return &Separation{
		Unavailable:    false,
		Jobs:           make(map[string]separation.Job),
		IngestedAssets: make(map[string]separation.IngestedAsset),
		FailCategories: make(map[string]bool),
	}
}

type Separation struct {
	Unavailable bool

	IngestCount int
	SubmitCount int

	// FailCategories injects a submission failure for the named stem
	FailCategories map[string]bool

	IngestedAssets map[string]separation.IngestedAsset
	Jobs           map[string]separation.Job

	CannedUsage separation.Usage

	mutex sync.Mutex
}

func (s *Separation) IngestLink(ctx context.Context, link string, name string) (separation.IngestedAsset, error) {
	if s.Unavailable {
		return separation.IngestedAsset{}, errors.Mark(NetworkFailure, separation.DefaultErrorMark)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.IngestCount++

	asset := separation.IngestedAsset{
		ID:   fmt.Sprintf("asset-%d", s.IngestCount),
		Name: name,
		Link: link,
	}

	s.IngestedAssets[asset.ID] = asset

	return asset, nil
}

func (s *Separation) SubmitJob(ctx context.Context, assetID string, stemName string) (separation.Job, error) {
	if s.Unavailable {
		return separation.Job{}, errors.Mark(NetworkFailure, separation.DefaultErrorMark)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.FailCategories[stemName] {
		return separation.Job{}, mark.Message(separation.UpstreamMark, "The provider rejected this job")
	}

	s.SubmitCount++

	job := separation.Job{
		ID:      fmt.Sprintf("job-%d", s.SubmitCount),
		AssetID: assetID,
		Metadata: separation.JobMetadata{
			Format: "mp3",
			Name:   stemName,
		},
		Status: separation.CreatedStatus,
	}

	s.Jobs[job.ID] = job

	return job, nil
}

func (s *Separation) GetJob(ctx context.Context, jobID string) (separation.Job, error) {
	if s.Unavailable {
		return separation.Job{}, errors.Mark(NetworkFailure, separation.DefaultErrorMark)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	job, ok := s.Jobs[jobID]
	if !ok {
		return separation.Job{}, mark.Message(separation.JobNotFoundMark, "No such job")
	}

	return job, nil
}

func (s *Separation) GetUsage(ctx context.Context) (separation.Usage, error) {
	if s.Unavailable {
		return separation.Usage{}, errors.Mark(NetworkFailure, separation.DefaultErrorMark)
	}

	return s.CannedUsage, nil
}

// CompleteJob flips a stored job to completed with the given outputs.
func (s *Separation) CompleteJob(jobID string, outputAssets []separation.OutputAsset) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	job := s.Jobs[jobID]
	job.Status = separation.CompletedStatus
	job.OutputAssets = outputAssets
	s.Jobs[jobID] = job
}

// FailJob flips a stored job to failed.
func (s *Separation) FailJob(jobID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	job := s.Jobs[jobID]
	job.Status = separation.FailedStatus
	s.Jobs[jobID] = job
}
