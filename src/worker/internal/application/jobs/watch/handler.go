package watch

import (
	"context"
	"encoding/json"

	"github.com/apex/log"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/errors/markers"
	"github.com/veedubyou/audius-shake-be/src/shared/catalog"
	"github.com/veedubyou/audius-shake-be/src/shared/lib/poll"
	"github.com/veedubyou/audius-shake-be/src/shared/separation"
	stementity "github.com/veedubyou/audius-shake-be/src/shared/stem/entity"
	"github.com/veedubyou/audius-shake-be/src/shared/stem/upload"
	"github.com/veedubyou/audius-shake-be/src/worker/internal/application/jobs/job_message"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

const JobType string = "watch_stems"
const ErrorMessage string = "Failed to finish the stem pipeline"

//counterfeiter:generate . WatchJobHandler
type WatchJobHandler interface {
	HandleWatchJob(message []byte) error
}

type JobParams struct {
	job_message.StemBatch
}

func NewJobHandler(
	catalogClient catalog.Client,
	separationClient separation.Client,
	uploader upload.Uploader,
	pollSpec poll.Spec,
) JobHandler {
	return JobHandler{
		catalogClient:    catalogClient,
		separationClient: separationClient,
		uploader:         uploader,
		pollSpec:         pollSpec,
	}
}

type JobHandler struct {
	catalogClient    catalog.Client
	separationClient separation.Client
	uploader         upload.Uploader
	pollSpec         poll.Spec
}

// HandleWatchJob polls every job in the batch to completion and then
// re-uploads the results as stem tracks. The poll deadline applies per
// job - a batch can wait at most len(jobs) * max duration in the worst
// case before failing.
func (d JobHandler) HandleWatchJob(message []byte) error {
	params, err := unmarshalMessage(message)
	if err != nil {
		return errors.Wrap(err, "Failed to unmarshal message JSON")
	}

	logger := log.WithField("batch_id", params.BatchID).
		WithField("track_id", params.TrackID)

	ctx := context.Background()

	stems := make([]stementity.CompletedStem, 0, len(params.Jobs))
	for _, submittedJob := range params.Jobs {
		logger.WithField("job_id", submittedJob.JobID).
			WithField("category", submittedJob.Category).
			Info("Waiting for separation job to complete")

		completedJob, err := d.awaitJob(ctx, submittedJob)
		if err != nil {
			return errors.Wrapf(err, "Job for the %s stem did not complete", submittedJob.Category)
		}

		stems = append(stems, stementity.CompletedStem{
			Name:         completedJob.Metadata.Name,
			OutputAssets: completedJob.OutputAssets,
		})
	}

	logger.Info("All separation jobs completed, uploading stems")

	track, err := d.catalogClient.GetTrack(ctx, params.TrackID)
	if err != nil {
		return errors.Wrap(err, "Failed to fetch the parent track for the batch")
	}

	uploadParams := upload.Params{
		Track:  track,
		UserID: params.UserID,
		Stems:  stems,
	}

	if params.IsMonetized && params.Amount > 0 {
		uploadParams.Monetization = &stementity.MonetizationTerms{
			Price: params.Amount,
		}
	}

	err = d.uploader.UploadStems(ctx, uploadParams)
	if err != nil {
		return errors.Wrap(err, "Failed to upload the completed stems")
	}

	logger.Info("Stem batch uploaded successfully")

	return nil
}

func (d JobHandler) awaitJob(ctx context.Context, submittedJob stementity.SubmittedJob) (separation.Job, error) {
	completedJob := separation.Job{}

	pollFn := func(ctx context.Context) (bool, error) {
		job, err := d.separationClient.GetJob(ctx, submittedJob.JobID)
		if err != nil {
			if markers.Is(err, separation.JobNotFoundMark) {
				return false, errors.Wrap(err, "The provider no longer knows this job")
			}

			// transient provider hiccups just mean "not yet complete"
			log.WithField("job_id", submittedJob.JobID).
				WithError(err).
				Warn("Transient failure polling job status, will retry")
			return false, nil
		}

		if job.IsFailed() {
			return false, errors.New("The provider reported the job as failed")
		}

		if !job.IsComplete() {
			return false, nil
		}

		completedJob = job
		return true, nil
	}

	if err := poll.Poll(ctx, d.pollSpec, pollFn); err != nil {
		return separation.Job{}, errors.Wrap(err, "Polling the job did not reach completion")
	}

	if len(completedJob.OutputAssets) == 0 {
		return separation.Job{}, errors.New("The completed job has no output assets")
	}

	return completedJob, nil
}

func unmarshalMessage(message []byte) (JobParams, error) {
	params := JobParams{}
	err := json.Unmarshal(message, &params)
	if err != nil {
		return JobParams{}, errors.Wrap(err, "Failed to unmarshal message JSON")
	}

	if params.TrackID == "" {
		return JobParams{}, errors.New("Missing track ID")
	}

	if params.UserID == "" {
		return JobParams{}, errors.New("Missing user ID")
	}

	if len(params.Jobs) == 0 {
		return JobParams{}, errors.New("No jobs in the batch")
	}

	return params, nil
}
