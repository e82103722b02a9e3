package stemusecase

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/errors/markers"
	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/veedubyou/audius-shake-be/src/server/internal/errors/api"
	stemerrors "github.com/veedubyou/audius-shake-be/src/server/internal/stem/errors"
	"github.com/veedubyou/audius-shake-be/src/shared/catalog"
	catalogentity "github.com/veedubyou/audius-shake-be/src/shared/catalog/entity"
	"github.com/veedubyou/audius-shake-be/src/shared/lib/rabbitmq"
	"github.com/veedubyou/audius-shake-be/src/shared/separation"
	stementity "github.com/veedubyou/audius-shake-be/src/shared/stem/entity"
	"github.com/veedubyou/audius-shake-be/src/shared/stem/upload"
)

const WatchStemsJobType string = "watch_stems"

type Usecase struct {
	catalogClient    catalog.Client
	separationClient separation.Client
	uploader         upload.Uploader
	publisher        rabbitmq.Publisher
}

func NewUsecase(
	catalogClient catalog.Client,
	separationClient separation.Client,
	uploader upload.Uploader,
	publisher rabbitmq.Publisher,
) Usecase {
	return Usecase{
		catalogClient:    catalogClient,
		separationClient: separationClient,
		uploader:         uploader,
		publisher:        publisher,
	}
}

// Generate resolves the track, ingests its stream link into the
// separation provider, and fans out one job per stem category. The
// batch is all-or-nothing: if any submission fails, no jobs are
// reported and the accepted ones are left to expire provider-side.
func (u Usecase) Generate(ctx context.Context, trackID string) ([]separation.Job, *api.Error) {
	if trackID == "" {
		return nil, api.CommitError(errors.New("No track ID provided"),
			stemerrors.BadRequestDataCode,
			"A track ID is required to generate stems")
	}

	track, apiErr := u.resolveTrack(ctx, trackID)
	if apiErr != nil {
		return nil, api.WrapError(apiErr, "Failed to resolve the track to generate stems for")
	}

	streamURL, err := u.catalogClient.GetStreamURL(ctx, trackID)
	if err != nil {
		err = errors.Wrap(err, "Failed to resolve a stream link for the track")
		switch {
		case markers.Is(err, catalog.StreamURLNotFoundMark):
			return nil, api.CommitError(err,
				stemerrors.StreamURLNotFoundCode,
				"This track has no playable stream link")
		default:
			return nil, api.CommitError(err,
				stemerrors.CatalogUpstreamCode,
				"The catalog service failed to provide a stream link")
		}
	}

	asset, err := u.separationClient.IngestLink(ctx, streamURL, track.Title)
	if err != nil {
		return nil, api.CommitError(
			errors.Wrap(err, "Failed to ingest the stream link into the provider"),
			stemerrors.SeparationUpstreamCode,
			"The separation service rejected the track's audio link")
	}

	jobs, err := u.submitAllJobs(ctx, asset.ID)
	if err != nil {
		return nil, api.CommitError(err,
			stemerrors.SeparationUpstreamCode,
			"The separation service rejected one of the stem jobs")
	}

	return jobs, nil
}

// submissions run concurrently and are joined - a failed category
// doesn't preempt the ones already in flight. The first error in
// category order decides the batch outcome.
func (u Usecase) submitAllJobs(ctx context.Context, assetID string) ([]separation.Job, error) {
	jobs := make([]separation.Job, len(stementity.AllCategories))
	errs := make([]error, len(stementity.AllCategories))

	wg := sync.WaitGroup{}
	for i, category := range stementity.AllCategories {
		wg.Add(1)
		go func(i int, category stementity.Category) {
			defer wg.Done()
			jobs[i], errs[i] = u.separationClient.SubmitJob(ctx, assetID, string(category))
		}(i, category)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to submit the %s separation job", stementity.AllCategories[i])
		}
	}

	return jobs, nil
}

// Status is a passthrough poll - one provider call, no internal retry.
// Retry cadence belongs to the caller.
func (u Usecase) Status(ctx context.Context, jobID string) (separation.Job, *api.Error) {
	if jobID == "" {
		return separation.Job{}, api.CommitError(errors.New("No job ID provided"),
			stemerrors.BadRequestDataCode,
			"A job ID is required to check status")
	}

	job, err := u.separationClient.GetJob(ctx, jobID)
	if err != nil {
		err = errors.Wrap(err, "Failed to fetch job status from the provider")
		switch {
		case markers.Is(err, separation.JobNotFoundMark):
			return separation.Job{}, api.CommitError(err,
				stemerrors.JobNotFoundCode,
				"The separation service has no job for this ID")
		default:
			return separation.Job{}, api.CommitError(err,
				stemerrors.SeparationUpstreamCode,
				"The separation service failed to report job status")
		}
	}

	return job, nil
}

func (u Usecase) Usage(ctx context.Context) (separation.Usage, *api.Error) {
	usage, err := u.separationClient.GetUsage(ctx)
	if err != nil {
		return separation.Usage{}, api.CommitError(
			errors.Wrap(err, "Failed to fetch usage from the provider"),
			stemerrors.SeparationUpstreamCode,
			"The separation service failed to report usage")
	}

	return usage, nil
}

// Upload re-uploads completed stems onto the catalog service as
// attached stem tracks of the parent. Returns the parent's permalink.
func (u Usecase) Upload(ctx context.Context, trackID string, userID string, stems []stementity.CompletedStem, monetization *stementity.MonetizationTerms) (string, *api.Error) {
	if trackID == "" || userID == "" {
		return "", api.CommitError(errors.New("Missing track ID or user ID"),
			stemerrors.BadRequestDataCode,
			"Both a track ID and a user ID are required to upload stems")
	}

	if len(stems) == 0 {
		return "", api.CommitError(errors.New("No stems provided"),
			stemerrors.BadRequestDataCode,
			"At least one completed stem is required to upload")
	}

	track, apiErr := u.resolveTrack(ctx, trackID)
	if apiErr != nil {
		return "", api.WrapError(apiErr, "Failed to resolve the parent track for stem upload")
	}

	err := u.uploader.UploadStems(ctx, upload.Params{
		Track:        track,
		UserID:       userID,
		Stems:        stems,
		Monetization: monetization,
	})

	if err != nil {
		err = errors.Wrap(err, "Failed to upload the stem batch")
		switch {
		case markers.Is(err, upload.StemUploadFailedMark):
			return "", api.CommitError(err,
				stemerrors.StemUploadFailedCode,
				"A stem failed to upload - earlier stems in the batch may already be attached")
		default:
			return "", api.CommitError(err,
				stemerrors.CatalogUpstreamCode,
				"The catalog service failed during the stem upload")
		}
	}

	return track.Permalink, nil
}

// Monetize applies a paid-download gate to the parent track without a
// prior generate/upload cycle.
func (u Usecase) Monetize(ctx context.Context, trackID string, userID string, amount int) (string, *api.Error) {
	if trackID == "" || userID == "" {
		return "", api.CommitError(errors.New("Missing track ID or user ID"),
			stemerrors.BadRequestDataCode,
			"Both a track ID and a user ID are required to monetize")
	}

	if amount <= 0 {
		return "", api.CommitError(errors.New("Amount must be a positive integer of minor currency units"),
			stemerrors.InvalidAmountCode,
			"The price must be a positive amount")
	}

	track, apiErr := u.resolveTrack(ctx, trackID)
	if apiErr != nil {
		return "", api.WrapError(apiErr, "Failed to resolve the track to monetize")
	}

	err := u.uploader.ApplyDownloadGate(ctx, userID, track.ID, stementity.MonetizationTerms{
		Price: amount,
	})
	if err != nil {
		return "", api.CommitError(
			errors.Wrap(err, "Failed to apply the download gate"),
			stemerrors.CatalogUpstreamCode,
			"The catalog service failed to apply the download gate")
	}

	return track.Permalink, nil
}

type StemBatch struct {
	BatchID     string                    `json:"batch_id"`
	TrackID     string                    `json:"track_id"`
	UserID      string                    `json:"user_id"`
	Jobs        []stementity.SubmittedJob `json:"jobs"`
	IsMonetized bool                      `json:"is_monetized"`
	Amount      int                       `json:"amount"`
}

// StartPipeline runs Generate and hands the rest of the flow to the
// worker: a single queue message covers polling all four jobs and the
// eventual re-upload, so the client doesn't have to drive the poll loop.
func (u Usecase) StartPipeline(ctx context.Context, trackID string, userID string, monetization *stementity.MonetizationTerms) (StemBatch, *api.Error) {
	if userID == "" {
		return StemBatch{}, api.CommitError(errors.New("No user ID provided"),
			stemerrors.BadRequestDataCode,
			"A user ID is required to run the stem pipeline")
	}

	jobs, apiErr := u.Generate(ctx, trackID)
	if apiErr != nil {
		return StemBatch{}, api.WrapError(apiErr, "Failed to generate stem jobs for the pipeline")
	}

	batch := StemBatch{
		BatchID: uuid.New().String(),
		TrackID: trackID,
		UserID:  userID,
		Jobs:    submittedJobs(jobs),
	}

	if monetization != nil {
		batch.IsMonetized = true
		batch.Amount = monetization.Price
	}

	jsonBytes, err := json.Marshal(batch)
	if err != nil {
		return StemBatch{}, api.CommitError(
			errors.Wrap(err, "Failed to marshal the stem batch for the queue"),
			api.DefaultErrorCode,
			"Unknown error: failed to enqueue the stem pipeline")
	}

	publishMsg := amqp091.Publishing{
		Type: WatchStemsJobType,
		Body: jsonBytes,
	}

	if err := u.publisher.Publish(publishMsg); err != nil {
		return StemBatch{}, api.CommitError(
			errors.Wrap(err, "Failed to publish the stem batch message"),
			api.DefaultErrorCode,
			"Unknown error: failed to enqueue the stem pipeline")
	}

	return batch, nil
}

func (u Usecase) resolveTrack(ctx context.Context, trackID string) (catalogentity.Track, *api.Error) {
	track, err := u.catalogClient.GetTrack(ctx, trackID)
	if err != nil {
		err = errors.Wrap(err, "Failed to fetch the track from the catalog service")
		switch {
		case markers.Is(err, catalog.TrackNotFoundMark):
			return catalogentity.Track{}, api.CommitError(err,
				stemerrors.TrackNotFoundCode,
				"No track was found for this ID")
		default:
			return catalogentity.Track{}, api.CommitError(err,
				stemerrors.CatalogUpstreamCode,
				"The catalog service failed to provide the track")
		}
	}

	return track, nil
}

func submittedJobs(jobs []separation.Job) []stementity.SubmittedJob {
	submitted := make([]stementity.SubmittedJob, 0, len(jobs))
	for _, job := range jobs {
		submitted = append(submitted, stementity.SubmittedJob{
			JobID:    job.ID,
			Category: stementity.Category(job.Metadata.Name),
			AssetID:  job.AssetID,
		})
	}

	return submitted
}
