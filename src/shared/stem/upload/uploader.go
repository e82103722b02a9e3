package upload

import (
	"context"

	"github.com/apex/log"
	"github.com/cockroachdb/errors"
	"github.com/veedubyou/audius-shake-be/src/shared/catalog"
	catalogentity "github.com/veedubyou/audius-shake-be/src/shared/catalog/entity"
	stementity "github.com/veedubyou/audius-shake-be/src/shared/stem/entity"
)

// StemUploadFailedMark carries a failed upload out of the sequential
// loop. The wrapped message names the stem index that failed - uploads
// committed before it are not rolled back, the catalog service has no
// delete primitive to roll back with.
var StemUploadFailedMark = errors.New("A stem failed to upload to the catalog service")

func NewUploader(catalogClient catalog.Client, fetcher AssetFetcher) Uploader {
	return Uploader{
		catalogClient: catalogClient,
		fetcher:       fetcher,
	}
}

type Uploader struct {
	catalogClient catalog.Client
	fetcher       AssetFetcher
}

type Params struct {
	Track        catalogentity.Track
	UserID       string
	Stems        []stementity.CompletedStem
	Monetization *stementity.MonetizationTerms
}

// UploadStems re-uploads each completed stem as a track attached to the
// parent, one at a time. Each iteration is a multi-megabyte download
// followed by a multi-megabyte upload, so only one transfer is kept in
// flight against either remote service.
func (u Uploader) UploadStems(ctx context.Context, params Params) error {
	coverArt := u.fetchCoverArt(ctx, params.Track)

	for i, stem := range params.Stems {
		err := u.uploadOneStem(ctx, params, stem, coverArt)
		if err != nil {
			err = errors.Wrapf(err, "Failed to upload stem at index %d (%s)", i, stem.Name)
			return errors.Mark(err, StemUploadFailedMark)
		}
	}

	if params.Monetization != nil && params.Monetization.Price > 0 {
		err := u.ApplyDownloadGate(ctx, params.UserID, params.Track.ID, *params.Monetization)
		if err != nil {
			return errors.Wrap(err, "Stems uploaded but the download gate update failed")
		}
	}

	return nil
}

func (u Uploader) uploadOneStem(ctx context.Context, params Params, stem stementity.CompletedStem, coverArt catalogentity.File) error {
	if len(stem.OutputAssets) == 0 {
		return errors.New("Completed stem has no output assets")
	}

	outputAsset := stem.OutputAssets[0]

	contents, err := u.fetcher.Fetch(ctx, outputAsset.Link)
	if err != nil {
		return errors.Wrap(err, "Failed to download the stem output asset")
	}

	metadata := catalogentity.UploadMetadata{
		Title:               stem.Name,
		Genre:               params.Track.Genre,
		OrigFilename:        outputAsset.Name,
		IsDownloadable:      true,
		IsOriginalAvailable: true,
		StemOf: &catalogentity.StemOf{
			ParentTrackID: params.Track.ID,
			Category:      stementity.CatalogCategory(stem.Name),
		},
	}

	trackFile := catalogentity.File{
		Name:     outputAsset.Name,
		Contents: contents,
	}

	_, err = u.catalogClient.UploadTrack(ctx, params.UserID, metadata, trackFile, coverArt)
	if err != nil {
		return errors.Wrap(err, "Catalog upload call failed")
	}

	return nil
}

// ApplyDownloadGate puts the parent track behind a paid download. Safe
// to retry in isolation - it's a plain metadata overwrite.
func (u Uploader) ApplyDownloadGate(ctx context.Context, userID string, trackID string, terms stementity.MonetizationTerms) error {
	splits := terms.Splits
	if splits == nil {
		splits = map[string]int{}
	}

	update := catalogentity.UploadMetadata{
		IsDownloadable:  true,
		IsDownloadGated: true,
		DownloadConditions: &catalogentity.DownloadConditions{
			UsdcPurchase: catalogentity.UsdcPurchase{
				Price:  terms.Price,
				Splits: splits,
			},
		},
	}

	err := u.catalogClient.UpdateTrack(ctx, userID, trackID, update)
	if err != nil {
		return errors.Wrap(err, "Failed to update the parent track with download gate terms")
	}

	return nil
}

// the parent's artwork is reused for each stem upload. Failing to fetch
// it isn't worth failing the batch over - upload without cover art.
func (u Uploader) fetchCoverArt(ctx context.Context, track catalogentity.Track) catalogentity.File {
	if track.Artwork.Small == "" {
		return catalogentity.File{}
	}

	contents, err := u.fetcher.Fetch(ctx, track.Artwork.Small)
	if err != nil {
		log.WithField("track_id", track.ID).
			WithError(err).
			Warn("Failed to fetch parent track artwork, uploading stems without cover art")
		return catalogentity.File{}
	}

	return catalogentity.File{
		Name:     "cover.jpg",
		Contents: contents,
	}
}
