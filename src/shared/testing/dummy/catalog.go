package dummy

import (
	"context"
	"fmt"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/veedubyou/audius-shake-be/src/shared/catalog"
	catalogentity "github.com/veedubyou/audius-shake-be/src/shared/catalog/entity"
	"github.com/veedubyou/audius-shake-be/src/shared/lib/errors/mark"
)

var _ catalog.Client = &Catalog{}

func NewDummyCatalog() *Catalog {
	return &Catalog{
		Unavailable: false,
		Tracks:      make(map[string]catalogentity.Track),
		StreamURLs:  make(map[string]string),
	}
}

type UploadCall struct {
	UserID       string
	Metadata     catalogentity.UploadMetadata
	TrackFile    catalogentity.File
	CoverArtFile catalogentity.File
}

type UpdateCall struct {
	UserID  string
	TrackID string
	Update  catalogentity.UploadMetadata
}

type Catalog struct {
	Unavailable       bool
	UploadUnavailable bool
	UpdateUnavailable bool

	Tracks     map[string]catalogentity.Track
	StreamURLs map[string]string

	Uploads []UploadCall
	Updates []UpdateCall

	mutex sync.Mutex
}

func (c *Catalog) GetTrack(ctx context.Context, trackID string) (catalogentity.Track, error) {
	if c.Unavailable {
		return catalogentity.Track{}, errors.Mark(NetworkFailure, catalog.DefaultErrorMark)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	track, ok := c.Tracks[trackID]
	if !ok {
		return catalogentity.Track{}, mark.Message(catalog.TrackNotFoundMark, "No such track")
	}

	return track, nil
}

func (c *Catalog) GetStreamURL(ctx context.Context, trackID string) (string, error) {
	if c.Unavailable {
		return "", errors.Mark(NetworkFailure, catalog.DefaultErrorMark)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	streamURL, ok := c.StreamURLs[trackID]
	if !ok {
		return "", mark.Message(catalog.StreamURLNotFoundMark, "No stream link for this track")
	}

	return streamURL, nil
}

func (c *Catalog) UploadTrack(ctx context.Context, userID string, metadata catalogentity.UploadMetadata, trackFile catalogentity.File, coverArtFile catalogentity.File) (catalogentity.Track, error) {
	if c.Unavailable || c.UploadUnavailable {
		return catalogentity.Track{}, errors.Mark(NetworkFailure, catalog.DefaultErrorMark)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.Uploads = append(c.Uploads, UploadCall{
		UserID:       userID,
		Metadata:     metadata,
		TrackFile:    trackFile,
		CoverArtFile: coverArtFile,
	})

	uploadedTrack := catalogentity.Track{
		ID:    fmt.Sprintf("uploaded-track-%d", len(c.Uploads)),
		Title: metadata.Title,
		Genre: metadata.Genre,
	}

	c.Tracks[uploadedTrack.ID] = uploadedTrack

	return uploadedTrack, nil
}

func (c *Catalog) UpdateTrack(ctx context.Context, userID string, trackID string, update catalogentity.UploadMetadata) error {
	if c.Unavailable || c.UpdateUnavailable {
		return errors.Mark(NetworkFailure, catalog.DefaultErrorMark)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, ok := c.Tracks[trackID]; !ok {
		return mark.Message(catalog.TrackNotFoundMark, "No such track")
	}

	c.Updates = append(c.Updates, UpdateCall{
		UserID:  userID,
		TrackID: trackID,
		Update:  update,
	})

	return nil
}
