package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/cockroachdb/errors"
	catalogentity "github.com/veedubyou/audius-shake-be/src/shared/catalog/entity"
	"github.com/veedubyou/audius-shake-be/src/shared/config"
	"github.com/veedubyou/audius-shake-be/src/shared/lib/errors/mark"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

//counterfeiter:generate . Client
type Client interface {
	GetTrack(ctx context.Context, trackID string) (catalogentity.Track, error)
	GetStreamURL(ctx context.Context, trackID string) (string, error)
	UploadTrack(ctx context.Context, userID string, metadata catalogentity.UploadMetadata, trackFile catalogentity.File, coverArtFile catalogentity.File) (catalogentity.Track, error)
	UpdateTrack(ctx context.Context, userID string, trackID string, update catalogentity.UploadMetadata) error
}

var _ Client = HTTPClient{}

// HTTPClient talks to the hosting platform's REST API. It carries no
// mutable state - one value can be shared across concurrent requests.
func NewHTTPClient(config config.Catalog) HTTPClient {
	return HTTPClient{
		config: config,
		// never follow the stream redirect - the Location header is the
		// answer, not the audio bytes behind it
		redirectStopper: &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		httpClient: http.DefaultClient,
	}
}

type HTTPClient struct {
	config          config.Catalog
	redirectStopper *http.Client
	httpClient      *http.Client
}

type trackEnvelope struct {
	Data *catalogentity.Track `json:"data"`
}

func (h HTTPClient) GetTrack(ctx context.Context, trackID string) (catalogentity.Track, error) {
	url := fmt.Sprintf("%s/v1/tracks/%s", h.config.Host, trackID)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return catalogentity.Track{}, errors.Wrap(err, "Failed to create get track request")
	}

	h.setAuthHeaders(request)

	response, err := h.httpClient.Do(request)
	if err != nil {
		return catalogentity.Track{}, mark.Wrap(err, DefaultErrorMark, "Get track request failed")
	}

	defer response.Body.Close()

	if response.StatusCode == http.StatusNotFound {
		return catalogentity.Track{}, mark.Message(TrackNotFoundMark, "The catalog service has no track for this ID")
	}

	if response.StatusCode != http.StatusOK {
		return catalogentity.Track{}, errorFromResponse(response, "Get track returned a non-success response")
	}

	envelope := trackEnvelope{}
	if err := json.NewDecoder(response.Body).Decode(&envelope); err != nil {
		return catalogentity.Track{}, mark.Wrap(err, DefaultErrorMark, "Failed to decode track response body")
	}

	if envelope.Data == nil || envelope.Data.ID == "" {
		return catalogentity.Track{}, mark.Message(TrackNotFoundMark, "The catalog service returned an empty track record")
	}

	return *envelope.Data, nil
}

func (h HTTPClient) GetStreamURL(ctx context.Context, trackID string) (string, error) {
	url := fmt.Sprintf("%s/v1/tracks/%s/stream", h.config.Host, trackID)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.Wrap(err, "Failed to create stream URL request")
	}

	h.setAuthHeaders(request)

	response, err := h.redirectStopper.Do(request)
	if err != nil {
		return "", mark.Wrap(err, DefaultErrorMark, "Stream URL request failed")
	}

	defer response.Body.Close()

	switch response.StatusCode {
	case http.StatusFound, http.StatusMovedPermanently, http.StatusTemporaryRedirect:
		streamURL := response.Header.Get("Location")
		if streamURL == "" {
			return "", mark.Message(StreamURLNotFoundMark, "The catalog service redirected without a stream location")
		}

		return streamURL, nil

	case http.StatusNotFound, http.StatusForbidden:
		// deleted, geo-restricted, or otherwise unplayable
		return "", mark.Message(StreamURLNotFoundMark, "No playable stream link exists for this track")

	default:
		return "", errorFromResponse(response, "Stream URL request returned a non-success response")
	}
}

func (h HTTPClient) UploadTrack(ctx context.Context, userID string, metadata catalogentity.UploadMetadata, trackFile catalogentity.File, coverArtFile catalogentity.File) (catalogentity.Track, error) {
	body := &bytes.Buffer{}
	multipartWriter := multipart.NewWriter(body)

	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return catalogentity.Track{}, errors.Wrap(err, "Failed to marshal upload metadata")
	}

	if err := multipartWriter.WriteField("metadata", string(metadataJSON)); err != nil {
		return catalogentity.Track{}, errors.Wrap(err, "Failed to write metadata form field")
	}

	if err := multipartWriter.WriteField("user_id", userID); err != nil {
		return catalogentity.Track{}, errors.Wrap(err, "Failed to write user ID form field")
	}

	if err := writeFilePart(multipartWriter, "track_file", trackFile); err != nil {
		return catalogentity.Track{}, errors.Wrap(err, "Failed to write the track file part")
	}

	if len(coverArtFile.Contents) > 0 {
		if err := writeFilePart(multipartWriter, "cover_art_file", coverArtFile); err != nil {
			return catalogentity.Track{}, errors.Wrap(err, "Failed to write the cover art file part")
		}
	}

	if err := multipartWriter.Close(); err != nil {
		return catalogentity.Track{}, errors.Wrap(err, "Failed to finalize the multipart body")
	}

	url := fmt.Sprintf("%s/v1/tracks", h.config.Host)

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return catalogentity.Track{}, errors.Wrap(err, "Failed to create upload track request")
	}

	request.Header.Set("Content-Type", multipartWriter.FormDataContentType())
	h.setAuthHeaders(request)

	response, err := h.httpClient.Do(request)
	if err != nil {
		return catalogentity.Track{}, mark.Wrap(err, DefaultErrorMark, "Upload track request failed")
	}

	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return catalogentity.Track{}, errorFromResponse(response, "Upload track returned a non-success response")
	}

	envelope := trackEnvelope{}
	if err := json.NewDecoder(response.Body).Decode(&envelope); err != nil {
		return catalogentity.Track{}, mark.Wrap(err, DefaultErrorMark, "Failed to decode uploaded track response body")
	}

	if envelope.Data == nil {
		return catalogentity.Track{}, nil
	}

	return *envelope.Data, nil
}

func (h HTTPClient) UpdateTrack(ctx context.Context, userID string, trackID string, update catalogentity.UploadMetadata) error {
	payload, err := json.Marshal(map[string]interface{}{
		"user_id":  userID,
		"metadata": update,
	})
	if err != nil {
		return errors.Wrap(err, "Failed to marshal track update payload")
	}

	url := fmt.Sprintf("%s/v1/tracks/%s", h.config.Host, trackID)

	request, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "Failed to create update track request")
	}

	request.Header.Set("Content-Type", "application/json")
	h.setAuthHeaders(request)

	response, err := h.httpClient.Do(request)
	if err != nil {
		return mark.Wrap(err, DefaultErrorMark, "Update track request failed")
	}

	defer response.Body.Close()

	if response.StatusCode == http.StatusNotFound {
		return mark.Message(TrackNotFoundMark, "The catalog service has no track for this ID")
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return errorFromResponse(response, "Update track returned a non-success response")
	}

	return nil
}

func (h HTTPClient) setAuthHeaders(request *http.Request) {
	request.Header.Set("X-API-Key", h.config.APIKey)
	request.Header.Set("X-API-Secret", h.config.APISecret)
}

func writeFilePart(multipartWriter *multipart.Writer, fieldName string, file catalogentity.File) error {
	part, err := multipartWriter.CreateFormFile(fieldName, file.Name)
	if err != nil {
		return errors.Wrap(err, "Failed to create form file part")
	}

	if _, err := part.Write(file.Contents); err != nil {
		return errors.Wrap(err, "Failed to write file contents into form part")
	}

	return nil
}

func errorFromResponse(response *http.Response, msg string) error {
	responseBody, readErr := io.ReadAll(io.LimitReader(response.Body, 4096))
	if readErr != nil {
		responseBody = []byte("(unreadable response body)")
	}

	err := errors.Newf("Catalog service returned status %d: %s", response.StatusCode, string(responseBody))
	return mark.Wrap(err, DefaultErrorMark, msg)
}
