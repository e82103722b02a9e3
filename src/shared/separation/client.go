package separation

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/veedubyou/audius-shake-be/src/shared/config"
	"github.com/veedubyou/audius-shake-be/src/shared/lib/errors/mark"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

const jobOutputFormat = "mp3"

//counterfeiter:generate . Client
type Client interface {
	IngestLink(ctx context.Context, link string, name string) (IngestedAsset, error)
	SubmitJob(ctx context.Context, assetID string, stemName string) (Job, error)
	GetJob(ctx context.Context, jobID string) (Job, error)
	GetUsage(ctx context.Context) (Usage, error)
}

var _ Client = HTTPClient{}

// HTTPClient talks to the separation provider. Stateless - the bearer
// token rides on every request, so one value serves all callers.
func NewHTTPClient(config config.Separation) HTTPClient {
	return HTTPClient{
		config:     config,
		httpClient: http.DefaultClient,
	}
}

type HTTPClient struct {
	config     config.Separation
	httpClient *http.Client
}

// providerError is the provider's uniform error payload shape.
type providerError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (h HTTPClient) IngestLink(ctx context.Context, link string, name string) (IngestedAsset, error) {
	payload := map[string]string{
		"link": link,
		"name": name,
	}

	asset := IngestedAsset{}
	err := h.doJSON(ctx, http.MethodPost, "/upload/link", payload, &asset)
	if err != nil {
		return IngestedAsset{}, errors.Wrap(err, "Failed to ingest the source link")
	}

	if asset.ID == "" {
		return IngestedAsset{}, mark.Message(UpstreamMark, "The provider accepted the link but returned no asset ID")
	}

	return asset, nil
}

func (h HTTPClient) SubmitJob(ctx context.Context, assetID string, stemName string) (Job, error) {
	payload := map[string]interface{}{
		"metadata": JobMetadata{
			Format: jobOutputFormat,
			Name:   stemName,
		},
		"callbackUrl": h.config.CallbackURL,
		"assetId":     assetID,
	}

	envelope := JobEnvelope{}
	err := h.doJSON(ctx, http.MethodPost, "/job/", payload, &envelope)
	if err != nil {
		return Job{}, errors.Wrapf(err, "Failed to submit the %s separation job", stemName)
	}

	if envelope.Job.ID == "" {
		return Job{}, mark.Message(UpstreamMark, "The provider accepted the job but returned no job ID")
	}

	return envelope.Job, nil
}

func (h HTTPClient) GetJob(ctx context.Context, jobID string) (Job, error) {
	envelope := JobEnvelope{}
	err := h.doJSON(ctx, http.MethodGet, "/job/"+jobID, nil, &envelope)
	if err != nil {
		return Job{}, errors.Wrap(err, "Failed to fetch the job status")
	}

	return envelope.Job, nil
}

func (h HTTPClient) GetUsage(ctx context.Context) (Usage, error) {
	usage := Usage{}
	err := h.doJSON(ctx, http.MethodGet, "/usage", nil, &usage)
	if err != nil {
		return Usage{}, errors.Wrap(err, "Failed to fetch provider usage")
	}

	return usage, nil
}

func (h HTTPClient) doJSON(ctx context.Context, method string, path string, payload interface{}, out interface{}) error {
	var body io.Reader

	if payload != nil {
		payloadJSON, err := json.Marshal(payload)
		if err != nil {
			return errors.Wrap(err, "Failed to marshal request payload")
		}

		body = bytes.NewReader(payloadJSON)
	}

	request, err := http.NewRequestWithContext(ctx, method, h.config.Host+path, body)
	if err != nil {
		return errors.Wrap(err, "Failed to create provider request")
	}

	request.Header.Set("Accept", "application/json")
	request.Header.Set("Authorization", "Bearer "+h.config.Token)
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := h.httpClient.Do(request)
	if err != nil {
		return mark.Wrap(err, DefaultErrorMark, "Provider request failed")
	}

	defer response.Body.Close()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return mark.Wrap(err, DefaultErrorMark, "Failed to read provider response body")
	}

	if response.StatusCode == http.StatusNotFound {
		return mark.Message(JobNotFoundMark, "The provider returned not found for this request")
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return markUpstreamError(response.StatusCode, responseBody)
	}

	// success responses can still carry an error payload
	errPayload := providerError{}
	if json.Unmarshal(responseBody, &errPayload) == nil && errPayload.Error != "" {
		err := errors.Newf("Provider error: %s", errPayload.Message)
		return mark.Wrap(err, UpstreamMark, "The provider reported an error payload")
	}

	if err := json.Unmarshal(responseBody, out); err != nil {
		return mark.Wrap(err, DefaultErrorMark, "Failed to decode provider response body")
	}

	return nil
}

func markUpstreamError(statusCode int, responseBody []byte) error {
	errPayload := providerError{}
	if json.Unmarshal(responseBody, &errPayload) == nil && errPayload.Message != "" {
		err := errors.Newf("Provider returned status %d: %s", statusCode, errPayload.Message)
		return mark.Wrap(err, UpstreamMark, "The provider rejected the request")
	}

	err := errors.Newf("Provider returned status %d", statusCode)
	return mark.Wrap(err, UpstreamMark, "The provider rejected the request")
}
