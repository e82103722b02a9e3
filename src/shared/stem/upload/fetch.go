package upload

import (
	"context"
	"io"
	"net/http"

	"github.com/cockroachdb/errors"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

//counterfeiter:generate . AssetFetcher
type AssetFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

var _ AssetFetcher = HTTPFetcher{}

type HTTPFetcher struct{}

func (h HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create asset fetch request")
	}

	response, err := http.DefaultClient.Do(request)
	if err != nil {
		return nil, errors.Wrap(err, "Asset fetch request failed")
	}

	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, errors.Newf("Asset fetch returned status %d", response.StatusCode)
	}

	contents, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to read asset contents")
	}

	return contents, nil
}
