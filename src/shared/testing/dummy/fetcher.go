package dummy

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/veedubyou/audius-shake-be/src/shared/stem/upload"
)

var _ upload.AssetFetcher = &AssetFetcher{}

func NewDummyAssetFetcher() *AssetFetcher {
	return &AssetFetcher{
		Unavailable: false,
		Files:       make(map[string][]byte),
	}
}

type AssetFetcher struct {
	Unavailable bool
	Files       map[string][]byte
	FetchCount  int

	mutex sync.Mutex
}

func (a *AssetFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if a.Unavailable {
		return nil, NetworkFailure
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.FetchCount++

	contents, ok := a.Files[url]
	if !ok {
		return nil, errors.Newf("No file hosted at %s", url)
	}

	return contents, nil
}
