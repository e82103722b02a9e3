package stementity

import (
	catalogentity "github.com/veedubyou/audius-shake-be/src/shared/catalog/entity"
	"github.com/veedubyou/audius-shake-be/src/shared/separation"
)

type Category string

const (
	VocalsCategory       Category = "vocals"
	InstrumentalCategory Category = "instrumental"
	BassCategory         Category = "bass"
	DrumsCategory        Category = "drums"
)

// AllCategories is the fixed fan-out set - every generate request
// submits exactly one job per entry, in this order.
var AllCategories = []Category{
	VocalsCategory,
	InstrumentalCategory,
	BassCategory,
	DrumsCategory,
}

// CatalogCategory maps a stem name into the catalog service's category
// enumeration. Unrecognized names land in OTHER rather than failing the
// batch.
func CatalogCategory(stemName string) catalogentity.StemCategory {
	switch Category(stemName) {
	case VocalsCategory:
		return catalogentity.LeadVocalsCategory
	case InstrumentalCategory:
		return catalogentity.InstrumentalCategory
	case BassCategory:
		return catalogentity.BassCategory
	case DrumsCategory:
		return catalogentity.PercussionCategory
	default:
		return catalogentity.OtherCategory
	}
}

// SubmittedJob is the handle returned from a generate call - enough for
// the caller (or the watch worker) to poll the provider.
type SubmittedJob struct {
	JobID    string   `json:"job_id"`
	Category Category `json:"category"`
	AssetID  string   `json:"asset_id"`
}

// CompletedStem is one finished separation job's output, ready for
// re-upload. Name is the requested category name as the provider
// reported it.
type CompletedStem struct {
	Name         string
	OutputAssets []separation.OutputAsset
}

type MonetizationTerms struct {
	// Price is in the currency's minor unit (cents)
	Price  int
	Splits map[string]int
}
