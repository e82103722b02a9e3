package catalogentity

type StemCategory string

const (
	LeadVocalsCategory   StemCategory = "LEAD_VOCALS"
	InstrumentalCategory StemCategory = "INSTRUMENTAL"
	BassCategory         StemCategory = "BASS"
	PercussionCategory   StemCategory = "PERCUSSION"
	OtherCategory        StemCategory = "OTHER"
)

type Artwork struct {
	Small string `json:"150x150"`
}

type User struct {
	ID     string `json:"id"`
	Handle string `json:"handle"`
}

type Track struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Permalink   string  `json:"permalink"`
	Genre       string  `json:"genre"`
	Duration    int     `json:"duration"`
	ReleaseDate string  `json:"release_date"`
	Artwork     Artwork `json:"artwork"`
	User        User    `json:"user"`
}

type StemOf struct {
	ParentTrackID string       `json:"parent_track_id"`
	Category      StemCategory `json:"category"`
}

type UsdcPurchase struct {
	Price  int            `json:"price"`
	Splits map[string]int `json:"splits"`
}

type DownloadConditions struct {
	UsdcPurchase UsdcPurchase `json:"usdc_purchase"`
}

// UploadMetadata is the writable slice of a track record. Pointer fields
// are omitted from the update payload when unset so a metadata update
// only touches what it names.
type UploadMetadata struct {
	Title               string              `json:"title,omitempty"`
	Genre               string              `json:"genre,omitempty"`
	OrigFilename        string              `json:"orig_filename,omitempty"`
	IsDownloadable      bool                `json:"is_downloadable"`
	IsOriginalAvailable bool                `json:"is_original_available"`
	IsDownloadGated     bool                `json:"is_download_gated"`
	StemOf              *StemOf             `json:"stem_of,omitempty"`
	DownloadConditions  *DownloadConditions `json:"download_conditions,omitempty"`
}

type File struct {
	Name     string
	Contents []byte
}
