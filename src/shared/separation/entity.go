package separation

type JobStatus string

const (
	CreatedStatus    JobStatus = "created"
	ProcessingStatus JobStatus = "processing"
	CompletedStatus  JobStatus = "completed"
	FailedStatus     JobStatus = "failed"
)

type IngestedAsset struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	FileType string `json:"fileType"`
	Format   string `json:"format"`
	Link     string `json:"link"`
}

type JobMetadata struct {
	Format string `json:"format"`
	Name   string `json:"name"`
}

type OutputAsset struct {
	Name string `json:"name"`
	Link string `json:"link"`
}

type Job struct {
	ID           string        `json:"id"`
	ClientID     string        `json:"clientId"`
	RequestID    string        `json:"requestId"`
	AssetID      string        `json:"assetId"`
	Metadata     JobMetadata   `json:"metadata"`
	Status       JobStatus     `json:"status"`
	OutputAssets []OutputAsset `json:"outputAssets"`
}

func (j Job) IsComplete() bool {
	return j.Status == CompletedStatus
}

func (j Job) IsFailed() bool {
	return j.Status == FailedStatus
}

// JobEnvelope mirrors the provider's response shape - every job payload
// arrives wrapped under a "job" key.
type JobEnvelope struct {
	Job Job `json:"job"`
}

type MonthUsage struct {
	Month        string `json:"month"`
	TotalJobs    int    `json:"totalJobs"`
	TotalMinutes int    `json:"totalMinutes"`
}

type Usage struct {
	ClientID string       `json:"clientId"`
	Usage    []MonthUsage `json:"usage"`
}
