package config

// Catalog points at one of the hosting platform's networks. The platform
// runs a full staging clone of its API, so network selection is just a
// host swap - credentials are per-network.
type Catalog struct {
	Host      string
	APIKey    string
	APISecret string
}

const (
	StagingCatalogHost    = "https://api.staging.audius.co"
	ProductionCatalogHost = "https://api.audius.co"
)

func CatalogHostForNetwork(network string) string {
	switch network {
	case "staging":
		return StagingCatalogHost
	case "production":
		return ProductionCatalogHost
	default:
		panic("Unrecognized catalog network: " + network)
	}
}
