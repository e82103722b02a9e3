package config

type Separation struct {
	Host  string
	Token string

	// CallbackURL is forwarded on every job submission. The provider
	// supports push notification but in practice never calls back, so
	// completion is always discovered by polling.
	CallbackURL string
}

const SeparationHost = "https://groovy.audioshake.ai"
