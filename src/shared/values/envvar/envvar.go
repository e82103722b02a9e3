package envvar

import (
	"fmt"
	"os"
)

const (
	CATALOG_ENVIRONMENT     = "CATALOG_ENVIRONMENT"
	CATALOG_API_KEY         = "CATALOG_API_KEY"
	CATALOG_API_SECRET      = "CATALOG_API_SECRET"
	SEPARATION_TOKEN        = "SEPARATION_TOKEN"
	SEPARATION_CALLBACK_URL = "SEPARATION_CALLBACK_URL"
	RABBITMQ_URL            = "RABBITMQ_URL"
	RABBITMQ_QUEUE_NAME     = "RABBITMQ_QUEUE_NAME"
)

func MustGet(key string) string {
	val, isSet := os.LookupEnv(key)
	if !isSet {
		panic(fmt.Sprintf("No env variable found for key %s", key))
	}

	if val == "" {
		panic(fmt.Sprintf("Env variable is empty for key %s", key))
	}

	return val
}

// Get is for optional vars - the separation callback URL is declared in
// the provider interface but the polling flow never consumes it.
func Get(key string) string {
	val, _ := os.LookupEnv(key)
	return val
}
