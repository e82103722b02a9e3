package main

import (
	"strings"

	"github.com/veedubyou/audius-shake-be/src/server/application"
	"github.com/veedubyou/audius-shake-be/src/shared/config"
	"github.com/veedubyou/audius-shake-be/src/shared/lib/env"
	"github.com/veedubyou/audius-shake-be/src/shared/values/dev"
	"github.com/veedubyou/audius-shake-be/src/shared/values/envvar"
)

func main() {
	var appConfig application.Config

	switch env.Get() {
	case env.Production:
		commaSeparatedOrigins := envvar.MustGet("ALLOWED_FE_ORIGINS")
		allowedOrigins := strings.Split(commaSeparatedOrigins, ",")

		appConfig = application.Config{
			CatalogConfig: config.Catalog{
				Host:      config.CatalogHostForNetwork(envvar.MustGet(envvar.CATALOG_ENVIRONMENT)),
				APIKey:    envvar.MustGet(envvar.CATALOG_API_KEY),
				APISecret: envvar.MustGet(envvar.CATALOG_API_SECRET),
			},
			SeparationConfig: config.Separation{
				Host:        config.SeparationHost,
				Token:       envvar.MustGet(envvar.SEPARATION_TOKEN),
				CallbackURL: envvar.Get(envvar.SEPARATION_CALLBACK_URL),
			},
			RabbitMQURL:        envvar.MustGet(envvar.RABBITMQ_URL),
			RabbitMQQueueName:  envvar.MustGet(envvar.RABBITMQ_QUEUE_NAME),
			CORSAllowedOrigins: allowedOrigins,
			Port:               ":5000",
			Log:                true,
		}

	case env.Development:
		appConfig = application.Config{
			CatalogConfig: config.Catalog{
				Host:      config.StagingCatalogHost,
				APIKey:    envvar.MustGet(envvar.CATALOG_API_KEY),
				APISecret: envvar.MustGet(envvar.CATALOG_API_SECRET),
			},
			SeparationConfig: config.Separation{
				Host:        config.SeparationHost,
				Token:       envvar.MustGet(envvar.SEPARATION_TOKEN),
				CallbackURL: "",
			},
			RabbitMQURL:        dev.RabbitMQHost,
			RabbitMQQueueName:  dev.RabbitMQQueueName,
			CORSAllowedOrigins: []string{"*"},
			Port:               ":5000",
			Log:                true,
		}

	default:
		panic("Unexpected environment")
	}

	app := application.NewApp(appConfig)
	if err := app.Start(); err != nil {
		panic(err)
	}
}
