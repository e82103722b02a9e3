package application

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	stemgateway "github.com/veedubyou/audius-shake-be/src/server/internal/stem/gateway"
	stemusecase "github.com/veedubyou/audius-shake-be/src/server/internal/stem/usecase"
	"github.com/veedubyou/audius-shake-be/src/shared/catalog"
	"github.com/veedubyou/audius-shake-be/src/shared/config"
	"github.com/veedubyou/audius-shake-be/src/shared/lib/rabbitmq"
	"github.com/veedubyou/audius-shake-be/src/shared/separation"
	"github.com/veedubyou/audius-shake-be/src/shared/stem/upload"
)

type HTTPMethod string

const (
	GET    HTTPMethod = "GET"
	POST   HTTPMethod = "POST"
	PUT    HTTPMethod = "PUT"
	DELETE HTTPMethod = "DELETE"
)

type App struct {
	echo *echo.Echo
	port string
}

type Config struct {
	CatalogConfig      config.Catalog
	SeparationConfig   config.Separation
	RabbitMQURL        string
	RabbitMQQueueName  string
	CORSAllowedOrigins []string
	Port               string
	Log                bool
}

func NewApp(config Config) App {
	e := echo.New()

	if config.Log {
		e.Use(middleware.Logger())
	}

	corsMiddleware := makeCorsMiddleware(config)

	handleRoute := func(method HTTPMethod, path string, handlerFunc echo.HandlerFunc) {
		params := func() (string, echo.HandlerFunc, echo.MiddlewareFunc) {
			return path, handlerFunc, corsMiddleware
		}

		e.OPTIONS(params())

		switch method {
		case GET:
			e.GET(params())
		case POST:
			e.POST(params())
		case PUT:
			e.PUT(params())
		case DELETE:
			e.DELETE(params())
		default:
			panic("unhandled http method!")
		}
	}

	stemGateway := makeStemGateway(config)

	// health check
	handleRoute(GET, "/health-check", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	// stem generation routes
	handleRoute(POST, "/generate", stemGateway.Generate)
	handleRoute(GET, "/status", stemGateway.Status)
	handleRoute(POST, "/upload", stemGateway.Upload)
	handleRoute(POST, "/monetize", stemGateway.Monetize)
	handleRoute(GET, "/usage", stemGateway.Usage)
	handleRoute(POST, "/pipeline", stemGateway.StartPipeline)

	return App{
		echo: e,
		port: config.Port,
	}
}

func (a *App) Start() error {
	err := a.echo.Start(a.port)
	if err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "Couldn't start echo server")
	}

	return nil
}

func (a *App) Stop() error {
	err := a.echo.Close()
	if err != nil {
		return errors.Wrap(err, "Failed to stop echo server")
	}

	return nil
}

func makeStemGateway(appConfig Config) stemgateway.Gateway {
	catalogClient := catalog.NewHTTPClient(appConfig.CatalogConfig)
	separationClient := separation.NewHTTPClient(appConfig.SeparationConfig)
	uploader := upload.NewUploader(catalogClient, upload.HTTPFetcher{})
	publisher := makeRabbitMQPublisher(appConfig)

	usecase := stemusecase.NewUsecase(catalogClient, separationClient, uploader, publisher)
	return stemgateway.NewGateway(usecase)
}

func makeRabbitMQPublisher(config Config) rabbitmq.Publisher {
	publisher, err := rabbitmq.NewQueuePublisher(config.RabbitMQURL, config.RabbitMQQueueName)
	if err != nil {
		panic(errors.Wrap(err, "Failed to create rabbitMQ publisher"))
	}

	return publisher
}

func makeCorsMiddleware(config Config) echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: config.CORSAllowedOrigins,
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	})
}
