package application

import (
	"github.com/cockroachdb/errors"
	"github.com/rabbitmq/amqp091-go"
	"github.com/veedubyou/audius-shake-be/src/shared/catalog"
	"github.com/veedubyou/audius-shake-be/src/shared/config"
	"github.com/veedubyou/audius-shake-be/src/shared/lib/poll"
	"github.com/veedubyou/audius-shake-be/src/shared/separation"
	"github.com/veedubyou/audius-shake-be/src/shared/stem/upload"
	"github.com/veedubyou/audius-shake-be/src/worker/internal/application/jobs/job_router"
	"github.com/veedubyou/audius-shake-be/src/worker/internal/application/jobs/watch"
	"github.com/veedubyou/audius-shake-be/src/worker/internal/application/worker"
)

func must[T any](t T, err error) T {
	if err != nil {
		panic(err)
	}

	return t
}

type App struct {
	worker worker.QueueWorker
}

type Config struct {
	CatalogConfig     config.Catalog
	SeparationConfig  config.Separation
	RabbitMQURL       string
	RabbitMQQueueName string
	PollSpec          poll.Spec
}

func NewApp(config Config) App {
	consumerConn := must(amqp091.Dial(config.RabbitMQURL))

	return App{
		worker: newWorker(config, consumerConn),
	}
}

func (a *App) Start() error {
	err := a.worker.Start()
	if err != nil {
		return errors.Wrap(err, "Failed to start worker")
	}

	return nil
}

func (a *App) Stop() {
	a.worker.Stop()
}

func newWorker(config Config, consumerConn *amqp091.Connection) worker.QueueWorker {
	queueWorker := must(worker.NewQueueWorkerFromConnection(
		consumerConn,
		config.RabbitMQQueueName,
		newJobRouter(config)))

	return queueWorker
}

func newJobRouter(config Config) job_router.JobRouter {
	return job_router.NewJobRouter(newWatchJobHandler(config))
}

func newWatchJobHandler(config Config) watch.JobHandler {
	catalogClient := catalog.NewHTTPClient(config.CatalogConfig)
	separationClient := separation.NewHTTPClient(config.SeparationConfig)
	uploader := upload.NewUploader(catalogClient, upload.HTTPFetcher{})

	return watch.NewJobHandler(catalogClient, separationClient, uploader, config.PollSpec)
}
