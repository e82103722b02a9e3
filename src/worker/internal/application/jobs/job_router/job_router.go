package job_router

import (
	"github.com/cockroachdb/errors"
	"github.com/rabbitmq/amqp091-go"
	"github.com/veedubyou/audius-shake-be/src/worker/internal/application/jobs/watch"
)

type JobRouter struct {
	watchJobHandler watch.WatchJobHandler
}

func NewJobRouter(watchJobHandler watch.WatchJobHandler) JobRouter {
	return JobRouter{
		watchJobHandler: watchJobHandler,
	}
}

func (j JobRouter) HandleMessage(message amqp091.Delivery) error {
	switch message.Type {
	case watch.JobType:
		err := j.watchJobHandler.HandleWatchJob(message.Body)
		if err != nil {
			return errors.Wrap(err, watch.ErrorMessage)
		}

		return nil

	default:
		return errors.Newf("Unrecognized message type: %s", message.Type)
	}
}
