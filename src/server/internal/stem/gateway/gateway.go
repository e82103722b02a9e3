package stemgateway

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/veedubyou/audius-shake-be/src/server/internal/errors/api"
	"github.com/veedubyou/audius-shake-be/src/server/internal/errors/gateway"
	"github.com/veedubyou/audius-shake-be/src/server/internal/lib/request"
	stemerrors "github.com/veedubyou/audius-shake-be/src/server/internal/stem/errors"
	stemusecase "github.com/veedubyou/audius-shake-be/src/server/internal/stem/usecase"
	"github.com/veedubyou/audius-shake-be/src/shared/separation"
	stementity "github.com/veedubyou/audius-shake-be/src/shared/stem/entity"
)

type Gateway struct {
	usecase stemusecase.Usecase
}

func NewGateway(usecase stemusecase.Usecase) Gateway {
	return Gateway{
		usecase: usecase,
	}
}

type generateRequest struct {
	TrackID string `json:"trackId"`
}

func (g Gateway) Generate(c echo.Context) error {
	ctx := request.Context(c)

	body := generateRequest{}
	if err := c.Bind(&body); err != nil {
		err = errors.Wrap(err, "Failed to bind request body to generate request")
		apiErr := api.CommitError(err,
			stemerrors.BadRequestDataCode,
			"The generate request body was malformed")
		return gateway.ErrorResponse(c, apiErr)
	}

	jobs, apiErr := g.usecase.Generate(ctx, body.TrackID)
	if apiErr != nil {
		apiErr = api.WrapError(apiErr, "Failed to generate stem jobs")
		return gateway.ErrorResponse(c, apiErr)
	}

	// mirror the provider's submission shape: a list of {job} records
	envelopes := make([]separation.JobEnvelope, 0, len(jobs))
	for _, job := range jobs {
		envelopes = append(envelopes, separation.JobEnvelope{Job: job})
	}

	return c.JSON(http.StatusOK, envelopes)
}

func (g Gateway) Status(c echo.Context) error {
	ctx := request.Context(c)

	jobID := c.QueryParam("jobId")

	job, apiErr := g.usecase.Status(ctx, jobID)
	if apiErr != nil {
		apiErr = api.WrapError(apiErr, "Failed to fetch job status")
		return gateway.ErrorResponse(c, apiErr)
	}

	return c.JSON(http.StatusOK, separation.JobEnvelope{Job: job})
}

type stemPayload struct {
	Job struct {
		Metadata struct {
			Name string `json:"name"`
		} `json:"metadata"`
		OutputAssets []separation.OutputAsset `json:"outputAssets"`
	} `json:"job"`
}

type uploadRequest struct {
	TrackID     string        `json:"trackId"`
	UserID      string        `json:"userId"`
	IsMonetized bool          `json:"isMonetized"`
	Amount      int           `json:"amount"`
	Stems       []stemPayload `json:"stems"`
}

type permalinkResponse struct {
	Link string `json:"link"`
}

func (g Gateway) Upload(c echo.Context) error {
	ctx := request.Context(c)

	body := uploadRequest{}
	if err := c.Bind(&body); err != nil {
		err = errors.Wrap(err, "Failed to bind request body to upload request")
		apiErr := api.CommitError(err,
			stemerrors.BadRequestDataCode,
			"The upload request body was malformed")
		return gateway.ErrorResponse(c, apiErr)
	}

	stems := make([]stementity.CompletedStem, 0, len(body.Stems))
	for _, stem := range body.Stems {
		stems = append(stems, stementity.CompletedStem{
			Name:         stem.Job.Metadata.Name,
			OutputAssets: stem.Job.OutputAssets,
		})
	}

	var monetization *stementity.MonetizationTerms
	if body.IsMonetized {
		monetization = &stementity.MonetizationTerms{
			Price: body.Amount,
		}
	}

	permalink, apiErr := g.usecase.Upload(ctx, body.TrackID, body.UserID, stems, monetization)
	if apiErr != nil {
		apiErr = api.WrapError(apiErr, "Failed to upload stems")
		return gateway.ErrorResponse(c, apiErr)
	}

	return c.JSON(http.StatusOK, permalinkResponse{Link: permalink})
}

type monetizeRequest struct {
	TrackID string `json:"trackId"`
	UserID  string `json:"userId"`
	Amount  int    `json:"amount"`
}

func (g Gateway) Monetize(c echo.Context) error {
	ctx := request.Context(c)

	body := monetizeRequest{}
	if err := c.Bind(&body); err != nil {
		err = errors.Wrap(err, "Failed to bind request body to monetize request")
		apiErr := api.CommitError(err,
			stemerrors.BadRequestDataCode,
			"The monetize request body was malformed")
		return gateway.ErrorResponse(c, apiErr)
	}

	permalink, apiErr := g.usecase.Monetize(ctx, body.TrackID, body.UserID, body.Amount)
	if apiErr != nil {
		apiErr = api.WrapError(apiErr, "Failed to monetize the track")
		return gateway.ErrorResponse(c, apiErr)
	}

	return c.JSON(http.StatusOK, permalinkResponse{Link: permalink})
}

func (g Gateway) Usage(c echo.Context) error {
	ctx := request.Context(c)

	usage, apiErr := g.usecase.Usage(ctx)
	if apiErr != nil {
		apiErr = api.WrapError(apiErr, "Failed to fetch provider usage")
		return gateway.ErrorResponse(c, apiErr)
	}

	return c.JSON(http.StatusOK, usage)
}

type pipelineRequest struct {
	TrackID     string `json:"trackId"`
	UserID      string `json:"userId"`
	IsMonetized bool   `json:"isMonetized"`
	Amount      int    `json:"amount"`
}

func (g Gateway) StartPipeline(c echo.Context) error {
	ctx := request.Context(c)

	body := pipelineRequest{}
	if err := c.Bind(&body); err != nil {
		err = errors.Wrap(err, "Failed to bind request body to pipeline request")
		apiErr := api.CommitError(err,
			stemerrors.BadRequestDataCode,
			"The pipeline request body was malformed")
		return gateway.ErrorResponse(c, apiErr)
	}

	var monetization *stementity.MonetizationTerms
	if body.IsMonetized {
		monetization = &stementity.MonetizationTerms{
			Price: body.Amount,
		}
	}

	batch, apiErr := g.usecase.StartPipeline(ctx, body.TrackID, body.UserID, monetization)
	if apiErr != nil {
		apiErr = api.WrapError(apiErr, "Failed to start the stem pipeline")
		return gateway.ErrorResponse(c, apiErr)
	}

	return c.JSON(http.StatusOK, batch)
}
