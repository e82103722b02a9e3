package stem_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	stemerrors "github.com/veedubyou/audius-shake-be/src/server/internal/stem/errors"
	stemgateway "github.com/veedubyou/audius-shake-be/src/server/internal/stem/gateway"
	stemusecase "github.com/veedubyou/audius-shake-be/src/server/internal/stem/usecase"
	catalogentity "github.com/veedubyou/audius-shake-be/src/shared/catalog/entity"
	"github.com/veedubyou/audius-shake-be/src/shared/separation"
	stementity "github.com/veedubyou/audius-shake-be/src/shared/stem/entity"
	"github.com/veedubyou/audius-shake-be/src/shared/stem/upload"
	"github.com/veedubyou/audius-shake-be/src/shared/testing"
	"github.com/veedubyou/audius-shake-be/src/shared/testing/dummy"
)

const (
	parentTrackID  = "parent-track"
	parentUserID   = "user-1"
	parentArtURL   = "https://cdn.example.com/art-150x150.jpg"
	parentStream   = "https://stream.example.com/parent.mp3"
	parentLink     = "/artist/cool-song"
	vocalsAssetURL = "https://assets.example.com/vocals.mp3"
)

var _ = Describe("Stem", func() {
	var (
		dummyCatalog    *dummy.Catalog
		dummySeparation *dummy.Separation
		dummyFetcher    *dummy.AssetFetcher
		dummyRabbit     *dummy.RabbitMQ

		gateway stemgateway.Gateway
	)

	BeforeEach(func() {
		dummyCatalog = dummy.NewDummyCatalog()
		dummySeparation = dummy.NewDummySeparation()
		dummyFetcher = dummy.NewDummyAssetFetcher()
		dummyRabbit = dummy.NewRabbitMQ()

		dummyCatalog.Tracks[parentTrackID] = catalogentity.Track{
			ID:        parentTrackID,
			Title:     "Cool Song",
			Permalink: parentLink,
			Genre:     "Electronic",
			Artwork:   catalogentity.Artwork{Small: parentArtURL},
			User:      catalogentity.User{ID: parentUserID, Handle: "artist"},
		}
		dummyCatalog.StreamURLs[parentTrackID] = parentStream

		dummyFetcher.Files[parentArtURL] = []byte("jpg bytes")

		uploader := upload.NewUploader(dummyCatalog, dummyFetcher)
		usecase := stemusecase.NewUsecase(dummyCatalog, dummySeparation, uploader, dummyRabbit)
		gateway = stemgateway.NewGateway(usecase)
	})

	var postGenerate = func(trackID string) *httptest.ResponseRecorder {
		request := testing.RequestFactory{
			Method:  "POST",
			Target:  "/generate",
			JSONObj: map[string]any{"trackId": trackID},
		}.MakeFake()

		response := httptest.NewRecorder()
		c := testing.PrepareEchoContext(request, response)

		err := gateway.Generate(c)
		Expect(err).NotTo(HaveOccurred())

		return response
	}

	var getStatus = func(jobID string) *httptest.ResponseRecorder {
		request := testing.RequestFactory{
			Method:  "GET",
			Target:  "/status?jobId=" + jobID,
			JSONObj: nil,
		}.MakeFake()

		response := httptest.NewRecorder()
		c := testing.PrepareEchoContext(request, response)

		err := gateway.Status(c)
		Expect(err).NotTo(HaveOccurred())

		return response
	}

	var stemPayload = func(name string, link string) map[string]any {
		return map[string]any{
			"job": map[string]any{
				"metadata": map[string]any{"name": name},
				"outputAssets": []map[string]any{
					{"name": name + ".mp3", "link": link},
				},
			},
		}
	}

	var postUpload = func(payload map[string]any) *httptest.ResponseRecorder {
		request := testing.RequestFactory{
			Method:  "POST",
			Target:  "/upload",
			JSONObj: payload,
		}.MakeFake()

		response := httptest.NewRecorder()
		c := testing.PrepareEchoContext(request, response)

		err := gateway.Upload(c)
		Expect(err).NotTo(HaveOccurred())

		return response
	}

	var postMonetize = func(trackID string, userID string, amount int) *httptest.ResponseRecorder {
		request := testing.RequestFactory{
			Method:  "POST",
			Target:  "/monetize",
			JSONObj: map[string]any{"trackId": trackID, "userId": userID, "amount": amount},
		}.MakeFake()

		response := httptest.NewRecorder()
		c := testing.PrepareEchoContext(request, response)

		err := gateway.Monetize(c)
		Expect(err).NotTo(HaveOccurred())

		return response
	}

	Describe("Generate", func() {
		Describe("Happy path", func() {
			var response *httptest.ResponseRecorder

			BeforeEach(func() {
				response = postGenerate(parentTrackID)
			})

			It("succeeds", func() {
				Expect(response.Code).To(Equal(http.StatusOK))
			})

			It("ingests the stream link exactly once", func() {
				Expect(dummySeparation.IngestCount).To(Equal(1))
			})

			It("submits one job per stem category", func() {
				envelopes := testing.DecodeJSON[[]separation.JobEnvelope](response.Body)
				Expect(envelopes).To(HaveLen(len(stementity.AllCategories)))

				for i, envelope := range envelopes {
					Expect(envelope.Job.ID).NotTo(BeEmpty())
					Expect(envelope.Job.Metadata.Name).To(Equal(string(stementity.AllCategories[i])))
				}
			})

			It("submits every job against the same ingested asset", func() {
				envelopes := testing.DecodeJSON[[]separation.JobEnvelope](response.Body)

				for _, envelope := range envelopes {
					Expect(envelope.Job.AssetID).To(Equal("asset-1"))
				}
			})

			It("ingests under the track title", func() {
				asset := dummySeparation.IngestedAssets["asset-1"]
				Expect(asset.Name).To(Equal("Cool Song"))
				Expect(asset.Link).To(Equal(parentStream))
			})
		})

		Describe("Track doesn't exist", func() {
			var response *httptest.ResponseRecorder

			BeforeEach(func() {
				response = postGenerate("no-such-track")
			})

			It("fails with the right error code", func() {
				resErr := testing.DecodeJSONError(response.Body)
				Expect(resErr.Code).To(BeEquivalentTo(stemerrors.TrackNotFoundCode))
			})

			It("fails with the right status code", func() {
				Expect(response.Code).To(Equal(http.StatusNotFound))
			})

			It("never reaches the separation provider", func() {
				Expect(dummySeparation.IngestCount).To(BeZero())
				Expect(dummySeparation.SubmitCount).To(BeZero())
			})
		})

		Describe("Track has no stream link", func() {
			var response *httptest.ResponseRecorder

			BeforeEach(func() {
				delete(dummyCatalog.StreamURLs, parentTrackID)
				response = postGenerate(parentTrackID)
			})

			It("fails with the right error code", func() {
				resErr := testing.DecodeJSONError(response.Body)
				Expect(resErr.Code).To(BeEquivalentTo(stemerrors.StreamURLNotFoundCode))
			})

			It("fails with the right status code", func() {
				Expect(response.Code).To(Equal(http.StatusNotFound))
			})

			It("never reaches the separation provider", func() {
				Expect(dummySeparation.IngestCount).To(BeZero())
			})
		})

		Describe("Empty track ID", func() {
			var response *httptest.ResponseRecorder

			BeforeEach(func() {
				response = postGenerate("")
			})

			It("fails with the right error code", func() {
				resErr := testing.DecodeJSONError(response.Body)
				Expect(resErr.Code).To(BeEquivalentTo(stemerrors.BadRequestDataCode))
			})

			It("fails with the right status code", func() {
				Expect(response.Code).To(Equal(http.StatusBadRequest))
			})
		})

		Describe("One category is rejected", func() {
			var response *httptest.ResponseRecorder

			BeforeEach(func() {
				dummySeparation.FailCategories[string(stementity.BassCategory)] = true
				response = postGenerate(parentTrackID)
			})

			It("fails the whole batch", func() {
				resErr := testing.DecodeJSONError(response.Body)
				Expect(resErr.Code).To(BeEquivalentTo(stemerrors.SeparationUpstreamCode))
				Expect(response.Code).To(Equal(http.StatusInternalServerError))
			})
		})

		Describe("Provider is down", func() {
			var response *httptest.ResponseRecorder

			BeforeEach(func() {
				dummySeparation.Unavailable = true
				response = postGenerate(parentTrackID)
			})

			It("fails with the right error code", func() {
				resErr := testing.DecodeJSONError(response.Body)
				Expect(resErr.Code).To(BeEquivalentTo(stemerrors.SeparationUpstreamCode))
				Expect(response.Code).To(Equal(http.StatusInternalServerError))
			})
		})
	})

	Describe("Status", func() {
		BeforeEach(func() {
			dummySeparation.Jobs["job-1"] = separation.Job{
				ID:      "job-1",
				AssetID: "asset-1",
				Metadata: separation.JobMetadata{
					Format: "mp3",
					Name:   "vocals",
				},
				Status: separation.ProcessingStatus,
			}
		})

		Describe("Pending job", func() {
			It("reports the job as is", func() {
				response := getStatus("job-1")
				Expect(response.Code).To(Equal(http.StatusOK))

				envelope := testing.DecodeJSON[separation.JobEnvelope](response.Body)
				Expect(envelope.Job.ID).To(Equal("job-1"))
				Expect(envelope.Job.Status).To(Equal(separation.ProcessingStatus))
				Expect(envelope.Job.OutputAssets).To(BeEmpty())
			})
		})

		Describe("Completed job", func() {
			BeforeEach(func() {
				dummySeparation.CompleteJob("job-1", []separation.OutputAsset{
					{Name: "vocals.mp3", Link: vocalsAssetURL},
				})
			})

			It("reports the outputs", func() {
				response := getStatus("job-1")
				Expect(response.Code).To(Equal(http.StatusOK))

				envelope := testing.DecodeJSON[separation.JobEnvelope](response.Body)
				Expect(envelope.Job.Status).To(Equal(separation.CompletedStatus))
				Expect(envelope.Job.OutputAssets).To(HaveLen(1))
				Expect(envelope.Job.OutputAssets[0].Link).To(Equal(vocalsAssetURL))
			})

			It("reports the same result on repeated polls", func() {
				first := testing.DecodeJSON[separation.JobEnvelope](getStatus("job-1").Body)
				second := testing.DecodeJSON[separation.JobEnvelope](getStatus("job-1").Body)
				Expect(first).To(Equal(second))
			})
		})

		Describe("Unknown job", func() {
			It("fails with the right error code", func() {
				response := getStatus("no-such-job")

				resErr := testing.DecodeJSONError(response.Body)
				Expect(resErr.Code).To(BeEquivalentTo(stemerrors.JobNotFoundCode))
				Expect(response.Code).To(Equal(http.StatusNotFound))
			})
		})

		Describe("Empty job ID", func() {
			It("fails with the right error code", func() {
				response := getStatus("")

				resErr := testing.DecodeJSONError(response.Body)
				Expect(resErr.Code).To(BeEquivalentTo(stemerrors.BadRequestDataCode))
				Expect(response.Code).To(Equal(http.StatusBadRequest))
			})
		})
	})

	Describe("Upload", func() {
		var (
			payload   map[string]any
			stemNames []string
			stemLinks map[string]string
		)

		BeforeEach(func() {
			stemNames = []string{"vocals", "instrumental", "bass", "drums"}
			stemLinks = make(map[string]string)

			stems := []map[string]any{}
			for _, name := range stemNames {
				link := "https://assets.example.com/" + name + ".mp3"
				stemLinks[name] = link
				dummyFetcher.Files[link] = []byte(name + " audio")
				stems = append(stems, stemPayload(name, link))
			}

			payload = map[string]any{
				"trackId": parentTrackID,
				"userId":  parentUserID,
				"stems":   stems,
			}
		})

		Describe("Happy path", func() {
			var response *httptest.ResponseRecorder

			BeforeEach(func() {
				response = postUpload(payload)
			})

			It("returns the parent permalink", func() {
				Expect(response.Code).To(Equal(http.StatusOK))

				link := testing.DecodeJSON[map[string]string](response.Body)
				Expect(link["link"]).To(Equal(parentLink))
			})

			It("uploads one track per stem in order", func() {
				Expect(dummyCatalog.Uploads).To(HaveLen(len(stemNames)))

				for i, call := range dummyCatalog.Uploads {
					Expect(call.Metadata.Title).To(Equal(stemNames[i]))
					Expect(call.UserID).To(Equal(parentUserID))
				}
			})

			It("attaches each stem to the parent with its mapped category", func() {
				expectedCategories := []catalogentity.StemCategory{
					catalogentity.LeadVocalsCategory,
					catalogentity.InstrumentalCategory,
					catalogentity.BassCategory,
					catalogentity.PercussionCategory,
				}

				for i, call := range dummyCatalog.Uploads {
					Expect(call.Metadata.StemOf).NotTo(BeNil())
					Expect(call.Metadata.StemOf.ParentTrackID).To(Equal(parentTrackID))
					Expect(call.Metadata.StemOf.Category).To(Equal(expectedCategories[i]))
				}
			})

			It("carries the stem audio and the parent artwork", func() {
				for i, call := range dummyCatalog.Uploads {
					Expect(call.TrackFile.Contents).To(Equal([]byte(stemNames[i] + " audio")))
					Expect(call.CoverArtFile.Contents).To(Equal([]byte("jpg bytes")))
				}
			})

			It("inherits the parent genre", func() {
				for _, call := range dummyCatalog.Uploads {
					Expect(call.Metadata.Genre).To(Equal("Electronic"))
				}
			})

			It("does not touch the parent track", func() {
				Expect(dummyCatalog.Updates).To(BeEmpty())
			})
		})

		Describe("Unrecognized stem name", func() {
			BeforeEach(func() {
				link := "https://assets.example.com/piano.mp3"
				dummyFetcher.Files[link] = []byte("piano audio")

				payload["stems"] = append(payload["stems"].([]map[string]any), stemPayload("piano", link))
				postUpload(payload)
			})

			It("maps it to the catch-all category", func() {
				Expect(dummyCatalog.Uploads).To(HaveLen(5))

				lastCall := dummyCatalog.Uploads[4]
				Expect(lastCall.Metadata.StemOf.Category).To(Equal(catalogentity.OtherCategory))
			})
		})

		Describe("Artwork can't be fetched", func() {
			BeforeEach(func() {
				delete(dummyFetcher.Files, parentArtURL)
			})

			It("still uploads the stems, without cover art", func() {
				response := postUpload(payload)
				Expect(response.Code).To(Equal(http.StatusOK))

				Expect(dummyCatalog.Uploads).To(HaveLen(len(stemNames)))
				for _, call := range dummyCatalog.Uploads {
					Expect(call.CoverArtFile.Contents).To(BeEmpty())
				}
			})
		})

		Describe("Monetized upload", func() {
			var response *httptest.ResponseRecorder

			BeforeEach(func() {
				payload["isMonetized"] = true
				payload["amount"] = 250
				response = postUpload(payload)
			})

			It("succeeds", func() {
				Expect(response.Code).To(Equal(http.StatusOK))
			})

			It("gates the parent track exactly once", func() {
				Expect(dummyCatalog.Updates).To(HaveLen(1))

				update := dummyCatalog.Updates[0]
				Expect(update.TrackID).To(Equal(parentTrackID))
				Expect(update.Update.IsDownloadGated).To(BeTrue())
				Expect(update.Update.DownloadConditions).NotTo(BeNil())
				Expect(update.Update.DownloadConditions.UsdcPurchase.Price).To(Equal(250))
			})

			It("uploads all the stems first", func() {
				Expect(dummyCatalog.Uploads).To(HaveLen(len(stemNames)))
			})
		})

		Describe("Catalog rejects an upload", func() {
			var response *httptest.ResponseRecorder

			BeforeEach(func() {
				dummyCatalog.UploadUnavailable = true
				response = postUpload(payload)
			})

			It("fails with the right error code", func() {
				resErr := testing.DecodeJSONError(response.Body)
				Expect(resErr.Code).To(BeEquivalentTo(stemerrors.StemUploadFailedCode))
				Expect(response.Code).To(Equal(http.StatusInternalServerError))
			})

			It("never applies the download gate", func() {
				Expect(dummyCatalog.Updates).To(BeEmpty())
			})
		})

		Describe("No stems provided", func() {
			It("fails with the right error code", func() {
				payload["stems"] = []map[string]any{}
				response := postUpload(payload)

				resErr := testing.DecodeJSONError(response.Body)
				Expect(resErr.Code).To(BeEquivalentTo(stemerrors.BadRequestDataCode))
				Expect(response.Code).To(Equal(http.StatusBadRequest))
			})
		})

		Describe("Missing user ID", func() {
			It("fails with the right error code", func() {
				payload["userId"] = ""
				response := postUpload(payload)

				resErr := testing.DecodeJSONError(response.Body)
				Expect(resErr.Code).To(BeEquivalentTo(stemerrors.BadRequestDataCode))
				Expect(response.Code).To(Equal(http.StatusBadRequest))
			})
		})
	})

	Describe("Monetize", func() {
		Describe("Happy path", func() {
			var response *httptest.ResponseRecorder

			BeforeEach(func() {
				response = postMonetize(parentTrackID, parentUserID, 199)
			})

			It("returns the parent permalink", func() {
				Expect(response.Code).To(Equal(http.StatusOK))

				link := testing.DecodeJSON[map[string]string](response.Body)
				Expect(link["link"]).To(Equal(parentLink))
			})

			It("applies the download gate", func() {
				Expect(dummyCatalog.Updates).To(HaveLen(1))

				update := dummyCatalog.Updates[0]
				Expect(update.UserID).To(Equal(parentUserID))
				Expect(update.Update.IsDownloadGated).To(BeTrue())
				Expect(update.Update.DownloadConditions.UsdcPurchase.Price).To(Equal(199))
				Expect(update.Update.DownloadConditions.UsdcPurchase.Splits).To(BeEmpty())
			})
		})

		Describe("Zero amount", func() {
			var response *httptest.ResponseRecorder

			BeforeEach(func() {
				response = postMonetize(parentTrackID, parentUserID, 0)
			})

			It("fails with the right error code", func() {
				resErr := testing.DecodeJSONError(response.Body)
				Expect(resErr.Code).To(BeEquivalentTo(stemerrors.InvalidAmountCode))
				Expect(response.Code).To(Equal(http.StatusBadRequest))
			})

			It("never calls the catalog service", func() {
				Expect(dummyCatalog.Updates).To(BeEmpty())
			})
		})

		Describe("Negative amount", func() {
			It("fails with the right error code", func() {
				response := postMonetize(parentTrackID, parentUserID, -50)

				resErr := testing.DecodeJSONError(response.Body)
				Expect(resErr.Code).To(BeEquivalentTo(stemerrors.InvalidAmountCode))
			})
		})

		Describe("Track doesn't exist", func() {
			It("fails with the right error code", func() {
				response := postMonetize("no-such-track", parentUserID, 199)

				resErr := testing.DecodeJSONError(response.Body)
				Expect(resErr.Code).To(BeEquivalentTo(stemerrors.TrackNotFoundCode))
				Expect(response.Code).To(Equal(http.StatusNotFound))
			})
		})
	})

	Describe("Usage", func() {
		BeforeEach(func() {
			dummySeparation.CannedUsage = separation.Usage{
				ClientID: "client-1",
				Usage: []separation.MonthUsage{
					{Month: "2026-08", TotalJobs: 42, TotalMinutes: 180},
				},
			}
		})

		It("passes the provider's usage report through", func() {
			request := testing.RequestFactory{
				Method:  "GET",
				Target:  "/usage",
				JSONObj: nil,
			}.MakeFake()

			response := httptest.NewRecorder()
			c := testing.PrepareEchoContext(request, response)

			err := gateway.Usage(c)
			Expect(err).NotTo(HaveOccurred())
			Expect(response.Code).To(Equal(http.StatusOK))

			usage := testing.DecodeJSON[separation.Usage](response.Body)
			Expect(usage).To(Equal(dummySeparation.CannedUsage))
		})

		It("fails when the provider is down", func() {
			dummySeparation.Unavailable = true

			request := testing.RequestFactory{
				Method:  "GET",
				Target:  "/usage",
				JSONObj: nil,
			}.MakeFake()

			response := httptest.NewRecorder()
			c := testing.PrepareEchoContext(request, response)

			err := gateway.Usage(c)
			Expect(err).NotTo(HaveOccurred())

			resErr := testing.DecodeJSONError(response.Body)
			Expect(resErr.Code).To(BeEquivalentTo(stemerrors.SeparationUpstreamCode))
			Expect(response.Code).To(Equal(http.StatusInternalServerError))
		})
	})

	Describe("Pipeline", func() {
		var postPipeline = func(payload map[string]any) *httptest.ResponseRecorder {
			request := testing.RequestFactory{
				Method:  "POST",
				Target:  "/pipeline",
				JSONObj: payload,
			}.MakeFake()

			response := httptest.NewRecorder()
			c := testing.PrepareEchoContext(request, response)

			err := gateway.StartPipeline(c)
			Expect(err).NotTo(HaveOccurred())

			return response
		}

		Describe("Happy path", func() {
			var (
				response *httptest.ResponseRecorder
				batch    stemusecase.StemBatch
			)

			BeforeEach(func() {
				response = postPipeline(map[string]any{
					"trackId":     parentTrackID,
					"userId":      parentUserID,
					"isMonetized": true,
					"amount":      250,
				})

				batch = testing.DecodeJSON[stemusecase.StemBatch](response.Body)
			})

			It("succeeds", func() {
				Expect(response.Code).To(Equal(http.StatusOK))
			})

			It("returns the submitted batch", func() {
				Expect(batch.BatchID).NotTo(BeEmpty())
				Expect(batch.TrackID).To(Equal(parentTrackID))
				Expect(batch.UserID).To(Equal(parentUserID))
				Expect(batch.IsMonetized).To(BeTrue())
				Expect(batch.Amount).To(Equal(250))
				Expect(batch.Jobs).To(HaveLen(len(stementity.AllCategories)))
			})

			It("publishes exactly one queue message for the batch", func() {
				Expect(dummyRabbit.MessageChannel).To(HaveLen(1))

				message := <-dummyRabbit.MessageChannel
				Expect(message.Type).To(Equal(stemusecase.WatchStemsJobType))

				queuedBatch := stemusecase.StemBatch{}
				err := json.Unmarshal(message.Body, &queuedBatch)
				Expect(err).NotTo(HaveOccurred())
				Expect(queuedBatch).To(Equal(batch))
			})
		})

		Describe("Missing user ID", func() {
			var response *httptest.ResponseRecorder

			BeforeEach(func() {
				response = postPipeline(map[string]any{
					"trackId": parentTrackID,
				})
			})

			It("fails with the right error code", func() {
				resErr := testing.DecodeJSONError(response.Body)
				Expect(resErr.Code).To(BeEquivalentTo(stemerrors.BadRequestDataCode))
				Expect(response.Code).To(Equal(http.StatusBadRequest))
			})

			It("submits nothing and publishes nothing", func() {
				Expect(dummySeparation.SubmitCount).To(BeZero())
				Expect(dummyRabbit.MessageChannel).To(BeEmpty())
			})
		})

		Describe("Queue is down", func() {
			BeforeEach(func() {
				dummyRabbit.Unavailable = true
			})

			It("fails the request", func() {
				response := postPipeline(map[string]any{
					"trackId": parentTrackID,
					"userId":  parentUserID,
				})

				Expect(response.Code).To(Equal(http.StatusInternalServerError))
			})
		})
	})
})
