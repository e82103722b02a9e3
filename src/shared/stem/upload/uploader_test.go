package upload_test

import (
	"context"

	"github.com/cockroachdb/errors/markers"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	catalogentity "github.com/veedubyou/audius-shake-be/src/shared/catalog/entity"
	"github.com/veedubyou/audius-shake-be/src/shared/separation"
	stementity "github.com/veedubyou/audius-shake-be/src/shared/stem/entity"
	"github.com/veedubyou/audius-shake-be/src/shared/stem/upload"
	"github.com/veedubyou/audius-shake-be/src/shared/testing/dummy"
)

var _ = Describe("Uploader", func() {
	var (
		dummyCatalog *dummy.Catalog
		dummyFetcher *dummy.AssetFetcher

		uploader upload.Uploader
		params   upload.Params
	)

	BeforeEach(func() {
		dummyCatalog = dummy.NewDummyCatalog()
		dummyFetcher = dummy.NewDummyAssetFetcher()
		uploader = upload.NewUploader(dummyCatalog, dummyFetcher)

		parent := catalogentity.Track{
			ID:        "parent-track",
			Title:     "Cool Song",
			Permalink: "/artist/cool-song",
			Genre:     "Electronic",
			Artwork:   catalogentity.Artwork{Small: "https://cdn.example.com/art.jpg"},
		}
		dummyCatalog.Tracks[parent.ID] = parent
		dummyFetcher.Files["https://cdn.example.com/art.jpg"] = []byte("jpg bytes")

		dummyFetcher.Files["https://assets.example.com/vocals.mp3"] = []byte("vocals audio")
		dummyFetcher.Files["https://assets.example.com/drums.mp3"] = []byte("drums audio")

		params = upload.Params{
			Track:  parent,
			UserID: "user-1",
			Stems: []stementity.CompletedStem{
				{
					Name: "vocals",
					OutputAssets: []separation.OutputAsset{
						{Name: "vocals.mp3", Link: "https://assets.example.com/vocals.mp3"},
					},
				},
				{
					Name: "drums",
					OutputAssets: []separation.OutputAsset{
						{Name: "drums.mp3", Link: "https://assets.example.com/drums.mp3"},
					},
				},
			},
		}
	})

	Describe("Sequential stem upload", func() {
		It("uploads every stem against the parent", func() {
			err := uploader.UploadStems(context.Background(), params)
			Expect(err).NotTo(HaveOccurred())

			Expect(dummyCatalog.Uploads).To(HaveLen(2))
			Expect(dummyCatalog.Uploads[0].Metadata.Title).To(Equal("vocals"))
			Expect(dummyCatalog.Uploads[1].Metadata.Title).To(Equal("drums"))

			for _, call := range dummyCatalog.Uploads {
				Expect(call.Metadata.StemOf.ParentTrackID).To(Equal("parent-track"))
				Expect(call.Metadata.IsDownloadable).To(BeTrue())
				Expect(call.Metadata.IsOriginalAvailable).To(BeTrue())
			}
		})

		It("uses the first output asset of each job", func() {
			params.Stems[0].OutputAssets = append(params.Stems[0].OutputAssets,
				separation.OutputAsset{Name: "vocals-alt.wav", Link: "https://assets.example.com/vocals-alt.wav"})

			err := uploader.UploadStems(context.Background(), params)
			Expect(err).NotTo(HaveOccurred())

			Expect(dummyCatalog.Uploads[0].TrackFile.Name).To(Equal("vocals.mp3"))
		})

		It("stops at the first failed stem", func() {
			delete(dummyFetcher.Files, "https://assets.example.com/drums.mp3")

			err := uploader.UploadStems(context.Background(), params)
			Expect(err).To(HaveOccurred())
			Expect(markers.Is(err, upload.StemUploadFailedMark)).To(BeTrue())

			// the first stem went through and stays committed
			Expect(dummyCatalog.Uploads).To(HaveLen(1))
		})

		It("rejects a stem with no output assets", func() {
			params.Stems[1].OutputAssets = nil

			err := uploader.UploadStems(context.Background(), params)
			Expect(err).To(HaveOccurred())
			Expect(markers.Is(err, upload.StemUploadFailedMark)).To(BeTrue())
		})
	})

	Describe("Download gate", func() {
		BeforeEach(func() {
			params.Monetization = &stementity.MonetizationTerms{Price: 250}
		})

		It("gates the parent after all stems are up", func() {
			err := uploader.UploadStems(context.Background(), params)
			Expect(err).NotTo(HaveOccurred())

			Expect(dummyCatalog.Updates).To(HaveLen(1))

			update := dummyCatalog.Updates[0]
			Expect(update.TrackID).To(Equal("parent-track"))
			Expect(update.Update.IsDownloadGated).To(BeTrue())
			Expect(update.Update.DownloadConditions.UsdcPurchase.Price).To(Equal(250))
		})

		It("defaults nil splits to an empty split map", func() {
			err := uploader.UploadStems(context.Background(), params)
			Expect(err).NotTo(HaveOccurred())

			splits := dummyCatalog.Updates[0].Update.DownloadConditions.UsdcPurchase.Splits
			Expect(splits).NotTo(BeNil())
			Expect(splits).To(BeEmpty())
		})

		It("reports a gate failure after a successful upload", func() {
			dummyCatalog.UpdateUnavailable = true

			err := uploader.UploadStems(context.Background(), params)
			Expect(err).To(HaveOccurred())

			Expect(dummyCatalog.Uploads).To(HaveLen(2))
		})

		It("skips the gate for a zero price", func() {
			params.Monetization = &stementity.MonetizationTerms{Price: 0}

			err := uploader.UploadStems(context.Background(), params)
			Expect(err).NotTo(HaveOccurred())
			Expect(dummyCatalog.Updates).To(BeEmpty())
		})
	})

	Describe("Cover art", func() {
		It("tolerates a missing artwork file", func() {
			delete(dummyFetcher.Files, "https://cdn.example.com/art.jpg")

			err := uploader.UploadStems(context.Background(), params)
			Expect(err).NotTo(HaveOccurred())

			for _, call := range dummyCatalog.Uploads {
				Expect(call.CoverArtFile.Contents).To(BeEmpty())
			}
		})

		It("skips the fetch when the parent has no artwork", func() {
			params.Track.Artwork = catalogentity.Artwork{}

			err := uploader.UploadStems(context.Background(), params)
			Expect(err).NotTo(HaveOccurred())

			// two stem fetches, no artwork fetch
			Expect(dummyFetcher.FetchCount).To(Equal(2))
		})
	})
})
