package poll_test

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/errors/markers"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/veedubyou/audius-shake-be/src/shared/lib/poll"
)

var _ = Describe("Poll", func() {
	var (
		spec     poll.Spec
		attempts int
	)

	BeforeEach(func() {
		attempts = 0
		spec = poll.Spec{
			Interval:    time.Millisecond,
			MaxDuration: 100 * time.Millisecond,
		}
	})

	Describe("Condition settles immediately", func() {
		It("returns without waiting", func() {
			err := poll.Poll(context.Background(), spec, func(ctx context.Context) (bool, error) {
				attempts++
				return true, nil
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(attempts).To(Equal(1))
		})
	})

	Describe("Condition settles after a few attempts", func() {
		It("keeps polling until done", func() {
			err := poll.Poll(context.Background(), spec, func(ctx context.Context) (bool, error) {
				attempts++
				return attempts >= 3, nil
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(attempts).To(Equal(3))
		})
	})

	Describe("Terminal error", func() {
		It("stops polling and returns the error", func() {
			terminalErr := errors.New("it's broken")

			err := poll.Poll(context.Background(), spec, func(ctx context.Context) (bool, error) {
				attempts++
				return false, terminalErr
			})

			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, terminalErr)).To(BeTrue())
			Expect(attempts).To(Equal(1))
		})
	})

	Describe("Condition never settles", func() {
		BeforeEach(func() {
			spec.MaxDuration = 10 * time.Millisecond
		})

		It("gives up with a timeout mark", func() {
			err := poll.Poll(context.Background(), spec, func(ctx context.Context) (bool, error) {
				attempts++
				return false, nil
			})

			Expect(err).To(HaveOccurred())
			Expect(markers.Is(err, poll.TimeoutMark)).To(BeTrue())
			Expect(attempts).To(BeNumerically(">", 1))
		})
	})

	Describe("Context cancelled mid-poll", func() {
		It("returns the context error", func() {
			ctx, cancel := context.WithCancel(context.Background())

			err := poll.Poll(ctx, spec, func(ctx context.Context) (bool, error) {
				cancel()
				return false, nil
			})

			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		})
	})
})
