package location_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/attendance-tracking/internal/location"
)

var _ = Describe("Client", func() {
	var logger *slog.Logger

	BeforeEach(func() {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	})

	Describe("PushLocation", func() {
		It("issues a PUT with the longitude_latitude path segment", func() {
			var gotMethod, gotPath string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotMethod = r.Method
				gotPath = r.URL.Path
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			client := location.NewClient(server.URL, 2*time.Second, logger)
			err := client.PushLocation(context.Background(), "zain", 24.8607, 67.0011)
			Expect(err).NotTo(HaveOccurred())
			Expect(gotMethod).To(Equal(http.MethodPut))
			Expect(gotPath).To(Equal("/location/zain/67.001100_24.860700"))
		})

		It("surfaces upstream failures", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			}))
			defer server.Close()

			client := location.NewClient(server.URL, 2*time.Second, logger)
			err := client.PushLocation(context.Background(), "zain", 24.8607, 67.0011)
			Expect(err).To(HaveOccurred())
		})

		It("is a no-op without a configured base URL", func() {
			client := location.NewClient("", 2*time.Second, logger)
			Expect(client.PushLocation(context.Background(), "zain", 24.8607, 67.0011)).To(Succeed())
		})
	})

	Describe("FetchLocation", func() {
		It("decodes the remote position", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Path).To(Equal("/location/zain"))
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"username":"zain","latitude":24.8607,"longitude":67.0011}`))
			}))
			defer server.Close()

			client := location.NewClient(server.URL, 2*time.Second, logger)
			remote, err := client.FetchLocation(context.Background(), "zain")
			Expect(err).NotTo(HaveOccurred())
			Expect(remote).NotTo(BeNil())
			Expect(remote.Latitude).To(Equal(24.8607))
			Expect(remote.Longitude).To(Equal(67.0011))
		})

		It("maps not-found to no location", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			}))
			defer server.Close()

			client := location.NewClient(server.URL, 2*time.Second, logger)
			remote, err := client.FetchLocation(context.Background(), "ghost")
			Expect(err).NotTo(HaveOccurred())
			Expect(remote).To(BeNil())
		})
	})

	Describe("Geocoder", func() {
		It("returns the display name from the reverse lookup", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Path).To(Equal("/reverse"))
				Expect(r.URL.Query().Get("format")).To(Equal("json"))
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"display_name":"Shahrah-e-Faisal, Karachi"}`))
			}))
			defer server.Close()

			geocoder := location.NewGeocoder(server.URL, 2*time.Second, logger)
			Expect(geocoder.ReverseGeocode(context.Background(), 24.8607, 67.0011)).To(Equal("Shahrah-e-Faisal, Karachi"))
		})

		It("degrades to unknown on upstream errors", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			}))
			defer server.Close()

			geocoder := location.NewGeocoder(server.URL, 2*time.Second, logger)
			Expect(geocoder.ReverseGeocode(context.Background(), 24.8607, 67.0011)).To(Equal(location.AddressUnknown))
		})
	})
})
