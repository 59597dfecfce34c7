package location_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/attendance-tracking/internal/auth"
	"github.com/frahmantamala/attendance-tracking/internal/location"
	"github.com/frahmantamala/attendance-tracking/internal/user"
)

var _ = Describe("LocationHandler", func() {
	var (
		repo    *mockLocationRepository
		users   *mockUserGetter
		handler *location.Handler
		router  *chi.Mux
	)

	regular := &user.User{ID: 1, Username: "zain", Role: user.RoleUser, LocationEnabled: true}
	coworker := &user.User{ID: 2, Username: "sara", Role: user.RoleUser, LocationEnabled: true}
	master := &user.User{ID: 10, Username: "boss", Role: user.RoleMaster}
	developer := &user.User{ID: 3, Username: "dev", Role: user.RoleDeveloper}

	getAs := func(viewer *user.User, path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req = req.WithContext(auth.ContextWithUser(req.Context(), viewer))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	BeforeEach(func() {
		repo = newMockLocationRepository()
		users = &mockUserGetter{users: map[int64]*user.User{
			1:  regular,
			2:  coworker,
			3:  developer,
			10: master,
		}}
		attend := &mockAttendanceChecker{checkedIn: map[int64]bool{}}

		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service := location.NewService(repo, attend, users, nil, nil, 72*time.Hour, slogger)
		handler = location.NewHandler(service)

		router = chi.NewRouter()
		router.Get("/locations/users/{id}", handler.UserLocation)

		repo.Append(&location.Sample{UserID: 2, Latitude: 24.8607, Longitude: 67.0011, RecordedAt: time.Now()})
	})

	Describe("UserLocation", func() {
		It("denies a regular user looking up a coworker", func() {
			w := getAs(regular, "/locations/users/2")
			Expect(w.Code).To(Equal(http.StatusForbidden))
		})

		It("lets a user look up their own position", func() {
			repo.Append(&location.Sample{UserID: 1, Latitude: 24.9, Longitude: 67.1, RecordedAt: time.Now()})

			w := getAs(regular, "/locations/users/1")
			Expect(w.Code).To(Equal(http.StatusOK))
		})

		It("lets an admin role look up any user", func() {
			w := getAs(master, "/locations/users/2")
			Expect(w.Code).To(Equal(http.StatusOK))
		})

		It("hides developers from a master viewer", func() {
			w := getAs(master, "/locations/users/3")
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})

		It("rejects a malformed user id", func() {
			w := getAs(master, "/locations/users/abc")
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})
})
