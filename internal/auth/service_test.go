package auth_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/attendance-tracking/internal"
	"github.com/frahmantamala/attendance-tracking/internal/auth"
	"github.com/frahmantamala/attendance-tracking/internal/core/events"
	"github.com/frahmantamala/attendance-tracking/internal/devicelock"
	"github.com/frahmantamala/attendance-tracking/internal/user"
)

func TestAuth(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Suite")
}

type mockUserRepository struct {
	users map[string]*user.User
}

func (m *mockUserRepository) GetByID(id int64) (*user.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, internal.ErrUserNotFound
}

func (m *mockUserRepository) GetByUsername(username string) (*user.User, error) {
	u, ok := m.users[username]
	if !ok {
		return nil, internal.ErrUserNotFound
	}
	return u, nil
}

func (m *mockUserRepository) UpdateLastLogin(id int64) error { return nil }

type mockGuard struct {
	result devicelock.Result
	calls  int
}

func (m *mockGuard) Verify(ctx context.Context, u *user.User, fingerprint, ip string) devicelock.Result {
	m.calls++
	return m.result
}

type mockBus struct {
	published []events.Event
}

func (m *mockBus) Publish(ctx context.Context, event events.Event) error {
	m.published = append(m.published, event)
	return nil
}

var _ = Describe("AuthService", func() {
	var (
		repo     *mockUserRepository
		guard    *mockGuard
		bus      *mockBus
		tokenGen *auth.JWTTokenGenerator
		service  *auth.Service
		logger   *slog.Logger

		checkedOut []int64
	)

	hash := func(password string) string {
		h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())
		return string(h)
	}

	BeforeEach(func() {
		repo = &mockUserRepository{users: map[string]*user.User{
			"zain": {ID: 1, Username: "zain", Role: user.RoleUser, PasswordHash: hash("secret123")},
			"dev":  {ID: 3, Username: "dev", Role: user.RoleDeveloper, PasswordHash: hash("secret123")},
		}}
		guard = &mockGuard{}
		bus = &mockBus{}
		checkedOut = nil
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		tokenGen = auth.NewJWTTokenGenerator("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)

		logoutCheckout := func(ctx context.Context, u *user.User, ip string) error {
			checkedOut = append(checkedOut, u.ID)
			return nil
		}

		service = auth.NewService(repo, tokenGen, guard, logoutCheckout, bus, logger)
	})

	Describe("Login", func() {
		It("returns a token pair for valid credentials", func() {
			tokens, err := service.Login(context.Background(), auth.LoginDTO{Username: "zain", Password: "secret123"}, "Mozilla/5.0", "10.0.0.1")
			Expect(err).NotTo(HaveOccurred())
			Expect(tokens.AccessToken).NotTo(BeEmpty())
			Expect(tokens.RefreshToken).NotTo(BeEmpty())
			Expect(guard.calls).To(Equal(1))
		})

		It("rejects a wrong password", func() {
			_, err := service.Login(context.Background(), auth.LoginDTO{Username: "zain", Password: "wrong"}, "Mozilla/5.0", "10.0.0.1")
			Expect(err).To(Equal(auth.ErrInvalidCredentials))
		})

		It("rejects an unknown username", func() {
			_, err := service.Login(context.Background(), auth.LoginDTO{Username: "ghost", Password: "secret123"}, "Mozilla/5.0", "10.0.0.1")
			Expect(err).To(Equal(auth.ErrInvalidCredentials))
		})

		It("still logs in when the device guard flags the session", func() {
			guard.result = devicelock.Result{Flagged: true, Reason: devicelock.ReasonMismatch}

			tokens, err := service.Login(context.Background(), auth.LoginDTO{Username: "zain", Password: "secret123"}, "Mozilla/5.0", "10.0.0.1")
			Expect(err).NotTo(HaveOccurred())
			Expect(tokens.AccessToken).NotTo(BeEmpty())
		})

		It("publishes a login event for auditable roles only", func() {
			_, err := service.Login(context.Background(), auth.LoginDTO{Username: "zain", Password: "secret123"}, "Mozilla/5.0", "10.0.0.1")
			Expect(err).NotTo(HaveOccurred())
			Expect(bus.published).To(HaveLen(1))
			Expect(bus.published[0].EventType()).To(Equal(events.EventTypeUserLoggedIn))

			bus.published = nil
			_, err = service.Login(context.Background(), auth.LoginDTO{Username: "dev", Password: "secret123"}, "Mozilla/5.0", "10.0.0.1")
			Expect(err).NotTo(HaveOccurred())
			Expect(bus.published).To(BeEmpty())
		})
	})

	Describe("Logout", func() {
		It("forces an implicit check-out", func() {
			u := repo.users["zain"]
			Expect(service.Logout(context.Background(), u, "10.0.0.1")).To(Succeed())
			Expect(checkedOut).To(ConsistOf(int64(1)))
		})
	})

	Describe("RefreshTokens", func() {
		It("exchanges a refresh token for a new pair", func() {
			refreshToken, err := tokenGen.GenerateRefreshToken(1, user.RoleUser)
			Expect(err).NotTo(HaveOccurred())

			tokens, err := service.RefreshTokens(refreshToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(tokens.AccessToken).NotTo(BeEmpty())
		})

		It("rejects garbage tokens", func() {
			_, err := service.RefreshTokens("not-a-token")
			Expect(err).To(Equal(auth.ErrInvalidToken))
		})
	})

	Describe("ValidateAccessToken", func() {
		It("resolves the account behind a valid token", func() {
			accessToken, err := tokenGen.GenerateAccessToken(1, user.RoleUser)
			Expect(err).NotTo(HaveOccurred())

			u, err := service.ValidateAccessToken(accessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Username).To(Equal("zain"))
		})

		It("rejects tokens for deleted accounts", func() {
			accessToken, err := tokenGen.GenerateAccessToken(99, user.RoleUser)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.ValidateAccessToken(accessToken)
			Expect(err).To(Equal(auth.ErrInvalidToken))
		})
	})
})
