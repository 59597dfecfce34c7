package devicelock_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/attendance-tracking/internal/devicelock"
	"github.com/frahmantamala/attendance-tracking/internal/user"
)

func TestDeviceLock(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "DeviceLock Suite")
}

// Mock repository over the users table slice the guard needs
type mockDeviceRepository struct {
	bindings map[int64]string
	flags    map[int64]string
}

func newMockDeviceRepository() *mockDeviceRepository {
	return &mockDeviceRepository{
		bindings: make(map[int64]string),
		flags:    make(map[int64]string),
	}
}

func (m *mockDeviceRepository) BindDevice(id int64, fingerprint string) error {
	m.bindings[id] = fingerprint
	return nil
}

func (m *mockDeviceRepository) FlagDevice(id int64, reason string) error {
	m.flags[id] = reason
	return nil
}

func (m *mockDeviceRepository) OtherUserBoundTo(fingerprint string, excludeUserID int64) (bool, error) {
	for id, fp := range m.bindings {
		if id != excludeUserID && fp == fingerprint {
			return true, nil
		}
	}
	return false, nil
}

var _ = Describe("Guard", func() {
	var (
		repo   *mockDeviceRepository
		guard  *devicelock.Guard
		logger *slog.Logger
	)

	fpr := func(ua, ip string) string { return devicelock.Fingerprint(ua, ip) }

	BeforeEach(func() {
		repo = newMockDeviceRepository()
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		guard = devicelock.NewGuard(repo, nil, logger)
	})

	Describe("Verify", func() {
		It("binds the first presented device for a regular user", func() {
			u := &user.User{ID: 1, Username: "zain", Role: user.RoleUser}

			result := guard.Verify(context.Background(), u, fpr("firefox", "10.0.0.1"), "10.0.0.1")
			Expect(result.Bound).To(BeTrue())
			Expect(result.Flagged).To(BeFalse())
			Expect(repo.bindings).To(HaveKey(int64(1)))
			Expect(u.DeviceFingerprint).NotTo(BeNil())
		})

		It("passes silently when the bound device returns", func() {
			u := &user.User{ID: 1, Username: "zain", Role: user.RoleUser}
			fp := fpr("firefox", "10.0.0.1")

			guard.Verify(context.Background(), u, fp, "10.0.0.1")
			result := guard.Verify(context.Background(), u, fp, "10.0.0.1")
			Expect(result).To(Equal(devicelock.Result{}))
			Expect(repo.flags).To(BeEmpty())
		})

		It("flags a login from a different device", func() {
			u := &user.User{ID: 1, Username: "zain", Role: user.RoleUser}

			guard.Verify(context.Background(), u, fpr("firefox", "10.0.0.1"), "10.0.0.1")
			result := guard.Verify(context.Background(), u, fpr("chrome", "10.0.0.9"), "10.0.0.9")

			Expect(result.Flagged).To(BeTrue())
			Expect(result.Reason).To(Equal(devicelock.ReasonMismatch))
			Expect(repo.flags[1]).To(Equal(devicelock.ReasonMismatch))
			Expect(u.DeviceLocked).To(BeTrue())
		})

		It("flags a user binding to a device already bound to another account", func() {
			first := &user.User{ID: 1, Username: "zain", Role: user.RoleUser}
			second := &user.User{ID: 2, Username: "sara", Role: user.RoleUser}
			fp := fpr("firefox", "10.0.0.1")

			guard.Verify(context.Background(), first, fp, "10.0.0.1")
			result := guard.Verify(context.Background(), second, fp, "10.0.0.1")

			Expect(result.Flagged).To(BeTrue())
			Expect(result.Reason).To(Equal(devicelock.ReasonAlreadyBound))
			Expect(repo.flags[2]).To(Equal(devicelock.ReasonAlreadyBound))
		})

		It("never binds or flags masters", func() {
			u := &user.User{ID: 5, Username: "boss", Role: user.RoleMaster}

			result := guard.Verify(context.Background(), u, fpr("firefox", "10.0.0.1"), "10.0.0.1")
			Expect(result).To(Equal(devicelock.Result{}))

			result = guard.Verify(context.Background(), u, fpr("chrome", "10.0.0.9"), "10.0.0.9")
			Expect(result).To(Equal(devicelock.Result{}))

			Expect(repo.bindings).To(BeEmpty())
			Expect(repo.flags).To(BeEmpty())
		})

		It("never binds or flags developers", func() {
			u := &user.User{ID: 6, Username: "dev", Role: user.RoleDeveloper}

			result := guard.Verify(context.Background(), u, fpr("firefox", "10.0.0.1"), "10.0.0.1")
			Expect(result).To(Equal(devicelock.Result{}))
			Expect(repo.bindings).To(BeEmpty())
			Expect(repo.flags).To(BeEmpty())
		})
	})

	Describe("Fingerprint", func() {
		It("is stable for the same agent and address", func() {
			Expect(fpr("firefox", "10.0.0.1")).To(Equal(fpr("firefox", "10.0.0.1")))
		})

		It("differs when either input changes", func() {
			base := fpr("firefox", "10.0.0.1")
			Expect(fpr("chrome", "10.0.0.1")).NotTo(Equal(base))
			Expect(fpr("firefox", "10.0.0.2")).NotTo(Equal(base))
		})
	})
})
