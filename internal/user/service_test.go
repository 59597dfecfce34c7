package user_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/attendance-tracking/internal"
	"github.com/frahmantamala/attendance-tracking/internal/user"
)

func TestUser(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Suite")
}

type mockUserRepository struct {
	users  map[int64]*user.User
	nextID int64
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[int64]*user.User), nextID: 1}
}

func (m *mockUserRepository) Create(u *user.User) error {
	u.ID = m.nextID
	m.nextID++
	copied := *u
	m.users[u.ID] = &copied
	return nil
}

func (m *mockUserRepository) GetByID(id int64) (*user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	copied := *u
	return &copied, nil
}

func (m *mockUserRepository) GetByUsername(username string) (*user.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, errors.New("user not found")
}

func (m *mockUserRepository) GetAll() ([]*user.User, error) {
	all := make([]*user.User, 0, len(m.users))
	for _, u := range m.users {
		copied := *u
		all = append(all, &copied)
	}
	return all, nil
}

func (m *mockUserRepository) Delete(id int64) error {
	delete(m.users, id)
	return nil
}

func (m *mockUserRepository) BindDevice(id int64, fingerprint string) error {
	m.users[id].DeviceFingerprint = &fingerprint
	return nil
}

func (m *mockUserRepository) FlagDevice(id int64, reason string) error {
	m.users[id].DeviceLocked = true
	m.users[id].DeviceLockReason = &reason
	return nil
}

func (m *mockUserRepository) ResetDevice(id int64) error {
	u, ok := m.users[id]
	if !ok {
		return errors.New("user not found")
	}
	u.DeviceFingerprint = nil
	u.DeviceLocked = false
	u.DeviceLockReason = nil
	return nil
}

func (m *mockUserRepository) SetLocationEnabled(id int64, enabled bool) error {
	m.users[id].LocationEnabled = enabled
	return nil
}

func (m *mockUserRepository) UpdateLastLogin(id int64) error {
	return nil
}

var _ = Describe("UserService", func() {
	var (
		repo    *mockUserRepository
		service *user.Service
		logger  *slog.Logger
	)

	BeforeEach(func() {
		repo = newMockUserRepository()
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = user.NewService(repo, bcrypt.MinCost, logger)
	})

	seed := func(username string, role user.Role) *user.User {
		u := &user.User{Username: username, Role: role}
		Expect(repo.Create(u)).To(Succeed())
		return u
	}

	Describe("CreateUser", func() {
		It("stores a bcrypt hash, never the password", func() {
			created, err := service.CreateUser(user.CreateUserDTO{
				Username: "zain",
				Password: "s3cret-pass",
				Role:     "user",
				JobTitle: "Surveyor",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(created.PasswordHash).NotTo(Equal("s3cret-pass"))
			Expect(bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("s3cret-pass"))).To(Succeed())
		})

		It("rejects duplicate usernames", func() {
			seed("zain", user.RoleUser)

			_, err := service.CreateUser(user.CreateUserDTO{
				Username: "zain",
				Password: "s3cret-pass",
				Role:     "user",
			})
			Expect(err).To(Equal(internal.ErrDuplicateUsername))
		})

		It("rejects unknown roles", func() {
			_, err := service.CreateUser(user.CreateUserDTO{
				Username: "zain",
				Password: "s3cret-pass",
				Role:     "superadmin",
			})
			Expect(err).To(HaveOccurred())
		})

		It("rejects short passwords", func() {
			_, err := service.CreateUser(user.CreateUserDTO{
				Username: "zain",
				Password: "short",
				Role:     "user",
			})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ListForViewer", func() {
		BeforeEach(func() {
			seed("zain", user.RoleUser)
			seed("sara", user.RoleUser)
			seed("boss", user.RoleMaster)
			seed("dev", user.RoleDeveloper)
		})

		It("hides developers and fellow masters from a master viewer", func() {
			visible, err := service.ListForViewer(user.RoleMaster)
			Expect(err).NotTo(HaveOccurred())

			names := make([]string, 0, len(visible))
			for _, u := range visible {
				names = append(names, u.Username)
			}
			Expect(names).To(ConsistOf("zain", "sara"))
		})

		It("hides only developers from a developer viewer", func() {
			visible, err := service.ListForViewer(user.RoleDeveloper)
			Expect(err).NotTo(HaveOccurred())

			names := make([]string, 0, len(visible))
			for _, u := range visible {
				names = append(names, u.Username)
			}
			Expect(names).To(ConsistOf("zain", "sara", "boss"))
		})
	})

	Describe("DeleteUser", func() {
		It("removes the account", func() {
			u := seed("zain", user.RoleUser)
			Expect(service.DeleteUser(u.ID)).To(Succeed())
			_, err := repo.GetByID(u.ID)
			Expect(err).To(HaveOccurred())
		})

		It("reports unknown accounts", func() {
			Expect(service.DeleteUser(99)).To(Equal(internal.ErrUserNotFound))
		})
	})

	Describe("ResetDevice", func() {
		It("clears the binding and the lock", func() {
			u := seed("zain", user.RoleUser)
			Expect(repo.BindDevice(u.ID, "fp")).To(Succeed())
			Expect(repo.FlagDevice(u.ID, "mismatch")).To(Succeed())

			Expect(service.ResetDevice(u.ID)).To(Succeed())

			stored, err := repo.GetByID(u.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.DeviceFingerprint).To(BeNil())
			Expect(stored.DeviceLocked).To(BeFalse())
		})
	})
})
