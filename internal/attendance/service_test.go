package attendance_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/attendance-tracking/internal"
	"github.com/frahmantamala/attendance-tracking/internal/attendance"
	"github.com/frahmantamala/attendance-tracking/internal/core/events"
	"github.com/frahmantamala/attendance-tracking/internal/settings"
	"github.com/frahmantamala/attendance-tracking/internal/user"
)

func TestAttendance(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Attendance Suite")
}

// Mock repository for testing
type mockAttendanceRepository struct {
	records     map[int64]*attendance.Record
	owners      map[int64]*user.User
	nextID      int64
	createError error
	closeError  error
	listError   error
}

func newMockAttendanceRepository() *mockAttendanceRepository {
	return &mockAttendanceRepository{
		records: make(map[int64]*attendance.Record),
		owners:  make(map[int64]*user.User),
		nextID:  1,
	}
}

func (m *mockAttendanceRepository) Create(rec *attendance.Record) error {
	if m.createError != nil {
		return m.createError
	}
	rec.ID = m.nextID
	m.nextID++
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = time.Now()
	copied := *rec
	m.records[rec.ID] = &copied
	return nil
}

func (m *mockAttendanceRepository) GetOpenByUserID(userID int64) (*attendance.Record, error) {
	for _, rec := range m.records {
		if rec.UserID == userID && rec.Open() {
			copied := *rec
			return &copied, nil
		}
	}
	return nil, errors.New("record not found")
}

func (m *mockAttendanceRepository) Close(id int64, checkOut time.Time, durationMinutes int64) (bool, error) {
	if m.closeError != nil {
		return false, m.closeError
	}
	rec, ok := m.records[id]
	if !ok || !rec.Open() {
		return false, nil
	}
	rec.CheckOut = &checkOut
	rec.DurationMinutes = &durationMinutes
	return true, nil
}

func (m *mockAttendanceRepository) ListOpen() ([]*attendance.OpenRecord, error) {
	if m.listError != nil {
		return nil, m.listError
	}
	var open []*attendance.OpenRecord
	for _, rec := range m.records {
		if !rec.Open() {
			continue
		}
		row := &attendance.OpenRecord{Record: *rec}
		if owner, ok := m.owners[rec.UserID]; ok {
			row.Username = owner.Username
			row.Role = owner.Role
		}
		open = append(open, row)
	}
	return open, nil
}

func (m *mockAttendanceRepository) ListByUserID(userID int64, limit, offset int) ([]*attendance.Record, error) {
	var result []*attendance.Record
	for _, rec := range m.records {
		if rec.UserID == userID {
			copied := *rec
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *mockAttendanceRepository) ListBetween(from, to time.Time) ([]*attendance.OpenRecord, error) {
	var result []*attendance.OpenRecord
	for _, rec := range m.records {
		if rec.CheckIn.Before(from) || !rec.CheckIn.Before(to) {
			continue
		}
		row := &attendance.OpenRecord{Record: *rec}
		if owner, ok := m.owners[rec.UserID]; ok {
			row.Username = owner.Username
			row.Role = owner.Role
		}
		result = append(result, row)
	}
	return result, nil
}

type mockUserFlags struct {
	enabled map[int64]bool
}

func newMockUserFlags() *mockUserFlags {
	return &mockUserFlags{enabled: make(map[int64]bool)}
}

func (m *mockUserFlags) SetLocationEnabled(id int64, enabled bool) error {
	m.enabled[id] = enabled
	return nil
}

type mockPolicyProvider struct {
	policy settings.AttendancePolicy
}

func (m *mockPolicyProvider) Policy() settings.AttendancePolicy {
	return m.policy
}

type capturedEvent struct {
	eventType string
	data      map[string]interface{}
}

type mockBus struct {
	published []capturedEvent
}

func (m *mockBus) Publish(ctx context.Context, event events.Event) error {
	data, _ := event.Payload().(map[string]interface{})
	m.published = append(m.published, capturedEvent{eventType: event.EventType(), data: data})
	return nil
}

var _ = Describe("AttendanceService", func() {
	var (
		repo    *mockAttendanceRepository
		flags   *mockUserFlags
		policy  *mockPolicyProvider
		bus     *mockBus
		service *attendance.Service
		loc     *time.Location
		clock   time.Time
		logger  *slog.Logger
	)

	regular := &user.User{ID: 1, Username: "zain", Role: user.RoleUser}
	master := &user.User{ID: 2, Username: "boss", Role: user.RoleMaster}
	developer := &user.User{ID: 3, Username: "dev", Role: user.RoleDeveloper}

	BeforeEach(func() {
		var err error
		loc, err = time.LoadLocation("Asia/Karachi")
		Expect(err).NotTo(HaveOccurred())

		repo = newMockAttendanceRepository()
		flags = newMockUserFlags()
		policy = &mockPolicyProvider{policy: settings.AttendancePolicy{
			AutoCheckoutEnabled:   true,
			AutoCheckoutHours:     10,
			AutoCheckoutTime:      "20:00",
			MasterCheckinRequired: false,
		}}
		bus = &mockBus{}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		service = attendance.NewService(repo, flags, policy, bus, loc, logger)
		clock = time.Date(2025, 3, 10, 9, 0, 0, 0, loc)
		service.SetNowFunc(func() time.Time { return clock })
	})

	Describe("CheckIn", func() {
		It("opens a record and enables location tracking", func() {
			rec, err := service.CheckIn(context.Background(), regular, "10.0.0.1")
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.Open()).To(BeTrue())
			Expect(rec.CheckIn.Equal(clock)).To(BeTrue())
			Expect(flags.enabled[regular.ID]).To(BeTrue())
		})

		It("rejects a second check-in while a record is open", func() {
			_, err := service.CheckIn(context.Background(), regular, "10.0.0.1")
			Expect(err).NotTo(HaveOccurred())

			_, err = service.CheckIn(context.Background(), regular, "10.0.0.1")
			Expect(err).To(Equal(internal.ErrAlreadyCheckedIn))
		})

		It("allows a fresh check-in after checkout", func() {
			_, err := service.CheckIn(context.Background(), regular, "10.0.0.1")
			Expect(err).NotTo(HaveOccurred())

			clock = clock.Add(8 * time.Hour)
			_, err = service.CheckOut(context.Background(), regular, "10.0.0.1", events.TriggerManual)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.CheckIn(context.Background(), regular, "10.0.0.1")
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects developers", func() {
			_, err := service.CheckIn(context.Background(), developer, "10.0.0.1")
			Expect(err).To(Equal(internal.ErrCheckInNotAllowed))
		})

		It("rejects masters unless the operator requires master check-in", func() {
			_, err := service.CheckIn(context.Background(), master, "10.0.0.1")
			Expect(err).To(Equal(internal.ErrCheckInNotAllowed))

			policy.policy.MasterCheckinRequired = true
			_, err = service.CheckIn(context.Background(), master, "10.0.0.1")
			Expect(err).NotTo(HaveOccurred())
		})

		It("publishes a checked-in event for auditable roles", func() {
			_, err := service.CheckIn(context.Background(), regular, "10.0.0.1")
			Expect(err).NotTo(HaveOccurred())
			Expect(bus.published).To(HaveLen(1))
			Expect(bus.published[0].eventType).To(Equal(events.EventTypeCheckedIn))
		})
	})

	Describe("CheckOut", func() {
		It("closes the record with the rounded elapsed minutes", func() {
			_, err := service.CheckIn(context.Background(), regular, "10.0.0.1")
			Expect(err).NotTo(HaveOccurred())

			// 09:00 to 19:01 is 601 minutes
			clock = time.Date(2025, 3, 10, 19, 1, 0, 0, loc)
			rec, err := service.CheckOut(context.Background(), regular, "10.0.0.1", events.TriggerManual)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.Open()).To(BeFalse())
			Expect(rec.DurationMinutes).NotTo(BeNil())
			Expect(*rec.DurationMinutes).To(Equal(int64(601)))
		})

		It("disables location tracking on checkout", func() {
			_, err := service.CheckIn(context.Background(), regular, "10.0.0.1")
			Expect(err).NotTo(HaveOccurred())

			clock = clock.Add(time.Hour)
			_, err = service.CheckOut(context.Background(), regular, "10.0.0.1", events.TriggerManual)
			Expect(err).NotTo(HaveOccurred())
			Expect(flags.enabled[regular.ID]).To(BeFalse())
		})

		It("is a no-op when not checked in", func() {
			_, err := service.CheckOut(context.Background(), regular, "10.0.0.1", events.TriggerManual)
			Expect(err).To(Equal(internal.ErrNotCheckedIn))
		})

		It("reports not-checked-in when another close won the race", func() {
			rec, err := service.CheckIn(context.Background(), regular, "10.0.0.1")
			Expect(err).NotTo(HaveOccurred())

			// concurrent close
			closed, err := repo.Close(rec.ID, clock.Add(time.Hour), 60)
			Expect(err).NotTo(HaveOccurred())
			Expect(closed).To(BeTrue())

			_, err = service.CheckOut(context.Background(), regular, "10.0.0.1", events.TriggerManual)
			Expect(err).To(Equal(internal.ErrNotCheckedIn))
		})

		It("records the trigger on the published event", func() {
			_, err := service.CheckIn(context.Background(), regular, "10.0.0.1")
			Expect(err).NotTo(HaveOccurred())

			clock = clock.Add(time.Hour)
			_, err = service.CheckOut(context.Background(), regular, "10.0.0.1", events.TriggerLogout)
			Expect(err).NotTo(HaveOccurred())

			Expect(bus.published).To(HaveLen(2))
			Expect(bus.published[1].eventType).To(Equal(events.EventTypeCheckedOut))
			Expect(bus.published[1].data["trigger"]).To(Equal(string(events.TriggerLogout)))
		})
	})

	Describe("IsCheckedIn", func() {
		It("tracks the open record and nothing else", func() {
			Expect(service.IsCheckedIn(regular.ID)).To(BeFalse())

			_, err := service.CheckIn(context.Background(), regular, "10.0.0.1")
			Expect(err).NotTo(HaveOccurred())
			Expect(service.IsCheckedIn(regular.ID)).To(BeTrue())

			clock = clock.Add(time.Hour)
			_, err = service.CheckOut(context.Background(), regular, "10.0.0.1", events.TriggerManual)
			Expect(err).NotTo(HaveOccurred())
			Expect(service.IsCheckedIn(regular.ID)).To(BeFalse())
		})
	})

	Describe("DurationMinutes", func() {
		It("rounds to the nearest minute", func() {
			start := time.Date(2025, 3, 10, 9, 0, 0, 0, loc)
			Expect(attendance.DurationMinutes(start, start.Add(10*time.Hour+1*time.Minute))).To(Equal(int64(601)))
			Expect(attendance.DurationMinutes(start, start.Add(90*time.Second))).To(Equal(int64(2)))
			Expect(attendance.DurationMinutes(start, start.Add(29*time.Second))).To(Equal(int64(0)))
		})
	})
})
