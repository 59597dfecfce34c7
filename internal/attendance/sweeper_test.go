package attendance_test

import (
	"context"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/attendance-tracking/internal/attendance"
	"github.com/frahmantamala/attendance-tracking/internal/core/events"
	"github.com/frahmantamala/attendance-tracking/internal/settings"
	"github.com/frahmantamala/attendance-tracking/internal/user"
)

var _ = Describe("Sweeper", func() {
	var (
		repo    *mockAttendanceRepository
		flags   *mockUserFlags
		policy  *mockPolicyProvider
		bus     *mockBus
		sweeper *attendance.Sweeper
		loc     *time.Location
		clock   time.Time
		logger  *slog.Logger
	)

	openRecord := func(u *user.User, checkIn time.Time) *attendance.Record {
		rec := &attendance.Record{UserID: u.ID, CheckIn: checkIn}
		Expect(repo.Create(rec)).To(Succeed())
		repo.owners[u.ID] = u
		return rec
	}

	openCount := func() int {
		open, err := repo.ListOpen()
		Expect(err).NotTo(HaveOccurred())
		return len(open)
	}

	regular := &user.User{ID: 1, Username: "zain", Role: user.RoleUser}
	other := &user.User{ID: 2, Username: "sara", Role: user.RoleUser}
	developer := &user.User{ID: 3, Username: "dev", Role: user.RoleDeveloper}

	BeforeEach(func() {
		var err error
		loc, err = time.LoadLocation("Asia/Karachi")
		Expect(err).NotTo(HaveOccurred())

		repo = newMockAttendanceRepository()
		flags = newMockUserFlags()
		policy = &mockPolicyProvider{policy: settings.AttendancePolicy{
			AutoCheckoutEnabled: true,
			AutoCheckoutHours:   10,
			AutoCheckoutTime:    "20:00",
		}}
		bus = &mockBus{}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		sweeper = attendance.NewSweeper(repo, flags, policy, bus, loc, logger)
		clock = time.Date(2025, 3, 10, 9, 0, 0, 0, loc)
		sweeper.SetNowFunc(func() time.Time { return clock })
	})

	Describe("elapsed-hours sweep", func() {
		It("closes records older than the threshold with their own durations", func() {
			openRecord(regular, time.Date(2025, 3, 10, 9, 0, 0, 0, loc))
			openRecord(other, time.Date(2025, 3, 10, 12, 0, 0, 0, loc))

			// 19:01: regular is past 10h, other is not
			clock = time.Date(2025, 3, 10, 19, 1, 0, 0, loc)
			sweeper.RunOnce(context.Background())

			Expect(openCount()).To(Equal(1))

			closed := repo.records[1]
			Expect(closed.Open()).To(BeFalse())
			Expect(*closed.DurationMinutes).To(Equal(int64(601)))
			Expect(flags.enabled[regular.ID]).To(BeFalse())
		})

		It("never sweeps developers", func() {
			openRecord(developer, time.Date(2025, 3, 9, 8, 0, 0, 0, loc))

			clock = time.Date(2025, 3, 10, 19, 0, 0, 0, loc)
			sweeper.RunOnce(context.Background())

			Expect(openCount()).To(Equal(1))
		})

		It("does nothing while auto checkout is disabled", func() {
			openRecord(regular, time.Date(2025, 3, 9, 8, 0, 0, 0, loc))
			policy.policy.AutoCheckoutEnabled = false

			clock = time.Date(2025, 3, 10, 19, 0, 0, 0, loc)
			sweeper.RunOnce(context.Background())

			Expect(openCount()).To(Equal(1))
		})

		It("publishes checked-out events with the hours-sweep trigger", func() {
			openRecord(regular, time.Date(2025, 3, 10, 7, 0, 0, 0, loc))

			clock = time.Date(2025, 3, 10, 17, 30, 0, 0, loc)
			sweeper.RunOnce(context.Background())

			Expect(bus.published).To(HaveLen(1))
			Expect(bus.published[0].eventType).To(Equal(events.EventTypeCheckedOut))
			Expect(bus.published[0].data["trigger"]).To(Equal(string(events.TriggerHoursSweep)))
		})
	})

	Describe("cutoff-time sweep", func() {
		It("closes all open records when a tick crosses the cutoff", func() {
			openRecord(regular, time.Date(2025, 3, 10, 13, 0, 0, 0, loc))
			openRecord(other, time.Date(2025, 3, 10, 14, 0, 0, 0, loc))

			clock = time.Date(2025, 3, 10, 19, 59, 0, 0, loc)
			sweeper.RunOnce(context.Background())
			Expect(openCount()).To(Equal(2))

			clock = time.Date(2025, 3, 10, 20, 0, 30, 0, loc)
			sweeper.RunOnce(context.Background())
			Expect(openCount()).To(Equal(0))

			for _, ev := range bus.published {
				Expect(ev.data["trigger"]).To(Equal(string(events.TriggerTimeSweep)))
			}
		})

		It("catches a cutoff skipped by a slow tick", func() {
			openRecord(regular, time.Date(2025, 3, 10, 13, 0, 0, 0, loc))

			clock = time.Date(2025, 3, 10, 19, 0, 0, 0, loc)
			sweeper.RunOnce(context.Background())
			Expect(openCount()).To(Equal(1))

			// next tick lands well past the cutoff
			clock = time.Date(2025, 3, 10, 22, 15, 0, 0, loc)
			sweeper.RunOnce(context.Background())
			Expect(openCount()).To(Equal(0))
		})

		It("does not re-trigger for records opened after the cutoff", func() {
			clock = time.Date(2025, 3, 10, 20, 0, 30, 0, loc)
			sweeper.RunOnce(context.Background())

			openRecord(regular, time.Date(2025, 3, 10, 21, 0, 0, 0, loc))

			clock = time.Date(2025, 3, 10, 21, 30, 0, 0, loc)
			sweeper.RunOnce(context.Background())
			Expect(openCount()).To(Equal(1))
		})

		It("computes each duration from the record's own check-in", func() {
			openRecord(regular, time.Date(2025, 3, 10, 9, 0, 0, 0, loc))
			openRecord(other, time.Date(2025, 3, 10, 15, 30, 0, 0, loc))

			clock = time.Date(2025, 3, 10, 20, 1, 0, 0, loc)
			sweeper.RunOnce(context.Background())

			Expect(*repo.records[1].DurationMinutes).To(Equal(int64(661)))
			Expect(*repo.records[2].DurationMinutes).To(Equal(int64(271)))
		})
	})
})
