package devicelock

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/attendance-tracking/internal/core/events"
	"github.com/frahmantamala/attendance-tracking/internal/user"
)

const (
	ReasonMismatch     = "device fingerprint does not match bound device"
	ReasonAlreadyBound = "device is already bound to another account"
)

// Repository defines the data access the guard needs on the users table.
type Repository interface {
	BindDevice(id int64, fingerprint string) error
	FlagDevice(id int64, reason string) error
	OtherUserBoundTo(fingerprint string, excludeUserID int64) (bool, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Result reports what the guard did for one verification.
type Result struct {
	Bound   bool
	Flagged bool
	Reason  string
}

// Guard binds one physical device to one regular-role account and flags
// violations. The flag is advisory: it never blocks the request that
// triggered it.
type Guard struct {
	repo   Repository
	bus    EventPublisher
	logger *slog.Logger
}

func NewGuard(repo Repository, bus EventPublisher, logger *slog.Logger) *Guard {
	return &Guard{
		repo:   repo,
		bus:    bus,
		logger: logger,
	}
}

// Verify runs the pairing/flagging logic for u with the presented
// fingerprint. Masters and developers are exempt; the role is re-verified
// before every write so the guard stays safe even if invoked directly with
// an exempt account.
func (g *Guard) Verify(ctx context.Context, u *user.User, fingerprint, ip string) Result {
	if u == nil || !u.Role.Lockable() {
		return Result{}
	}

	if u.DeviceFingerprint == nil || *u.DeviceFingerprint == "" {
		return g.bind(ctx, u, fingerprint, ip)
	}

	if *u.DeviceFingerprint != fingerprint {
		return g.flag(ctx, u, ReasonMismatch, ip)
	}

	bound, err := g.repo.OtherUserBoundTo(fingerprint, u.ID)
	if err != nil {
		g.logger.Error("device binding lookup failed", "error", err, "user_id", u.ID)
		return Result{}
	}
	if bound {
		return g.flag(ctx, u, ReasonAlreadyBound, ip)
	}

	return Result{}
}

func (g *Guard) bind(ctx context.Context, u *user.User, fingerprint, ip string) Result {
	// first-use pairing; double-check a different account is not already on
	// this device before binding
	bound, err := g.repo.OtherUserBoundTo(fingerprint, u.ID)
	if err != nil {
		g.logger.Error("device binding lookup failed", "error", err, "user_id", u.ID)
		return Result{}
	}
	if bound {
		return g.flag(ctx, u, ReasonAlreadyBound, ip)
	}

	if err := g.repo.BindDevice(u.ID, fingerprint); err != nil {
		g.logger.Error("failed to bind device", "error", err, "user_id", u.ID)
		return Result{}
	}

	u.DeviceFingerprint = &fingerprint
	g.logger.Info("device bound", "user_id", u.ID, "username", u.Username)
	return Result{Bound: true}
}

func (g *Guard) flag(ctx context.Context, u *user.User, reason, ip string) Result {
	// role re-verified at flag time
	if !u.Role.Lockable() {
		return Result{}
	}

	if err := g.flagLockable(u, reason); err != nil {
		g.logger.Error("failed to flag device", "error", err, "user_id", u.ID)
		return Result{}
	}

	u.DeviceLocked = true
	u.DeviceLockReason = &reason

	g.logger.Warn("device flagged", "user_id", u.ID, "username", u.Username, "reason", reason)
	if g.bus != nil {
		_ = g.bus.Publish(ctx, events.NewDeviceFlaggedEvent(u.ID, u.Username, reason, ip))
	}

	return Result{Flagged: true, Reason: reason}
}

func (g *Guard) flagLockable(u *user.User, reason string) error {
	// last role check before the write
	if !u.Role.Lockable() {
		return nil
	}
	return g.repo.FlagDevice(u.ID, reason)
}
