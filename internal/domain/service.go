package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrActivityNotFound is returned when an activity cannot be located for
	// the requesting user.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrUserNotFound is returned when a user record cannot be located.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken indicates a registration attempt with an email already
	// in use.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials covers both unknown-email and wrong-password
	// login failures.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ActivityRepository captures persistence operations for activities. All
// reads and mutations are scoped by user ID.
type ActivityRepository interface {
	Create(ctx context.Context, activity Activity) error
	Update(ctx context.Context, activity Activity) error
	Get(ctx context.Context, userID, activityID string) (*Activity, error)
	Delete(ctx context.Context, userID, activityID string) (bool, error)
	ListByUser(ctx context.Context, userID string, cursor *Cursor, limit int) ([]Activity, *Cursor, error)
	ListAllByUser(ctx context.Context, userID string) ([]Activity, error)
}

// UserRepository captures persistence operations for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user User) error
	Get(ctx context.Context, userID string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateProfile(ctx context.Context, userID, displayName string, monthlyGoal int) (*User, error)
}

// PasswordHasher abstracts credential hashing so the service stays free of
// crypto details.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

// Service orchestrates account and activity workflows over the repositories
// and the pure aggregation engine.
type Service struct {
	activities ActivityRepository
	users      UserRepository
	hasher     PasswordHasher
	calc       Calculator
	now        func() time.Time
}

// Option configures optional Service behaviour.
type Option func(*Service)

// WithClock overrides the reference-instant source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService constructs a Service. The default clock reports UTC, which
// fixes the reporting calendar regardless of host timezone.
func NewService(activities ActivityRepository, users UserRepository, hasher PasswordHasher, calc Calculator, opts ...Option) *Service {
	s := &Service{
		activities: activities,
		users:      users,
		hasher:     hasher,
		calc:       calc,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an account with the default monthly goal.
func (s *Service) Register(ctx context.Context, email, password, displayName string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := User{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: hash,
		MonthlyGoal:  DefaultMonthlyGoal,
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Authenticate verifies credentials and returns the account. Unknown emails
// and wrong passwords are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !s.hasher.Verify(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetUser fetches an account by ID.
func (s *Service) GetUser(ctx context.Context, userID string) (*User, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateProfile changes the display name and monthly goal.
func (s *Service) UpdateProfile(ctx context.Context, userID, displayName string, monthlyGoal int) (*User, error) {
	if monthlyGoal <= 0 {
		return nil, ErrInvalidGoal
	}
	user, err := s.users.UpdateProfile(ctx, userID, displayName, monthlyGoal)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// LogActivityInput captures the payload from the API layer. The caller has
// already validated presence and finiteness of the fields.
type LogActivityInput struct {
	UserID   string
	Category Category
	Type     string
	Value    float64
	Unit     string
	Date     time.Time
	Notes    string
}

// LogActivity computes the emission for the entry and persists it. The
// stored emission is what all later aggregation sums.
func (s *Service) LogActivity(ctx context.Context, input LogActivityInput) (*Activity, error) {
	activity := Activity{
		ID:        uuid.NewString(),
		UserID:    input.UserID,
		Category:  input.Category,
		Type:      input.Type,
		Value:     input.Value,
		Unit:      input.Unit,
		Emission:  s.calc.Emission(input.Type, input.Value),
		Date:      input.Date,
		Notes:     input.Notes,
		CreatedAt: s.now(),
	}
	if err := s.activities.Create(ctx, activity); err != nil {
		return nil, err
	}
	return &activity, nil
}

// UpdateActivity replaces the raw fields of an owned activity and recomputes
// its emission.
func (s *Service) UpdateActivity(ctx context.Context, userID, activityID string, input LogActivityInput) (*Activity, error) {
	existing, err := s.activities.Get(ctx, userID, activityID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrActivityNotFound
	}

	updated := Activity{
		ID:        existing.ID,
		UserID:    existing.UserID,
		Category:  input.Category,
		Type:      input.Type,
		Value:     input.Value,
		Unit:      input.Unit,
		Emission:  s.calc.Emission(input.Type, input.Value),
		Date:      input.Date,
		Notes:     input.Notes,
		CreatedAt: existing.CreatedAt,
	}
	if err := s.activities.Update(ctx, updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteActivity removes an owned activity.
func (s *Service) DeleteActivity(ctx context.Context, userID, activityID string) error {
	deleted, err := s.activities.Delete(ctx, userID, activityID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrActivityNotFound
	}
	return nil
}

// ListActivities fetches a page of activities, newest date first.
func (s *Service) ListActivities(ctx context.Context, userID string, cursor *Cursor, limit int) ([]Activity, *Cursor, error) {
	return s.activities.ListByUser(ctx, userID, cursor, limit)
}

// Stats recomputes the user's emission stats from the full activity set at
// the current reference instant.
func (s *Service) Stats(ctx context.Context, userID string) (EmissionStats, error) {
	activities, err := s.activities.ListAllByUser(ctx, userID)
	if err != nil {
		return EmissionStats{}, err
	}
	return ComputeStats(activities, s.now()), nil
}

// Trend builds the daily trend series over the requested window.
func (s *Service) Trend(ctx context.Context, userID string, windowDays int) ([]TrendPoint, error) {
	activities, err := s.activities.ListAllByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return BuildTrend(activities, windowDays, s.now())
}

// GoalReport pairs goal progress with the inputs it was derived from.
type GoalReport struct {
	Progress GoalProgress
	Monthly  float64
	Goal     int
}

// Goal evaluates the user's monthly total against their goal.
func (s *Service) Goal(ctx context.Context, userID string) (*GoalReport, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats, err := s.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}

	progress, err := ProgressToGoal(stats.Monthly, float64(user.MonthlyGoal))
	if err != nil {
		return nil, err
	}
	return &GoalReport{Progress: progress, Monthly: stats.Monthly, Goal: user.MonthlyGoal}, nil
}
