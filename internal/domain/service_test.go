package domain

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryActivityRepo struct {
	activities map[string]Activity
	createErr  error
}

func newMemoryActivityRepo() *memoryActivityRepo {
	return &memoryActivityRepo{activities: make(map[string]Activity)}
}

func (r *memoryActivityRepo) Create(_ context.Context, activity Activity) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.activities[activity.ID] = activity
	return nil
}

func (r *memoryActivityRepo) Update(_ context.Context, activity Activity) error {
	r.activities[activity.ID] = activity
	return nil
}

func (r *memoryActivityRepo) Get(_ context.Context, userID, activityID string) (*Activity, error) {
	activity, ok := r.activities[activityID]
	if !ok || activity.UserID != userID {
		return nil, nil
	}
	return &activity, nil
}

func (r *memoryActivityRepo) Delete(_ context.Context, userID, activityID string) (bool, error) {
	activity, ok := r.activities[activityID]
	if !ok || activity.UserID != userID {
		return false, nil
	}
	delete(r.activities, activityID)
	return true, nil
}

func (r *memoryActivityRepo) ListByUser(_ context.Context, userID string, _ *Cursor, _ int) ([]Activity, *Cursor, error) {
	all, _ := r.ListAllByUser(context.Background(), userID)
	return all, nil, nil
}

func (r *memoryActivityRepo) ListAllByUser(_ context.Context, userID string) ([]Activity, error) {
	var out []Activity
	for _, activity := range r.activities {
		if activity.UserID == userID {
			out = append(out, activity)
		}
	}
	return out, nil
}

type memoryUserRepo struct {
	users map[string]User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[string]User)}
}

func (r *memoryUserRepo) Create(_ context.Context, user User) error {
	r.users[user.ID] = user
	return nil
}

func (r *memoryUserRepo) Get(_ context.Context, userID string) (*User, error) {
	user, ok := r.users[userID]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (r *memoryUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, user := range r.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, nil
}

func (r *memoryUserRepo) UpdateProfile(_ context.Context, userID, displayName string, monthlyGoal int) (*User, error) {
	user, ok := r.users[userID]
	if !ok {
		return nil, nil
	}
	user.DisplayName = displayName
	user.MonthlyGoal = monthlyGoal
	r.users[userID] = user
	return &user, nil
}

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hash:" + password, nil }
func (plainHasher) Verify(hash, password string) bool    { return hash == "hash:"+password }

func newTestService(activities *memoryActivityRepo, users *memoryUserRepo, at time.Time) *Service {
	return NewService(activities, users, plainHasher{}, NewCalculator(DefaultFactors()),
		WithClock(func() time.Time { return at }))
}

func TestRegisterAssignsDefaults(t *testing.T) {
	ctx := context.Background()
	users := newMemoryUserRepo()
	service := newTestService(newMemoryActivityRepo(), users, statsRef)

	user, err := service.Register(ctx, "Jordan@Example.COM", "hunter2", "Jordan")
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.Equal(t, "jordan@example.com", user.Email)
	require.Equal(t, DefaultMonthlyGoal, user.MonthlyGoal)
	require.Equal(t, statsRef, user.CreatedAt)
	require.Equal(t, "hash:hunter2", user.PasswordHash)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	service := newTestService(newMemoryActivityRepo(), newMemoryUserRepo(), statsRef)

	_, err := service.Register(ctx, "jordan@example.com", "hunter2", "Jordan")
	require.NoError(t, err)

	_, err = service.Register(ctx, "jordan@example.com", "other", "Jordan 2")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	service := newTestService(newMemoryActivityRepo(), newMemoryUserRepo(), statsRef)

	registered, err := service.Register(ctx, "jordan@example.com", "hunter2", "Jordan")
	require.NoError(t, err)

	user, err := service.Authenticate(ctx, "jordan@example.com", "hunter2")
	require.NoError(t, err)
	require.Equal(t, registered.ID, user.ID)

	_, err = service.Authenticate(ctx, "jordan@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Authenticate(ctx, "nobody@example.com", "hunter2")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogActivityComputesEmissionAtWriteTime(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryActivityRepo()
	service := newTestService(repo, newMemoryUserRepo(), statsRef)

	activity, err := service.LogActivity(ctx, LogActivityInput{
		UserID:   "user-1",
		Category: CategoryDiet,
		Type:     "beef",
		Value:    2,
		Unit:     "meals",
		Date:     StartOfDay(statsRef),
	})
	require.NoError(t, err)
	require.Equal(t, 12.0, activity.Emission)
	require.Equal(t, statsRef, activity.CreatedAt)
	require.Contains(t, repo.activities, activity.ID)
}

func TestUpdateActivityRecomputesEmissionAndKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryActivityRepo()
	service := newTestService(repo, newMemoryUserRepo(), statsRef)

	created, err := service.LogActivity(ctx, LogActivityInput{
		UserID: "user-1", Category: CategoryDiet, Type: "beef", Value: 2, Unit: "meals", Date: StartOfDay(statsRef),
	})
	require.NoError(t, err)

	updated, err := service.UpdateActivity(ctx, "user-1", created.ID, LogActivityInput{
		UserID: "user-1", Category: CategoryDiet, Type: "vegan", Value: 3, Unit: "meals", Date: StartOfDay(statsRef),
	})
	require.NoError(t, err)
	require.Equal(t, 2.7, updated.Emission)
	require.Equal(t, created.CreatedAt, updated.CreatedAt)
}

func TestUpdateActivityScopedToOwner(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryActivityRepo()
	service := newTestService(repo, newMemoryUserRepo(), statsRef)

	created, err := service.LogActivity(ctx, LogActivityInput{
		UserID: "user-1", Category: CategoryDiet, Type: "beef", Value: 1, Unit: "meals", Date: StartOfDay(statsRef),
	})
	require.NoError(t, err)

	_, err = service.UpdateActivity(ctx, "user-2", created.ID, LogActivityInput{
		UserID: "user-2", Category: CategoryDiet, Type: "vegan", Value: 1, Unit: "meals", Date: StartOfDay(statsRef),
	})
	require.ErrorIs(t, err, ErrActivityNotFound)

	err = service.DeleteActivity(ctx, "user-2", created.ID)
	require.ErrorIs(t, err, ErrActivityNotFound)
}

func TestStatsUsesInjectedClock(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryActivityRepo()
	service := newTestService(repo, newMemoryUserRepo(), statsRef)

	_, err := service.LogActivity(ctx, LogActivityInput{
		UserID: "user-1", Category: CategoryTransport, Type: "car_petrol", Value: 10, Unit: "km", Date: StartOfDay(statsRef),
	})
	require.NoError(t, err)

	stats, err := service.Stats(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, 1.2, stats.Daily)

	// Same data viewed a month later falls out of every window.
	later := NewService(repo, newMemoryUserRepo(), plainHasher{}, NewCalculator(DefaultFactors()),
		WithClock(func() time.Time { return statsRef.AddDate(0, 1, 0) }))
	stats, err = later.Stats(ctx, "user-1")
	require.NoError(t, err)
	require.Zero(t, stats.Monthly)
}

func TestGoalReport(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryActivityRepo()
	users := newMemoryUserRepo()
	service := newTestService(repo, users, statsRef)

	user, err := service.Register(ctx, "jordan@example.com", "hunter2", "Jordan")
	require.NoError(t, err)

	_, err = service.LogActivity(ctx, LogActivityInput{
		UserID: user.ID, Category: CategoryDiet, Type: "beef", Value: 50, Unit: "meals", Date: StartOfDay(statsRef),
	})
	require.NoError(t, err)

	report, err := service.Goal(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, 300.0, report.Monthly)
	require.Equal(t, DefaultMonthlyGoal, report.Goal)
	require.InDelta(t, 60.0, report.Progress.Percentage, 1e-9)
	require.Equal(t, GoalStatusGood, report.Progress.Status)
}

func TestUpdateProfileValidatesGoal(t *testing.T) {
	ctx := context.Background()
	service := newTestService(newMemoryActivityRepo(), newMemoryUserRepo(), statsRef)

	user, err := service.Register(ctx, "jordan@example.com", "hunter2", "Jordan")
	require.NoError(t, err)

	_, err = service.UpdateProfile(ctx, user.ID, "Jordan", 0)
	require.ErrorIs(t, err, ErrInvalidGoal)

	updated, err := service.UpdateProfile(ctx, user.ID, "Jordan R", 350)
	require.NoError(t, err)
	require.Equal(t, 350, updated.MonthlyGoal)
}
