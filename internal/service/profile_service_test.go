package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hatchling-app/profile-api/internal/domain"
	"github.com/hatchling-app/profile-api/internal/store"
)

// testNow is the fixed "today" used by the service under test.
var testNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, mock *mockProfileStore) *ProfileService {
	t.Helper()
	repo, err := NewProfileRepository(mock, nil)
	require.NoError(t, err)

	svc, err := NewProfileService(repo, domain.NewValidatorWithClock(func() time.Time { return testNow }), nil)
	require.NoError(t, err)
	svc.now = func() time.Time { return testNow }
	svc.pickTheme = func() domain.Theme { return domain.ThemeBlue }
	return svc
}

// collect drains a finite state sequence into a slice.
func collect[T any](t *testing.T, states <-chan State[T]) []State[T] {
	t.Helper()
	var out []State[T]
	for s := range states {
		out = append(out, s)
	}
	return out
}

// requireSequence asserts the loading-then-terminal shape every finite
// operation must follow, and returns the terminal state.
func requireSequence[T any](t *testing.T, states []State[T]) State[T] {
	t.Helper()
	require.Len(t, states, 2)
	require.True(t, states[0].IsLoading(), "first emission must be the loading marker")
	require.False(t, states[1].IsLoading(), "second emission must be terminal")
	return states[1]
}

func TestNewProfileServiceRequiresDependencies(t *testing.T) {
	t.Parallel()

	repo, err := NewProfileRepository(&mockProfileStore{}, nil)
	require.NoError(t, err)

	_, err = NewProfileService(nil, domain.NewValidator(), nil)
	assert.Error(t, err)

	_, err = NewProfileService(repo, nil, nil)
	assert.Error(t, err)
}

func TestServiceGet(t *testing.T) {
	t.Parallel()

	t.Run("existing profile", func(t *testing.T) {
		t.Parallel()
		mock := &mockProfileStore{row: &store.ProfileRow{ID: domain.ProfileID, Name: strPtr("Mia")}}
		svc := newTestService(t, mock)

		terminal := requireSequence(t, collect(t, svc.Get(context.Background())))
		require.True(t, terminal.IsSuccess())
		require.NotNil(t, terminal.Data)
		assert.Equal(t, "Mia", *terminal.Data.Name)
	})

	t.Run("no profile succeeds with nil payload", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(t, &mockProfileStore{})

		terminal := requireSequence(t, collect(t, svc.Get(context.Background())))
		assert.True(t, terminal.IsSuccess())
		assert.Nil(t, terminal.Data)
	})

	t.Run("store failure yields the database message", func(t *testing.T) {
		t.Parallel()
		mock := &mockProfileStore{getFn: func(context.Context) (*store.ProfileRow, error) {
			return nil, errors.New("connection reset")
		}}
		svc := newTestService(t, mock)

		terminal := requireSequence(t, collect(t, svc.Get(context.Background())))
		require.True(t, terminal.IsError())
		assert.Equal(t, "Something went wrong. Please try again.", terminal.Message)
	})
}

func TestServiceSave(t *testing.T) {
	t.Parallel()

	t.Run("persists cleaned fields", func(t *testing.T) {
		t.Parallel()
		mock := &mockProfileStore{}
		svc := newTestService(t, mock)

		birthday := domain.NewDate(2024, 11, 1)
		terminal := requireSequence(t, collect(t, svc.Save(context.Background(), SaveInput{
			Name:     strPtr("  Mia  "),
			Birthday: &birthday,
		})))
		require.True(t, terminal.IsSuccess())

		require.Len(t, mock.upserts, 1)
		assert.Equal(t, "Mia", *mock.upserts[0].Name)
		assert.Equal(t, "2024-11-01", *mock.upserts[0].Birthday)
	})

	t.Run("all fields absent fails without touching storage", func(t *testing.T) {
		t.Parallel()
		mock := &mockProfileStore{}
		svc := newTestService(t, mock)

		terminal := requireSequence(t, collect(t, svc.Save(context.Background(), SaveInput{
			Name:       strPtr("   "),
			PictureURI: strPtr(""),
		})))
		require.True(t, terminal.IsError())
		assert.Equal(t, "At least one field must be provided", terminal.Message)
		assert.Empty(t, mock.upserts)
	})

	t.Run("validation message is emitted verbatim", func(t *testing.T) {
		t.Parallel()
		mock := &mockProfileStore{}
		svc := newTestService(t, mock)

		terminal := requireSequence(t, collect(t, svc.Save(context.Background(), SaveInput{
			Name: strPtr("Mia7"),
		})))
		require.True(t, terminal.IsError())
		assert.Equal(t, "Baby name can only contain letters and spaces", terminal.Message)
		assert.ErrorIs(t, terminal.Err, domain.ErrValidation)
		assert.Empty(t, mock.upserts)
	})

	t.Run("future birthday is rejected", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(t, &mockProfileStore{})

		future := domain.DateOf(testNow.AddDate(0, 0, 1))
		terminal := requireSequence(t, collect(t, svc.Save(context.Background(), SaveInput{Birthday: &future})))
		require.True(t, terminal.IsError())
		assert.Equal(t, "Baby's birthday cannot be in the future", terminal.Message)
	})
}

func TestServiceUpdateName(t *testing.T) {
	t.Parallel()

	t.Run("updates the existing profile", func(t *testing.T) {
		t.Parallel()
		mock := &mockProfileStore{row: &store.ProfileRow{ID: domain.ProfileID, Name: strPtr("Mia")}}
		svc := newTestService(t, mock)

		terminal := requireSequence(t, collect(t, svc.UpdateName(context.Background(), "  Mia Rose ")))
		require.True(t, terminal.IsSuccess())

		require.Len(t, mock.fieldUpdates, 1)
		assert.Equal(t, store.FieldName, mock.fieldUpdates[0].field)
		assert.Equal(t, "Mia Rose", *mock.fieldUpdates[0].value)
		assert.Empty(t, mock.upserts)
	})

	t.Run("creates a partial profile when none exists", func(t *testing.T) {
		t.Parallel()
		mock := &mockProfileStore{}
		svc := newTestService(t, mock)

		terminal := requireSequence(t, collect(t, svc.UpdateName(context.Background(), "Mia")))
		require.True(t, terminal.IsSuccess())

		assert.Empty(t, mock.fieldUpdates)
		require.Len(t, mock.upserts, 1)
		assert.Equal(t, "Mia", *mock.upserts[0].Name)
		assert.Nil(t, mock.upserts[0].Birthday)
	})

	t.Run("invalid name never reaches storage", func(t *testing.T) {
		t.Parallel()
		mock := &mockProfileStore{}
		svc := newTestService(t, mock)

		terminal := requireSequence(t, collect(t, svc.UpdateName(context.Background(), "   ")))
		require.True(t, terminal.IsError())
		assert.Equal(t, "Baby name cannot be empty", terminal.Message)
		assert.Empty(t, mock.upserts)
		assert.Empty(t, mock.fieldUpdates)
	})
}

func TestServiceUpdateBirthday(t *testing.T) {
	t.Parallel()

	t.Run("creates a partial profile when none exists", func(t *testing.T) {
		t.Parallel()
		mock := &mockProfileStore{}
		svc := newTestService(t, mock)

		terminal := requireSequence(t, collect(t, svc.UpdateBirthday(context.Background(), domain.NewDate(2024, 11, 1))))
		require.True(t, terminal.IsSuccess())

		require.Len(t, mock.upserts, 1)
		assert.Nil(t, mock.upserts[0].Name)
		assert.Equal(t, "2024-11-01", *mock.upserts[0].Birthday)
	})

	t.Run("future birthday is rejected", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(t, &mockProfileStore{})

		future := domain.DateOf(testNow.AddDate(0, 0, 1))
		terminal := requireSequence(t, collect(t, svc.UpdateBirthday(context.Background(), future)))
		require.True(t, terminal.IsError())
		assert.Equal(t, "Baby's birthday cannot be in the future", terminal.Message)
	})
}

func TestServiceUpdatePicture(t *testing.T) {
	t.Parallel()

	t.Run("updates the existing profile", func(t *testing.T) {
		t.Parallel()
		mock := &mockProfileStore{row: &store.ProfileRow{ID: domain.ProfileID}}
		svc := newTestService(t, mock)

		terminal := requireSequence(t, collect(t, svc.UpdatePicture(context.Background(), strPtr("content://photos/42"))))
		require.True(t, terminal.IsSuccess())

		require.Len(t, mock.fieldUpdates, 1)
		assert.Equal(t, store.FieldPicture, mock.fieldUpdates[0].field)
		assert.Equal(t, "content://photos/42", *mock.fieldUpdates[0].value)
	})

	t.Run("nil picture is rejected, not cleared", func(t *testing.T) {
		t.Parallel()
		mock := &mockProfileStore{row: &store.ProfileRow{ID: domain.ProfileID, PictureURI: strPtr("content://photos/42")}}
		svc := newTestService(t, mock)

		terminal := requireSequence(t, collect(t, svc.UpdatePicture(context.Background(), nil)))
		require.True(t, terminal.IsError())
		assert.Equal(t, "Picture URI is null or blank", terminal.Message)
		assert.Empty(t, mock.fieldUpdates)
	})

	t.Run("unsupported scheme is rejected", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(t, &mockProfileStore{})

		terminal := requireSequence(t, collect(t, svc.UpdatePicture(context.Background(), strPtr("ftp://photos/42"))))
		require.True(t, terminal.IsError())
		assert.Equal(t, "Invalid picture format", terminal.Message)
	})
}

func TestServiceExists(t *testing.T) {
	t.Parallel()

	t.Run("reports presence", func(t *testing.T) {
		t.Parallel()
		mock := &mockProfileStore{row: &store.ProfileRow{ID: domain.ProfileID}}
		svc := newTestService(t, mock)

		terminal := requireSequence(t, collect(t, svc.Exists(context.Background())))
		require.True(t, terminal.IsSuccess())
		assert.True(t, terminal.Data)
	})

	t.Run("reports absence", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(t, &mockProfileStore{})

		terminal := requireSequence(t, collect(t, svc.Exists(context.Background())))
		require.True(t, terminal.IsSuccess())
		assert.False(t, terminal.Data)
	})
}

func TestServiceDelete(t *testing.T) {
	t.Parallel()

	t.Run("deletes and subsequent reads see nothing", func(t *testing.T) {
		t.Parallel()
		mock := &mockProfileStore{row: &store.ProfileRow{ID: domain.ProfileID, Name: strPtr("Mia")}}
		svc := newTestService(t, mock)

		terminal := requireSequence(t, collect(t, svc.Delete(context.Background())))
		require.True(t, terminal.IsSuccess())

		after := requireSequence(t, collect(t, svc.Exists(context.Background())))
		assert.False(t, after.Data)
	})

	t.Run("absent profile reports not found", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(t, &mockProfileStore{})

		terminal := requireSequence(t, collect(t, svc.Delete(context.Background())))
		require.True(t, terminal.IsError())
		assert.Equal(t, "Baby profile not found", terminal.Message)
		assert.ErrorIs(t, terminal.Err, domain.ErrProfileNotFound)
	})
}

func TestServiceDisplayData(t *testing.T) {
	t.Parallel()

	t.Run("composes age and theme from a complete profile", func(t *testing.T) {
		t.Parallel()
		// Born 2024-11-01, today fixed at 2025-06-15: seven full months.
		mock := &mockProfileStore{row: &store.ProfileRow{
			ID:       domain.ProfileID,
			Name:     strPtr("Mia"),
			Birthday: strPtr("2024-11-01"),
		}}
		svc := newTestService(t, mock)

		terminal := requireSequence(t, collect(t, svc.DisplayData(context.Background())))
		require.True(t, terminal.IsSuccess())
		require.NotNil(t, terminal.Data)
		assert.Equal(t, "Mia", terminal.Data.Name)
		assert.Equal(t, 7, terminal.Data.AgeNumber)
		assert.Equal(t, domain.AgeUnitMonths, terminal.Data.AgeUnit)
		assert.Equal(t, domain.ThemeBlue, terminal.Data.Theme)
	})

	t.Run("no profile", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(t, &mockProfileStore{})

		terminal := requireSequence(t, collect(t, svc.DisplayData(context.Background())))
		require.True(t, terminal.IsError())
		assert.Equal(t, "No baby profile found", terminal.Message)
		assert.ErrorIs(t, terminal.Err, domain.ErrProfileNotFound)
	})

	t.Run("incomplete profile", func(t *testing.T) {
		t.Parallel()
		mock := &mockProfileStore{row: &store.ProfileRow{ID: domain.ProfileID, Name: strPtr("Mia")}}
		svc := newTestService(t, mock)

		terminal := requireSequence(t, collect(t, svc.DisplayData(context.Background())))
		require.True(t, terminal.IsError())
		assert.Equal(t, "Baby profile is incomplete. Name and birthday are required.", terminal.Message)
		assert.ErrorIs(t, terminal.Err, domain.ErrProfileIncomplete)
	})
}

func TestServiceObserve(t *testing.T) {
	t.Parallel()

	t.Run("single loading marker then one state per emission", func(t *testing.T) {
		t.Parallel()
		streamErr := errors.New("listener dropped")
		mock := &mockProfileStore{watchFn: staticWatch(
			store.ChangeEvent{Row: nil},
			store.ChangeEvent{Row: &store.ProfileRow{ID: domain.ProfileID, Name: strPtr("Mia")}},
			store.ChangeEvent{Err: streamErr},
		)}
		svc := newTestService(t, mock)

		states := collect(t, svc.Observe(context.Background()))
		require.Len(t, states, 4)

		assert.True(t, states[0].IsLoading())

		assert.True(t, states[1].IsSuccess())
		assert.Nil(t, states[1].Data, "absent profile observes as success with nil payload")

		assert.True(t, states[2].IsSuccess())
		require.NotNil(t, states[2].Data)
		assert.Equal(t, "Mia", *states[2].Data.Name)

		require.True(t, states[3].IsError(), "a stream fault must not end the sequence silently")
		assert.Equal(t, "Something went wrong. Please try again.", states[3].Message)
	})
}

func TestUserMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not found", domain.ErrProfileNotFound, "Baby profile not found"},
		{"database", domain.NewDatabaseError(domain.OpGet, errors.New("boom")), "Something went wrong. Please try again."},
		{"unknown", errors.New("boom"), "An unexpected error occurred"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, userMessage(tc.err))
		})
	}
}
