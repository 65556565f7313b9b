package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/hatchling-app/profile-api/internal/domain"
	"github.com/hatchling-app/profile-api/internal/platform/logger"
)

// SaveInput carries the optional fields of a full profile save. Nil fields
// are neither validated nor persisted as values.
type SaveInput struct {
	Name       *string
	Birthday   *domain.Date
	PictureURI *string
}

// ProfileService implements the profile use cases. Every operation returns
// a channel that emits a loading state followed by exactly one terminal
// state; Observe keeps emitting one state per profile change after its
// single loading marker. Channels are closed once the sequence ends or the
// caller's context is cancelled.
type ProfileService struct {
	repo      *ProfileRepository
	validator *domain.Validator
	logger    *slog.Logger
	now       func() time.Time
	pickTheme func() domain.Theme
}

// NewProfileService creates a ProfileService.
// It returns an error if any of the required dependencies are nil.
func NewProfileService(repo *ProfileRepository, validator *domain.Validator, log *slog.Logger) (*ProfileService, error) {
	if repo == nil {
		return nil, domain.NewValidationError("repo", "cannot be nil")
	}
	if validator == nil {
		return nil, domain.NewValidationError("validator", "cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &ProfileService{
		repo:      repo,
		validator: validator,
		logger:    log.With(slog.String("component", "profile_service")),
		now:       time.Now,
		pickTheme: domain.RandomTheme,
	}, nil
}

// Get reads the profile once. The terminal success payload is nil when no
// profile exists.
func (s *ProfileService) Get(ctx context.Context) <-chan State[*domain.Profile] {
	out := make(chan State[*domain.Profile], 2)
	go func() {
		defer close(out)
		out <- loading[*domain.Profile]()

		profile, err := s.repo.GetOnce(ctx)
		if err != nil {
			s.logFailure(ctx, "get", err)
			out <- failure[*domain.Profile](userMessage(err), err)
			return
		}
		out <- success(profile)
	}()
	return out
}

// Observe emits one loading state per subscription, then maps every
// repository emission: a value or empty snapshot becomes a success state
// (nil payload for empty), a fault becomes an error state. The stream
// never carries more than one loading marker and stops when ctx is
// cancelled.
func (s *ProfileService) Observe(ctx context.Context) <-chan State[*domain.Profile] {
	out := make(chan State[*domain.Profile], 1)
	go func() {
		defer close(out)
		if !send(ctx, out, loading[*domain.Profile]()) {
			return
		}

		for snapshot := range s.repo.Observe(ctx) {
			var state State[*domain.Profile]
			switch snapshot.Kind {
			case SnapshotFault:
				s.logFailure(ctx, "observe", snapshot.Err)
				state = failure[*domain.Profile](userMessage(snapshot.Err), snapshot.Err)
			case SnapshotEmpty:
				state = success[*domain.Profile](nil)
			default:
				state = success(snapshot.Profile)
			}
			if !send(ctx, out, state) {
				return
			}
		}
	}()
	return out
}

// Save validates and persists a full or partial profile, always as an
// upsert of the entire row.
func (s *ProfileService) Save(ctx context.Context, input SaveInput) <-chan State[struct{}] {
	out := make(chan State[struct{}], 2)
	go func() {
		defer close(out)
		out <- loading[struct{}]()

		name := cleanOptional(input.Name)
		pictureURI := cleanOptional(input.PictureURI)

		if name == nil && input.Birthday == nil && pictureURI == nil {
			out <- failure[struct{}](msgNothingToSave, nil)
			return
		}

		if err := s.validator.ValidateProfileData(name, input.Birthday, pictureURI); err != nil {
			out <- failure[struct{}](err.Error(), err)
			return
		}

		profile := domain.NewProfile(name, input.Birthday, pictureURI)
		if err := s.repo.Save(ctx, profile); err != nil {
			s.logFailure(ctx, "save", err)
			out <- failure[struct{}](userMessage(err), err)
			return
		}
		out <- success(struct{}{})
	}()
	return out
}

// UpdateName validates the new name and commits it, creating a partial
// profile when none exists yet.
func (s *ProfileService) UpdateName(ctx context.Context, newName string) <-chan State[struct{}] {
	out := make(chan State[struct{}], 2)
	go func() {
		defer close(out)
		out <- loading[struct{}]()

		trimmed := strings.TrimSpace(newName)
		if err := s.validator.ValidateName(trimmed); err != nil {
			out <- failure[struct{}](err.Error(), err)
			return
		}

		out <- s.commit(ctx, "update_name",
			func(ctx context.Context) error { return s.repo.UpdateName(ctx, trimmed) },
			func(ctx context.Context) error { return s.repo.Save(ctx, domain.WithName(trimmed)) },
		)
	}()
	return out
}

// UpdateBirthday validates the new birthday and commits it, creating a
// partial profile when none exists yet.
func (s *ProfileService) UpdateBirthday(ctx context.Context, newBirthday domain.Date) <-chan State[struct{}] {
	out := make(chan State[struct{}], 2)
	go func() {
		defer close(out)
		out <- loading[struct{}]()

		if err := s.validator.ValidateBirthday(newBirthday); err != nil {
			out <- failure[struct{}](err.Error(), err)
			return
		}

		out <- s.commit(ctx, "update_birthday",
			func(ctx context.Context) error { return s.repo.UpdateBirthday(ctx, newBirthday) },
			func(ctx context.Context) error { return s.repo.Save(ctx, domain.WithBirthday(newBirthday)) },
		)
	}()
	return out
}

// UpdatePicture validates the new picture reference and commits it,
// creating a partial profile when none exists yet. The validator treats a
// nil or blank URI as a failure, so "no picture" never reaches the
// repository through this operation; that asymmetry is inherited product
// behavior.
func (s *ProfileService) UpdatePicture(ctx context.Context, newPictureURI *string) <-chan State[struct{}] {
	out := make(chan State[struct{}], 2)
	go func() {
		defer close(out)
		out <- loading[struct{}]()

		if err := s.validator.ValidatePictureURI(newPictureURI); err != nil {
			out <- failure[struct{}](err.Error(), err)
			return
		}
		trimmed := strings.TrimSpace(*newPictureURI)

		out <- s.commit(ctx, "update_picture",
			func(ctx context.Context) error { return s.repo.UpdatePicture(ctx, &trimmed) },
			func(ctx context.Context) error { return s.repo.Save(ctx, domain.WithPicture(trimmed)) },
		)
	}()
	return out
}

// Exists reports whether a profile has been created.
func (s *ProfileService) Exists(ctx context.Context) <-chan State[bool] {
	out := make(chan State[bool], 2)
	go func() {
		defer close(out)
		out <- loading[bool]()

		exists, err := s.repo.Exists(ctx)
		if err != nil {
			s.logFailure(ctx, "exists", err)
			out <- failure[bool](userMessage(err), err)
			return
		}
		out <- success(exists)
	}()
	return out
}

// Delete removes the profile entirely. A subsequent read reports "does not
// exist", not an empty profile.
func (s *ProfileService) Delete(ctx context.Context) <-chan State[struct{}] {
	out := make(chan State[struct{}], 2)
	go func() {
		defer close(out)
		out <- loading[struct{}]()

		if err := s.repo.Delete(ctx); err != nil {
			s.logFailure(ctx, "delete", err)
			out <- failure[struct{}](userMessage(err), err)
			return
		}
		out <- success(struct{}{})
	}()
	return out
}

// DisplayData derives the celebration screen content from a complete
// profile: the age magnitude and unit plus a theme picked uniformly at
// random on every derivation.
func (s *ProfileService) DisplayData(ctx context.Context) <-chan State[*domain.DisplayData] {
	out := make(chan State[*domain.DisplayData], 2)
	go func() {
		defer close(out)
		out <- loading[*domain.DisplayData]()

		profile, err := s.repo.GetOnce(ctx)
		if err != nil {
			s.logFailure(ctx, "display_data", err)
			out <- failure[*domain.DisplayData](userMessage(err), err)
			return
		}
		if profile == nil {
			out <- failure[*domain.DisplayData](msgNoProfile, domain.ErrProfileNotFound)
			return
		}

		today := domain.DateOf(s.now())
		data, err := domain.ComposeDisplay(profile, today, s.pickTheme())
		if err != nil {
			out <- failure[*domain.DisplayData](msgIncompleteProfile, err)
			return
		}
		out <- success(data)
	}()
	return out
}

// commit applies the update-or-create policy shared by the single-field
// update operations: check existence first, then either update the
// existing row or save a new partial profile, so first-ever field entry
// never trips a not-found error.
func (s *ProfileService) commit(
	ctx context.Context,
	operation string,
	update func(ctx context.Context) error,
	create func(ctx context.Context) error,
) State[struct{}] {
	exists, err := s.repo.Exists(ctx)
	if err != nil {
		s.logFailure(ctx, operation, err)
		return failure[struct{}](userMessage(err), err)
	}

	if exists {
		err = update(ctx)
	} else {
		err = create(ctx)
	}
	if err != nil {
		s.logFailure(ctx, operation, err)
		return failure[struct{}](userMessage(err), err)
	}
	return success(struct{}{})
}

func (s *ProfileService) logFailure(ctx context.Context, operation string, err error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	log.Error("profile operation failed",
		slog.String("operation", operation),
		slog.String("error", err.Error()))
}

// cleanOptional trims an optional string and converts blank-after-trim to
// absent.
func cleanOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func send[T any](ctx context.Context, out chan<- State[T], state State[T]) bool {
	select {
	case out <- state:
		return true
	case <-ctx.Done():
		return false
	}
}
