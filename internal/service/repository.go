package service

import (
	"context"
	"log/slog"

	"github.com/hatchling-app/profile-api/internal/domain"
	"github.com/hatchling-app/profile-api/internal/platform/logger"
	"github.com/hatchling-app/profile-api/internal/store"
)

// SnapshotKind tags an observation emission so consumers can tell a
// missing profile apart from a faulted read.
type SnapshotKind int

// Observation emission kinds.
const (
	SnapshotValue SnapshotKind = iota
	SnapshotEmpty
	SnapshotFault
)

// Snapshot is one emission of the profile observation stream.
type Snapshot struct {
	Kind    SnapshotKind
	Profile *domain.Profile
	Err     error
}

// ProfileRepository translates store rows and failures into domain-level
// outcomes. It owns no policy beyond that translation: the update-or-create
// decision before partial updates belongs to the interactors.
type ProfileRepository struct {
	store  store.ProfileStore
	logger *slog.Logger
}

// NewProfileRepository creates a ProfileRepository.
// It returns an error if the store dependency is nil.
func NewProfileRepository(profileStore store.ProfileStore, log *slog.Logger) (*ProfileRepository, error) {
	if profileStore == nil {
		return nil, domain.NewValidationError("store", "cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &ProfileRepository{
		store:  profileStore,
		logger: log.With(slog.String("component", "profile_repository")),
	}, nil
}

// GetOnce retrieves the profile, or (nil, nil) when none exists.
func (r *ProfileRepository) GetOnce(ctx context.Context) (*domain.Profile, error) {
	row, err := r.store.Get(ctx)
	if err != nil {
		return nil, domain.NewDatabaseError(domain.OpGet, err)
	}
	if row == nil {
		return nil, nil
	}
	return r.rowToProfile(ctx, row), nil
}

// Save replaces the entire singleton profile row.
func (r *ProfileRepository) Save(ctx context.Context, profile *domain.Profile) error {
	if err := r.store.Upsert(ctx, profileToRow(profile)); err != nil {
		return domain.NewDatabaseError(domain.OpSave, err)
	}
	return nil
}

// UpdateName updates only the name field of the existing row.
// Returns domain.ErrProfileNotFound when no row exists.
func (r *ProfileRepository) UpdateName(ctx context.Context, name string) error {
	return r.updateField(ctx, store.FieldName, &name)
}

// UpdateBirthday updates only the birthday field of the existing row.
// Returns domain.ErrProfileNotFound when no row exists.
func (r *ProfileRepository) UpdateBirthday(ctx context.Context, birthday domain.Date) error {
	value := birthday.String()
	return r.updateField(ctx, store.FieldBirthday, &value)
}

// UpdatePicture updates only the picture field of the existing row. A nil
// URI clears the picture. Returns domain.ErrProfileNotFound when no row
// exists.
func (r *ProfileRepository) UpdatePicture(ctx context.Context, pictureURI *string) error {
	return r.updateField(ctx, store.FieldPicture, pictureURI)
}

func (r *ProfileRepository) updateField(ctx context.Context, field store.ProfileField, value *string) error {
	affected, err := r.store.UpdateField(ctx, field, value)
	if err != nil {
		return domain.NewDatabaseError(domain.OpUpdate, err)
	}
	if affected == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

// Exists reports whether the profile row exists.
func (r *ProfileRepository) Exists(ctx context.Context) (bool, error) {
	exists, err := r.store.Exists(ctx)
	if err != nil {
		return false, domain.NewDatabaseError(domain.OpExists, err)
	}
	return exists, nil
}

// Delete removes the profile row entirely. Returns
// domain.ErrProfileNotFound when no row existed.
func (r *ProfileRepository) Delete(ctx context.Context) error {
	affected, err := r.store.Delete(ctx)
	if err != nil {
		return domain.NewDatabaseError(domain.OpDelete, err)
	}
	if affected == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

// Observe subscribes to the store change stream and maps each emission to
// a tagged snapshot. Stream faults become SnapshotFault emissions so
// consumers can tell "no profile" from "read failed"; the stream itself
// stays alive until ctx is cancelled.
func (r *ProfileRepository) Observe(ctx context.Context) <-chan Snapshot {
	out := make(chan Snapshot)

	go func() {
		defer close(out)

		for event := range r.store.Watch(ctx) {
			var snapshot Snapshot
			switch {
			case event.Err != nil:
				snapshot = Snapshot{Kind: SnapshotFault, Err: domain.NewDatabaseError(domain.OpObserve, event.Err)}
			case event.Row == nil:
				snapshot = Snapshot{Kind: SnapshotEmpty}
			default:
				snapshot = Snapshot{Kind: SnapshotValue, Profile: r.rowToProfile(ctx, event.Row)}
			}

			select {
			case out <- snapshot:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// rowToProfile maps a storage row to the domain entity. A birthday that
// fails to parse is logged and coerced to absent rather than failing the
// whole read.
func (r *ProfileRepository) rowToProfile(ctx context.Context, row *store.ProfileRow) *domain.Profile {
	log := logger.FromContextOrDefault(ctx, r.logger)

	var birthday *domain.Date
	if row.Birthday != nil {
		parsed, err := domain.ParseDate(*row.Birthday)
		if err != nil {
			log.Warn("discarding unparseable stored birthday",
				slog.String("value", *row.Birthday),
				slog.String("error", err.Error()))
		} else {
			birthday = &parsed
		}
	}

	return &domain.Profile{
		ID:         row.ID,
		Name:       row.Name,
		Birthday:   birthday,
		PictureURI: row.PictureURI,
	}
}

func profileToRow(profile *domain.Profile) store.ProfileRow {
	row := store.ProfileRow{
		ID:         profile.ID,
		Name:       profile.Name,
		PictureURI: profile.PictureURI,
	}
	if profile.Birthday != nil {
		value := profile.Birthday.String()
		row.Birthday = &value
	}
	return row
}
