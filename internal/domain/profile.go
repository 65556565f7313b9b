package domain

// ProfileID is the fixed identifier of the singleton profile row. Exactly
// one profile ever exists in this system.
const ProfileID int64 = 1

// Profile represents the baby profile in the business layer, independent of
// storage or transport concerns. All three data fields are optional:
// partial profiles are valid intermediate states while the user fills the
// form one field at a time.
type Profile struct {
	ID         int64
	Name       *string
	Birthday   *Date
	PictureURI *string
}

// NewProfile creates a profile carrying the supplied fields; omitted fields
// stay nil.
func NewProfile(name *string, birthday *Date, pictureURI *string) *Profile {
	return &Profile{
		ID:         ProfileID,
		Name:       name,
		Birthday:   birthday,
		PictureURI: pictureURI,
	}
}

// WithName creates a partial profile carrying only a name.
func WithName(name string) *Profile {
	return NewProfile(&name, nil, nil)
}

// WithBirthday creates a partial profile carrying only a birthday.
func WithBirthday(birthday Date) *Profile {
	return NewProfile(nil, &birthday, nil)
}

// WithPicture creates a partial profile carrying only a picture reference.
func WithPicture(pictureURI string) *Profile {
	return NewProfile(nil, nil, &pictureURI)
}

// IsEmpty reports whether all three data fields are absent. Empty profiles
// are never persisted.
func (p *Profile) IsEmpty() bool {
	return p.Name == nil && p.Birthday == nil && p.PictureURI == nil
}

// IsComplete reports whether the profile has both a name and a birthday,
// the only state from which celebration display data can be derived.
func (p *Profile) IsComplete() bool {
	return p.Name != nil && *p.Name != "" && p.Birthday != nil
}
