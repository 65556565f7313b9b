package domain

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Name length bounds, counted in runes after trimming.
const (
	MinNameLength = 1
	MaxNameLength = 50
)

// pictureURISchemes are the recognized picture reference prefixes, matched
// case-insensitively.
var pictureURISchemes = []string{
	"content://",
	"file://",
	"http://",
	"https://",
	"android.resource://",
}

// Validator checks profile fields against the business rules. It performs
// no I/O and is deterministic for a fixed clock, which tests inject via
// NewValidatorWithClock.
type Validator struct {
	now func() time.Time
}

// NewValidator creates a Validator that evaluates "today" with the system
// clock in the local time zone.
func NewValidator() *Validator {
	return &Validator{now: time.Now}
}

// NewValidatorWithClock creates a Validator with a fixed clock source.
func NewValidatorWithClock(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{now: now}
}

// ValidateName checks the baby name rules. The checks run in a fixed order
// so exactly one reason is reported: blank first, then length, then
// character class, then consecutive spaces.
func (v *Validator) ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)

	if trimmed == "" {
		return NewValidationError("name", "Baby name cannot be empty")
	}
	if utf8.RuneCountInString(trimmed) > MaxNameLength {
		return NewValidationError("name", "Baby name cannot exceed 50 characters")
	}
	for _, r := range trimmed {
		if !unicode.IsLetter(r) && r != ' ' {
			return NewValidationError("name", "Baby name can only contain letters and spaces")
		}
	}
	var prevSpace bool
	for _, r := range trimmed {
		if unicode.IsSpace(r) && prevSpace {
			return NewValidationError("name", "Baby name cannot contain consecutive spaces")
		}
		prevSpace = unicode.IsSpace(r)
	}
	return nil
}

// ValidateBirthday fails iff the birthday is strictly after today in the
// local time zone. Today itself is a valid birthday.
func (v *Validator) ValidateBirthday(birthday Date) error {
	today := DateOf(v.now())
	if birthday.After(today) {
		return NewValidationError("birthday", "Baby's birthday cannot be in the future")
	}
	return nil
}

// ValidatePictureURI checks the picture reference format. A nil or blank
// URI is reported as a failure; callers that allow "no picture" must filter
// that case before calling the validator.
func (v *Validator) ValidatePictureURI(pictureURI *string) error {
	if pictureURI == nil || strings.TrimSpace(*pictureURI) == "" {
		return NewValidationError("picture_uri", "Picture URI is null or blank")
	}

	trimmed := strings.ToLower(strings.TrimSpace(*pictureURI))
	for _, scheme := range pictureURISchemes {
		if strings.HasPrefix(trimmed, scheme) {
			return nil
		}
	}
	return NewValidationError("picture_uri", "Invalid picture format")
}

// ValidateProfileData validates only the fields actually supplied,
// short-circuiting on the first failure in the order name, birthday,
// picture URI. Nil fields are not checked.
func (v *Validator) ValidateProfileData(name *string, birthday *Date, pictureURI *string) error {
	if name != nil {
		if err := v.ValidateName(*name); err != nil {
			return err
		}
	}
	if birthday != nil {
		if err := v.ValidateBirthday(*birthday); err != nil {
			return err
		}
	}
	if pictureURI != nil {
		if err := v.ValidatePictureURI(pictureURI); err != nil {
			return err
		}
	}
	return nil
}
