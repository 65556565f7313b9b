package domain

import "math/rand/v2"

// AgeUnit is the unit the displayed age magnitude is expressed in.
type AgeUnit string

// Age is shown in months until the first birthday, then in years.
const (
	AgeUnitMonths AgeUnit = "months"
	AgeUnitYears  AgeUnit = "years"
)

// Theme is one of the fixed celebration screen themes.
type Theme string

// The fixed theme set a display derivation picks from.
const (
	ThemeGreen  Theme = "green"
	ThemeYellow Theme = "yellow"
	ThemeBlue   Theme = "blue"
)

var themes = []Theme{ThemeGreen, ThemeYellow, ThemeBlue}

// RandomTheme picks a theme uniformly at random.
func RandomTheme() Theme {
	return themes[rand.IntN(len(themes))]
}

// DisplayData is the derived celebration screen content. It is recomputed
// on every derivation and never persisted.
type DisplayData struct {
	Name       string
	AgeNumber  int
	AgeUnit    AgeUnit
	PictureURI *string
	Theme      Theme
}

// ComposeDisplay derives display data from a complete profile, the current
// date and a pre-picked theme. It is a pure function; the caller supplies
// today and the theme so derivation stays deterministic under test.
//
// The age rule: if the whole-year component of the calendar period from
// birthday to today is zero, the whole-month component is reported in
// months; otherwise the whole-year component is reported in years. Day
// remainders are discarded in both branches.
func ComposeDisplay(profile *Profile, today Date, theme Theme) (*DisplayData, error) {
	if profile == nil || !profile.IsComplete() {
		return nil, ErrProfileIncomplete
	}

	years, months := PeriodBetween(*profile.Birthday, today)

	data := &DisplayData{
		Name:       *profile.Name,
		PictureURI: profile.PictureURI,
		Theme:      theme,
	}
	if years == 0 {
		data.AgeNumber = months
		data.AgeUnit = AgeUnitMonths
	} else {
		data.AgeNumber = years
		data.AgeUnit = AgeUnitYears
	}
	return data, nil
}
