package api

import (
	"github.com/hatchling-app/profile-api/internal/domain"
)

// ProfileResponse represents the response data for the profile.
// The birthday is serialized as YYYY-MM-DD.
type ProfileResponse struct {
	Name       *string `json:"name"`
	Birthday   *string `json:"birthday"`
	PictureURI *string `json:"picture_uri"`
}

// SaveProfileRequest represents the request body for a full profile save.
// All fields are optional but at least one must carry a value.
type SaveProfileRequest struct {
	Name       *string `json:"name"`
	Birthday   *string `json:"birthday"`
	PictureURI *string `json:"picture_uri"`
}

// UpdateNameRequest represents the request body for a name update.
type UpdateNameRequest struct {
	Name string `json:"name"`
}

// UpdateBirthdayRequest represents the request body for a birthday update.
type UpdateBirthdayRequest struct {
	Birthday string `json:"birthday" validate:"required"`
}

// UpdatePictureRequest represents the request body for a picture update.
// The URI stays a pointer so a missing field reaches the domain validator
// as absent rather than as an empty string.
type UpdatePictureRequest struct {
	PictureURI *string `json:"picture_uri"`
}

// NameDraftRequest represents one keystroke-level name value fed to the
// auto-save pipeline.
type NameDraftRequest struct {
	Name string `json:"name"`
}

// ExistsResponse reports whether a profile has been created.
type ExistsResponse struct {
	Exists bool `json:"exists"`
}

// DisplayResponse represents the derived celebration screen content.
type DisplayResponse struct {
	Name       string  `json:"name"`
	AgeNumber  int     `json:"age_number"`
	AgeUnit    string  `json:"age_unit"`
	PictureURI *string `json:"picture_uri"`
	Theme      string  `json:"theme"`
}

func profileToResponse(profile *domain.Profile) ProfileResponse {
	response := ProfileResponse{
		Name:       profile.Name,
		PictureURI: profile.PictureURI,
	}
	if profile.Birthday != nil {
		value := profile.Birthday.String()
		response.Birthday = &value
	}
	return response
}

func displayToResponse(data *domain.DisplayData) DisplayResponse {
	return DisplayResponse{
		Name:       data.Name,
		AgeNumber:  data.AgeNumber,
		AgeUnit:    string(data.AgeUnit),
		PictureURI: data.PictureURI,
		Theme:      string(data.Theme),
	}
}
