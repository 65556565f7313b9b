package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hatchling-app/profile-api/internal/api/shared"
	"github.com/hatchling-app/profile-api/internal/domain"
	"github.com/hatchling-app/profile-api/internal/platform/logger"
	"github.com/hatchling-app/profile-api/internal/service"
)

// ProfileService defines the use-case surface the handler depends on.
// Satisfied by *service.ProfileService.
type ProfileService interface {
	Get(ctx context.Context) <-chan service.State[*domain.Profile]
	Observe(ctx context.Context) <-chan service.State[*domain.Profile]
	Save(ctx context.Context, input service.SaveInput) <-chan service.State[struct{}]
	UpdateName(ctx context.Context, newName string) <-chan service.State[struct{}]
	UpdateBirthday(ctx context.Context, newBirthday domain.Date) <-chan service.State[struct{}]
	UpdatePicture(ctx context.Context, newPictureURI *string) <-chan service.State[struct{}]
	Exists(ctx context.Context) <-chan service.State[bool]
	Delete(ctx context.Context) <-chan service.State[struct{}]
	DisplayData(ctx context.Context) <-chan service.State[*domain.DisplayData]
}

// NameDraftSink receives raw keystroke-level name values for debounced
// auto-save. Satisfied by *task.AutoSaver.
type NameDraftSink interface {
	Input(value string)
}

// ProfileHandler handles profile-related HTTP requests.
type ProfileHandler struct {
	service ProfileService
	drafts  NameDraftSink
	logger  *slog.Logger
}

// NewProfileHandler creates a new ProfileHandler. The drafts sink may be
// nil, in which case the name draft endpoint responds 503.
func NewProfileHandler(profileService ProfileService, drafts NameDraftSink, log *slog.Logger) *ProfileHandler {
	if profileService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("profileService cannot be nil for ProfileHandler")
	}
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ProfileHandler")
	}

	return &ProfileHandler{
		service: profileService,
		drafts:  drafts,
		logger:  log.With(slog.String("component", "profile_handler")),
	}
}

// Routes registers the profile endpoints on the given router.
func (h *ProfileHandler) Routes(r chi.Router) {
	r.Route("/profile", func(r chi.Router) {
		r.Get("/", h.GetProfile)
		r.Put("/", h.SaveProfile)
		r.Delete("/", h.DeleteProfile)
		r.Get("/exists", h.ProfileExists)
		r.Get("/display", h.GetDisplay)
		r.Get("/events", h.StreamEvents)
		r.Patch("/name", h.UpdateName)
		r.Patch("/birthday", h.UpdateBirthday)
		r.Patch("/picture", h.UpdatePicture)
		r.Post("/name/draft", h.SubmitNameDraft)
	})
}

// awaitTerminal drains a finite state sequence and returns its terminal
// state. A zero state (still loading) means the sequence was cut short by
// context cancellation.
func awaitTerminal[T any](states <-chan service.State[T]) service.State[T] {
	var terminal service.State[T]
	for s := range states {
		if !s.IsLoading() {
			terminal = s
		}
	}
	return terminal
}

// respondTerminalError writes the terminal error state to the client,
// reporting true when the state was an error.
func respondTerminalError[T any](w http.ResponseWriter, r *http.Request, terminal service.State[T]) bool {
	if terminal.IsLoading() {
		// Sequence never finished: the client went away.
		return true
	}
	if !terminal.IsError() {
		return false
	}
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(terminal.Err), terminal.Message, terminal.Err)
	return true
}

// GetProfile handles GET /profile requests.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	terminal := awaitTerminal(h.service.Get(r.Context()))
	if respondTerminalError(w, r, terminal) {
		return
	}
	if terminal.Data == nil {
		shared.RespondWithError(w, r, http.StatusNotFound, "Baby profile not found")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, profileToResponse(terminal.Data))
}

// SaveProfile handles PUT /profile requests. The entire profile row is
// replaced with the provided fields.
func (h *ProfileHandler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req SaveProfileRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Debug("malformed save request", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	input := service.SaveInput{
		Name:       req.Name,
		PictureURI: req.PictureURI,
	}
	if req.Birthday != nil {
		parsed, err := domain.ParseDate(*req.Birthday)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		input.Birthday = &parsed
	}

	terminal := awaitTerminal(h.service.Save(r.Context(), input))
	if respondTerminalError(w, r, terminal) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateName handles PATCH /profile/name requests.
func (h *ProfileHandler) UpdateName(w http.ResponseWriter, r *http.Request) {
	var req UpdateNameRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	terminal := awaitTerminal(h.service.UpdateName(r.Context(), req.Name))
	if respondTerminalError(w, r, terminal) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateBirthday handles PATCH /profile/birthday requests.
func (h *ProfileHandler) UpdateBirthday(w http.ResponseWriter, r *http.Request) {
	var req UpdateBirthdayRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Birthday is required")
		return
	}

	parsed, err := domain.ParseDate(req.Birthday)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	terminal := awaitTerminal(h.service.UpdateBirthday(r.Context(), parsed))
	if respondTerminalError(w, r, terminal) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdatePicture handles PATCH /profile/picture requests.
func (h *ProfileHandler) UpdatePicture(w http.ResponseWriter, r *http.Request) {
	var req UpdatePictureRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	terminal := awaitTerminal(h.service.UpdatePicture(r.Context(), req.PictureURI))
	if respondTerminalError(w, r, terminal) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ProfileExists handles GET /profile/exists requests.
func (h *ProfileHandler) ProfileExists(w http.ResponseWriter, r *http.Request) {
	terminal := awaitTerminal(h.service.Exists(r.Context()))
	if respondTerminalError(w, r, terminal) {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ExistsResponse{Exists: terminal.Data})
}

// DeleteProfile handles DELETE /profile requests.
func (h *ProfileHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	terminal := awaitTerminal(h.service.Delete(r.Context()))
	if respondTerminalError(w, r, terminal) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetDisplay handles GET /profile/display requests.
func (h *ProfileHandler) GetDisplay(w http.ResponseWriter, r *http.Request) {
	terminal := awaitTerminal(h.service.DisplayData(r.Context()))
	if respondTerminalError(w, r, terminal) {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, displayToResponse(terminal.Data))
}

// SubmitNameDraft handles POST /profile/name/draft requests. The raw value
// is handed to the auto-save pipeline and acknowledged immediately; the
// actual commit happens after the quiet period.
func (h *ProfileHandler) SubmitNameDraft(w http.ResponseWriter, r *http.Request) {
	if h.drafts == nil {
		shared.RespondWithError(w, r, http.StatusServiceUnavailable, "Name auto-save is not available")
		return
	}

	var req NameDraftRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.drafts.Input(req.Name)
	w.WriteHeader(http.StatusAccepted)
}

// streamEvent is one server-sent event of the profile change stream.
type streamEvent struct {
	Profile *ProfileResponse `json:"profile,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// StreamEvents handles GET /profile/events requests. It serves the
// observation stream as server-sent events: one "state" event per
// emission, with a nil profile for the empty snapshot and an error field
// for stream faults. The stream runs until the client disconnects.
func (h *ProfileHandler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	flusher, ok := w.(http.Flusher)
	if !ok {
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Streaming is not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for state := range h.service.Observe(r.Context()) {
		if state.IsLoading() {
			continue
		}

		event := streamEvent{}
		if state.IsError() {
			event.Error = state.Message
		} else if state.Data != nil {
			response := profileToResponse(state.Data)
			event.Profile = &response
		}

		payload, err := json.Marshal(event)
		if err != nil {
			log.Error("failed to encode stream event", slog.String("error", err.Error()))
			return
		}
		if _, err := w.Write([]byte("event: state\ndata: " + string(payload) + "\n\n")); err != nil {
			log.Debug("event stream client gone", slog.String("error", err.Error()))
			return
		}
		flusher.Flush()
	}
}
