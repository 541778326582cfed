package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/rs/zerolog/log"

	"github.com/princebabou/wishCraft/internal/app"
	"github.com/princebabou/wishCraft/internal/database"
	"github.com/princebabou/wishCraft/internal/metrics"
	"github.com/princebabou/wishCraft/internal/middleware"
	"github.com/princebabou/wishCraft/internal/models"
)

// maxBodyBytes bounds POST /card bodies.
const maxBodyBytes = 64 << 10

type CardHandler struct {
	app      *app.App
	validate *validator.Validate
}

func NewCardHandler(app *app.App) *CardHandler {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(fmt.Sprintf("register notblank validation: %v", err))
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &CardHandler{app: app, validate: v}
}

// CreateCard handles POST /card.
func (h *CardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.CreateCardRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		h.app.Metrics.ObserveCreateFailure(metrics.CreateInvalid)
		writeError(w, r, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.app.Metrics.ObserveCreateFailure(metrics.CreateInvalid)
		writeError(w, r, http.StatusBadRequest, "Invalid card", validationDetails(err))
		return
	}

	slug, err := req.ResolveSlug()
	if err != nil {
		h.app.Metrics.ObserveCreateFailure(metrics.CreateInvalid)
		writeError(w, r, http.StatusBadRequest, "Invalid slug", err.Error())
		return
	}

	card := req.Card(slug)
	logger := log.With().Str("slug", slug).Str("request_id", middleware.GetRequestID(ctx)).Logger()

	if err := h.app.Cards.Create(ctx, card); err != nil {
		switch {
		case errors.Is(err, database.ErrDuplicateSlug):
			h.app.Metrics.ObserveCreateFailure(metrics.CreateDuplicate)
			logger.Warn().Err(err).Msg("slug already taken")
			writeError(w, r, http.StatusConflict, "Slug already taken", err.Error())
		case errors.Is(err, database.ErrInvalidCard):
			h.app.Metrics.ObserveCreateFailure(metrics.CreateInvalid)
			writeError(w, r, http.StatusBadRequest, "Invalid card", err.Error())
		default:
			h.app.Metrics.ObserveCreateFailure(metrics.CreateStore)
			logger.Error().Err(err).Msg("database operation failed")
			writeError(w, r, http.StatusInternalServerError, "Internal server error", err.Error())
		}
		return
	}

	h.app.Metrics.CardCreated()
	logger.Info().Msg("card created")
	writeJSON(w, r, http.StatusCreated, models.CreateCardResponse{
		Success: true,
		Result:  card,
		URL:     h.app.ShareURL(r, slug),
	})
}

// GetCard handles GET /card?slug=<slug>.
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := r.URL.Query().Get("slug")
	if slug == "" {
		writeError(w, r, http.StatusBadRequest, "Slug is required", "")
		return
	}

	card, err := h.app.Cards.GetBySlug(ctx, slug)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrNotFound):
			h.app.Metrics.ObserveLookup(metrics.LookupNotFound)
			log.Debug().Str("slug", slug).Msg("card not found")
			writeError(w, r, http.StatusNotFound, "Card not found", "")
		case errors.Is(err, database.ErrInvalidCard):
			writeError(w, r, http.StatusBadRequest, "Slug is required", "")
		default:
			h.app.Metrics.ObserveLookup(metrics.LookupError)
			log.Error().Err(err).Str("slug", slug).Str("request_id", middleware.GetRequestID(ctx)).Msg("db operation failed")
			writeError(w, r, http.StatusInternalServerError, "Internal server error", err.Error())
		}
		return
	}

	h.app.Metrics.ObserveLookup(metrics.LookupFound)
	writeJSON(w, r, http.StatusOK, models.GetCardResponse{Success: true, Card: card})
}

func validationDetails(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return field + " is required"
	case "gte":
		return field + " must be at least " + fe.Param()
	}
	return field + " is invalid"
}
