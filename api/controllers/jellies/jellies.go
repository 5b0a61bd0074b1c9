package jellies

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dreamcandylab/candylab-backend/api/middleware"
	"github.com/dreamcandylab/candylab-backend/api/responses"
	"github.com/dreamcandylab/candylab-backend/api/validators"
	"github.com/dreamcandylab/candylab-backend/internal/catalog"
	internaljellies "github.com/dreamcandylab/candylab-backend/internal/jellies"
	"github.com/dreamcandylab/candylab-backend/pkg/db/models"
	"github.com/dreamcandylab/candylab-backend/pkg/enums"
	pkgerrors "github.com/dreamcandylab/candylab-backend/pkg/errors"
	"github.com/dreamcandylab/candylab-backend/pkg/logger"
)

// VoteLedger records contest votes.
type VoteLedger interface {
	Vote(ctx context.Context, jellyID, userID uuid.UUID) (int, error)
	VotedJellyIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// Handlers serves the jelly lab and the vote contest.
type Handlers struct {
	svc   internaljellies.Service
	votes VoteLedger
	logg  *logger.Logger
}

func NewHandlers(svc internaljellies.Service, votes VoteLedger, logg *logger.Logger) *Handlers {
	return &Handlers{svc: svc, votes: votes, logg: logg}
}

func (h *Handlers) Latest() http.HandlerFunc {
	return h.list(func(ctx context.Context) ([]models.Jelly, error) {
		return h.svc.ListLatest(ctx)
	})
}

func (h *Handlers) Ranking() http.HandlerFunc {
	return h.list(func(ctx context.Context) ([]models.Jelly, error) {
		return h.svc.ListRanking(ctx)
	})
}

func (h *Handlers) Mine() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.ActorIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}
		rows, err := h.svc.ListByCreator(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}
		responses.WriteSuccess(w, newJellyDTOs(rows))
	}
}

func (h *Handlers) Winner() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jelly, err := h.svc.Winner(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}
		responses.WriteSuccess(w, newJellyDTO(*jelly))
	}
}

func (h *Handlers) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jellyID, err := jellyIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}
		jelly, err := h.svc.Get(r.Context(), jellyID)
		if err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}
		responses.WriteSuccess(w, newJellyDTO(*jelly))
	}
}

// Product returns the jelly converted into a purchasable custom product.
func (h *Handlers) Product() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jellyID, err := jellyIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}
		product, err := h.svc.CustomProduct(r.Context(), catalog.CustomPrefix+jellyID.String())
		if err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func (h *Handlers) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.ActorIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}
		var body createRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}

		jelly, err := h.svc.Create(r.Context(), internaljellies.CreateJellyInput{
			Name:      body.Name,
			Flavor:    body.Flavor,
			Sweetness: body.Sweetness,
			Sourness:  body.Sourness,
			Texture:   body.Texture,
			Color:     body.Color,
		}, userID, middleware.DisplayNameFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newJellyDTO(*jelly))
	}
}

func (h *Handlers) Voted() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.ActorIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}
		ids, err := h.votes.VotedJellyIDs(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}
		responses.WriteSuccess(w, ids)
	}
}

func (h *Handlers) Vote() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.ActorIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}
		jellyID, err := jellyIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}
		total, err := h.votes.Vote(r.Context(), jellyID, userID)
		if err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, voteResponse{JellyID: jellyID, Votes: total})
	}
}

// Delete removes a jelly with its votes. Authors may delete their own;
// admins may delete any.
func (h *Handlers) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.ActorIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}
		jellyID, err := jellyIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}
		role := enums.UserRole(middleware.RoleFromContext(r.Context()))
		if err := h.svc.Delete(r.Context(), jellyID, userID, role); err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *Handlers) list(load func(context.Context) ([]models.Jelly, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := load(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}
		responses.WriteSuccess(w, newJellyDTOs(rows))
	}
}

func jellyIDParam(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "jellyId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "jelly id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid jelly id")
	}
	return id, nil
}
