package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tennisclub/league-system/middleware"
	"github.com/tennisclub/league-system/models"
	"github.com/tennisclub/league-system/services"
)

type ApplicationHandler struct {
	applicationService services.ApplicationService
}

func NewApplicationHandler(as services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{applicationService: as}
}

// Apply записывает участника в лигу. Администратор может подать заявку
// за другого участника, передав member_id в теле запроса.
func (h *ApplicationHandler) Apply(w http.ResponseWriter, r *http.Request) {
	leagueID := chi.URLParam(r, "leagueID")
	if leagueID == "" {
		badRequestResponse(w, r, errors.New("league id is required"))
		return
	}

	currentMemberID, err := middleware.GetMemberIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current member")
		return
	}

	memberID := currentMemberID
	if r.ContentLength > 0 {
		var input struct {
			MemberID string `json:"member_id"`
		}
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
		if input.MemberID != "" && input.MemberID != currentMemberID {
			role, err := middleware.GetMemberRoleFromContext(r.Context())
			if err != nil || role != models.RoleAdmin {
				forbiddenResponse(w, r, "only admins can apply on behalf of another member")
				return
			}
			memberID = input.MemberID
		}
	}

	application, err := h.applicationService.Apply(r.Context(), leagueID, memberID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"application": application,
	}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Cancel снимает заявку. Участник отменяет только свою, администратор
// может снять чужую.
func (h *ApplicationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	leagueID := chi.URLParam(r, "leagueID")
	memberID := chi.URLParam(r, "memberID")
	if leagueID == "" || memberID == "" {
		badRequestResponse(w, r, errors.New("league id and member id are required"))
		return
	}

	currentMemberID, err := middleware.GetMemberIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current member")
		return
	}
	if memberID != currentMemberID {
		role, err := middleware.GetMemberRoleFromContext(r.Context())
		if err != nil || role != models.RoleAdmin {
			forbiddenResponse(w, r, "only admins can cancel another member's application")
			return
		}
	}

	if err := h.applicationService.Cancel(r.Context(), leagueID, memberID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ApplicationHandler) ListByLeague(w http.ResponseWriter, r *http.Request) {
	leagueID := chi.URLParam(r, "leagueID")
	if leagueID == "" {
		badRequestResponse(w, r, errors.New("league id is required"))
		return
	}

	applications, err := h.applicationService.ListByLeague(r.Context(), leagueID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"applications": applications,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
