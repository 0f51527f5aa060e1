package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/tennisclub/league-system/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(ms services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: ms}
}

func (h *MatchHandler) ListByLeague(w http.ResponseWriter, r *http.Request) {
	leagueID := chi.URLParam(r, "leagueID")
	if leagueID == "" {
		badRequestResponse(w, r, errors.New("league id is required"))
		return
	}

	matches, err := h.matchService.ListByLeague(r.Context(), leagueID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"matches": matches,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Create добавляет матч вручную, минуя генерацию сеток.
func (h *MatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	leagueID := chi.URLParam(r, "leagueID")
	if leagueID == "" {
		badRequestResponse(w, r, errors.New("league id is required"))
		return
	}

	var input services.MatchCreateInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Round < 1 {
		badRequestResponse(w, r, errors.New("round must be at least 1"))
		return
	}
	if input.PlayerA == "" || input.PlayerB == "" {
		badRequestResponse(w, r, errors.New("player_a and player_b are required"))
		return
	}
	if input.Court == "" {
		badRequestResponse(w, r, errors.New("court is required"))
		return
	}
	if input.ScheduledAt.IsZero() {
		badRequestResponse(w, r, errors.New("scheduled_at is required"))
		return
	}
	if input.GroupNumber < 1 {
		input.GroupNumber = 1
	}

	match, err := h.matchService.Create(r.Context(), leagueID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"match": match,
	}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SubmitScore завершает матч. Для олимпийских матчей победители
// автоматически попадают в следующий матч сетки.
func (h *MatchHandler) SubmitScore(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")
	if matchID == "" {
		badRequestResponse(w, r, errors.New("match id is required"))
		return
	}

	var input struct {
		ScoreA *int `json:"score_a"`
		ScoreB *int `json:"score_b"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.ScoreA == nil || input.ScoreB == nil {
		badRequestResponse(w, r, errors.New("score_a and score_b are required"))
		return
	}
	if *input.ScoreA < 0 || *input.ScoreB < 0 {
		badRequestResponse(w, r, errors.New("scores must be non-negative"))
		return
	}

	match, err := h.matchService.SubmitScore(r.Context(), matchID, *input.ScoreA, *input.ScoreB)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"match": match,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateSchedule переносит матч на другой корт и/или время.
func (h *MatchHandler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")
	if matchID == "" {
		badRequestResponse(w, r, errors.New("match id is required"))
		return
	}

	var input struct {
		Court       *string    `json:"court"`
		ScheduledAt *time.Time `json:"scheduled_at"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Court == nil && input.ScheduledAt == nil {
		badRequestResponse(w, r, errors.New("court or scheduled_at is required"))
		return
	}

	match, err := h.matchService.UpdateSchedule(r.Context(), matchID, input.Court, input.ScheduledAt)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"match": match,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
