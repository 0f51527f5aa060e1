package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/tennisclub/league-system/services"
)

type BracketHandler struct {
	bracketService    services.BracketService
	finalStageService services.FinalStageService
	tournamentService services.TournamentService
	rankingService    services.RankingService
}

func NewBracketHandler(
	bracketService services.BracketService,
	finalStageService services.FinalStageService,
	tournamentService services.TournamentService,
	rankingService services.RankingService,
) *BracketHandler {
	return &BracketHandler{
		bracketService:    bracketService,
		finalStageService: finalStageService,
		tournamentService: tournamentService,
		rankingService:    rankingService,
	}
}

// GenerateBracket строит предварительную сетку лиги. Повторный вызов
// перегенерирует сетку заново.
func (h *BracketHandler) GenerateBracket(w http.ResponseWriter, r *http.Request) {
	leagueID := chi.URLParam(r, "leagueID")
	if leagueID == "" {
		badRequestResponse(w, r, errors.New("league id is required"))
		return
	}

	var input struct {
		GroupsCount int `json:"groups_count"`
		CourtsCount int `json:"courts_count"`
	}
	if r.ContentLength > 0 {
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}
	if input.GroupsCount == 0 {
		input.GroupsCount = 2
	}
	if input.CourtsCount == 0 {
		input.CourtsCount = 2
	}

	matches, err := h.bracketService.GenerateBracket(r.Context(), leagueID, input.GroupsCount, input.CourtsCount)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"matches": matches,
	}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BracketHandler) GenerateFinalStage(w http.ResponseWriter, r *http.Request) {
	leagueID := chi.URLParam(r, "leagueID")
	if leagueID == "" {
		badRequestResponse(w, r, errors.New("league id is required"))
		return
	}

	var input services.FinalStageInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.CourtsCount == 0 {
		input.CourtsCount = 2
	}

	matches, err := h.finalStageService.GenerateFinalStage(r.Context(), leagueID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"matches": matches,
	}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GenerateKnockout строит нокаут-турнир из лучших игроков каждой
// группы. Продвижение раундов выполняется через AdvanceRound.
func (h *BracketHandler) GenerateKnockout(w http.ResponseWriter, r *http.Request) {
	leagueID := chi.URLParam(r, "leagueID")
	if leagueID == "" {
		badRequestResponse(w, r, errors.New("league id is required"))
		return
	}

	var input services.KnockoutInput
	if r.ContentLength > 0 {
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}
	if input.TopPerGroup < 0 || input.TopPerGroup > 4 {
		badRequestResponse(w, r, errors.New("top_n_per_group must be between 1 and 4"))
		return
	}
	if input.CourtsCount == 0 {
		input.CourtsCount = 2
	}

	matches, err := h.tournamentService.GenerateKnockout(r.Context(), leagueID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"matches": matches,
	}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AdvanceRound создаёт следующий раунд нокаут-турнира из победителей
// завершённого текущего раунда.
func (h *BracketHandler) AdvanceRound(w http.ResponseWriter, r *http.Request) {
	leagueID := chi.URLParam(r, "leagueID")
	if leagueID == "" {
		badRequestResponse(w, r, errors.New("league id is required"))
		return
	}

	var input services.AdvanceRoundInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.CourtsCount == 0 {
		input.CourtsCount = 2
	}

	matches, err := h.tournamentService.AdvanceRound(r.Context(), leagueID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"matches": matches,
	}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// PreliminaryStatus сообщает, завершены ли все предварительные матчи
// лиги, и сколько их всего. Фронтенд использует это перед предложением
// финального этапа.
func (h *BracketHandler) PreliminaryStatus(w http.ResponseWriter, r *http.Request) {
	leagueID := chi.URLParam(r, "leagueID")
	if leagueID == "" {
		badRequestResponse(w, r, errors.New("league id is required"))
		return
	}

	summary, err := h.finalStageService.PreliminaryStatus(r.Context(), leagueID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"preliminary_complete": summary.Complete,
		"total_matches":        summary.TotalMatches,
		"completed_matches":    summary.CompletedMatches,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Rankings возвращает турнирную таблицу по завершённым предварительным
// матчам. Параметр group фильтрует по номеру группы, top ограничивает
// выдачу первыми N игроками каждой группы.
func (h *BracketHandler) Rankings(w http.ResponseWriter, r *http.Request) {
	leagueID := chi.URLParam(r, "leagueID")
	if leagueID == "" {
		badRequestResponse(w, r, errors.New("league id is required"))
		return
	}

	if topStr := r.URL.Query().Get("top"); topStr != "" {
		top, err := strconv.Atoi(topStr)
		if err != nil || top < 1 {
			badRequestResponse(w, r, errors.New("top must be a positive integer"))
			return
		}

		groups, err := h.rankingService.TopPlayersPerGroup(r.Context(), leagueID, top)
		if err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}

		response := jsonResponse{
			"groups": groups,
		}
		if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
			serverErrorResponse(w, r, err)
		}
		return
	}

	var groupNumber *int
	if groupStr := r.URL.Query().Get("group"); groupStr != "" {
		group, err := strconv.Atoi(groupStr)
		if err != nil {
			badRequestResponse(w, r, errors.New("group must be an integer"))
			return
		}
		groupNumber = &group
	}

	rankings, err := h.rankingService.CalculateGroupRankings(r.Context(), leagueID, groupNumber)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"rankings": rankings,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
