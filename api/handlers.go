package api

import (
	"errors"
	"net/http"
	"strconv"

	"economy/domain/entities"

	log "github.com/sirupsen/logrus"
	"github.com/zeromicro/go-zero/rest/httpx"
)

type OptionResp struct {
	Idx   int    `json:"idx"`
	Text  string `json:"text"`
	Total int64  `json:"total"`
}

type PollResp struct {
	ID       int64        `json:"id"`
	Question string       `json:"question"`
	Status   string       `json:"status"`
	Options  []OptionResp `json:"options"`
}

type BalanceResp struct {
	UserID int64 `json:"user_id"`
	Coins  int64 `json:"coins"`
}

type BetResp struct {
	OptionIdx int   `json:"option_idx"`
	Amount    int64 `json:"amount"`
}

type PlaceBetReq struct {
	PollID    int64 `json:"poll_id"`
	OptionIdx int   `json:"option_idx"`
	UserID    int64 `json:"user_id"`
	Amount    int64 `json:"amount"`
}

type TopEntryResp struct {
	UserID      int64 `json:"user_id"`
	TotalRating int64 `json:"total_rating"`
	NeriRating  int64 `json:"neri_rating"`
	GlobalTotal int64 `json:"global_total"`
}

type TopResp struct {
	List []TopEntryResp `json:"list"`
}

type errorResp struct {
	Error string `json:"error"`
}

func (s *Server) getPoll(w http.ResponseWriter, r *http.Request) {
	pollID, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}

	view, err := s.market.GetPollView(r.Context(), pollID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := PollResp{
		ID:       view.Poll.ID,
		Question: view.Poll.Question,
		Status:   view.Poll.Status.String(),
		Options:  make([]OptionResp, 0, len(view.Options)),
	}
	for _, opt := range view.Options {
		resp.Options = append(resp.Options, OptionResp{Idx: opt.Idx, Text: opt.Text, Total: opt.Total})
	}
	httpx.OkJson(w, &resp)
}

func (s *Server) getBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathInt64(w, r, "uid")
	if !ok {
		return
	}

	coins, err := s.coins.GetBalance(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httpx.OkJson(w, &BalanceResp{UserID: userID, Coins: coins})
}

func (s *Server) getBet(w http.ResponseWriter, r *http.Request) {
	pollID, ok := pathInt64(w, r, "poll")
	if !ok {
		return
	}
	userID, ok := pathInt64(w, r, "uid")
	if !ok {
		return
	}

	bet, err := s.market.GetBet(r.Context(), pollID, userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httpx.OkJson(w, &BetResp{OptionIdx: bet.OptionIdx, Amount: bet.Amount})
}

func (s *Server) placeBet(w http.ResponseWriter, r *http.Request) {
	var req PlaceBetReq
	if err := httpx.ParseJsonBody(r, &req); err != nil {
		httpx.WriteJson(w, http.StatusBadRequest, &errorResp{Error: "bad_request"})
		return
	}

	bet, err := s.market.PlaceBet(r.Context(), req.PollID, req.UserID, req.OptionIdx, req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httpx.OkJson(w, &BetResp{OptionIdx: bet.OptionIdx, Amount: bet.Amount})
}

func (s *Server) getTop(w http.ResponseWriter, r *http.Request) {
	if s.leaderboard == nil {
		httpx.WriteJson(w, http.StatusServiceUnavailable, &errorResp{Error: "leaderboard_unavailable"})
		return
	}

	limit := defaultTopLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			httpx.WriteJson(w, http.StatusBadRequest, &errorResp{Error: "bad_request"})
			return
		}
		limit = min(n, maxTopLimit)
	}

	entries, err := s.leaderboard.Top(r.Context(), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := TopResp{List: make([]TopEntryResp, 0, len(entries))}
	for _, e := range entries {
		resp.List = append(resp.List, TopEntryResp{
			UserID:      e.UserID,
			TotalRating: e.TotalRating,
			NeriRating:  e.NeriRating,
			GlobalTotal: e.GlobalTotal,
		})
	}
	httpx.OkJson(w, &resp)
}

func pathInt64(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		httpx.WriteJson(w, http.StatusBadRequest, &errorResp{Error: "bad_request"})
		return 0, false
	}
	return v, true
}

// writeDomainError maps the domain error taxonomy onto HTTP statuses
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case entities.IsNotFound(err):
		httpx.WriteJson(w, http.StatusNotFound, &errorResp{Error: err.Error()})
	case entities.IsValidation(err),
		entities.IsInsufficientFunds(err),
		errors.Is(err, entities.ErrPollNotOpen):
		httpx.WriteJson(w, http.StatusBadRequest, &errorResp{Error: err.Error()})
	default:
		log.WithError(err).Error("API request failed")
		httpx.WriteJson(w, http.StatusInternalServerError, &errorResp{Error: "internal_error"})
	}
}
