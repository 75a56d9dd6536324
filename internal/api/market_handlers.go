package api

import (
	"net/http"
	"strings"

	"coinboard/internal/apperr"
	"github.com/gorilla/mux"
)

func (s *Server) handleMarketCoins(w http.ResponseWriter, r *http.Request) {
	perPage := queryInt(r, "per_page", s.services.Market.DefaultPerPage())
	page := queryInt(r, "page", 1)
	coins, err := s.services.Market.MarketCoins(r.Context(), perPage, page, r.URL.Query().Get("currency"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, coins)
}

func (s *Server) handleCoinDetail(w http.ResponseWriter, r *http.Request) {
	coinID := strings.TrimSpace(mux.Vars(r)["id"])
	if coinID == "" {
		s.writeError(w, r, apperr.InvalidInput("coin id must not be blank"))
		return
	}
	detail, err := s.services.Market.CoinDetail(r.Context(), coinID, r.URL.Query().Get("currency"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleMarketChart(w http.ResponseWriter, r *http.Request) {
	coinID := strings.TrimSpace(mux.Vars(r)["id"])
	if coinID == "" {
		s.writeError(w, r, apperr.InvalidInput("coin id must not be blank"))
		return
	}
	days := queryInt(r, "days", 7)
	chart, err := s.services.Market.MarketChart(r.Context(), coinID, days, r.URL.Query().Get("currency"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, chart)
}

func (s *Server) handleSimplePrices(w http.ResponseWriter, r *http.Request) {
	var ids []string
	if raw := r.URL.Query().Get("ids"); raw != "" {
		ids = strings.Split(raw, ",")
	}
	prices, err := s.services.Market.SimplePrices(r.Context(), ids, r.URL.Query().Get("currency"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, prices)
}

// --- watchlist ---

func (s *Server) handleWatchlistView(w http.ResponseWriter, r *http.Request) {
	var memberID uint
	if principal, ok := PrincipalFrom(r.Context()); ok {
		memberID = principal.MemberID
	}
	view, err := s.services.Watchlist.LoadWatchlist(r.Context(), memberID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleListWatchlistEntries(w http.ResponseWriter, r *http.Request, principal Principal) {
	entries, err := s.services.Watchlist.ListEntries(principal.MemberID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, entries)
}

type addWatchlistRequest struct {
	CoinID string `json:"coin_id"`
	Label  string `json:"label"`
}

func (s *Server) handleAddWatchlistEntry(w http.ResponseWriter, r *http.Request, principal Principal) {
	var req addWatchlistRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.services.Watchlist.AddEntry(r.Context(), principal.MemberID, req.CoinID, req.Label); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]string{"status": "added"})
}

func (s *Server) handleRemoveWatchlistEntry(w http.ResponseWriter, r *http.Request, principal Principal) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.services.Watchlist.RemoveEntry(principal.MemberID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusNoContent, nil)
}
