package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sabbir-tanvir/storefront/backend"
)

func (s *Server) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req backend.OrderRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	order, err := s.client(r).PlaceOrder(r.Context(), req)
	if err != nil {
		s.backendError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, order)
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	page, err := pageParam(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	orders, err := s.client(r).ListOrders(r.Context(), page)
	if err != nil {
		s.backendError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, orders)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	kind, err := backend.ParseTransactionKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, r, http.StatusNotFound, err.Error())
		return
	}
	page, err := pageParam(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	txs, err := s.client(r).ListTransactions(r.Context(), kind, page)
	if err != nil {
		s.backendError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, txs)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.client(r).Dashboard(r.Context())
	if err != nil {
		s.backendError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, d)
}
