package routes

import (
	"net/http"
)

func (s *Server) handleShops(w http.ResponseWriter, r *http.Request) {
	page, err := pageParam(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	shops, err := s.Backend.ListShops(r.Context(), page)
	if err != nil {
		s.backendError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, shops)
}

func (s *Server) handleShop(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "shopID")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	shop, err := s.Backend.GetShop(r.Context(), id)
	if err != nil {
		s.backendError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, shop)
}

func (s *Server) handleShopProducts(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "shopID")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	products, err := s.Backend.ListShopProducts(r.Context(), id)
	if err != nil {
		s.backendError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, products)
}
