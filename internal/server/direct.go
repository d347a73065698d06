package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	orders, err := s.commerce.ListOrders(r.Context(), credsFromQuery(r), limit, offset)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	displayID, err := strconv.Atoi(chi.URLParam(r, "display_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "display_id must be a number")
		return
	}

	order, err := s.commerce.GetOrder(r.Context(), credsFromQuery(r), displayID)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	cartID := r.URL.Query().Get("cart_id")
	if cartID == "" {
		respondError(w, http.StatusBadRequest, "cart_id is required")
		return
	}

	cart, err := s.commerce.GetCart(r.Context(), cartID, credsFromQuery(r))
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"cart": cart})
}

type addToCartRequest struct {
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity,omitempty"`
}

func (s *Server) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cart_id")

	var req addToCartRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.VariantID == "" {
		respondError(w, http.StatusBadRequest, "variant_id is required")
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	cart, err := s.commerce.AddToCart(r.Context(), cartID, req.VariantID, req.Quantity, credsFromQuery(r))
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"cart":    cart,
		"message": "Item added successfully",
	})
}

func (s *Server) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	customer, err := s.commerce.GetCustomer(r.Context(), credsFromQuery(r))
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"customer": customer})
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")

	product, err := s.commerce.GetProduct(r.Context(), productID, credsFromQuery(r))
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"product": product})
}
