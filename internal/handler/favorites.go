package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/shuv1824/skycast/internal/favorites"
	"github.com/shuv1824/skycast/internal/response"
	"github.com/shuv1824/skycast/internal/types"
)

type FavoritesHandler struct {
	store favorites.Store
}

func NewFavoritesHandler(store favorites.Store) *FavoritesHandler {
	return &FavoritesHandler{store: store}
}

type favoriteRequest struct {
	Name    string   `json:"name"`
	Country string   `json:"country"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
}

func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	cities, err := h.store.List(r.Context())
	if err != nil {
		slog.Error("failed to list favorites", "error", err)
		response.ErrorJSON(w, http.StatusInternalServerError, "failed to list favorites")
		return
	}
	response.JSON(w, http.StatusOK, cities)
}

func (h *FavoritesHandler) Add(w http.ResponseWriter, r *http.Request) {
	var body favoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.ErrorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Validate required fields
	if body.Lat == nil || body.Lon == nil {
		response.ErrorJSON(w, http.StatusBadRequest, "lat and lon are required")
		return
	}

	city, err := h.store.Add(r.Context(), types.City{
		Name:    body.Name,
		Country: body.Country,
		Lat:     *body.Lat,
		Lon:     *body.Lon,
	})
	if err != nil {
		if errors.Is(err, favorites.ErrInvalidCity) {
			response.ErrorJSON(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("failed to add favorite", "error", err)
		response.ErrorJSON(w, http.StatusInternalServerError, "failed to add favorite")
		return
	}

	response.JSON(w, http.StatusCreated, city)
}

func (h *FavoritesHandler) Remove(w http.ResponseWriter, r *http.Request) {
	err := h.store.Remove(r.Context(), mux.Vars(r)["id"])
	switch {
	case errors.Is(err, favorites.ErrNotFound):
		response.ErrorJSON(w, http.StatusNotFound, err.Error())
	case err != nil:
		slog.Error("failed to remove favorite", "error", err)
		response.ErrorJSON(w, http.StatusInternalServerError, "failed to remove favorite")
	default:
		response.NoContent(w)
	}
}
