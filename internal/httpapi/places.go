package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/NINESTRING/my-place/internal/auth"
	"github.com/NINESTRING/my-place/internal/geo"
	"github.com/NINESTRING/my-place/internal/store"
)

type placeRequest struct {
	Description       string    `json:"description"`
	Image             string    `json:"image"`
	ImageCreationTime time.Time `json:"imageCreationTime"`
	Coordinates       geo.Point `json:"coordinates"`
	Rating            int       `json:"rating"`
	Category          int       `json:"category"`
}

func (req placeRequest) toPlace() store.Place {
	return store.Place{
		Image:             req.Image,
		ImageCreationTime: req.ImageCreationTime,
		Latitude:          req.Coordinates.Latitude,
		Longitude:         req.Coordinates.Longitude,
		Description:       req.Description,
		Rating:            req.Rating,
		Category:          req.Category,
	}
}

type placeResponse struct {
	ID                int64     `json:"id"`
	UserID            string    `json:"userId"`
	Image             string    `json:"image"`
	ImageCreationTime time.Time `json:"imageCreationTime"`
	Latitude          float64   `json:"latitude"`
	Longitude         float64   `json:"longitude"`
	Description       string    `json:"description"`
	Rating            int       `json:"rating"`
	Category          int       `json:"category"`
	PublicID          string    `json:"publicId"`
}

func toPlaceResponse(p store.Place) placeResponse {
	return placeResponse{
		ID:                p.ID,
		UserID:            p.UserID,
		Image:             p.Image,
		ImageCreationTime: p.ImageCreationTime,
		Latitude:          p.Latitude,
		Longitude:         p.Longitude,
		Description:       p.Description,
		Rating:            p.Rating,
		Category:          p.Category,
		PublicID:          p.PublicID(),
	}
}

func toPlaceResponses(places []store.Place) []placeResponse {
	out := make([]placeResponse, 0, len(places))
	for _, p := range places {
		out = append(out, toPlaceResponse(p))
	}
	return out
}

func placeID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil
}

// handleListPlaces serves both the viewport query (bounds present) and the
// overview listing (no bounds parameters).
func (s *Server) handleListPlaces(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	hasBounds := false
	for _, key := range []string{"sw_lat", "sw_lng", "ne_lat", "ne_lng"} {
		if query.Has(key) {
			hasBounds = true
			break
		}
	}

	if !hasBounds {
		places, err := s.places.All(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPlaceResponses(places))
		return
	}

	bounds, err := boundsFromQuery(query.Get("sw_lat"), query.Get("sw_lng"), query.Get("ne_lat"), query.Get("ne_lng"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	places, err := s.places.ByBounds(r.Context(), bounds)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlaceResponses(places))
}

func boundsFromQuery(swLat, swLng, neLat, neLng string) (geo.Bounds, error) {
	parse := func(name, raw string) (float64, error) {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, &strconv.NumError{Func: "bounds " + name, Num: raw, Err: err}
		}
		return v, nil
	}

	sw := geo.Point{}
	ne := geo.Point{}
	var err error
	if sw.Latitude, err = parse("sw_lat", swLat); err != nil {
		return geo.Bounds{}, err
	}
	if sw.Longitude, err = parse("sw_lng", swLng); err != nil {
		return geo.Bounds{}, err
	}
	if ne.Latitude, err = parse("ne_lat", neLat); err != nil {
		return geo.Bounds{}, err
	}
	if ne.Longitude, err = parse("ne_lng", neLng); err != nil {
		return geo.Bounds{}, err
	}

	return geo.NewBounds(sw, ne)
}

func (s *Server) handleGetPlace(w http.ResponseWriter, r *http.Request) {
	id, ok := placeID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid place ID"})
		return
	}

	place, err := s.places.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if place == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "place not found"})
		return
	}

	writeJSON(w, http.StatusOK, toPlaceResponse(*place))
}

func (s *Server) handleNearbyPlaces(w http.ResponseWriter, r *http.Request) {
	id, ok := placeID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid place ID"})
		return
	}

	places, err := s.places.Nearby(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlaceResponses(places))
}

func (s *Server) handleCreatePlace(w http.ResponseWriter, r *http.Request) {
	var req placeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	created, err := s.places.Create(r.Context(), auth.Identity(r.Context()), req.toPlace())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toPlaceResponse(created))
}

func (s *Server) handleUpdatePlace(w http.ResponseWriter, r *http.Request) {
	id, ok := placeID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid place ID"})
		return
	}

	var req placeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	updated, err := s.places.Update(r.Context(), auth.Identity(r.Context()), id, req.toPlace())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if updated == nil {
		// Missing record and foreign record are indistinguishable on the wire.
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "place not found"})
		return
	}

	writeJSON(w, http.StatusOK, toPlaceResponse(*updated))
}

func (s *Server) handleDeletePlace(w http.ResponseWriter, r *http.Request) {
	id, ok := placeID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid place ID"})
		return
	}

	deleted, err := s.places.Delete(r.Context(), auth.Identity(r.Context()), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "place not found"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
