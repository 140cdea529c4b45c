// Package places composes the spatial queries, the authorization gate and
// upload-signature issuance into the public place operations.
package places

import (
	"context"
	"errors"
	"fmt"

	"github.com/NINESTRING/my-place/internal/auth"
	"github.com/NINESTRING/my-place/internal/geo"
	"github.com/NINESTRING/my-place/internal/signing"
	"github.com/NINESTRING/my-place/internal/store"
)

const (
	// DefaultListLimit caps bounds and overview listings.
	DefaultListLimit = 50
	// NearbyLimit caps nearby lookups.
	NearbyLimit = 25
	// NearbyRadiusMeters is the search radius for nearby lookups.
	NearbyRadiusMeters = 10000

	minRating = 1
	maxRating = 5
)

// ErrInvalidPlace indicates validation failure for place data.
var ErrInvalidPlace = errors.New("invalid place")

// Store defines persistence operations for places.
type Store interface {
	CreatePlace(ctx context.Context, userID string, place store.Place) (store.Place, error)
	PlaceByID(ctx context.Context, id int64) (store.Place, error)
	PlacesByBounds(ctx context.Context, bounds geo.Bounds, limit int) ([]store.Place, error)
	AllPlaces(ctx context.Context, limit int) ([]store.Place, error)
	NearbyPlaces(ctx context.Context, origin store.Place, radiusMeters float64, limit int) ([]store.Place, error)
	UpdatePlace(ctx context.Context, userID string, id int64, place store.Place) (store.Place, error)
	DeletePlace(ctx context.Context, userID string, id int64) (bool, error)
}

// SignatureIssuer produces upload authorizations for direct media uploads.
type SignatureIssuer interface {
	IssueUploadSignature() (signing.UploadSignature, error)
}

// Service coordinates place operations on behalf of an identity.
type Service struct {
	store  Store
	signer SignatureIssuer
}

// New constructs a place Service backed by the provided store and signer.
func New(store Store, signer SignatureIssuer) *Service {
	return &Service{store: store, signer: signer}
}

// canMutate is the authorization gate: only the owner may mutate a record.
func canMutate(identity string, place store.Place) bool {
	return identity != "" && identity == place.UserID
}

// Get returns a place by id, or nil when no record matches.
func (s *Service) Get(ctx context.Context, id int64) (*store.Place, error) {
	place, err := s.store.PlaceByID(ctx, id)
	if errors.Is(err, store.ErrPlaceNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &place, nil
}

// ByBounds lists places inside the rectangle, capped at DefaultListLimit.
func (s *Service) ByBounds(ctx context.Context, bounds geo.Bounds) ([]store.Place, error) {
	return s.store.PlacesByBounds(ctx, bounds, DefaultListLimit)
}

// All lists places without a spatial filter, capped at DefaultListLimit.
func (s *Service) All(ctx context.Context) ([]store.Place, error) {
	return s.store.AllPlaces(ctx, DefaultListLimit)
}

// Nearby lists places within NearbyRadiusMeters of the identified place,
// excluding the place itself. A missing origin yields an empty result.
func (s *Service) Nearby(ctx context.Context, id int64) ([]store.Place, error) {
	origin, err := s.store.PlaceByID(ctx, id)
	if errors.Is(err, store.ErrPlaceNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.store.NearbyPlaces(ctx, origin, NearbyRadiusMeters, NearbyLimit)
}

// Create persists a new place owned by identity.
func (s *Service) Create(ctx context.Context, identity string, place store.Place) (store.Place, error) {
	if identity == "" {
		return store.Place{}, auth.ErrUnauthenticated
	}
	if err := validatePlace(place); err != nil {
		return store.Place{}, err
	}
	return s.store.CreatePlace(ctx, identity, place)
}

// Update overwrites the mutable fields of a place owned by identity. A
// missing record and a record owned by someone else are both reported as
// absent (nil, nil) so that existence of other users' records never leaks.
func (s *Service) Update(ctx context.Context, identity string, id int64, place store.Place) (*store.Place, error) {
	if identity == "" {
		return nil, auth.ErrUnauthenticated
	}
	if err := validatePlace(place); err != nil {
		return nil, err
	}

	current, err := s.store.PlaceByID(ctx, id)
	if errors.Is(err, store.ErrPlaceNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !canMutate(identity, current) {
		return nil, nil
	}

	updated, err := s.store.UpdatePlace(ctx, identity, id, place)
	if errors.Is(err, store.ErrPlaceNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a place owned by identity and reports whether a deletion
// occurred. Missing and foreign records both report false.
func (s *Service) Delete(ctx context.Context, identity string, id int64) (bool, error) {
	if identity == "" {
		return false, auth.ErrUnauthenticated
	}

	current, err := s.store.PlaceByID(ctx, id)
	if errors.Is(err, store.ErrPlaceNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !canMutate(identity, current) {
		return false, nil
	}

	return s.store.DeletePlace(ctx, identity, id)
}

// IssueUploadSignature grants a time-bound authorization for one direct
// media upload. Any authenticated identity may request one.
func (s *Service) IssueUploadSignature(ctx context.Context, identity string) (signing.UploadSignature, error) {
	if identity == "" {
		return signing.UploadSignature{}, auth.ErrUnauthenticated
	}
	return s.signer.IssueUploadSignature()
}

func validatePlace(place store.Place) error {
	if err := place.Coordinates().Validate(); err != nil {
		return err
	}
	if place.Image == "" {
		return fmt.Errorf("%w: image reference is required", ErrInvalidPlace)
	}
	if place.Rating < minRating || place.Rating > maxRating {
		return fmt.Errorf("%w: rating %d outside [%d, %d]", ErrInvalidPlace, place.Rating, minRating, maxRating)
	}
	if place.Category < 0 {
		return fmt.Errorf("%w: negative category %d", ErrInvalidPlace, place.Category)
	}
	return nil
}
