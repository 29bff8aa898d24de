package handlers

import (
	"context"
	"fmt"
	"io"
	"time"

	"marketBack/internal/models"
	"marketBack/internal/repositories"
)

type memListings struct {
	listings map[int]models.Listing
	updates  []models.ListingUpdate
}

func (m *memListings) CreateListing(ctx context.Context, l models.Listing, attach repositories.ProofAttacher) (models.Listing, error) {
	l.ID = 500
	if attach != nil {
		proofs, err := attach(l.ID)
		if err != nil {
			return models.Listing{}, err
		}
		l.Proofs = proofs
	}
	m.listings[l.ID] = l
	return l, nil
}

func (m *memListings) ProofsEnabled() bool { return true }

func (m *memListings) GetListingByID(ctx context.Context, id int) (models.Listing, error) {
	l, ok := m.listings[id]
	if !ok {
		return models.Listing{}, models.ErrListingNotFound
	}
	return l, nil
}

func (m *memListings) GetListingDetails(ctx context.Context, id int) (models.Listing, error) {
	return m.GetListingByID(ctx, id)
}

func (m *memListings) GetApprovedListings(ctx context.Context, limit, offset int) ([]models.Listing, int, error) {
	return nil, 0, nil
}

func (m *memListings) GetListingsByUser(ctx context.Context, userID int) ([]models.Listing, error) {
	return nil, nil
}

func (m *memListings) UpdateListing(ctx context.Context, upd models.ListingUpdate) ([]models.ListingProof, error) {
	m.updates = append(m.updates, upd)
	l := upd.Listing
	l.Status = models.ListingStatusPending
	m.listings[l.ID] = l
	return nil, nil
}

func (m *memListings) UpdateStatus(ctx context.Context, id int, from, to string) error {
	return nil
}

type memOffers struct {
	offers    map[int]models.Offer
	createErr error
}

func (m *memOffers) HasActiveOffer(ctx context.Context, listingID, userID int) (bool, error) {
	for _, o := range m.offers {
		if o.ListingID == listingID && o.UserID == userID && models.IsActiveOfferStatus(o.Status) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memOffers) CreateOffer(ctx context.Context, o models.Offer) (models.Offer, error) {
	if m.createErr != nil {
		return models.Offer{}, m.createErr
	}
	o.ID = len(m.offers) + 1
	o.Status = models.OfferStatusPending
	m.offers[o.ID] = o
	return o, nil
}

func (m *memOffers) GetOfferByID(ctx context.Context, id int) (models.Offer, error) {
	o, ok := m.offers[id]
	if !ok {
		return models.Offer{}, models.ErrOfferNotFound
	}
	return o, nil
}

func (m *memOffers) GetOffersByBuyer(ctx context.Context, userID int) ([]models.Offer, error) {
	return nil, nil
}

func (m *memOffers) GetOffersByListing(ctx context.Context, listingID int) ([]models.Offer, error) {
	return nil, nil
}

func (m *memOffers) UpdateStatus(ctx context.Context, id int, from, to string) error {
	return nil
}

func (m *memOffers) ExpirePendingBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type memSettings map[string]string

func (m memSettings) GetSetting(ctx context.Context, key string) (string, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

func (m memSettings) GetAllSettings(ctx context.Context) ([]models.SystemSetting, error) {
	return nil, nil
}

func (m memSettings) UpsertSetting(ctx context.Context, key, value string) (models.SystemSetting, error) {
	m[key] = value
	return models.SystemSetting{Key: key, Value: value}, nil
}

type memWishlist map[[2]int]bool

func (m memWishlist) RemoveFromWishlist(ctx context.Context, userID, listingID int) (bool, error) {
	if m[[2]int{userID, listingID}] {
		delete(m, [2]int{userID, listingID})
		return true, nil
	}
	return false, nil
}

func (m memWishlist) AddToWishlist(ctx context.Context, userID, listingID int) error {
	m[[2]int{userID, listingID}] = true
	return nil
}

func (m memWishlist) IsInWishlist(ctx context.Context, userID, listingID int) (bool, error) {
	return m[[2]int{userID, listingID}], nil
}

func (m memWishlist) GetWishlistByUser(ctx context.Context, userID int) ([]models.WishlistEntry, error) {
	return nil, nil
}

type memProofs struct {
	saved []string
}

func (m *memProofs) SaveProof(ctx context.Context, listingID int, name string, r io.Reader) (models.ListingProof, error) {
	if _, err := io.ReadAll(r); err != nil {
		return models.ListingProof{}, err
	}
	path := fmt.Sprintf("proofs/%d/%s", listingID, name)
	m.saved = append(m.saved, path)
	return models.ListingProof{ListingID: listingID, FilePath: path, OriginalName: name}, nil
}

func (m *memProofs) Delete(ctx context.Context, path string) error {
	return nil
}

type memQueue struct {
	kinds []string
}

func (q *memQueue) Enqueue(ctx context.Context, kind string, payload interface{}) error {
	q.kinds = append(q.kinds, kind)
	return nil
}
