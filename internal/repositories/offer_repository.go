package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"marketBack/internal/models"
)

type OfferRepository struct {
	DB *sql.DB
}

const offerColumns = `o.id, o.listing_id, o.user_id, o.seller_id, o.amount, o.message, o.is_private, o.status,
       o.created_at, o.updated_at, l.name`

func scanOffer(row rowScanner) (models.Offer, error) {
	var o models.Offer
	err := row.Scan(&o.ID, &o.ListingID, &o.UserID, &o.SellerID, &o.Amount, &o.Message, &o.IsPrivate, &o.Status,
		&o.CreatedAt, &o.UpdatedAt, &o.ListingName)
	return o, err
}

// HasActiveOffer reports whether the buyer holds a pending or accepted offer on the listing.
func (r *OfferRepository) HasActiveOffer(ctx context.Context, listingID, userID int) (bool, error) {
	var count int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM offers WHERE listing_id = ? AND user_id = ? AND status IN (?, ?)`,
		listingID, userID, models.OfferStatusPending, models.OfferStatusAccepted,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateOffer inserts a pending offer. The UNIQUE index on active_key rejects a
// second active offer for the same buyer and listing.
func (r *OfferRepository) CreateOffer(ctx context.Context, offer models.Offer) (models.Offer, error) {
	offer.Status = models.OfferStatusPending
	offer.CreatedAt = time.Now().UTC()

	result, err := r.DB.ExecContext(ctx, `
        INSERT INTO offers (listing_id, user_id, seller_id, amount, message, is_private, status, active_key, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		offer.ListingID, offer.UserID, offer.SellerID, offer.Amount, offer.Message, offer.IsPrivate,
		offer.Status, models.OfferActiveKey(offer.ListingID, offer.UserID), offer.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return models.Offer{}, models.ErrDuplicateOffer
		}
		return models.Offer{}, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return models.Offer{}, err
	}
	offer.ID = int(id)
	return offer, nil
}

func (r *OfferRepository) GetOfferByID(ctx context.Context, id int) (models.Offer, error) {
	row := r.DB.QueryRowContext(ctx, `
        SELECT `+offerColumns+`
        FROM offers o
        JOIN listings l ON l.id = o.listing_id
        WHERE o.id = ?`, id)
	o, err := scanOffer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Offer{}, models.ErrOfferNotFound
	}
	if err != nil {
		return models.Offer{}, err
	}
	return o, nil
}

func (r *OfferRepository) GetOffersByBuyer(ctx context.Context, userID int) ([]models.Offer, error) {
	return r.queryOffers(ctx, `
        SELECT `+offerColumns+`
        FROM offers o
        JOIN listings l ON l.id = o.listing_id
        WHERE o.user_id = ?
        ORDER BY o.created_at DESC, o.id DESC`, userID)
}

func (r *OfferRepository) GetOffersByListing(ctx context.Context, listingID int) ([]models.Offer, error) {
	return r.queryOffers(ctx, `
        SELECT `+offerColumns+`
        FROM offers o
        JOIN listings l ON l.id = o.listing_id
        WHERE o.listing_id = ?
        ORDER BY o.created_at DESC, o.id DESC`, listingID)
}

func (r *OfferRepository) queryOffers(ctx context.Context, query string, args ...interface{}) ([]models.Offer, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	offers := []models.Offer{}
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

// UpdateStatus moves an offer from one status to another. Leaving the active
// statuses releases the active_key slot.
func (r *OfferRepository) UpdateStatus(ctx context.Context, id int, from, to string) error {
	var activeKey interface{}
	if models.IsActiveOfferStatus(to) {
		o, err := r.GetOfferByID(ctx, id)
		if err != nil {
			return err
		}
		activeKey = models.OfferActiveKey(o.ListingID, o.UserID)
	}

	res, err := r.DB.ExecContext(ctx,
		`UPDATE offers SET status = ?, active_key = ?, updated_at = ? WHERE id = ? AND status = ?`,
		to, activeKey, time.Now().UTC(), id, from)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		if _, err := r.GetOfferByID(ctx, id); err != nil {
			return err
		}
		return models.ErrOfferNotPending
	}
	return nil
}

// ExpirePendingBefore marks pending offers created before cutoff as expired.
func (r *OfferRepository) ExpirePendingBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE offers SET status = ?, active_key = NULL, updated_at = ? WHERE status = ? AND created_at < ?`,
		models.OfferStatusExpired, time.Now().UTC(), models.OfferStatusPending, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
