package repositories

import (
	"context"
	"database/sql"
	"time"

	"marketBack/internal/models"
)

type WishlistRepository struct {
	DB *sql.DB
}

// RemoveFromWishlist deletes the entry and reports whether one existed.
func (r *WishlistRepository) RemoveFromWishlist(ctx context.Context, userID, listingID int) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM wishlist WHERE user_id = ? AND listing_id = ?`, userID, listingID)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// AddToWishlist inserts the entry. An entry inserted concurrently by the same
// user is not an error.
func (r *WishlistRepository) AddToWishlist(ctx context.Context, userID, listingID int) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO wishlist (user_id, listing_id, created_at) VALUES (?, ?, ?)`,
		userID, listingID, time.Now().UTC())
	if err != nil && !isDuplicateKeyError(err) {
		return err
	}
	return nil
}

func (r *WishlistRepository) IsInWishlist(ctx context.Context, userID, listingID int) (bool, error) {
	var count int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM wishlist WHERE user_id = ? AND listing_id = ?`, userID, listingID).Scan(&count)
	return count > 0, err
}

func (r *WishlistRepository) GetWishlistByUser(ctx context.Context, userID int) ([]models.WishlistEntry, error) {
	rows, err := r.DB.QueryContext(ctx, `
        SELECT w.id, w.user_id, w.listing_id, w.created_at,
               l.id, l.user_id, l.type, l.name, l.url, l.description, l.category, l.asking_price, l.reserved_amount,
               l.min_down_payment_percentage, l.monthly_revenue, l.monthly_profit, l.monthly_traffic, l.status,
               l.created_at, l.updated_at
        FROM wishlist w
        JOIN listings l ON l.id = w.listing_id
        WHERE w.user_id = ? AND l.status = ?
        ORDER BY w.created_at DESC, w.id DESC`, userID, models.ListingStatusApproved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.WishlistEntry{}
	for rows.Next() {
		var e models.WishlistEntry
		var l models.Listing
		err := rows.Scan(&e.ID, &e.UserID, &e.ListingID, &e.CreatedAt,
			&l.ID, &l.UserID, &l.Type, &l.Name, &l.URL, &l.Description, &l.Category, &l.AskingPrice, &l.ReservedAmount,
			&l.MinDownPaymentPercentage, &l.MonthlyRevenue, &l.MonthlyProfit, &l.MonthlyTraffic, &l.Status,
			&l.CreatedAt, &l.UpdatedAt)
		if err != nil {
			return nil, err
		}
		e.Listing = &l
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
