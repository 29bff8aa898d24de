package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"marketBack/internal/models"
)

type ListingRepository struct {
	DB   *sql.DB
	Caps Capabilities
}

const listingColumns = `id, user_id, type, name, url, description, category, asking_price, reserved_amount,
       min_down_payment_percentage, monthly_revenue, monthly_profit, monthly_traffic, status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanListing(row rowScanner) (models.Listing, error) {
	var l models.Listing
	err := row.Scan(
		&l.ID, &l.UserID, &l.Type, &l.Name, &l.URL, &l.Description, &l.Category,
		&l.AskingPrice, &l.ReservedAmount, &l.MinDownPaymentPercentage,
		&l.MonthlyRevenue, &l.MonthlyProfit, &l.MonthlyTraffic, &l.Status,
		&l.CreatedAt, &l.UpdatedAt,
	)
	return l, err
}

// ProofAttacher stores proof files for a listing that has been inserted but
// not yet committed. An error rolls the insert back.
type ProofAttacher func(listingID int) ([]models.ListingProof, error)

func (r *ListingRepository) CreateListing(ctx context.Context, l models.Listing, attach ProofAttacher) (models.Listing, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Listing{}, err
	}

	l.CreatedAt = time.Now().UTC()
	if l.Status == "" {
		l.Status = models.ListingStatusPending
	}

	result, err := tx.ExecContext(ctx, `
        INSERT INTO listings (user_id, type, name, url, description, category, asking_price, reserved_amount,
                              min_down_payment_percentage, monthly_revenue, monthly_profit, monthly_traffic,
                              status, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.UserID, l.Type, l.Name, l.URL, l.Description, l.Category, l.AskingPrice, l.ReservedAmount,
		l.MinDownPaymentPercentage, l.MonthlyRevenue, l.MonthlyProfit, l.MonthlyTraffic,
		l.Status, l.CreatedAt,
	)
	if err != nil {
		tx.Rollback()
		return models.Listing{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		tx.Rollback()
		return models.Listing{}, err
	}
	l.ID = int(id)

	if r.Caps.Categories {
		categories, _ := diffInts(nil, l.Categories)
		if err := insertCategories(ctx, tx, l.ID, categories); err != nil {
			tx.Rollback()
			return models.Listing{}, fmt.Errorf("insert categories: %w", err)
		}
	}
	if r.Caps.Labels {
		labels, _ := diffStrings(nil, l.Labels)
		if err := insertLabels(ctx, tx, l.ID, labels); err != nil {
			tx.Rollback()
			return models.Listing{}, fmt.Errorf("insert labels: %w", err)
		}
	}
	if r.Caps.Answers {
		if err := insertAnswers(ctx, tx, l.ID, diffAnswers(nil, l.Answers).insert); err != nil {
			tx.Rollback()
			return models.Listing{}, fmt.Errorf("insert answers: %w", err)
		}
	}
	if r.Caps.Proofs {
		if attach != nil {
			stored, err := attach(l.ID)
			if err != nil {
				tx.Rollback()
				return models.Listing{}, err
			}
			l.Proofs = append(l.Proofs, stored...)
		}
		for i := range l.Proofs {
			l.Proofs[i].ListingID = l.ID
			if l.Proofs[i], err = insertProof(ctx, tx, l.Proofs[i]); err != nil {
				tx.Rollback()
				return models.Listing{}, fmt.Errorf("insert proof: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return models.Listing{}, err
	}
	return l, nil
}

func (r *ListingRepository) ProofsEnabled() bool {
	return r.Caps.Proofs
}

func (r *ListingRepository) GetListingByID(ctx context.Context, id int) (models.Listing, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+listingColumns+` FROM listings WHERE id = ?`, id)
	l, err := scanListing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Listing{}, models.ErrListingNotFound
	}
	if err != nil {
		return models.Listing{}, err
	}
	return l, nil
}

// GetListingDetails returns the listing with every child collection the
// schema supports.
func (r *ListingRepository) GetListingDetails(ctx context.Context, id int) (models.Listing, error) {
	l, err := r.GetListingByID(ctx, id)
	if err != nil {
		return models.Listing{}, err
	}

	if r.Caps.Categories {
		if l.Categories, err = queryInts(ctx, r.DB,
			`SELECT category_id FROM listing_categories WHERE listing_id = ? ORDER BY category_id`, id); err != nil {
			return models.Listing{}, fmt.Errorf("load categories: %w", err)
		}
	}
	if r.Caps.Labels {
		if l.Labels, err = queryStrings(ctx, r.DB,
			`SELECT label FROM listing_labels WHERE listing_id = ? ORDER BY label`, id); err != nil {
			return models.Listing{}, fmt.Errorf("load labels: %w", err)
		}
	}
	if r.Caps.Answers {
		if l.Answers, err = queryAnswers(ctx, r.DB, id); err != nil {
			return models.Listing{}, fmt.Errorf("load answers: %w", err)
		}
	}
	if r.Caps.Proofs {
		if l.Proofs, err = r.getProofs(ctx, r.DB, `WHERE listing_id = ?`, id); err != nil {
			return models.Listing{}, fmt.Errorf("load proofs: %w", err)
		}
	}
	return l, nil
}

func (r *ListingRepository) GetApprovedListings(ctx context.Context, limit, offset int) ([]models.Listing, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM listings WHERE status = ?`, models.ListingStatusApproved).Scan(&total); err != nil {
		return nil, 0, err
	}

	listings, err := r.queryListings(ctx, `
        SELECT `+listingColumns+`
        FROM listings
        WHERE status = ?
        ORDER BY created_at DESC, id DESC
        LIMIT ? OFFSET ?`, models.ListingStatusApproved, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

func (r *ListingRepository) GetListingsByUser(ctx context.Context, userID int) ([]models.Listing, error) {
	return r.queryListings(ctx, `
        SELECT `+listingColumns+`
        FROM listings
        WHERE user_id = ?
        ORDER BY created_at DESC, id DESC`, userID)
}

func (r *ListingRepository) queryListings(ctx context.Context, query string, args ...interface{}) ([]models.Listing, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	listings := []models.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// UpdateListing overwrites the owner's listing, resets it to pending and
// applies child collection changes in one transaction. It returns the proof
// rows removed so the caller can delete their files after commit.
func (r *ListingRepository) UpdateListing(ctx context.Context, upd models.ListingUpdate) (removed []models.ListingProof, err error) {
	l := upd.Listing

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var ownerID int
	err = tx.QueryRowContext(ctx, `SELECT user_id FROM listings WHERE id = ?`, l.ID).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrListingNotFound
	}
	if err != nil {
		return nil, err
	}
	if ownerID != l.UserID {
		return nil, models.ErrForbidden
	}

	_, err = tx.ExecContext(ctx, `
        UPDATE listings
        SET type = ?, name = ?, url = ?, description = ?, category = ?, asking_price = ?, reserved_amount = ?,
            min_down_payment_percentage = ?, monthly_revenue = ?, monthly_profit = ?, monthly_traffic = ?,
            status = ?, updated_at = ?
        WHERE id = ? AND user_id = ?`,
		l.Type, l.Name, l.URL, l.Description, l.Category, l.AskingPrice, l.ReservedAmount,
		l.MinDownPaymentPercentage, l.MonthlyRevenue, l.MonthlyProfit, l.MonthlyTraffic,
		models.ListingStatusPending, time.Now().UTC(),
		l.ID, l.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("update listing: %w", err)
	}

	if r.Caps.Categories {
		if err = applyCategories(ctx, tx, l.ID, l.Categories); err != nil {
			return nil, fmt.Errorf("apply categories: %w", err)
		}
	}
	if r.Caps.Labels {
		if err = applyLabels(ctx, tx, l.ID, l.Labels); err != nil {
			return nil, fmt.Errorf("apply labels: %w", err)
		}
	}
	if r.Caps.Answers {
		if err = applyAnswers(ctx, tx, l.ID, l.Answers); err != nil {
			return nil, fmt.Errorf("apply answers: %w", err)
		}
	}

	if r.Caps.Proofs {
		if len(upd.RemoveProofIDs) > 0 {
			args := []interface{}{l.ID}
			for _, id := range upd.RemoveProofIDs {
				args = append(args, id)
			}
			where := `WHERE listing_id = ? AND id IN (` + placeholders(len(upd.RemoveProofIDs)) + `)`
			if removed, err = r.getProofs(ctx, tx, where, args...); err != nil {
				return nil, fmt.Errorf("load proofs: %w", err)
			}
			if _, err = tx.ExecContext(ctx, `DELETE FROM listing_proofs `+where, args...); err != nil {
				return nil, fmt.Errorf("delete proofs: %w", err)
			}
		}
		for _, p := range upd.NewProofs {
			p.ListingID = l.ID
			if _, err = insertProof(ctx, tx, p); err != nil {
				return nil, fmt.Errorf("insert proof: %w", err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return removed, nil
}

// UpdateStatus moves a listing from one review status to another.
func (r *ListingRepository) UpdateStatus(ctx context.Context, id int, from, to string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE listings SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		to, time.Now().UTC(), id, from)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		if _, err := r.GetListingByID(ctx, id); err != nil {
			return err
		}
		return models.ErrInvalidStatus
	}
	return nil
}

func (r *ListingRepository) getProofs(ctx context.Context, q queryer, where string, args ...interface{}) ([]models.ListingProof, error) {
	rows, err := q.QueryContext(ctx, `
        SELECT id, listing_id, file_path, original_name, mime_type, size_bytes, created_at
        FROM listing_proofs `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var proofs []models.ListingProof
	for rows.Next() {
		var p models.ListingProof
		if err := rows.Scan(&p.ID, &p.ListingID, &p.FilePath, &p.OriginalName, &p.MimeType, &p.SizeBytes, &p.CreatedAt); err != nil {
			return nil, err
		}
		proofs = append(proofs, p)
	}
	return proofs, rows.Err()
}

func insertProof(ctx context.Context, ex execer, p models.ListingProof) (models.ListingProof, error) {
	p.CreatedAt = time.Now().UTC()
	res, err := ex.ExecContext(ctx, `
        INSERT INTO listing_proofs (listing_id, file_path, original_name, mime_type, size_bytes, created_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		p.ListingID, p.FilePath, p.OriginalName, p.MimeType, p.SizeBytes, p.CreatedAt)
	if err != nil {
		return models.ListingProof{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.ListingProof{}, err
	}
	p.ID = int(id)
	return p, nil
}
