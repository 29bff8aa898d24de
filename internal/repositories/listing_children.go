package repositories

import (
	"context"
	"database/sql"
	"strings"

	"marketBack/internal/models"
)

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func queryInts(ctx context.Context, q queryer, query string, args ...interface{}) ([]int, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func queryStrings(ctx context.Context, q queryer, query string, args ...interface{}) ([]string, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func queryAnswers(ctx context.Context, q queryer, listingID int) ([]models.ListingAnswer, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT question_id, answer FROM listing_answers WHERE listing_id = ? ORDER BY question_id`, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ListingAnswer
	for rows.Next() {
		var a models.ListingAnswer
		if err := rows.Scan(&a.QuestionID, &a.Answer); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// diffInts returns the values to insert and to delete so that current becomes
// desired. Duplicates in desired are ignored.
func diffInts(current, desired []int) (added, removed []int) {
	have := make(map[int]bool, len(current))
	for _, v := range current {
		have[v] = true
	}
	want := make(map[int]bool, len(desired))
	for _, v := range desired {
		if want[v] {
			continue
		}
		want[v] = true
		if !have[v] {
			added = append(added, v)
		}
	}
	for _, v := range current {
		if !want[v] {
			removed = append(removed, v)
		}
	}
	return added, removed
}

func diffStrings(current, desired []string) (added, removed []string) {
	have := make(map[string]bool, len(current))
	for _, v := range current {
		have[v] = true
	}
	want := make(map[string]bool, len(desired))
	for _, v := range desired {
		if want[v] {
			continue
		}
		want[v] = true
		if !have[v] {
			added = append(added, v)
		}
	}
	for _, v := range current {
		if !want[v] {
			removed = append(removed, v)
		}
	}
	return added, removed
}

type answerDiff struct {
	insert []models.ListingAnswer
	update []models.ListingAnswer
	remove []int
}

func (d answerDiff) empty() bool {
	return len(d.insert) == 0 && len(d.update) == 0 && len(d.remove) == 0
}

// diffAnswers compares answers by question. The last desired answer for a
// question wins.
func diffAnswers(current, desired []models.ListingAnswer) answerDiff {
	have := make(map[int]string, len(current))
	for _, a := range current {
		have[a.QuestionID] = a.Answer
	}

	want := make(map[int]string, len(desired))
	var order []int
	for _, a := range desired {
		if _, seen := want[a.QuestionID]; !seen {
			order = append(order, a.QuestionID)
		}
		want[a.QuestionID] = a.Answer
	}

	var d answerDiff
	for _, qid := range order {
		answer := want[qid]
		old, ok := have[qid]
		switch {
		case !ok:
			d.insert = append(d.insert, models.ListingAnswer{QuestionID: qid, Answer: answer})
		case old != answer:
			d.update = append(d.update, models.ListingAnswer{QuestionID: qid, Answer: answer})
		}
	}
	for _, a := range current {
		if _, ok := want[a.QuestionID]; !ok {
			d.remove = append(d.remove, a.QuestionID)
		}
	}
	return d
}

func applyCategories(ctx context.Context, tx *sql.Tx, listingID int, desired []int) error {
	current, err := queryInts(ctx, tx, `SELECT category_id FROM listing_categories WHERE listing_id = ?`, listingID)
	if err != nil {
		return err
	}
	added, removed := diffInts(current, desired)
	if len(removed) > 0 {
		args := []interface{}{listingID}
		for _, id := range removed {
			args = append(args, id)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM listing_categories WHERE listing_id = ? AND category_id IN (`+placeholders(len(removed))+`)`,
			args...); err != nil {
			return err
		}
	}
	return insertCategories(ctx, tx, listingID, added)
}

func insertCategories(ctx context.Context, ex execer, listingID int, ids []int) error {
	for _, id := range ids {
		if _, err := ex.ExecContext(ctx,
			`INSERT INTO listing_categories (listing_id, category_id) VALUES (?, ?)`, listingID, id); err != nil {
			return err
		}
	}
	return nil
}

func applyLabels(ctx context.Context, tx *sql.Tx, listingID int, desired []string) error {
	current, err := queryStrings(ctx, tx, `SELECT label FROM listing_labels WHERE listing_id = ?`, listingID)
	if err != nil {
		return err
	}
	added, removed := diffStrings(current, desired)
	if len(removed) > 0 {
		args := []interface{}{listingID}
		for _, label := range removed {
			args = append(args, label)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM listing_labels WHERE listing_id = ? AND label IN (`+placeholders(len(removed))+`)`,
			args...); err != nil {
			return err
		}
	}
	return insertLabels(ctx, tx, listingID, added)
}

func insertLabels(ctx context.Context, ex execer, listingID int, labels []string) error {
	for _, label := range labels {
		if _, err := ex.ExecContext(ctx,
			`INSERT INTO listing_labels (listing_id, label) VALUES (?, ?)`, listingID, label); err != nil {
			return err
		}
	}
	return nil
}

func applyAnswers(ctx context.Context, tx *sql.Tx, listingID int, desired []models.ListingAnswer) error {
	current, err := queryAnswers(ctx, tx, listingID)
	if err != nil {
		return err
	}
	d := diffAnswers(current, desired)
	if d.empty() {
		return nil
	}
	if len(d.remove) > 0 {
		args := []interface{}{listingID}
		for _, qid := range d.remove {
			args = append(args, qid)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM listing_answers WHERE listing_id = ? AND question_id IN (`+placeholders(len(d.remove))+`)`,
			args...); err != nil {
			return err
		}
	}
	for _, a := range d.update {
		if _, err := tx.ExecContext(ctx,
			`UPDATE listing_answers SET answer = ? WHERE listing_id = ? AND question_id = ?`,
			a.Answer, listingID, a.QuestionID); err != nil {
			return err
		}
	}
	return insertAnswers(ctx, tx, listingID, d.insert)
}

func insertAnswers(ctx context.Context, ex execer, listingID int, answers []models.ListingAnswer) error {
	for _, a := range answers {
		if _, err := ex.ExecContext(ctx,
			`INSERT INTO listing_answers (listing_id, question_id, answer) VALUES (?, ?, ?)`,
			listingID, a.QuestionID, a.Answer); err != nil {
			return err
		}
	}
	return nil
}
