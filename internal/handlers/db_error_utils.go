package handlers

import "marketBack/internal/repositories"

const msgUnknownReference = "One of the selected categories or questions does not exist."

// isForeignKeyConstraintError reports a write that referenced a missing
// category or question row.
func isForeignKeyConstraintError(err error) bool {
	return repositories.IsForeignKeyError(err)
}
