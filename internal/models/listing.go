package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ListingStatusPending  = "pending"
	ListingStatusApproved = "approved"
	ListingStatusRejected = "rejected"
	ListingStatusSold     = "sold"
)

const (
	ListingTypeWebsite = "website"
	ListingTypeYouTube = "youtube"
)

type Listing struct {
	ID                       int                 `json:"id"`
	UserID                   int                 `json:"user_id"`
	Type                     string              `json:"type"`
	Name                     string              `json:"name"`
	URL                      string              `json:"url"`
	Description              string              `json:"description"`
	Category                 string              `json:"category"`
	AskingPrice              decimal.Decimal     `json:"asking_price"`
	ReservedAmount           decimal.NullDecimal `json:"reserved_amount"`
	MinDownPaymentPercentage int                 `json:"min_down_payment_percentage"`
	MonthlyRevenue           decimal.Decimal     `json:"monthly_revenue"`
	MonthlyProfit            decimal.Decimal     `json:"monthly_profit"`
	MonthlyTraffic           int                 `json:"monthly_traffic"`
	Status                   string              `json:"status"`
	CreatedAt                time.Time           `json:"created_at"`
	UpdatedAt                *time.Time          `json:"updated_at,omitempty"`

	Categories []int           `json:"categories,omitempty"`
	Labels     []string        `json:"labels,omitempty"`
	Answers    []ListingAnswer `json:"answers,omitempty"`
	Proofs     []ListingProof  `json:"proofs,omitempty"`
}

// HasReservedAmount reports whether the seller set a floor above zero.
func (l Listing) HasReservedAmount() bool {
	return l.ReservedAmount.Valid && l.ReservedAmount.Decimal.IsPositive()
}

type ListingAnswer struct {
	QuestionID int    `json:"question_id"`
	Answer     string `json:"answer"`
}

type ListingProof struct {
	ID           int       `json:"id"`
	ListingID    int       `json:"listing_id"`
	FilePath     string    `json:"file_path"`
	OriginalName string    `json:"original_name"`
	MimeType     string    `json:"mime_type"`
	SizeBytes    int64     `json:"size_bytes"`
	CreatedAt    time.Time `json:"created_at"`
}

// ListingUpdate is an owner's resubmission of a listing. NewProofs are already
// written to storage; RemoveProofIDs refer to rows of the same listing.
type ListingUpdate struct {
	Listing        Listing
	RemoveProofIDs []int
	NewProofs      []ListingProof
}

type ListingListResponse struct {
	Listings []Listing `json:"listings"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
}
