package notify

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/shopspring/decimal"
)

// OfferEmailData is what the seller sees in the offer-received email.
type OfferEmailData struct {
	SellerName  string
	BuyerName   string
	ListingName string
	ListingID   int
	OfferID     int
	Amount      decimal.Decimal
	AskingPrice decimal.Decimal
	Message     string
	SiteURL     string
}

var offerEmailHTML = template.Must(template.New("offer").Parse(`<p>Hi {{.SellerName}},</p>
<p>{{.BuyerName}} made an offer of <strong>${{.Amount.StringFixed 2}}</strong> on your listing
<strong>{{.ListingName}}</strong> (asking ${{.AskingPrice.StringFixed 2}}).</p>
<blockquote>{{.Message}}</blockquote>
<p><a href="{{.SiteURL}}/listings/{{.ListingID}}/offers">Review the offer</a></p>`))

func OfferReceivedEmail(to string, data OfferEmailData) (Email, error) {
	var html bytes.Buffer
	if err := offerEmailHTML.Execute(&html, data); err != nil {
		return Email{}, fmt.Errorf("render offer email: %w", err)
	}
	text := fmt.Sprintf("Hi %s,\n\n%s made an offer of $%s on your listing %s (asking $%s).\n\nMessage: %s\n\nReview it at %s/listings/%d/offers\n",
		data.SellerName, data.BuyerName, data.Amount.StringFixed(2), data.ListingName,
		data.AskingPrice.StringFixed(2), data.Message, data.SiteURL, data.ListingID)
	return Email{
		To:      to,
		Subject: fmt.Sprintf("New offer on %s", data.ListingName),
		Text:    text,
		HTML:    html.String(),
	}, nil
}
