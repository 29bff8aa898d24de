package services

// Caller facing messages shared with the handlers.
const (
	MsgLoginRequired     = "You must be logged in to make an offer."
	MsgLoginToWishlist   = "You must be logged in to use the wishlist."
	MsgLoginToEdit       = "You must be logged in to edit a listing."
	MsgInvalidMethod     = "Invalid request method."
	MsgInvalidListing    = "Invalid listing."
	MsgInvalidAmount     = "Please enter a valid offer amount."
	MsgListingNotFound   = "Listing not found or not available."
	MsgOwnListing        = "You cannot make an offer on your own listing."
	MsgActiveOffer       = "You already have an active offer on this listing."
	MsgOfferSubmitted    = "Your offer has been submitted successfully."
	MsgListingUpdated    = "Listing updated and submitted for review."
	MsgListingCreated    = "Listing submitted for review."
	MsgNoEditPermission  = "You do not have permission to edit this listing."
	MsgDatabaseError     = "A database error occurred. Please try again later."
	MsgOfferNotFound     = "Offer not found."
	MsgOfferNotPending   = "Only pending offers can be updated."
	MsgNoOfferPermission = "You do not have permission to manage this offer."
	MsgListingNotPending = "Only pending listings can be reviewed."
	MsgInvalidRequest    = "Invalid request."
)
