package handlers

import (
	"context"
	"errors"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"

	"marketBack/internal/models"
	"marketBack/internal/services"
)

const (
	maxFormMemory  = 32 << 20
	maxRequestSize = 64 << 20
)

type ListingHandler struct {
	Service  *services.ListingService
	Wishlist *services.WishlistService
	ErrorLog *log.Logger
}

// parseListingForm accepts multipart and urlencoded bodies.
func parseListingForm(w http.ResponseWriter, r *http.Request) (*multipart.Form, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)
	err := r.ParseMultipartForm(maxFormMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		return &multipart.Form{Value: r.PostForm}, nil
	}
	if err != nil {
		return nil, err
	}
	return r.MultipartForm, nil
}

func listingFromForm(form *multipart.Form) (models.Listing, error) {
	l := models.Listing{
		Type:                     formValue(form, "type"),
		Name:                     formValue(form, "name"),
		URL:                      formValue(form, "url"),
		Description:              formValue(form, "description"),
		Category:                 formValue(form, "category"),
		AskingPrice:              formDecimal(form, "asking_price"),
		ReservedAmount:           formNullDecimal(form, "reserved_amount"),
		MinDownPaymentPercentage: formInt(form, "min_down_payment_percentage"),
		MonthlyRevenue:           formDecimal(form, "monthly_revenue"),
		MonthlyProfit:            formDecimal(form, "monthly_profit"),
		MonthlyTraffic:           formInt(form, "monthly_traffic"),
	}

	var err error
	if l.Categories, err = gatherFormInts(form, "categories", "categories[]"); err != nil {
		return models.Listing{}, err
	}
	if l.Labels, err = gatherFormValues(form, "labels", "labels[]"); err != nil {
		return models.Listing{}, err
	}
	if l.Answers, err = gatherAnswers(form); err != nil {
		return models.Listing{}, err
	}
	return l, nil
}

// openProofs opens the uploaded proof files. The returned func closes them.
func openProofs(form *multipart.Form) ([]services.ProofUpload, func(), error) {
	var files []multipart.File
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}

	var uploads []services.ProofUpload
	for _, fh := range collectFormFiles(form, "proofs", "proofs[]", "proof_files", "proof_files[]") {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		files = append(files, f)
		uploads = append(uploads, services.ProofUpload{Name: fh.Filename, Reader: f})
	}
	return uploads, closeAll, nil
}

func (h *ListingHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		reject(w, services.MsgLoginToEdit)
		return
	}

	form, err := parseListingForm(w, r)
	if err != nil {
		reject(w, services.MsgInvalidRequest)
		return
	}
	listing, err := listingFromForm(form)
	if err != nil {
		reject(w, services.MsgInvalidRequest)
		return
	}
	listing.UserID = userID

	uploads, closeFiles, err := openProofs(form)
	if err != nil {
		respondError(w, h.ErrorLog, "open proofs", err)
		return
	}
	defer closeFiles()

	created, err := h.Service.CreateListing(r.Context(), listing, uploads)
	if err != nil {
		respondError(w, h.ErrorLog, "create listing", err)
		return
	}
	succeed(w, services.MsgListingCreated, envelope{"listing_id": created.ID, "status": created.Status})
}

// UpdateListing handles an owner's resubmission of a listing.
func (h *ListingHandler) UpdateListing(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		reject(w, services.MsgLoginToEdit)
		return
	}
	if r.Method != http.MethodPost {
		reject(w, services.MsgInvalidMethod)
		return
	}
	listingID := intParam(r, "id")
	if listingID <= 0 {
		reject(w, services.MsgInvalidListing)
		return
	}

	form, err := parseListingForm(w, r)
	if err != nil {
		reject(w, services.MsgInvalidRequest)
		return
	}
	listing, err := listingFromForm(form)
	if err != nil {
		reject(w, services.MsgInvalidRequest)
		return
	}
	listing.ID = listingID
	listing.UserID = userID

	removeIDs, err := gatherFormInts(form, "delete_proofs", "delete_proofs[]")
	if err != nil {
		reject(w, services.MsgInvalidRequest)
		return
	}

	uploads, closeFiles, err := openProofs(form)
	if err != nil {
		respondError(w, h.ErrorLog, "open proofs", err)
		return
	}
	defer closeFiles()

	updated, err := h.Service.UpdateListing(r.Context(), models.ListingUpdate{
		Listing:        listing,
		RemoveProofIDs: removeIDs,
	}, uploads)
	if err != nil {
		respondError(w, h.ErrorLog, "update listing", err)
		return
	}
	succeed(w, services.MsgListingUpdated, envelope{"listing_id": updated.ID, "status": updated.Status})
}

func (h *ListingHandler) GetListings(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	resp, err := h.Service.GetApprovedListings(r.Context(), page, limit)
	if err != nil {
		respondError(w, h.ErrorLog, "get listings", err)
		return
	}
	succeed(w, "", envelope{"data": resp})
}

func (h *ListingHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	id := intParam(r, "id")
	if id <= 0 {
		reject(w, services.MsgInvalidListing)
		return
	}
	viewerID, _ := currentUser(r)

	listing, err := h.Service.GetListing(r.Context(), id, viewerID, currentRole(r))
	if err != nil {
		respondError(w, h.ErrorLog, "get listing", err)
		return
	}

	fields := envelope{"data": listing}
	if viewerID > 0 && h.Wishlist != nil {
		inWishlist, err := h.Wishlist.Contains(r.Context(), viewerID, id)
		if err != nil {
			respondError(w, h.ErrorLog, "get listing", err)
			return
		}
		fields["in_wishlist"] = inWishlist
	}
	succeed(w, "", fields)
}

func (h *ListingHandler) GetMyListings(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		reject(w, services.MsgLoginToEdit)
		return
	}
	listings, err := h.Service.GetListingsByUser(r.Context(), userID)
	if err != nil {
		respondError(w, h.ErrorLog, "get user listings", err)
		return
	}
	succeed(w, "", envelope{"data": listings})
}

func (h *ListingHandler) ApproveListing(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.Service.ApproveListing, "Listing approved.")
}

func (h *ListingHandler) RejectListing(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.Service.RejectListing, "Listing rejected.")
}

func (h *ListingHandler) review(w http.ResponseWriter, r *http.Request,
	action func(ctx context.Context, adminID, listingID int) error, message string) {
	adminID, _ := currentUser(r)
	id := intParam(r, "id")
	if id <= 0 {
		reject(w, services.MsgInvalidListing)
		return
	}
	if err := action(r.Context(), adminID, id); err != nil {
		respondError(w, h.ErrorLog, "review listing", err)
		return
	}
	succeed(w, message, envelope{"listing_id": id})
}
