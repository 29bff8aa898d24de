package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"

	"marketBack/internal/models"
)

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, secureHeaders, makeResponseJSON)
	optionalAuth := alice.New(app.identify)
	authMiddleware := alice.New(app.JWTMiddlewareWithRole(models.RoleUser))
	adminAuthMiddleware := alice.New(app.JWTMiddlewareWithRole(models.RoleAdmin))

	mux := pat.New()

	// Users
	mux.Post("/api/user/sign_up", http.HandlerFunc(app.userHandler.SignUp))
	mux.Post("/api/user/sign_in", http.HandlerFunc(app.userHandler.SignIn))
	mux.Get("/api/user/me", authMiddleware.ThenFunc(app.userHandler.Me))
	mux.Post("/api/user/fcm_token", authMiddleware.ThenFunc(app.userHandler.UpdateFCMToken))

	// Offers, wishlist toggle and listing update answer every method so that
	// anonymous and non-POST callers get a structured rejection.
	anyMethod(mux, "/api/offers", optionalAuth.ThenFunc(app.offerHandler.SubmitOffer))
	anyMethod(mux, "/api/wishlist/toggle", optionalAuth.ThenFunc(app.wishlistHandler.Toggle))
	anyMethod(mux, "/api/listings/:id/update", optionalAuth.ThenFunc(app.listingHandler.UpdateListing))

	mux.Get("/api/my/offers", authMiddleware.ThenFunc(app.offerHandler.GetMyOffers))
	mux.Post("/api/offers/:id/accept", authMiddleware.ThenFunc(app.offerHandler.AcceptOffer))
	mux.Post("/api/offers/:id/reject", authMiddleware.ThenFunc(app.offerHandler.RejectOffer))
	mux.Post("/api/offers/:id/withdraw", authMiddleware.ThenFunc(app.offerHandler.WithdrawOffer))

	// Listings
	mux.Post("/api/listings", authMiddleware.ThenFunc(app.listingHandler.CreateListing))
	mux.Get("/api/listings", http.HandlerFunc(app.listingHandler.GetListings))
	mux.Get("/api/my/listings", authMiddleware.ThenFunc(app.listingHandler.GetMyListings))
	mux.Get("/api/listings/:id/offers", authMiddleware.ThenFunc(app.offerHandler.GetListingOffers))
	mux.Get("/api/listings/:id", optionalAuth.ThenFunc(app.listingHandler.GetListing))

	// Wishlist
	mux.Get("/api/wishlist", authMiddleware.ThenFunc(app.wishlistHandler.GetWishlist))

	// Notifications
	mux.Get("/api/notifications", authMiddleware.ThenFunc(app.notificationHandler.GetNotifications))
	mux.Post("/api/notifications/:id/read", authMiddleware.ThenFunc(app.notificationHandler.MarkRead))

	// Admin
	mux.Post("/api/admin/listings/:id/approve", adminAuthMiddleware.ThenFunc(app.listingHandler.ApproveListing))
	mux.Post("/api/admin/listings/:id/reject", adminAuthMiddleware.ThenFunc(app.listingHandler.RejectListing))
	mux.Get("/api/admin/settings", adminAuthMiddleware.ThenFunc(app.settingsHandler.GetSettings))
	mux.Post("/api/admin/settings", adminAuthMiddleware.ThenFunc(app.settingsHandler.UpdateSetting))

	// Live notifications
	ws := http.NewServeMux()
	ws.Handle("/ws", authMiddleware.ThenFunc(app.NotificationSocket))

	api := standardMiddleware.Then(mux)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ws" {
			ws.ServeHTTP(w, r)
			return
		}
		api.ServeHTTP(w, r)
	})
}

var anyMethods = []string{
	http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete,
}

func anyMethod(mux *pat.PatternServeMux, path string, h http.Handler) {
	for _, method := range anyMethods {
		mux.Add(method, path, h)
	}
}
