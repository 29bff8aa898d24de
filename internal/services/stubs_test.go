package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"marketBack/internal/models"
	"marketBack/internal/repositories"
)

type testLogger struct {
	mu     sync.Mutex
	errors []string
}

func (l *testLogger) Infof(string, ...interface{}) {}
func (l *testLogger) Errorf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, fmt.Sprintf(format, args...))
}

type enqueued struct {
	kind    string
	payload interface{}
}

type stubQueue struct {
	tasks []enqueued
	err   error
}

func (q *stubQueue) Enqueue(ctx context.Context, kind string, payload interface{}) error {
	if q.err != nil {
		return q.err
	}
	q.tasks = append(q.tasks, enqueued{kind, payload})
	return nil
}

func (q *stubQueue) kinds() []string {
	var out []string
	for _, t := range q.tasks {
		out = append(out, t.kind)
	}
	return out
}

type stubListings struct {
	listings map[int]models.Listing
	updates  []models.ListingUpdate
	removed  []models.ListingProof
	err      error
	created  []models.Listing
	attached []models.ListingProof
	noProofs bool
}

func newStubListings(ls ...models.Listing) *stubListings {
	s := &stubListings{listings: map[int]models.Listing{}}
	for _, l := range ls {
		s.listings[l.ID] = l
	}
	return s
}

func (s *stubListings) CreateListing(ctx context.Context, l models.Listing, attach repositories.ProofAttacher) (models.Listing, error) {
	l.ID = 100 + len(s.created)
	if attach != nil {
		proofs, err := attach(l.ID)
		if err != nil {
			return models.Listing{}, err
		}
		s.attached = append(s.attached, proofs...)
		l.Proofs = proofs
	}
	if s.err != nil {
		return models.Listing{}, s.err
	}
	s.created = append(s.created, l)
	s.listings[l.ID] = l
	return l, nil
}

func (s *stubListings) ProofsEnabled() bool { return !s.noProofs }

func (s *stubListings) GetListingByID(ctx context.Context, id int) (models.Listing, error) {
	l, ok := s.listings[id]
	if !ok {
		return models.Listing{}, models.ErrListingNotFound
	}
	return l, nil
}

func (s *stubListings) GetListingDetails(ctx context.Context, id int) (models.Listing, error) {
	return s.GetListingByID(ctx, id)
}

func (s *stubListings) GetApprovedListings(ctx context.Context, limit, offset int) ([]models.Listing, int, error) {
	var out []models.Listing
	for _, l := range s.listings {
		if l.Status == models.ListingStatusApproved {
			out = append(out, l)
		}
	}
	return out, len(out), nil
}

func (s *stubListings) GetListingsByUser(ctx context.Context, userID int) ([]models.Listing, error) {
	var out []models.Listing
	for _, l := range s.listings {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *stubListings) UpdateListing(ctx context.Context, upd models.ListingUpdate) ([]models.ListingProof, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.updates = append(s.updates, upd)
	l := upd.Listing
	l.Status = models.ListingStatusPending
	s.listings[l.ID] = l
	return s.removed, nil
}

func (s *stubListings) UpdateStatus(ctx context.Context, id int, from, to string) error {
	l, ok := s.listings[id]
	if !ok {
		return models.ErrListingNotFound
	}
	if l.Status != from {
		return models.ErrInvalidStatus
	}
	l.Status = to
	s.listings[id] = l
	return nil
}

type stubOffers struct {
	offers    map[int]models.Offer
	active    bool
	createErr error
	expired   int64
	cutoff    time.Time
}

func newStubOffers() *stubOffers {
	return &stubOffers{offers: map[int]models.Offer{}}
}

func (s *stubOffers) HasActiveOffer(ctx context.Context, listingID, userID int) (bool, error) {
	if s.active {
		return true, nil
	}
	for _, o := range s.offers {
		if o.ListingID == listingID && o.UserID == userID && models.IsActiveOfferStatus(o.Status) {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubOffers) CreateOffer(ctx context.Context, o models.Offer) (models.Offer, error) {
	if s.createErr != nil {
		return models.Offer{}, s.createErr
	}
	o.ID = len(s.offers) + 1
	o.Status = models.OfferStatusPending
	s.offers[o.ID] = o
	return o, nil
}

func (s *stubOffers) GetOfferByID(ctx context.Context, id int) (models.Offer, error) {
	o, ok := s.offers[id]
	if !ok {
		return models.Offer{}, models.ErrOfferNotFound
	}
	return o, nil
}

func (s *stubOffers) GetOffersByBuyer(ctx context.Context, userID int) ([]models.Offer, error) {
	var out []models.Offer
	for _, o := range s.offers {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *stubOffers) GetOffersByListing(ctx context.Context, listingID int) ([]models.Offer, error) {
	var out []models.Offer
	for _, o := range s.offers {
		if o.ListingID == listingID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *stubOffers) UpdateStatus(ctx context.Context, id int, from, to string) error {
	o, ok := s.offers[id]
	if !ok {
		return models.ErrOfferNotFound
	}
	if o.Status != from {
		return models.ErrOfferNotPending
	}
	o.Status = to
	s.offers[id] = o
	return nil
}

func (s *stubOffers) ExpirePendingBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.cutoff = cutoff
	return s.expired, nil
}

type stubSettings struct {
	values map[string]string
	err    error
}

func (s *stubSettings) GetSetting(ctx context.Context, key string) (string, bool, error) {
	if s.err != nil {
		return "", false, s.err
	}
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *stubSettings) GetAllSettings(ctx context.Context) ([]models.SystemSetting, error) {
	var out []models.SystemSetting
	for k, v := range s.values {
		out = append(out, models.SystemSetting{Key: k, Value: v})
	}
	return out, nil
}

func (s *stubSettings) UpsertSetting(ctx context.Context, key, value string) (models.SystemSetting, error) {
	if s.values == nil {
		s.values = map[string]string{}
	}
	s.values[key] = value
	return models.SystemSetting{Key: key, Value: value}, nil
}

type stubWishlist struct {
	entries map[[2]int]bool
}

func (s *stubWishlist) RemoveFromWishlist(ctx context.Context, userID, listingID int) (bool, error) {
	key := [2]int{userID, listingID}
	if s.entries[key] {
		delete(s.entries, key)
		return true, nil
	}
	return false, nil
}

func (s *stubWishlist) AddToWishlist(ctx context.Context, userID, listingID int) error {
	s.entries[[2]int{userID, listingID}] = true
	return nil
}

func (s *stubWishlist) IsInWishlist(ctx context.Context, userID, listingID int) (bool, error) {
	return s.entries[[2]int{userID, listingID}], nil
}

func (s *stubWishlist) GetWishlistByUser(ctx context.Context, userID int) ([]models.WishlistEntry, error) {
	var out []models.WishlistEntry
	for key := range s.entries {
		if key[0] == userID {
			out = append(out, models.WishlistEntry{UserID: userID, ListingID: key[1]})
		}
	}
	return out, nil
}

type stubUsers struct {
	users    map[int]models.User
	sessions map[string]models.Session
	nextID   int
}

func newStubUsers(users ...models.User) *stubUsers {
	s := &stubUsers{users: map[int]models.User{}, sessions: map[string]models.Session{}, nextID: 1}
	for _, u := range users {
		s.users[u.ID] = u
		if u.ID >= s.nextID {
			s.nextID = u.ID + 1
		}
	}
	return s
}

func (s *stubUsers) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	for _, u := range s.users {
		if u.Email == user.Email {
			return models.User{}, models.ErrDuplicateEmail
		}
	}
	user.ID = s.nextID
	s.nextID++
	s.users[user.ID] = user
	return user, nil
}

func (s *stubUsers) GetUserByID(ctx context.Context, id int) (models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return models.User{}, models.ErrUserNotFound
	}
	return u, nil
}

func (s *stubUsers) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, models.ErrUserNotFound
}

func (s *stubUsers) GetUsersByRole(ctx context.Context, role string) ([]models.User, error) {
	var out []models.User
	for id := 1; id < s.nextID; id++ {
		if u, ok := s.users[id]; ok && u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *stubUsers) SetSession(ctx context.Context, userID int, session models.Session) error {
	u, ok := s.users[userID]
	if !ok {
		return models.ErrUserNotFound
	}
	session.UserID = userID
	session.Role = u.Role
	s.sessions[session.RefreshToken] = session
	return nil
}

func (s *stubUsers) GetSessionByToken(ctx context.Context, token string) (models.Session, error) {
	session, ok := s.sessions[token]
	if !ok {
		return models.Session{}, models.ErrNoRecord
	}
	return session, nil
}

func (s *stubUsers) UpdateFCMToken(ctx context.Context, userID int, token string) error {
	u := s.users[userID]
	u.FCMToken = &token
	s.users[userID] = u
	return nil
}

type stubNotifications struct {
	created []models.Notification
	err     error
}

func (s *stubNotifications) CreateNotification(ctx context.Context, n models.Notification) (models.Notification, error) {
	if s.err != nil {
		return models.Notification{}, s.err
	}
	n.ID = len(s.created) + 1
	s.created = append(s.created, n)
	return n, nil
}

func (s *stubNotifications) GetNotificationsByUser(ctx context.Context, userID, limit int) ([]models.Notification, error) {
	return s.created, nil
}

func (s *stubNotifications) MarkRead(ctx context.Context, id, userID int) error {
	return nil
}

type stubActivity struct {
	entries []models.ActivityLog
}

func (s *stubActivity) LogAction(ctx context.Context, entry models.ActivityLog) error {
	s.entries = append(s.entries, entry)
	return nil
}

type stubProofStore struct {
	saved   []models.ListingProof
	deleted []string
	failOn  string
	failErr error
}

func (s *stubProofStore) SaveProof(ctx context.Context, listingID int, name string, r io.Reader) (models.ListingProof, error) {
	if name == s.failOn {
		return models.ListingProof{}, s.failErr
	}
	data, _ := io.ReadAll(r)
	p := models.ListingProof{
		ListingID:    listingID,
		FilePath:     fmt.Sprintf("proofs/%d/%s", listingID, name),
		OriginalName: name,
		SizeBytes:    int64(len(data)),
	}
	s.saved = append(s.saved, p)
	return p, nil
}

func (s *stubProofStore) Delete(ctx context.Context, path string) error {
	s.deleted = append(s.deleted, path)
	return nil
}

func upload(name string) ProofUpload {
	return ProofUpload{Name: name, Reader: bytes.NewReader([]byte("data"))}
}

var errDB = errors.New("connection refused")
