package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"marketBack/internal/models"
)

func TestSystemSettings(t *testing.T) {
	repo := &SystemSettingsRepository{DB: newTestDB(t)}
	ctx := context.Background()

	if _, ok, err := repo.GetSetting(ctx, models.SettingMinOfferPercentage); err != nil || ok {
		t.Fatalf("expected missing setting, got ok=%v err=%v", ok, err)
	}
	if _, err := repo.UpsertSetting(ctx, models.SettingMinOfferPercentage, "60"); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.UpsertSetting(ctx, models.SettingMinOfferPercentage, "80"); err != nil {
		t.Fatal(err)
	}
	value, ok, err := repo.GetSetting(ctx, models.SettingMinOfferPercentage)
	if err != nil || !ok || value != "80" {
		t.Fatalf("got %q ok=%v err=%v", value, ok, err)
	}

	all, err := repo.GetAllSettings(ctx)
	if err != nil || len(all) != 1 {
		t.Fatalf("expected one setting, got %v (%v)", all, err)
	}
}

func TestUserRepository(t *testing.T) {
	repo := &UserRepository{DB: newTestDB(t)}
	ctx := context.Background()

	user, err := repo.CreateUser(ctx, models.User{Name: "Ann", Email: "ann@example.com", Password: "hash"})
	if err != nil {
		t.Fatal(err)
	}
	if user.Role != models.RoleUser {
		t.Fatalf("expected default role, got %q", user.Role)
	}
	if _, err := repo.CreateUser(ctx, models.User{Name: "Ann", Email: "ann@example.com", Password: "x"}); !errors.Is(err, models.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	if _, err := repo.CreateUser(ctx, models.User{Name: "Root", Email: "root@example.com", Password: "x", Role: models.RoleAdmin}); err != nil {
		t.Fatal(err)
	}

	admins, err := repo.GetUsersByRole(ctx, models.RoleAdmin)
	if err != nil || len(admins) != 1 || admins[0].Email != "root@example.com" {
		t.Fatalf("unexpected admins %+v (%v)", admins, err)
	}

	expires := time.Now().Add(time.Hour).UTC()
	if err := repo.SetSession(ctx, user.ID, models.Session{RefreshToken: "tok", ExpiresAt: expires}); err != nil {
		t.Fatal(err)
	}
	session, err := repo.GetSessionByToken(ctx, "tok")
	if err != nil || session.UserID != user.ID || session.Role != models.RoleUser {
		t.Fatalf("unexpected session %+v (%v)", session, err)
	}
	if _, err := repo.GetSessionByToken(ctx, "missing"); !errors.Is(err, models.ErrNoRecord) {
		t.Fatalf("expected ErrNoRecord, got %v", err)
	}
	if err := repo.SetSession(ctx, 999, models.Session{RefreshToken: "x", ExpiresAt: expires}); !errors.Is(err, models.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	if err := repo.UpdateFCMToken(ctx, user.ID, "device-1"); err != nil {
		t.Fatal(err)
	}
	got, err := repo.GetUserByEmail(ctx, "ann@example.com")
	if err != nil || got.FCMToken == nil || *got.FCMToken != "device-1" {
		t.Fatalf("unexpected user %+v (%v)", got, err)
	}
	if _, err := repo.GetUserByID(ctx, 999); !errors.Is(err, models.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestNotificationRepository(t *testing.T) {
	repo := &NotificationRepository{DB: newTestDB(t)}
	ctx := context.Background()

	var last models.Notification
	for i := 0; i < 3; i++ {
		n, err := repo.CreateNotification(ctx, models.Notification{UserID: 1, Type: models.NotificationNewOffer, Title: "New offer", Message: "m"})
		if err != nil {
			t.Fatal(err)
		}
		last = n
	}

	list, err := repo.GetNotificationsByUser(ctx, 1, 2)
	if err != nil || len(list) != 2 {
		t.Fatalf("expected 2 notifications, got %d (%v)", len(list), err)
	}
	if list[0].ID != last.ID {
		t.Fatalf("expected newest first, got %d", list[0].ID)
	}

	if err := repo.MarkRead(ctx, last.ID, 2); !errors.Is(err, models.ErrNotificationNotFound) {
		t.Fatalf("expected ErrNotificationNotFound for another user, got %v", err)
	}
	if err := repo.MarkRead(ctx, last.ID, 1); err != nil {
		t.Fatal(err)
	}
	list, _ = repo.GetNotificationsByUser(ctx, 1, 1)
	if !list[0].IsRead {
		t.Fatal("expected notification to be read")
	}
}

func TestActivityLogAndDeadLetters(t *testing.T) {
	db := newTestDB(t)
	logs := &ActivityLogRepository{DB: db}
	letters := &DeadLetterRepository{DB: db}
	ctx := context.Background()

	userID := 4
	if err := logs.LogAction(ctx, models.ActivityLog{UserID: &userID, Action: "offer_submitted", Detail: "offer 1", Entity: "offer"}); err != nil {
		t.Fatal(err)
	}
	if err := logs.LogAction(ctx, models.ActivityLog{Action: "offers_expired", Detail: "2", Entity: "offer"}); err != nil {
		t.Fatal(err)
	}
	entries, err := logs.GetByEntity(ctx, "offer", 10)
	if err != nil || len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d (%v)", len(entries), err)
	}
	if entries[0].UserID != nil || entries[1].UserID == nil || *entries[1].UserID != 4 {
		t.Fatalf("unexpected user ids %+v", entries)
	}

	if err := letters.SaveDeadLetter(ctx, models.DeadLetter{TaskID: "t1", Kind: "offer_email", Payload: "{}", Attempts: 5, LastError: "boom"}); err != nil {
		t.Fatal(err)
	}
	count, err := letters.CountDeadLetters(ctx, "offer_email")
	if err != nil || count != 1 {
		t.Fatalf("expected 1 dead letter, got %d (%v)", count, err)
	}
}
