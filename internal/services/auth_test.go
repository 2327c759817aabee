package services

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/MarcusNeufeldt/never-cook-alone/internal/repos"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/requestdata"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/types"
)

func newAuthServiceForTest(t *testing.T, db *gorm.DB) AuthService {
	t.Helper()
	log := testLogger(t)
	return NewAuthService(db, log,
		repos.NewUserRepo(db, log),
		nil,
		repos.NewUserTokenRepo(db, log),
		"test-secret",
		time.Hour,
		24*time.Hour)
}

func TestAuthTokenRoundTrip(t *testing.T) {
	db := openTestDB(t)
	as := newAuthServiceForTest(t, db)
	ctx := context.Background()

	user := &types.User{
		Email:     "Cook@Example.com",
		Password:  "hunter2hunter2",
		FirstName: "Ada",
		LastName:  "Lovelace",
	}
	if err := as.RegisterUser(ctx, user); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if user.Password == "hunter2hunter2" {
		t.Fatalf("password stored in plaintext")
	}

	// Email was normalized at registration; login with the original casing.
	access, refresh, err := as.LoginUser(ctx, "COOK@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}
	if access == "" || refresh == "" {
		t.Fatalf("empty tokens from login")
	}

	authedCtx, err := as.SetContextFromToken(ctx, access)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	rd := requestdata.GetRequestData(authedCtx)
	if rd == nil || rd.UserID != user.ID {
		t.Fatalf("request data user: want=%s got=%v", user.ID, rd)
	}

	newAccess, newRefresh, err := as.RefreshUser(authedCtx)
	if err != nil {
		t.Fatalf("RefreshUser: %v", err)
	}
	if newAccess == "" || newRefresh == refresh {
		t.Fatalf("refresh should rotate the token pair")
	}

	// The rotated refresh token is gone; reusing it must fail.
	if _, _, err := as.RefreshUser(authedCtx); err == nil {
		t.Fatalf("old refresh token should be rejected after rotation")
	}

	freshCtx, err := as.SetContextFromToken(ctx, newAccess)
	if err != nil {
		t.Fatalf("SetContextFromToken after refresh: %v", err)
	}
	if err := as.LogoutUser(freshCtx); err != nil {
		t.Fatalf("LogoutUser: %v", err)
	}
	var tokenCount int64
	db.Model(&types.UserToken{}).Count(&tokenCount)
	if tokenCount != 0 {
		t.Fatalf("tokens after logout: want=0 got=%d", tokenCount)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	db := openTestDB(t)
	as := newAuthServiceForTest(t, db)
	ctx := context.Background()

	user := &types.User{
		Email:     "cook@example.com",
		Password:  "correct-password",
		FirstName: "Ada",
		LastName:  "Lovelace",
	}
	if err := as.RegisterUser(ctx, user); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}

	if _, _, err := as.LoginUser(ctx, "cook@example.com", "wrong-password"); err == nil {
		t.Fatalf("wrong password should fail login")
	}
	if _, _, err := as.LoginUser(ctx, "nobody@example.com", "correct-password"); err == nil {
		t.Fatalf("unknown email should fail login")
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	db := openTestDB(t)
	as := newAuthServiceForTest(t, db)
	ctx := context.Background()

	first := &types.User{Email: "cook@example.com", Password: "pw-one-two", FirstName: "Ada", LastName: "Lovelace"}
	if err := as.RegisterUser(ctx, first); err != nil {
		t.Fatalf("first RegisterUser: %v", err)
	}
	second := &types.User{Email: " COOK@example.com ", Password: "pw-three-four", FirstName: "Grace", LastName: "Hopper"}
	if err := as.RegisterUser(ctx, second); err == nil {
		t.Fatalf("duplicate email should fail registration")
	}
}
