package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"tastebook/internal/model"
)

func TestRegister_Success(t *testing.T) {
	var created *model.User
	userRepo := &mockUserRepository{
		existsByUsernameFn: func(ctx context.Context, username string) (bool, error) {
			return false, nil
		},
		createFn: func(ctx context.Context, user *model.User) error {
			user.ID = 1
			created = user
			return nil
		},
	}
	svc := NewUserService(userRepo, &mockFollowRepository{}, &mockRecipeRepository{})

	user, err := svc.Register(context.Background(), &model.RegisterRequest{
		Username: "alice",
		Password: "s3cret-pass",
		FullName: "Alice Nguyen",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if user.ID != 1 {
		t.Errorf("expected user ID 1, got %d", user.ID)
	}
	if created.FullName == nil || *created.FullName != "Alice Nguyen" {
		t.Error("full name was not stored")
	}
	if created.PasswordHashed == "s3cret-pass" {
		t.Error("password must be hashed before storage")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(created.PasswordHashed), []byte("s3cret-pass")); err != nil {
		t.Errorf("stored hash does not verify against the password: %v", err)
	}
}

func TestRegister_UsernameTaken(t *testing.T) {
	userRepo := &mockUserRepository{
		existsByUsernameFn: func(ctx context.Context, username string) (bool, error) {
			return true, nil
		},
	}
	svc := NewUserService(userRepo, &mockFollowRepository{}, &mockRecipeRepository{})

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Username: "alice",
		Password: "s3cret-pass",
	})

	if !errors.Is(err, model.ErrUsernameExists) {
		t.Errorf("expected ErrUsernameExists, got %v", err)
	}
	if userRepo.createCalls != 0 {
		t.Error("Create should not be called for a taken username")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-pass"), bcrypt.MinCost)
	userRepo := &mockUserRepository{
		getByUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			return &model.User{ID: 1, Username: username, PasswordHashed: string(hash)}, nil
		},
	}
	svc := NewUserService(userRepo, &mockFollowRepository{}, &mockRecipeRepository{})

	_, err := svc.Login(context.Background(), &model.LoginRequest{
		Username: "alice",
		Password: "wrong-pass",
	})

	if !errors.Is(err, model.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_UnknownUsernameSameError(t *testing.T) {
	// Unknown username and wrong password must be indistinguishable.
	userRepo := &mockUserRepository{
		getByUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			return nil, model.ErrUserNotFound
		},
	}
	svc := NewUserService(userRepo, &mockFollowRepository{}, &mockRecipeRepository{})

	_, err := svc.Login(context.Background(), &model.LoginRequest{
		Username: "nobody",
		Password: "whatever",
	})

	if !errors.Is(err, model.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestGetProfile_AssemblesCounts(t *testing.T) {
	userRepo := &mockUserRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, Username: "alice"}, nil
		},
	}
	followRepo := &mockFollowRepository{
		countFollowersFn: func(ctx context.Context, userID int64) (int, error) {
			return 12, nil
		},
		countFollowingFn: func(ctx context.Context, userID int64) (int, error) {
			return 34, nil
		},
		existsFn: func(ctx context.Context, followerID, followingID int64) (bool, error) {
			return true, nil
		},
	}
	recipeRepo := &mockRecipeRepository{
		countByAuthorFn: func(ctx context.Context, authorID int64) (int, error) {
			return 5, nil
		},
	}
	svc := NewUserService(userRepo, followRepo, recipeRepo)

	viewerID := int64(99)
	profile, err := svc.GetProfile(context.Background(), 1, &viewerID)
	if err != nil {
		t.Fatalf("GetProfile returned error: %v", err)
	}

	if profile.Followers != 12 {
		t.Errorf("expected 12 followers, got %d", profile.Followers)
	}
	if profile.Following != 34 {
		t.Errorf("expected 34 following, got %d", profile.Following)
	}
	if profile.RecipeCount != 5 {
		t.Errorf("expected 5 recipes, got %d", profile.RecipeCount)
	}
	if !profile.IsFollowing {
		t.Error("expected IsFollowing=true for the viewer")
	}
}

func TestGetProfile_SelfViewSkipsFollowCheck(t *testing.T) {
	userRepo := &mockUserRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, Username: "alice"}, nil
		},
	}
	followRepo := &mockFollowRepository{
		existsFn: func(ctx context.Context, followerID, followingID int64) (bool, error) {
			t.Error("follow check should not run when viewing own profile")
			return false, nil
		},
	}
	svc := NewUserService(userRepo, followRepo, &mockRecipeRepository{})

	viewerID := int64(1)
	profile, err := svc.GetProfile(context.Background(), 1, &viewerID)
	if err != nil {
		t.Fatalf("GetProfile returned error: %v", err)
	}
	if profile.IsFollowing {
		t.Error("IsFollowing should be false on own profile")
	}
}

func TestGetProfile_FailsWhenAnyCountFails(t *testing.T) {
	// The profile read is all-or-nothing: a failed aggregate fails the
	// whole request instead of returning partial counts.
	countErr := errors.New("connection reset")
	userRepo := &mockUserRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, Username: "alice"}, nil
		},
	}
	followRepo := &mockFollowRepository{
		countFollowingFn: func(ctx context.Context, userID int64) (int, error) {
			return 0, countErr
		},
	}
	svc := NewUserService(userRepo, followRepo, &mockRecipeRepository{})

	_, err := svc.GetProfile(context.Background(), 1, nil)

	if !errors.Is(err, countErr) {
		t.Errorf("expected wrapped count error, got %v", err)
	}
}

func TestSearch_EnrichesFollowStatus(t *testing.T) {
	userRepo := &mockUserRepository{
		searchFn: func(ctx context.Context, query string, limit int) ([]model.UserSummary, error) {
			return []model.UserSummary{
				{ID: 2, Username: "bob"},
				{ID: 3, Username: "carol"},
			}, nil
		},
	}
	followRepo := &mockFollowRepository{
		checkFollowsFn: func(ctx context.Context, followerID int64, followingIDs []int64) (map[int64]bool, error) {
			if len(followingIDs) != 2 {
				t.Errorf("expected a single batch check for 2 users, got %d IDs", len(followingIDs))
			}
			return map[int64]bool{2: true}, nil
		},
	}
	svc := NewUserService(userRepo, followRepo, &mockRecipeRepository{})

	viewerID := int64(1)
	users, err := svc.Search(context.Background(), "b", 20, &viewerID)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}

	if !users[0].IsFollowing {
		t.Error("expected bob to be marked as followed")
	}
	if users[1].IsFollowing {
		t.Error("expected carol to be unfollowed")
	}
}

func TestGetFollowers_CursorFormatting(t *testing.T) {
	edgeTime := mustParseTime(t, "2026-08-01T10:30:00.5Z")
	followRepo := &mockFollowRepository{
		getFollowersFn: func(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]model.UserSummary, *time.Time, error) {
			return []model.UserSummary{{ID: 2, Username: "bob"}}, &edgeTime, nil
		},
	}
	svc := NewUserService(&mockUserRepository{}, followRepo, &mockRecipeRepository{})

	resp, err := svc.GetFollowers(context.Background(), 1, nil, 20, nil)
	if err != nil {
		t.Fatalf("GetFollowers returned error: %v", err)
	}

	if !resp.HasMore {
		t.Error("expected HasMore=true when a next cursor exists")
	}
	if resp.NextCursor == nil {
		t.Fatal("expected a next cursor")
	}
	parsed, err := time.Parse(time.RFC3339Nano, *resp.NextCursor)
	if err != nil {
		t.Fatalf("next cursor is not RFC3339Nano: %v", err)
	}
	if !parsed.Equal(edgeTime) {
		t.Errorf("cursor round-trip mismatch: got %v, want %v", parsed, edgeTime)
	}
}

func mustParseTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		t.Fatalf("bad test timestamp %q: %v", value, err)
	}
	return parsed
}
