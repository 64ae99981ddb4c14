package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"tastebook/internal/model"
	"tastebook/internal/repository"
)

// UserService handles business logic for accounts and profiles.
type UserService struct {
	repo       repository.UserRepository
	followRepo repository.FollowRepository
	recipeRepo repository.RecipeRepository
}

func NewUserService(
	repo repository.UserRepository,
	followRepo repository.FollowRepository,
	recipeRepo repository.RecipeRepository,
) *UserService {
	return &UserService{
		repo:       repo,
		followRepo: followRepo,
		recipeRepo: recipeRepo,
	}
}

// Register creates a new account.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if strings.TrimSpace(req.Username) == "" {
		return nil, fmt.Errorf("username is required")
	}

	if strings.TrimSpace(req.Password) == "" {
		return nil, fmt.Errorf("password is required")
	}

	exists, err := s.repo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, model.ErrUsernameExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:       req.Username,
		PasswordHashed: string(hashedPassword),
		AvatarURL:      req.AvatarURL,
		AvatarKey:      req.AvatarKey,
	}

	if req.FullName != "" {
		user.FullName = &req.FullName
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login authenticates a user with username and password.
func (s *UserService) Login(ctx context.Context, req *model.LoginRequest) (*model.User, error) {
	user, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		// Don't reveal whether the username exists
		return nil, model.ErrInvalidCredentials
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.Password))
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}

	return user, nil
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

// GetProfile assembles a profile view: the user row plus follower count,
// following count and recipe count, fetched concurrently. The aggregates are
// derived row counts, so the three queries are independent of each other.
// The assembly is all-or-nothing: if any part fails the whole profile read
// fails rather than returning partial counts.
func (s *UserService) GetProfile(ctx context.Context, userID int64, viewerID *int64) (*model.ProfileResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := &model.ProfileResponse{User: user}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		count, err := s.followRepo.CountFollowers(gctx, userID)
		if err != nil {
			return fmt.Errorf("count followers: %w", err)
		}
		profile.Followers = count
		return nil
	})

	g.Go(func() error {
		count, err := s.followRepo.CountFollowing(gctx, userID)
		if err != nil {
			return fmt.Errorf("count following: %w", err)
		}
		profile.Following = count
		return nil
	})

	g.Go(func() error {
		count, err := s.recipeRepo.CountByAuthor(gctx, userID)
		if err != nil {
			return fmt.Errorf("count recipes: %w", err)
		}
		profile.RecipeCount = count
		return nil
	})

	if viewerID != nil && *viewerID != userID {
		g.Go(func() error {
			isFollowing, err := s.followRepo.Exists(gctx, *viewerID, userID)
			if err != nil {
				return fmt.Errorf("check follow: %w", err)
			}
			profile.IsFollowing = isFollowing
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return profile, nil
}

// UpdateProfile applies the owner-editable fields and returns the updated user.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, req model.UpdateProfileRequest) (*model.User, error) {
	return s.repo.UpdateProfile(ctx, userID, req)
}

// Search finds users by username with follow status enrichment for the
// viewer. Uses a batch query (CheckFollows with ANY($1)) to avoid N+1.
func (s *UserService) Search(ctx context.Context, query string, limit int, viewerID *int64) ([]model.UserSummary, error) {
	users, err := s.repo.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	if viewerID != nil && len(users) > 0 {
		users = s.enrichWithFollowStatus(ctx, *viewerID, users)
	}

	return users, nil
}

// GetFollowers retrieves the followers of a user with cursor pagination,
// newest edges first.
func (s *UserService) GetFollowers(ctx context.Context, userID int64, cursor *time.Time, limit int, viewerID *int64) (*model.FollowListResponse, error) {
	users, nextCursor, err := s.followRepo.GetFollowers(ctx, userID, cursor, limit)
	if err != nil {
		return nil, err
	}
	return s.buildFollowList(ctx, users, nextCursor, viewerID), nil
}

// GetFollowing retrieves the users someone follows with cursor pagination.
func (s *UserService) GetFollowing(ctx context.Context, userID int64, cursor *time.Time, limit int, viewerID *int64) (*model.FollowListResponse, error) {
	users, nextCursor, err := s.followRepo.GetFollowing(ctx, userID, cursor, limit)
	if err != nil {
		return nil, err
	}
	return s.buildFollowList(ctx, users, nextCursor, viewerID), nil
}

func (s *UserService) buildFollowList(ctx context.Context, users []model.UserSummary, nextCursor *time.Time, viewerID *int64) *model.FollowListResponse {
	if viewerID != nil {
		users = s.enrichWithFollowStatus(ctx, *viewerID, users)
	}

	var nextCursorStr *string
	if nextCursor != nil {
		str := nextCursor.Format(time.RFC3339Nano)
		nextCursorStr = &str
	}

	return &model.FollowListResponse{
		Users:      users,
		NextCursor: nextCursorStr,
		HasMore:    nextCursor != nil,
	}
}

// enrichWithFollowStatus batch-checks whether the viewer follows each listed
// user. One query via ANY($1). If the check fails the list is returned with
// is_following=false rather than failing the request.
func (s *UserService) enrichWithFollowStatus(ctx context.Context, viewerID int64, users []model.UserSummary) []model.UserSummary {
	if len(users) == 0 {
		return users
	}

	userIDs := make([]int64, len(users))
	for i, user := range users {
		userIDs[i] = user.ID
	}

	followMap, err := s.followRepo.CheckFollows(ctx, viewerID, userIDs)
	if err != nil {
		return users
	}

	for i := range users {
		users[i].IsFollowing = followMap[users[i].ID]
	}

	return users
}
