package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/MarcusNeufeldt/never-cook-alone/internal/logger"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/normalization"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/repos"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/requestdata"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/types"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/utils"
)

type JWTClaims struct {
	jwt.RegisteredClaims
}

type AuthService interface {
	RegisterUser(ctx context.Context, user *types.User) error
	LoginUser(ctx context.Context, email, password string) (string, string, error)
	RefreshUser(ctx context.Context) (string, string, error)
	LogoutUser(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	avatarService AvatarService
	userTokenRepo repos.UserTokenRepo
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	avatarService AvatarService,
	userTokenRepo repos.UserTokenRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		avatarService: avatarService,
		userTokenRepo: userTokenRepo,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (as *authService) RegisterUser(ctx context.Context, user *types.User) error {
	utils.NormalizeUserFields(ctx, user)
	if vErr := utils.InputValidation(ctx, "registration", as.userRepo, as.log, user, "", ""); vErr != nil {
		return vErr
	}
	if hErr := utils.HashPassword(ctx, as.log, user); hErr != nil {
		return hErr
	}
	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user.ID = uuid.New()
		if _, ucErr := as.userRepo.Create(ctx, tx, []*types.User{user}); ucErr != nil {
			return fmt.Errorf("failed to create user: %w", ucErr)
		}
		// Avatar generation needs bucket credentials; registration still
		// succeeds without them.
		if as.avatarService != nil {
			if ucaErr := as.avatarService.CreateAndUploadUserAvatar(ctx, tx, user); ucaErr != nil {
				as.log.Warn("Failed to create user avatar (continuing)", "user_id", user.ID, "error", ucaErr)
			}
		}
		return nil
	})
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (string, string, error) {
	email = normalization.ParseInputString(email)

	if vErr := utils.InputValidation(ctx, "login", as.userRepo, as.log, nil, email, password); vErr != nil {
		return "", "", vErr
	}

	users, usErr := as.userRepo.GetByEmails(ctx, nil, []string{email})
	if usErr != nil {
		return "", "", fmt.Errorf("error retrieving user by email: %w", usErr)
	}
	if len(users) == 0 {
		return "", "", fmt.Errorf("invalid email or password")
	}

	user := users[0]
	if hErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); hErr != nil {
		return "", "", fmt.Errorf("invalid email or password")
	}

	var accessToken string
	var refreshToken string
	if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		foundTokens, ftErr := as.userTokenRepo.GetByUserIDs(ctx, tx, []uuid.UUID{user.ID})
		if ftErr != nil {
			return fmt.Errorf("failed to check user tokens: %w", ftErr)
		}
		expired := make([]uuid.UUID, 0, len(foundTokens))
		for _, tok := range foundTokens {
			if tok.ExpiresAt.Before(time.Now()) {
				expired = append(expired, tok.ID)
			}
		}
		if len(expired) > 0 {
			if dtErr := as.userTokenRepo.DeleteByIDs(ctx, tx, expired); dtErr != nil {
				return fmt.Errorf("failed to delete expired user tokens: %w", dtErr)
			}
		}
		tok, genErr := as.generateAccessToken(user)
		if genErr != nil {
			return fmt.Errorf("generate access token error: %w", genErr)
		}
		accessToken = tok
		refreshToken = uuid.New().String()
		userToken := types.UserToken{
			ID:           uuid.New(),
			UserID:       user.ID,
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresAt:    time.Now().Add(as.refreshTTL),
		}
		if _, ctErr := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{&userToken}); ctErr != nil {
			as.log.Warn("Create user token error", "error", ctErr)
			return fmt.Errorf("create user token error: %w", ctErr)
		}
		return nil
	}); err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (as *authService) RefreshUser(ctx context.Context) (string, string, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return "", "", fmt.Errorf("no request data found in context")
	}
	if rd.RefreshToken == "" {
		return "", "", fmt.Errorf("refresh token not found in request data")
	}

	var accessToken string
	var newRefreshToken string
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existingToken, ftErr := as.userTokenRepo.GetByRefreshToken(ctx, tx, rd.RefreshToken)
		if ftErr != nil {
			if errors.Is(ftErr, gorm.ErrRecordNotFound) {
				return fmt.Errorf("unknown refresh token")
			}
			return fmt.Errorf("error fetching refresh token: %w", ftErr)
		}
		if existingToken.ExpiresAt.Before(time.Now()) {
			if dtErr := as.userTokenRepo.DeleteByIDs(ctx, tx, []uuid.UUID{existingToken.ID}); dtErr != nil {
				return fmt.Errorf("refresh token expired, error deleting: %w", dtErr)
			}
			return fmt.Errorf("refresh token expired")
		}
		users, uErr := as.userRepo.GetByIDs(ctx, tx, []uuid.UUID{existingToken.UserID})
		if uErr != nil {
			return fmt.Errorf("failed to load user for refresh: %w", uErr)
		}
		if len(users) == 0 {
			return fmt.Errorf("no user found for the given refresh token")
		}
		user := users[0]
		tok, genErr := as.generateAccessToken(user)
		if genErr != nil {
			return fmt.Errorf("failed to generate new access token: %w", genErr)
		}
		accessToken = tok
		newRefreshToken = uuid.New().String()
		newUserToken := types.UserToken{
			ID:           uuid.New(),
			UserID:       user.ID,
			AccessToken:  tok,
			RefreshToken: newRefreshToken,
			ExpiresAt:    time.Now().Add(as.refreshTTL),
		}
		if _, cErr := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{&newUserToken}); cErr != nil {
			return fmt.Errorf("failed to create new user token: %w", cErr)
		}
		if dErr := as.userTokenRepo.DeleteByIDs(ctx, tx, []uuid.UUID{existingToken.ID}); dErr != nil {
			return fmt.Errorf("failed to remove old refresh token: %w", dErr)
		}
		return nil
	})
	if err != nil {
		as.log.Warn("Refresh failed", "error", err)
		return "", "", err
	}
	return accessToken, newRefreshToken, nil
}

func (as *authService) LogoutUser(ctx context.Context) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return fmt.Errorf("no request data found in context")
	}
	if rd.TokenString == "" {
		return fmt.Errorf("token string in request data empty")
	}
	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		foundToken, ftErr := as.userTokenRepo.GetByAccessToken(ctx, tx, rd.TokenString)
		if ftErr != nil {
			if errors.Is(ftErr, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("error finding user token: %w", ftErr)
		}
		if tdErr := as.userTokenRepo.DeleteByIDs(ctx, tx, []uuid.UUID{foundToken.ID}); tdErr != nil {
			return fmt.Errorf("error deleting user token: %w", tdErr)
		}
		return nil
	})
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, nil
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return ctx, fmt.Errorf("failed to parse token: %w", err)
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, fmt.Errorf("invalid or expired JWT token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("invalid user id in token: %w", err)
	}
	var refreshToken string
	foundToken, ftErr := as.userTokenRepo.GetByAccessToken(ctx, nil, tokenString)
	if ftErr != nil && !errors.Is(ftErr, gorm.ErrRecordNotFound) {
		return ctx, fmt.Errorf("failed to fetch user token by access token: %w", ftErr)
	}
	if foundToken != nil {
		refreshToken = foundToken.RefreshToken
	}
	rd := &requestdata.RequestData{
		TokenString:  tokenString,
		RefreshToken: refreshToken,
		UserID:       userID,
	}
	return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}
