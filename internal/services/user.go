package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MarcusNeufeldt/never-cook-alone/internal/logger"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/repos"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/requestdata"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/types"
)

type UserService interface {
	GetMe(ctx context.Context) (*types.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*types.User, error)
	UpdateAvatarFromImage(ctx context.Context, raw []byte) (*types.User, error)
}

type userService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	avatarService AvatarService
}

func NewUserService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, avatarService AvatarService) UserService {
	serviceLog := log.With("service", "UserService")
	return &userService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		avatarService: avatarService,
	}
}

func (us *userService) GetMe(ctx context.Context) (*types.User, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("no authenticated user in context")
	}
	return us.GetByID(ctx, rd.UserID)
}

func (us *userService) GetByID(ctx context.Context, id uuid.UUID) (*types.User, error) {
	users, err := us.userRepo.GetByIDs(ctx, nil, []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("user not found")
	}
	return users[0], nil
}

func (us *userService) UpdateAvatarFromImage(ctx context.Context, raw []byte) (*types.User, error) {
	user, err := us.GetMe(ctx)
	if err != nil {
		return nil, err
	}
	if us.avatarService == nil {
		return nil, fmt.Errorf("avatar uploads are not configured")
	}
	if err := us.avatarService.CreateAndUploadUserAvatarFromImage(ctx, nil, user, raw); err != nil {
		return nil, err
	}
	return user, nil
}
