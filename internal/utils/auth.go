package utils

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/MarcusNeufeldt/never-cook-alone/internal/logger"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/normalization"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/repos"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/types"
)

func InputValidation(ctx context.Context, ffor string, userRepo repos.UserRepo, log *logger.Logger, user *types.User, email, password string) error {
	validatedFor := normalization.ParseInputString(ffor)
	if validatedFor == "" {
		return fmt.Errorf("validation target is empty, needs to be login or registration")
	}
	switch validatedFor {
	case "registration":
		if err := handleRegisterInputValidation(ctx, userRepo, log, user); err != nil {
			return err
		}
	case "login":
		if err := handleLoginInputValidation(ctx, log, email, password); err != nil {
			return err
		}
	}
	return nil
}

func handleRegisterInputValidation(ctx context.Context, userRepo repos.UserRepo, log *logger.Logger, user *types.User) error {
	if user == nil {
		return fmt.Errorf("no user given, cannot proceed with registration")
	}
	if user.Email == "" {
		return fmt.Errorf("an email is required to register")
	}
	emailExists, err := userRepo.EmailExists(ctx, nil, user.Email)
	if err != nil {
		return fmt.Errorf("failed to check user email")
	}
	if emailExists {
		return fmt.Errorf("email is already in use")
	}
	if user.Password == "" {
		return fmt.Errorf("a password is required to register")
	}
	if user.FirstName == "" {
		return fmt.Errorf("a first name is required to register")
	}
	if user.LastName == "" {
		return fmt.Errorf("a last name is required to register")
	}
	return nil
}

func handleLoginInputValidation(ctx context.Context, log *logger.Logger, email, password string) error {
	if email == "" {
		return fmt.Errorf("email is required to login")
	}
	if password == "" {
		return fmt.Errorf("password is required to login")
	}
	return nil
}

func HashPassword(ctx context.Context, log *logger.Logger, user *types.User) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password")
	}
	user.Password = string(hashedPassword)
	return nil
}

func NormalizeUserFields(ctx context.Context, user *types.User) {
	user.Email = normalization.ParseInputString(user.Email)
	user.FirstName = normalization.ParseInputString(user.FirstName)
	user.LastName = normalization.ParseInputString(user.LastName)
}
