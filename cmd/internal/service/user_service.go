package service

import (
	"amigella/cmd/internal/domain/entity"
	"amigella/cmd/internal/utils"
	"amigella/cmd/internal/utils/apierror"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

type UserRepository interface {
	FindByID(id int) (*entity.User, error)
	FindByEmail(email string) (*entity.User, error)
	ExistsByEmail(email string) (bool, error)
	Save(user *entity.User) error
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=2,max=80"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=64,hasspecial,hasdigit,hasupper,haslower,nospaces"`
	Timezone string `json:"timezone" validate:"omitempty,timezone"`
}

type UserLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=64"`
}

type UserResponse struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Timezone  string `json:"timezone"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type AuthResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}

// Every new account starts with these categories, matching what the voice
// extraction is prompted to guess.
var defaultCategories = []struct {
	Name  string
	Color string
	Emoji string
}{
	{"Rad", "#3B82F6", "💼"},
	{"Slobodno vreme", "#10B981", "🎯"},
	{"Zdravlje", "#F59E0B", "💪"},
	{"Lično", "#8B5CF6", "🌙"},
}

type DefaultUserService struct {
	UserRepo     UserRepository
	CategoryRepo CategoryRepository
	Validate     *validator.Validate
}

func NewUserService(userRepo UserRepository, catRepo CategoryRepository, validate *validator.Validate) *DefaultUserService {
	return &DefaultUserService{UserRepo: userRepo, CategoryRepo: catRepo, Validate: validate}
}

// Register creates the user, seeds the default category set and returns a
// fresh token so the client can proceed without a separate login.
func (u *DefaultUserService) Register(req *RegisterRequest) (*AuthResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := u.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	found, err := u.UserRepo.ExistsByEmail(req.Email)
	if err != nil {
		log.Errorf("failed to check if user already exists: %v", err)
		return nil, apierror.InternalServerError
	}
	if found {
		return nil, apierror.UserAlreadyExistsError
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		log.Errorf("failed to hash password: %v", err)
		return nil, apierror.InternalServerError
	}

	timezone := req.Timezone
	if timezone == "" {
		timezone = "UTC"
	}

	now := utils.NowUTC()
	user := &entity.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Timezone:     timezone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := u.UserRepo.Save(user); err != nil {
		log.Errorf("failed to create user: %v", err)
		return nil, apierror.InternalServerError
	}

	cats := make([]*entity.Category, len(defaultCategories))
	for i, dc := range defaultCategories {
		cats[i] = &entity.Category{
			UserID:    user.ID,
			Name:      dc.Name,
			Color:     dc.Color,
			Emoji:     dc.Emoji,
			IsDefault: true,
			Priority:  5,
			CreatedAt: now,
		}
	}
	if err := u.CategoryRepo.SaveAll(cats); err != nil {
		log.Errorf("failed to seed default categories for user %d: %v", user.ID, err)
		return nil, apierror.InternalServerError
	}

	return u.issueToken(user)
}

func (u *DefaultUserService) Login(req *UserLoginRequest) (*AuthResponse, apierror.ErrorResponse) {
	if err := u.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	user, err := u.UserRepo.FindByEmail(req.Email)
	if err != nil {
		log.Errorf("failed to fetch user from database: %v", err)
		return nil, apierror.InternalServerError
	}

	if user == nil || !utils.CheckPassword(req.Password, user.PasswordHash) {
		return nil, apierror.CredentialsMismatchError
	}
	return u.issueToken(user)
}

func (u *DefaultUserService) issueToken(user *entity.User) (*AuthResponse, apierror.ErrorResponse) {
	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		log.Errorf("failed to sign token for user %d: %v", user.ID, err)
		return nil, apierror.InternalServerError
	}
	return &AuthResponse{Token: token, User: toUserResponse(user)}, nil
}

func toUserResponse(user *entity.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Timezone:  user.Timezone,
		CreatedAt: utils.FormatEpoch(user.CreatedAt),
		UpdatedAt: utils.FormatEpoch(user.UpdatedAt),
	}
}
