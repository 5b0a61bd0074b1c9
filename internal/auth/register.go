package auth

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/dreamcandylab/candylab-backend/internal/users"
	"github.com/dreamcandylab/candylab-backend/pkg/config"
	"github.com/dreamcandylab/candylab-backend/pkg/db"
	"github.com/dreamcandylab/candylab-backend/pkg/enums"
	pkgerrors "github.com/dreamcandylab/candylab-backend/pkg/errors"
	"github.com/dreamcandylab/candylab-backend/pkg/security"
)

const maxDisplayNameLength = 30

type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	DisplayName string `json:"display_name" validate:"required"`
}

// normalized trims the request and reports every invalid field.
func (r RegisterRequest) normalized() (RegisterRequest, map[string]string) {
	out := RegisterRequest{
		Email:       strings.ToLower(strings.TrimSpace(r.Email)),
		Password:    r.Password,
		DisplayName: strings.TrimSpace(r.DisplayName),
	}
	problems := map[string]string{}
	if _, err := mail.ParseAddress(out.Email); out.Email == "" || err != nil {
		problems["email"] = "must be a valid email address"
	}
	if n := utf8.RuneCountInString(out.DisplayName); n == 0 || n > maxDisplayNameLength {
		problems["display_name"] = "must be 1-30 characters"
	}
	if err := security.CheckPassword(out.Password); err != nil {
		problems["password"] = err.Error()
	}
	return out, problems
}

// RegisterService opens shopper accounts. It never signs the user in.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error)
}

type RegisterServiceParams struct {
	DB             *db.Client
	PasswordConfig config.PasswordConfig
}

type registerService struct {
	db          *db.Client
	passwordCfg config.PasswordConfig
}

func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &registerService{db: params.DB, passwordCfg: params.PasswordConfig}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error) {
	req, problems := req.normalized()
	if len(problems) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid registration").WithDetails(problems)
	}

	hash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	emailTaken := pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	var created *users.UserDTO
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := users.NewRepository(tx)
		switch _, err := repo.FindByEmail(ctx, req.Email); {
		case err == nil:
			return emailTaken
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		user, err := repo.Create(ctx, users.CreateUserDTO{
			Email:        req.Email,
			PasswordHash: hash,
			DisplayName:  req.DisplayName,
			Role:         enums.UserRoleUser,
		})
		if db.IsUniqueViolation(err, "") {
			return emailTaken
		}
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}
		created = users.FromModel(user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
