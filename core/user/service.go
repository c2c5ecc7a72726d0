package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/youwenshao/staffroom/core"
)

var (
	// errors
	ErrNotFound       = errors.New("user not found")
	ErrUsernameExists = errors.New("a user with this username already exists")
)

type (
	Repository interface {
		// CreateUser persists usr and returns it with its assigned ID.
		// A username unique-constraint conflict is returned as
		// ErrUsernameExists, never as a generic failure.
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByUsername(ctx context.Context, username string) (User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
	}

	Service struct {
		repo       Repository
		mailSvc    core.EmailService
		adminEmail mail.Address
	}
)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{
		repo:       repo,
		mailSvc:    mailSvc,
		adminEmail: mail.Address{Address: conf.DefaultFromEmail},
	}
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	usr := User{
		Username:  nu.Username,
		Role:      nu.Role,
		CreatedAt: time.Now().UTC(),
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}

	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		if err == ErrUsernameExists {
			return User{}, core.NewValidationError(err, core.FieldError{Field: "username", Error: err.Error()})
		}
		return User{}, err
	}

	svc.sendSignupMail(usr)
	return usr, nil
}

func (svc *Service) GetByUsername(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUserByUsername(ctx, core.CleanString(uname, true /* lower */))
}

// sendSignupMail notifies the site operators of a new account.
// Fire-and-forget; the EmailService logs and swallows failures.
func (svc *Service) sendSignupMail(usr User) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:          []mail.Address{svc.adminEmail},
		Subject:     "New account",
		TextContent: fmt.Sprintf("%s signed up as %s.", usr.Username, usr.Role),
	})
}
