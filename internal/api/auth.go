package api

import (
	"context"
	"net/http"

	"github.com/vladislavdragonenkov/pos-terminal/internal/domain"
)

// loginRequest — тело POST /auth/login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userDTO struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Branch string `json:"branch"`
}

// Login выполняет вход и возвращает пользователя вместе с access-токеном.
// Токен не сохраняется в клиенте: этим владеет session-хранилище.
func (c *Client) Login(ctx context.Context, email, password string) (domain.User, string, error) {
	var envelope struct {
		Data struct {
			User        userDTO `json:"user"`
			AccessToken string  `json:"access_token"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, loginRequest{Email: email, Password: password}, &envelope); err != nil {
		return domain.User{}, "", err
	}

	user := domain.User{
		ID:     envelope.Data.User.ID,
		Name:   envelope.Data.User.Name,
		Email:  envelope.Data.User.Email,
		Branch: envelope.Data.User.Branch,
	}
	c.logger.WithField("user", user.Email).Info("login succeeded")
	return user, envelope.Data.AccessToken, nil
}
