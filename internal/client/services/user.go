package services

import (
	"context"

	"github.com/dmitrijs2005/vimesta/internal/client/client"
	"github.com/dmitrijs2005/vimesta/internal/client/models"
	"github.com/dmitrijs2005/vimesta/internal/sizex"
)

type UserService interface {
	Profile(ctx context.Context) (*models.User, error)
	Storage(ctx context.Context) (*models.StorageStats, error)
}

type userService struct {
	client client.Client
}

func NewUserService(c client.Client) UserService {
	return &userService{client: c}
}

func (s *userService) Profile(ctx context.Context) (*models.User, error) {
	return s.client.Profile(ctx)
}

// Storage returns usage statistics; the formatted total is filled in
// locally when the backend leaves it out.
func (s *userService) Storage(ctx context.Context) (*models.StorageStats, error) {
	st, err := s.client.Storage(ctx)
	if err != nil {
		return nil, err
	}
	if st.TotalSizeFormatted == "" {
		st.TotalSizeFormatted = sizex.Format(st.TotalSize)
	}
	return st, nil
}
