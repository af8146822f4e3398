package service

import (
	"context"
	"fmt"

	"github.com/medocupa/access-backend/internal/hierarchy"
	"github.com/medocupa/access-backend/internal/model"
)

// UserService exposes the identity directory to administrators.
type UserService struct {
	directory Directory
}

// NewUserService creates a new UserService.
func NewUserService(directory Directory) *UserService {
	return &UserService{directory: directory}
}

// List returns the identities visible to actor: its own tenant, or every
// tenant for the wildcard role.
func (s *UserService) List(ctx context.Context, actor *model.Identity) ([]model.Identity, error) {
	tenantID := actor.TenantID
	if hierarchy.IsWildcard(actor.Role) {
		tenantID = ""
	}

	identities, err := s.directory.List(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}
	if identities == nil {
		identities = []model.Identity{}
	}
	return identities, nil
}
