package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/neeharika666/myntra-hackerramp/models"
	"github.com/neeharika666/myntra-hackerramp/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// AddressRequest creates or replaces a saved address.
type AddressRequest struct {
	Name      string `json:"name" binding:"required"`
	Phone     string `json:"phone" binding:"required,len=10"`
	Pincode   string `json:"pincode" binding:"required,len=6"`
	Address   string `json:"address" binding:"required"`
	City      string `json:"city" binding:"required"`
	State     string `json:"state" binding:"required"`
	IsDefault bool   `json:"isDefault"`
}

// UserService manages the user's saved address book.
type UserService struct {
	users  repository.UserRepository
	logger *zap.Logger
}

func NewUserService(users repository.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

// ListAddresses returns the user's saved addresses.
func (s *UserService) ListAddresses(ctx context.Context, userID string) ([]models.UserAddress, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Addresses == nil {
		return []models.UserAddress{}, nil
	}
	return user.Addresses, nil
}

// AddAddress appends a new address. The first address becomes the default
// automatically; marking a later one default clears the previous default.
func (s *UserService) AddAddress(ctx context.Context, userID string, req *AddressRequest) ([]models.UserAddress, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	addr := models.UserAddress{
		ID:        primitive.NewObjectID(),
		Name:      req.Name,
		Phone:     req.Phone,
		Pincode:   req.Pincode,
		Address:   req.Address,
		City:      req.City,
		State:     req.State,
		IsDefault: req.IsDefault || len(user.Addresses) == 0,
	}

	addresses := user.Addresses
	if addr.IsDefault {
		for i := range addresses {
			addresses[i].IsDefault = false
		}
	}
	addresses = append(addresses, addr)

	if err := s.users.UpdateAddresses(ctx, user.ID, addresses); err != nil {
		return nil, fmt.Errorf("save addresses: %w", err)
	}
	s.logger.Info("Address added", zap.String("user_id", userID), zap.String("city", addr.City))
	return addresses, nil
}

// UpdateAddress replaces one saved address in place.
func (s *UserService) UpdateAddress(ctx context.Context, userID, addressID string, req *AddressRequest) ([]models.UserAddress, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	aid, err := primitive.ObjectIDFromHex(addressID)
	if err != nil {
		return nil, &ValidationError{Field: "addressId", Message: "invalid address ID"}
	}

	addresses := user.Addresses
	idx := -1
	for i := range addresses {
		if addresses[i].ID == aid {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, &NotFoundError{Resource: "address"}
	}

	if req.IsDefault {
		for i := range addresses {
			addresses[i].IsDefault = false
		}
	}
	addresses[idx] = models.UserAddress{
		ID:        aid,
		Name:      req.Name,
		Phone:     req.Phone,
		Pincode:   req.Pincode,
		Address:   req.Address,
		City:      req.City,
		State:     req.State,
		IsDefault: req.IsDefault,
	}

	if err := s.users.UpdateAddresses(ctx, user.ID, addresses); err != nil {
		return nil, fmt.Errorf("save addresses: %w", err)
	}
	return addresses, nil
}

// DeleteAddress removes one saved address. If the default goes away, the
// first remaining address inherits the flag.
func (s *UserService) DeleteAddress(ctx context.Context, userID, addressID string) ([]models.UserAddress, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	aid, err := primitive.ObjectIDFromHex(addressID)
	if err != nil {
		return nil, &ValidationError{Field: "addressId", Message: "invalid address ID"}
	}

	wasDefault := false
	found := false
	addresses := make([]models.UserAddress, 0, len(user.Addresses))
	for _, a := range user.Addresses {
		if a.ID == aid {
			found = true
			wasDefault = a.IsDefault
			continue
		}
		addresses = append(addresses, a)
	}
	if !found {
		return nil, &NotFoundError{Resource: "address"}
	}
	if wasDefault && len(addresses) > 0 {
		addresses[0].IsDefault = true
	}

	if err := s.users.UpdateAddresses(ctx, user.ID, addresses); err != nil {
		return nil, fmt.Errorf("save addresses: %w", err)
	}
	return addresses, nil
}

func (s *UserService) findUser(ctx context.Context, userID string) (*models.User, error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, uid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Resource: "user"}
	}
	if err != nil {
		return nil, fmt.Errorf("fetch user: %w", err)
	}
	return user, nil
}
