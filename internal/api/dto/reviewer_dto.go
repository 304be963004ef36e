package dto

import (
	"time"

	"github.com/spec-kit/compliance-service/internal/domain"
)

// RegisterRequest payload.
type RegisterRequest struct {
	Name       string              `json:"name"`
	Email      string              `json:"email"`
	Password   string              `json:"password"`
	Role       domain.ReviewerRole `json:"role"`
	Department string              `json:"department"`
	Expertise  []domain.ModuleType `json:"expertise"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse returns the signed token and its expiry.
type AuthResponse struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	Reviewer  ReviewerResponse `json:"reviewer"`
}

// ReviewerResponse is the public reviewer representation.
type ReviewerResponse struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Email      string              `json:"email"`
	Role       domain.ReviewerRole `json:"role"`
	Department string              `json:"department,omitempty"`
	Expertise  []domain.ModuleType `json:"expertise,omitempty"`
}

// NotificationResponse is one inbox entry.
type NotificationResponse struct {
	ID        string                  `json:"id"`
	ItemID    string                  `json:"item_id"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	Type      domain.NotificationType `json:"type"`
	Priority  domain.ItemPriority     `json:"priority"`
	CreatedAt time.Time               `json:"created_at"`
	IsRead    bool                    `json:"is_read"`
}
