// Package transport defines the request/response DTOs for the lead registry.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateLeadRequest is the public intake payload.
type CreateLeadRequest struct {
	FullName string   `json:"fullName" validate:"required,min=2,max=200"`
	Email    string   `json:"email" validate:"required,email"`
	Phone    string   `json:"phone" validate:"omitempty,max=32"`
	Skills   []string `json:"skills" validate:"omitempty,max=25,dive,min=1,max=100"`
}

// LeadResponse is the read model returned to admin tables.
type LeadResponse struct {
	ID          uuid.UUID  `json:"id"`
	FullName    string     `json:"fullName"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone,omitempty"`
	Skills      []string   `json:"skills"`
	Status      string     `json:"status"`
	ConvertedAt *time.Time `json:"convertedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// ListLeadsRequest carries paging and filtering for the admin lead table.
type ListLeadsRequest struct {
	Status   string `form:"status" validate:"omitempty,oneof=new invited converted rejected"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// ListLeadsResponse is a paged collection of leads.
type ListLeadsResponse struct {
	Items      []LeadResponse `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}
