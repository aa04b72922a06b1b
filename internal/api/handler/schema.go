package handler

import (
	"time"

	"github.com/bcr-rental/car-rental-api/internal/core/domain"
	"github.com/bcr-rental/car-rental-api/internal/core/pagination"
)

// errorResponse documents the error envelope rendered by the API error handler.
type errorResponse struct {
	Error struct {
		Name    string         `json:"name"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

// --- Auth ---

type registerRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// --- Cars ---

type carRequest struct {
	Name  string `json:"name"  validate:"required"`
	Price int64  `json:"price" validate:"required,gt=0"`
	Size  string `json:"size"  validate:"required,oneof=SMALL MEDIUM LARGE"`
	Image string `json:"image" validate:"required,url"`
}

type listMeta struct {
	Pagination pagination.Envelope `json:"pagination"`
}

type listCarsResponse struct {
	Cars []*domain.Car `json:"cars"`
	Meta listMeta      `json:"meta"`
}

// --- Rentals ---

type rentRequest struct {
	RentStartedAt *time.Time `json:"rentStartedAt"`
	RentEndedAt   *time.Time `json:"rentEndedAt"`
}

type listRentalsResponse struct {
	Rentals []*domain.Booking `json:"rentals"`
	Meta    listMeta          `json:"meta"`
}

// --- Root ---

type rootResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
