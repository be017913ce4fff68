package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrSeatTaken is returned when a seat row already exists for the
	// same trip and departure day.
	ErrSeatTaken = errors.New("seat already booked")
)
