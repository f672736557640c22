package model

import "errors"

// Profile validation errors.
var (
	ErrProfileName  = errors.New("profile name is required")
	ErrProfileLevel = errors.New("profile level must be vmbo-tl, havo or vwo")
	ErrProfileYear  = errors.New("profile year is out of range for the level")
)
