package config

import "errors"

var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrConfigRead    = errors.New("failed to read configuration")
)
