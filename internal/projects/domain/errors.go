package domain

import "errors"

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrVersionNotFound = errors.New("version not found")
	ErrInvalidStatus   = errors.New("invalid project status")
)
