package provider

import "errors"

var (
	ErrEmptyName         = errors.New("provider name cannot be empty")
	ErrNilFunc           = errors.New("provider function cannot be nil")
	ErrSelfDependency    = errors.New("provider cannot depend on itself")
	ErrDuplicateProvider = errors.New("provider already registered")
	ErrUnknownDependency = errors.New("unknown dependency")
)
