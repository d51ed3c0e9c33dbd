package factory

import (
	fab "github.com/Goldziher/fabricator"
)

// NewTask fabricates a value of T with optional field overrides.
func NewTask[T any](customData ...map[string]any) T {
	instance := fab.New(*new(T))

	if len(customData) > 0 {
		return instance.Build(customData...)
	}

	return instance.Build()
}
