package util

import (
	"errors"
	"strings"
)

// RequireString garante string não vazia.
func RequireString(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New(field + " obrigatório")
	}
	return nil
}

// Truthy interpreta respostas afirmativas de formulários e flags ("sim", "true", "1", "s", "y").
func Truthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "sim", "s", "true", "1", "y", "yes":
		return true
	default:
		return false
	}
}
