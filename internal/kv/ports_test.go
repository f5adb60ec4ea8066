package kv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateKey(t *testing.T) {
	tests := []struct {
		key string
		ok  bool
	}{
		{"invoices", true},
		{"invoices-2025_v1.json", true},
		{"", false},
		{".hidden", false},
		{"../etc/passwd", false},
		{"a/b", false},
		{"fatura lar", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			err := ValidateKey(tt.key)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidKey)
			}
		})
	}
}
