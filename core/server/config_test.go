package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Address(t *testing.T) {
	tests := []struct {
		name    string
		port    string
		want    string
		wantErr bool
	}{
		{"Default", "8080", ":8080", false},
		{"Empty", "", "", true},
		{"Not a number", "http", "", true},
		{"Out of range", "70000", "", true},
		{"Zero", "0", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Config{Port: tt.port}.Address()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
