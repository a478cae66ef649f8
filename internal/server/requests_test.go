package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryValidation(t *testing.T) {
	tests := []struct {
		name     string
		category string
		wantErr  bool
	}{
		{"known category", "backend", false},
		{"camel case", "dbSetup", false},
		{"unknown category", "okta", true},
		{"missing", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := optionsRequest{Category: tt.category}
			var err error
			assert.NotPanics(t, func() { err = req.Validate() })
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSelectRequestRevision(t *testing.T) {
	negative := int64(-1)
	req := selectRequest{Category: "addons", Value: "biome", Revision: &negative}
	assert.Error(t, req.Validate())

	req.Revision = nil
	assert.NoError(t, req.Validate())
}
