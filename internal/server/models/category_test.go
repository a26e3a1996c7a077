package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryColor(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Work", "#F59E0B"},
		{"Personal", "#10B981"},
		{"Notes", "#3B82F6"},
		{"Other", "#9CA3AF"},
		{"Travel", FallbackCategoryColor},
		{"work", FallbackCategoryColor},
		{"", FallbackCategoryColor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CategoryColor(tt.name))
		})
	}
}

func TestCategories_Order(t *testing.T) {
	assert.Equal(t, []string{"Work", "Personal", "Notes", "Other"}, Categories())
	assert.True(t, IsRegistered("Notes"))
	assert.False(t, IsRegistered("Travel"))
}
