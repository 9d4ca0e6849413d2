package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsValid(t *testing.T) {
	now := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		sub  *Subscription
		want bool
	}{
		{"nil", nil, false},
		{"active basic", &Subscription{Plan: "basic", Status: StatusActive, EndDate: now.AddDate(0, 1, 0)}, true},
		{"expired", &Subscription{Plan: "basic", Status: StatusActive, EndDate: now.AddDate(0, 0, -1)}, false},
		{"cancelled", &Subscription{Plan: "standard", Status: "cancelled", EndDate: now.AddDate(0, 1, 0)}, false},
		{"trial plan", &Subscription{Plan: "Trial", Status: StatusActive, EndDate: now.AddDate(0, 1, 0)}, false},
		{"no end date", &Subscription{Plan: "basic", Status: StatusActive}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sub.IsValid(now))
		})
	}
}

func TestPlanName(t *testing.T) {
	assert.Equal(t, "Trial", (*Subscription)(nil).PlanName())
	assert.Equal(t, "Standard", (&Subscription{Plan: "standard"}).PlanName())
}
