package stripe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSubscriptionStatus(t *testing.T) {
	cases := map[string]string{
		"active":             "active",
		"trialing":           "active",
		"past_due":           "past_due",
		"unpaid":             "past_due",
		"canceled":           "canceled",
		"incomplete_expired": "canceled",
		"":                   "inactive",
		"  ":                 "inactive",
		"incomplete":         "incomplete",
		"paused":             "paused",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeSubscriptionStatus(in), "input %q", in)
	}
}

func TestIsActive(t *testing.T) {
	assert.True(t, IsActive("active"))
	assert.True(t, IsActive("trialing"))
	assert.False(t, IsActive("past_due"))
	assert.False(t, IsActive("canceled"))
	assert.False(t, IsActive(""))
}
