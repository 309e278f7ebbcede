package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ManuelReschke/HarooHub/app/models"
	"github.com/ManuelReschke/HarooHub/internal/pkg/accounts"
)

func TestProviderLinks(t *testing.T) {
	view := &accounts.AccountView{Providers: []string{"google"}}

	links := providerLinks(view)

	assert.Equal(t, []providerLink{
		{Name: "twitter", Label: "Twitter", Linked: false},
		{Name: "facebook", Label: "Facebook", Linked: false},
		{Name: "google", Label: "Google", Linked: true},
	}, links)
}

func TestOutcomeMessage(t *testing.T) {
	tests := []struct {
		outcome accounts.Outcome
		want    string
	}{
		{accounts.OutcomeSignup, "Welcome! Your account was created with Google."},
		{accounts.OutcomeLinked, "Google is now linked to your account."},
		{accounts.OutcomeLogin, "Signed in with Google."},
	}
	for _, tt := range tests {
		t.Run(string(tt.outcome), func(t *testing.T) {
			assert.Equal(t, tt.want, outcomeMessage(tt.outcome, models.ProviderGoogle))
		})
	}
}
