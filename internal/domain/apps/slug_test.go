package apps_test

import (
	"testing"

	"unified-saas-backend/internal/domain/apps"
	"unified-saas-backend/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeSlug(t *testing.T) {
	cases := map[string]string{
		"My SaaS App":     "my-saas-app",
		"  Acme Notes  ":  "acme-notes",
		"Café Crème":      "cafe-creme",
		"!!!":             "app",
		"":                "app",
		"Already-Slugged": "already-slugged",
	}
	for in, want := range cases {
		assert.Equal(t, want, apps.MakeSlug(in), "input %q", in)
	}
}

func TestEnsureUniqueSlug(t *testing.T) {
	db := testhelpers.SetupTestDB(t)

	got, err := apps.EnsureUniqueSlug(db, "acme-notes")
	require.NoError(t, err)
	assert.Equal(t, "acme-notes", got)

	require.NoError(t, db.Create(&apps.App{Name: "Acme Notes", Slug: "acme-notes", OwnerID: 1, Active: true}).Error)
	require.NoError(t, db.Create(&apps.App{Name: "Acme Notes", Slug: "acme-notes-2", OwnerID: 1, Active: true}).Error)

	got, err = apps.EnsureUniqueSlug(db, "acme-notes")
	require.NoError(t, err)
	assert.Equal(t, "acme-notes-3", got)
}
