package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	notifdomain "github.com/partaj-app/partaj-backend/internal/domain/notifications"
)

func TestLoadMailTemplates(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "templates.yaml")
	raw := `templates:
  referral_sent: d-aaa111
  referral_answered: d-bbb222
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	templates, err := LoadMailTemplates(path)
	require.NoError(t, err)
	assert.Equal(t, "d-aaa111", templates.For(notifdomain.TypeReferralSent))
	assert.Equal(t, "d-bbb222", templates.For(notifdomain.TypeReferralAnswered))
	assert.Empty(t, templates.For(notifdomain.TypeNewMessage))
}

func TestLoadMailTemplatesMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadMailTemplates(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestMailTemplatesForNil(t *testing.T) {
	t.Parallel()

	var templates *MailTemplates
	assert.Empty(t, templates.For(notifdomain.TypeReferralSent))
}

func TestDefaultMailTemplatesCoverAllTypes(t *testing.T) {
	t.Parallel()

	templates := DefaultMailTemplates()
	for _, notificationType := range []string{
		notifdomain.TypeReferralSent,
		notifdomain.TypeReferralAssigned,
		notifdomain.TypeReferralUnitAssigned,
		notifdomain.TypeReferralUnitUnassigned,
		notifdomain.TypeRequesterAdded,
		notifdomain.TypeObserverAdded,
		notifdomain.TypeUrgencyLevelChanged,
		notifdomain.TypeNewMessage,
		notifdomain.TypeValidationRequested,
		notifdomain.TypeValidationPerformed,
		notifdomain.TypeVersionAdded,
		notifdomain.TypeReferralAnswered,
		notifdomain.TypeReferralClosed,
	} {
		_, ok := templates.Templates[notificationType]
		assert.True(t, ok, notificationType)
	}
}
