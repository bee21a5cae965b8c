package payment

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johndosdos/atalaia/internal/model"
)

func TestSuccess(t *testing.T) {
	plan, err := model.LookupPlan("FAMILY")
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, Success(plan).Render(context.Background(), &sb))
	html := sb.String()

	assert.Contains(t, html, "Pagamento Confirmado!")
	assert.Contains(t, html, "Família")
	assert.Contains(t, html, `content="3;url=/dashboard"`)
}

func TestUnconfirmed(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, Unconfirmed().Render(context.Background(), &sb))

	assert.Contains(t, sb.String(), "Não foi possível confirmar automaticamente.")
	assert.NotContains(t, sb.String(), "http-equiv")
}
