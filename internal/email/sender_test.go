package email

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docstore-api/internal/logging"
)

func TestRenderCodeTemplate(t *testing.T) {
	body, err := renderCodeTemplate("482913")
	require.NoError(t, err)

	assert.Contains(t, body, "482913")
	assert.Contains(t, body, "expires in 5 minutes")
}

func TestRenderCodeTemplate_EscapesCode(t *testing.T) {
	body, err := renderCodeTemplate(`<script>`)
	require.NoError(t, err)

	assert.NotContains(t, body, "<script>")
}

func TestLogSenderNeverFails(t *testing.T) {
	sender := NewLogSender(logging.NewLogger(true))

	err := sender.DeliverCode(context.Background(), "alice@example.com", "482913")
	assert.NoError(t, err)
}
