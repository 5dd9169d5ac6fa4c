package comment

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewComment_TrimsText(t *testing.T) {
	c, err := NewComment(uuid.New(), uuid.New(), "Ann", "  great drill  ", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "great drill", c.Text())
}

func TestNewComment_RejectsInvalidText(t *testing.T) {
	for name, text := range map[string]string{
		"empty":    "",
		"blank":    " \t\n",
		"too long": strings.Repeat("ж", MaxTextLength+1),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewComment(uuid.New(), uuid.New(), "Ann", text, time.Now())
			assert.ErrorIs(t, err, ErrInvalidComment)
		})
	}
}

func TestNewComment_AcceptsMaxLength(t *testing.T) {
	_, err := NewComment(uuid.New(), uuid.New(), "Ann", strings.Repeat("ж", MaxTextLength), time.Now())
	assert.NoError(t, err)
}
