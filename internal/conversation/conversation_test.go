package conversation

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() func() time.Time {
	ts := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time { return ts }
}

func TestConversation_AppendAndCount(t *testing.T) {
	c := New()
	c.now = fixedClock()
	assert.True(t, c.Empty())

	c.Append(RoleUser, "안녕하세요")
	c.Append(RoleAssistant, "반갑습니다")
	c.Append(RoleUser, "저는 목수입니다")

	assert.Equal(t, 3, c.Len())
	assert.Equal(t, 2, c.Count(RoleUser))
	assert.Equal(t, 1, c.Count(RoleAssistant))
	assert.Equal(t, "안녕하세요 반갑습니다 저는 목수입니다", c.Text())
}

func TestConversation_TurnsReturnsCopy(t *testing.T) {
	c := New()
	c.Append(RoleUser, "원본")

	turns := c.Turns()
	turns[0].Text = "변경"

	assert.Equal(t, "원본", c.Turns()[0].Text)
}

func TestConversation_Reset(t *testing.T) {
	c := New()
	c.Append(RoleUser, "a")
	c.Reset()

	assert.True(t, c.Empty())
	assert.Equal(t, "", c.Text())
}

func TestWriteJSONL(t *testing.T) {
	c := New()
	c.now = fixedClock()
	c.Append(RoleUser, "<질문>")
	c.Append(RoleAssistant, "답변")

	var buf bytes.Buffer
	require.NoError(t, WriteJSONL(&buf, c.Turns()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "<질문>", "html is not escaped")

	var turn Turn
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &turn))
	assert.Equal(t, RoleAssistant, turn.Role)
	assert.Equal(t, "답변", turn.Text)
}

func TestMarkdown(t *testing.T) {
	md := Markdown([]Turn{{Role: RoleUser, Text: "질문"}, {Role: RoleAssistant, Text: "답"}})
	assert.Equal(t, "**나**: 질문\n\n**Tacit**: 답\n\n", md)
}
