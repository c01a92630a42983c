package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/tacit/internal/artifact"
	"github.com/fyrsmithlabs/tacit/internal/conversation"
	"github.com/fyrsmithlabs/tacit/internal/llm"
)

var socialReplies = []string{
	"어떤 빵을 주로 만드시나요?",
	"바게트에 대해 더 들려주세요.",
	"그걸 어떻게 익히셨나요?",
	"멋지네요.",
	"오늘 이야기 고마워요.",
}

func runSocialization(t *testing.T, messages []string) (*Socializer, []bool) {
	t.Helper()
	gen := llm.NewScripted(socialReplies...)
	s := NewSocializer(gen)

	var done []bool
	for _, msg := range messages {
		_, complete, err := s.Advance(context.Background(), msg)
		require.NoError(t, err)
		done = append(done, complete)
	}
	return s, done
}

func TestSocializer_CompletesAfterFiveExchangesWithFourKeywords(t *testing.T) {
	s, done := runSocialization(t, []string{
		"저는 빵집에서 일합니다",
		"바게트를 굽는 경험이 많아요",
		"반죽을 다루는 노하우가 있어요",
		"제 빵에 자부심을 느낍니다",
		"감사합니다",
	})

	assert.Equal(t, []bool{false, false, false, false, true}, done)
	assert.Len(t, s.Transcript(), 10)
	assert.True(t, SocializationGate().Complete(s.Transcript()))
}

func TestSocializer_ThreeKeywordsDoNotComplete(t *testing.T) {
	s, done := runSocialization(t, []string{
		"저는 빵집에서 일합니다",
		"바게트를 굽는 경험이 많아요",
		"반죽을 다루는 노하우가 있어요",
		"제 빵이 좋습니다",
		"감사합니다",
	})

	assert.False(t, done[len(done)-1])
	assert.False(t, s.Complete())
}

func TestSocializer_GeneratorErrorLeavesConversationUntouched(t *testing.T) {
	gen := llm.NewScripted("첫 답")
	gen.FailOn(0, errors.New("upstream unavailable"))
	s := NewSocializer(gen)

	_, _, err := s.Advance(context.Background(), "안녕하세요")
	require.Error(t, err)
	assert.Empty(t, s.Transcript())

	reply, _, err := s.Advance(context.Background(), "안녕하세요")
	require.NoError(t, err)
	assert.Equal(t, "첫 답", reply)
	assert.Len(t, s.Transcript(), 2)
}

func TestSocializer_SynthesizeFallsBackOnGarbage(t *testing.T) {
	gen := llm.NewScripted("경험 지도를 만들 수 없습니다")
	s := NewSocializer(gen)

	m, err := s.Synthesize(context.Background())
	require.NoError(t, err, "an empty conversation still synthesizes")
	assert.True(t, m.Degraded())
	assert.Equal(t, artifact.FallbackExperienceMap(), m)
	assert.Same(t, m, s.Artifact())
	assert.Empty(t, s.Transcript(), "the synthesis instruction is not recorded")

	call, ok := gen.LastCall()
	require.True(t, ok)
	assert.Equal(t, 2048, call.MaxTokens)
	require.Len(t, call.Turns, 1)
	assert.Contains(t, call.Turns[0].Text, "user_profile")
}

func TestSocializer_Reset(t *testing.T) {
	s, _ := runSocialization(t, []string{"일", "경험", "노하우", "자부심", "네"})
	require.True(t, s.Complete())

	s.Reset()
	assert.False(t, s.Complete())
	assert.Empty(t, s.Transcript())
	assert.Nil(t, s.Artifact())
}

type scrubRedactor struct{}

func (scrubRedactor) Redact(text string) string { return "[scrubbed]" }

func TestSocializer_RedactsUserMessages(t *testing.T) {
	gen := llm.NewScripted("네")
	s := NewSocializer(gen, WithRedactor(scrubRedactor{}))

	_, _, err := s.Advance(context.Background(), "my key is sk-secret")
	require.NoError(t, err)

	call, _ := gen.LastCall()
	assert.Equal(t, "[scrubbed]", call.Turns[0].Text)
	assert.Equal(t, "[scrubbed]", s.Transcript()[0].Text)
}

func handoffMap() *artifact.ExperienceMap {
	return &artifact.ExperienceMap{
		UserProfile: artifact.UserProfile{Role: "제빵사", ExperienceYears: "15년", Domain: "베이커리"},
		Candidates: []artifact.Candidate{
			{Area: "재료 선택", Description: "d", EmotionalWeight: artifact.WeightMedium, Evidence: "e"},
			{Area: "반죽 숙성 판단", Description: "d", EmotionalWeight: artifact.WeightHigh, Evidence: "e"},
		},
		RecommendedFocus: "숙성 판단이 가장 독특합니다",
	}
}

func TestExternalizer_BeginFocusesOnHighWeightCandidate(t *testing.T) {
	gen := llm.NewScripted("숙성이 끝났다고 느끼는 순간을 떠올려 보시겠어요?")
	e := NewExternalizer(gen)

	reply, err := e.Begin(context.Background(), handoffMap())
	require.NoError(t, err)

	assert.Equal(t, "숙성이 끝났다고 느끼는 순간을 떠올려 보시겠어요?", reply)
	assert.Equal(t, "반죽 숙성 판단", e.Focus())

	call, _ := gen.LastCall()
	assert.Equal(t, 1024, call.MaxTokens)
	assert.Contains(t, call.Turns[0].Text, "'반죽 숙성 판단' 영역")

	transcript := e.Transcript()
	require.Len(t, transcript, 2)
	assert.Equal(t, conversation.RoleUser, transcript[0].Role)
	assert.Equal(t, conversation.RoleAssistant, transcript[1].Role)
}

func TestExternalizer_AdvanceBeforeBegin(t *testing.T) {
	e := NewExternalizer(llm.NewScripted())
	_, _, err := e.Advance(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestExternalizer_CompletesOnTwelfthTurn(t *testing.T) {
	gen := llm.NewScripted(
		"첫 질문",
		"어떤 기준이 있나요?",
		"신호는요?",
		"비유로 말하면요?",
		"예외는요?",
		"알겠습니다",
	)
	e := NewExternalizer(gen)
	ctx := context.Background()

	_, err := e.Begin(ctx, handoffMap())
	require.NoError(t, err)

	var last bool
	for i, msg := range []string{"판단 규칙이 있어요", "손끝 느낌", "표면의 광택", "아기 볼 같아요", "네"} {
		_, done, err := e.Advance(ctx, msg)
		require.NoError(t, err)
		if i < 4 {
			assert.False(t, done, "turn count not reached after %d exchanges", i+1)
		}
		last = done
	}
	assert.True(t, last)
	assert.Len(t, e.Transcript(), 12)
}

const specJSON = "```json\n" + `{
  "knowledge_name": "반죽 숙성 판단",
  "summary": "손끝으로 숙성을 읽는다",
  "detailed_description": "반죽의 탄력과 광택으로 판단",
  "trigger_signals": ["표면 광택"],
  "decision_rules": ["눌렀을 때 천천히 돌아오면 완료"],
  "exceptions": ["습한 날"],
  "metaphor": "아기 볼",
  "transfer_difficulty": "상",
  "transfer_method": "1:1 실습"
}` + "\n```"

func TestCombinerAndInternalizer_EmbedUpstreamArtifact(t *testing.T) {
	gen := llm.NewScripted(specJSON, "카드 생성 실패", "플랜도 실패")
	ctx := context.Background()

	e := NewExternalizer(gen)
	spec, err := e.Synthesize(ctx)
	require.NoError(t, err)
	assert.False(t, spec.Degraded())
	assert.Equal(t, []string{}, spec.SensoryCues)

	c := NewCombiner(gen)
	card, err := c.Synthesize(ctx, spec)
	require.NoError(t, err)
	assert.True(t, card.Degraded())
	assert.Len(t, c.Transcript(), 2)

	call, _ := gen.LastCall()
	assert.Contains(t, call.Turns[0].Text, `"knowledge_name": "반죽 숙성 판단"`)
	assert.Equal(t, 3000, call.MaxTokens)

	i := NewInternalizer(gen)
	plan, err := i.Synthesize(ctx, card)
	require.NoError(t, err)
	assert.Equal(t, artifact.FallbackActionPlan(), plan)

	call, _ = gen.LastCall()
	assert.Contains(t, call.Turns[0].Text, `"knowledge_asset"`)

	i.Reset()
	assert.Nil(t, i.Artifact())
	assert.Empty(t, i.Transcript())
}

func TestWithBudgets_ZeroKeepsDefault(t *testing.T) {
	o := buildOptions([]Option{WithBudgets(Budgets{Chat: 100})})
	assert.Equal(t, 100, o.budgets.Chat)
	assert.Equal(t, 3000, o.budgets.Synthesis)
}
