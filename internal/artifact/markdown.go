package artifact

import (
	"fmt"
	"strings"
)

// Stars renders a 1-5 score as filled and empty stars.
func Stars(score int) string {
	if score < 0 {
		score = 0
	}
	if score > MaxScore {
		score = MaxScore
	}
	return strings.Repeat("★", score) + strings.Repeat("☆", MaxScore-score)
}

func bullets(b *strings.Builder, items []string) {
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}

func (m *ExperienceMap) Markdown() string {
	var b strings.Builder
	b.WriteString("### 사용자 프로필\n")
	fmt.Fprintf(&b, "- 역할: %s\n", m.UserProfile.Role)
	fmt.Fprintf(&b, "- 경력: %s\n", m.UserProfile.ExperienceYears)
	fmt.Fprintf(&b, "- 분야: %s\n", m.UserProfile.Domain)
	b.WriteString("\n### 암묵지 후보 영역\n")
	for _, c := range m.Candidates {
		fmt.Fprintf(&b, "- **%s** (감정적 무게: %s)\n", c.Area, c.EmotionalWeight)
		fmt.Fprintf(&b, "  - %s\n", c.Description)
		if c.Evidence != "" {
			fmt.Fprintf(&b, "  - 근거: \"%s\"\n", c.Evidence)
		}
	}
	fmt.Fprintf(&b, "\n### 추천 탐색 영역\n%s\n", m.RecommendedFocus)
	return b.String()
}

func (s *KnowledgeSpec) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "### %s\n%s\n\n", s.Name, s.Summary)
	fmt.Fprintf(&b, "%s\n", s.DetailedDescription)
	b.WriteString("\n#### 트리거 신호\n")
	bullets(&b, s.TriggerSignals)
	b.WriteString("\n#### 판단 규칙\n")
	for i, rule := range s.DecisionRules {
		fmt.Fprintf(&b, "%d. %s\n", i+1, rule)
	}
	b.WriteString("\n#### 예외 상황\n")
	bullets(&b, s.Exceptions)
	fmt.Fprintf(&b, "\n#### 비유\n> %s\n", s.Metaphor)
	if len(s.SensoryCues) > 0 {
		b.WriteString("\n#### 감각적 단서\n")
		bullets(&b, s.SensoryCues)
	}
	if len(s.CommonMistakes) > 0 {
		b.WriteString("\n#### 초보자가 흔히 하는 실수\n")
		bullets(&b, s.CommonMistakes)
	}
	b.WriteString("\n#### 전달\n")
	fmt.Fprintf(&b, "- 난이도: %s\n", s.TransferDifficulty)
	fmt.Fprintf(&b, "- 방법: %s\n", s.TransferMethod)
	if len(s.EvidenceQuotes) > 0 {
		b.WriteString("\n#### 대화 속 근거\n")
		for _, q := range s.EvidenceQuotes {
			fmt.Fprintf(&b, "> %s\n", q)
		}
	}
	return b.String()
}

func (c *BusinessCard) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "### 지식 자산: %s\n", c.Asset.Name)
	fmt.Fprintf(&b, "- 희소성: %s\n", Stars(c.Asset.Scarcity))
	fmt.Fprintf(&b, "- 수요: %s\n", Stars(c.Asset.Demand))
	fmt.Fprintf(&b, "- 전달가능성: %s\n", Stars(c.Asset.Transferability))
	b.WriteString("\n### 비즈니스 기회\n")
	for i, o := range c.Opportunities {
		fmt.Fprintf(&b, "\n#### 기회 %d: %s\n", i+1, o.Name)
		fmt.Fprintf(&b, "- 유형: %s\n", o.Type)
		fmt.Fprintf(&b, "- 타겟: %s\n", o.TargetCustomer)
		fmt.Fprintf(&b, "- 가치: %s\n", o.ValueProposition)
		fmt.Fprintf(&b, "- 상품 형태: %s\n", o.ProductFormat)
		fmt.Fprintf(&b, "- 난이도: %s\n", o.Difficulty)
		fmt.Fprintf(&b, "- 첫 번째 행동: %s\n", o.FirstStep)
	}
	fmt.Fprintf(&b, "\n### 추천\n%s\n", c.RecommendedOpportunity)
	return b.String()
}

func (p *ActionPlan) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "### 선택된 비즈니스 기회\n%s\n", p.SelectedOpportunity)
	b.WriteString("\n### 이번 주 실험\n")
	for i, e := range p.Experiments {
		fmt.Fprintf(&b, "\n#### 실험 %d: %s\n", i+1, e.Name)
		fmt.Fprintf(&b, "- 설명: %s\n", e.Description)
		fmt.Fprintf(&b, "- 기대 결과: %s\n", e.ExpectedOutcome)
		fmt.Fprintf(&b, "- 성공 기준: %s\n", e.SuccessCriteria)
		fmt.Fprintf(&b, "- 소요 시간: %s\n", e.TimeRequired)
		fmt.Fprintf(&b, "- 필요 자원: %s\n", e.Resources)
	}
	b.WriteString("\n### 검증 지표\n")
	for _, m := range p.Metrics {
		fmt.Fprintf(&b, "- **%s**: %s (목표: %s)\n", m.Name, m.HowToMeasure, m.TargetValue)
	}
	b.WriteString("\n### 첫 번째 고객\n")
	fmt.Fprintf(&b, "- 누구: %s\n", p.FirstCustomer.Who)
	fmt.Fprintf(&b, "- 이유: %s\n", p.FirstCustomer.WhyThem)
	fmt.Fprintf(&b, "- 접근 방법: %s\n", p.FirstCustomer.HowToReach)
	b.WriteString("\n### 다음 세션 체크리스트\n")
	for _, item := range p.Checklist {
		fmt.Fprintf(&b, "- [ ] %s\n", item)
	}
	if len(p.Obstacles) > 0 {
		b.WriteString("\n### 예상 장애물\n")
		for _, o := range p.Obstacles {
			fmt.Fprintf(&b, "- %s → %s\n", o.Obstacle, o.Mitigation)
		}
	}
	return b.String()
}
