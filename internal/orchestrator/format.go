package orchestrator

import (
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/tacit/internal/artifact"
)

func degradedNote(a artifact.Artifact) string {
	if !a.Degraded() {
		return ""
	}
	return "\n> 결과를 정리하는 중 일부 내용을 해석하지 못했습니다. '" + artifact.Unresolved + "'로 표시된 항목은 다음 대화에서 보완됩니다.\n"
}

func socializationDone(m *artifact.ExperienceMap) string {
	var b strings.Builder
	b.WriteString("## 사회화 단계 완료!\n\n")
	b.WriteString("창발의 장에서 나눈 이야기로 경험 지도를 만들었습니다.\n")
	b.WriteString(degradedNote(m))
	b.WriteString("\n")
	b.WriteString(m.Markdown())
	b.WriteString("\n---\n\n")
	b.WriteString("다음은 **표출화 단계**입니다. 대화의 장에서 이 감각을 언어로 꺼내 보겠습니다.\n")
	b.WriteString("준비되셨다면 아무 메시지나 입력해 주세요.")
	return b.String()
}

func externalizationDone(s *artifact.KnowledgeSpec) string {
	var b strings.Builder
	b.WriteString("## 표출화 단계 완료!\n\n")
	b.WriteString("대화의 장에서 말로 하지 못했던 지식을 명세서로 정리했습니다.\n")
	b.WriteString(degradedNote(s))
	b.WriteString("\n")
	b.WriteString(s.Markdown())
	b.WriteString("\n---\n\n")
	b.WriteString("다음은 **연결화 단계**입니다. 시스템화의 장에서 이 지식의 시장 가치를 찾아보겠습니다.\n")
	b.WriteString("**\"계속\"**이라고 입력하시면 진행합니다.")
	return b.String()
}

func combinationDone(c *artifact.BusinessCard) string {
	var b strings.Builder
	b.WriteString("## 연결화 단계 완료!\n\n")
	b.WriteString("시스템화의 장에서 당신의 암묵지를 비즈니스 기회와 연결했습니다.\n")
	b.WriteString(degradedNote(c))
	b.WriteString("\n")
	b.WriteString(c.Markdown())
	b.WriteString("\n---\n\n")
	b.WriteString("다음은 **내면화 단계**입니다. 실천의 장에서 구체적인 액션플랜을 만들어 드리겠습니다.\n")
	b.WriteString("**\"계속\"**이라고 입력하시면 진행합니다.")
	return b.String()
}

func internalizationDone(p *artifact.ActionPlan) string {
	var b strings.Builder
	b.WriteString("## 내면화 단계 완료!\n\n")
	b.WriteString("실천의 장에서 이번 주에 실행할 액션플랜을 만들었습니다.\n")
	b.WriteString(degradedNote(p))
	b.WriteString("\n")
	b.WriteString(p.Markdown())
	b.WriteString("\n---\n\n")
	b.WriteString("## SECI 나선 한 바퀴 완료!\n\n")
	b.WriteString("1. **사회화** → 경험 지도\n")
	b.WriteString("2. **표출화** → 암묵지 명세서\n")
	b.WriteString("3. **연결화** → 비즈니스 기회 카드\n")
	b.WriteString("4. **내면화** → 액션플랜\n\n")
	b.WriteString("> *\"We can know more than we can tell\"* (Michael Polanyi)\n\n")
	b.WriteString("**\"처음부터\"**라고 입력하시면 새로운 나선을 시작합니다.")
	return b.String()
}

func completeMessage(spiral int) string {
	return fmt.Sprintf("%d번째 SECI 나선이 완료되었습니다. **\"처음부터\"**라고 입력하시면 다음 나선을 시작합니다.", spiral)
}
