package orchestrator

const experienceMapReply = "경험 지도입니다.\n```json\n" + `{
  "user_profile": {"role": "제빵사", "experience_years": "15년", "domain": "베이커리"},
  "tacit_knowledge_candidates": [
    {"area": "재료 선택", "description": "밀가루 상태 판단", "emotional_weight": "보통", "evidence": "밀가루는 만져 보면 알아요"},
    {"area": "반죽 숙성 판단", "description": "숙성 완료 시점 감지", "emotional_weight": "높음", "evidence": "눌러 보면 느낌이 와요"}
  ],
  "recommended_focus": "반죽 숙성 판단"
}` + "\n```"

const knowledgeSpecReply = "```json\n" + `{
  "knowledge_name": "반죽 숙성 판단",
  "summary": "손끝으로 숙성을 읽는다",
  "detailed_description": "탄력과 광택으로 숙성 완료를 판단한다",
  "trigger_signals": ["표면 광택"],
  "decision_rules": ["눌렀을 때 천천히 돌아오면 완료"],
  "exceptions": ["습한 날은 10분 더"],
  "metaphor": "아기 볼",
  "sensory_cues": ["손끝 탄력"],
  "common_mistakes": ["시간만 보고 판단"],
  "transfer_difficulty": "상",
  "transfer_method": "1:1 실습",
  "evidence_quotes": ["눌러 보면 느낌이 와요"]
}` + "\n```"

const businessCardReply = "```json\n" + `{
  "knowledge_asset": {"name": "반죽 숙성 감각", "scarcity_score": 4, "demand_score": 3, "transferability_score": 2},
  "business_opportunities": [{
    "opportunity_name": "숙성 판단 원데이 클래스",
    "type": "지식전수형",
    "target_customer": "홈베이커",
    "value_proposition": "실패 없는 숙성",
    "product_format": "오프라인 클래스",
    "difficulty": "하",
    "first_step": "지인 3명 대상 시범 수업"
  }],
  "recommended_opportunity": "숙성 판단 원데이 클래스"
}` + "\n```"

const actionPlanReply = "```json\n" + `{
  "selected_opportunity": "숙성 판단 원데이 클래스",
  "this_week_experiments": [{
    "experiment_name": "시범 수업",
    "description": "지인 3명에게 90분 수업",
    "expected_outcome": "피드백 확보",
    "success_criteria": "3명 중 2명 재참여 의사",
    "time_required": "3시간",
    "resources_needed": "반죽 재료"
  }],
  "validation_metrics": [{"metric_name": "재참여 의사", "how_to_measure": "설문", "target_value": "66%"}],
  "first_customer": {"who": "동네 카페 사장님", "why_them": "빵을 직접 굽고 싶어 함", "how_to_reach": "직접 방문"},
  "next_session_checklist": ["수업 후기 정리"],
  "potential_obstacles": [{"obstacle": "장소 부족", "mitigation": "카페 공간 대여"}]
}` + "\n```"

var socializationMessages = []string{
	"저는 빵집에서 일합니다",
	"바게트를 굽는 경험이 많아요",
	"반죽을 다루는 노하우가 있어요",
	"제 빵에 자부심을 느낍니다",
	"감사합니다",
}

var socializationReplies = []string{
	"어떤 빵을 주로 만드시나요?",
	"바게트에 대해 더 들려주세요.",
	"그걸 어떻게 익히셨나요?",
	"멋지네요.",
	"오늘 이야기 고마워요.",
}

var externalizationMessages = []string{
	"규칙이 있어요",
	"신호를 봐요",
	"기준은 광택이에요",
	"비유하자면 아기 볼",
	"네",
}

var externalizationReplies = []string{
	"숙성이 끝났다고 느끼는 순간을 떠올려 보시겠어요?",
	"어떤 규칙인가요?",
	"무엇을 보시나요?",
	"더 말씀해 주세요.",
	"좋은 표현이네요.",
	"고맙습니다.",
}
