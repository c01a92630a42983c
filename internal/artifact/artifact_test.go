package artifact

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCard() *BusinessCard {
	return &BusinessCard{
		Asset: AssetScore{Name: "반죽 숙성 감각", Scarcity: 4, Demand: 3, Transferability: 2},
		Opportunities: []Opportunity{{
			Name:             "제빵 원데이 클래스",
			Type:             OpportunityKnowledgeTransfer,
			TargetCustomer:   "창업 준비 중인 제빵사",
			ValueProposition: "실패 없는 숙성 판단",
			ProductFormat:    "오프라인 클래스",
			Difficulty:       DifficultyLow,
			FirstStep:        "지인 3명 대상 시범 수업",
		}},
		RecommendedOpportunity: "제빵 원데이 클래스",
	}
}

func TestNewAssetScore_RejectsOutOfRange(t *testing.T) {
	_, err := NewAssetScore("asset", 7, 3, 3)
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "knowledge_asset.scarcity_score", verr.Field)

	_, err = NewAssetScore("asset", 3, 0, 3)
	assert.Error(t, err, "zero is below the minimum")

	score, err := NewAssetScore("asset", 1, 5, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, score.Demand)
}

func TestBusinessCard_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *BusinessCard)
		wantErr string
	}{
		{name: "valid", mutate: func(c *BusinessCard) {}},
		{
			name:    "score above range",
			mutate:  func(c *BusinessCard) { c.Asset.Transferability = 7 },
			wantErr: "knowledge_asset.transferability_score",
		},
		{
			name:    "no opportunities",
			mutate:  func(c *BusinessCard) { c.Opportunities = nil },
			wantErr: "business_opportunities",
		},
		{
			name:    "unknown opportunity type",
			mutate:  func(c *BusinessCard) { c.Opportunities[0].Type = "구독형" },
			wantErr: "business_opportunities[0].type",
		},
		{
			name: "blank text fields are accepted",
			mutate: func(c *BusinessCard) {
				c.RecommendedOpportunity = ""
				c.Opportunities[0].FirstStep = ""
			},
		},
		{
			name:    "unknown difficulty",
			mutate:  func(c *BusinessCard) { c.Opportunities[0].Difficulty = "최상" },
			wantErr: "business_opportunities[0].difficulty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := validCard()
			tt.mutate(card)
			err := card.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEnums_Valid(t *testing.T) {
	assert.True(t, WeightHigh.Valid())
	assert.False(t, EmotionalWeight("매우높음").Valid())
	assert.True(t, DifficultyMedium.Valid())
	assert.False(t, Difficulty("최상").Valid())
	assert.True(t, OpportunitySystem.Valid())
	assert.False(t, OpportunityType("").Valid())
}

func TestKnowledgeSpec_NormalizeDefaultsLists(t *testing.T) {
	var spec KnowledgeSpec
	raw := `{"knowledge_name":"불 조절","summary":"s","detailed_description":"d",
		"metaphor":"m","transfer_difficulty":"중","transfer_method":"t"}`
	require.NoError(t, json.Unmarshal([]byte(raw), &spec))

	spec.Normalize()
	require.NoError(t, spec.Validate())
	assert.NotNil(t, spec.TriggerSignals)
	assert.NotNil(t, spec.SensoryCues)
	assert.NotNil(t, spec.EvidenceQuotes)
	assert.Empty(t, spec.DecisionRules)

	out, err := json.Marshal(&spec)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"trigger_signals":[]`)
}

func TestExperienceMap_ValidateRejectsUnknownWeight(t *testing.T) {
	m := ExperienceMap{
		UserProfile:      UserProfile{Role: "요리사", ExperienceYears: "12년", Domain: "한식"},
		Candidates:       []Candidate{{Area: "간", Description: "d", EmotionalWeight: "아주높음", Evidence: "e"}},
		RecommendedFocus: "간",
	}
	err := m.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "emotional_weight")
}

func TestExperienceMap_Focus(t *testing.T) {
	m := ExperienceMap{
		Candidates: []Candidate{
			{Area: "재료 손질", EmotionalWeight: WeightMedium},
			{Area: "불 조절", EmotionalWeight: WeightHigh},
			{Area: "플레이팅", EmotionalWeight: WeightHigh},
		},
		RecommendedFocus: "플레이팅",
	}
	assert.Equal(t, "불 조절", m.Focus())

	m.Candidates[1].EmotionalWeight = WeightLow
	m.Candidates[2].EmotionalWeight = WeightLow
	assert.Equal(t, "재료 손질", m.Focus(), "falls back to the first candidate")

	m.Candidates = nil
	assert.Equal(t, "플레이팅", m.Focus())
}

func TestFallbacks(t *testing.T) {
	fallbacks := []Artifact{
		FallbackExperienceMap(),
		FallbackKnowledgeSpec(),
		FallbackBusinessCard(),
		FallbackActionPlan(),
	}

	for _, a := range fallbacks {
		t.Run(string(a.Kind()), func(t *testing.T) {
			assert.True(t, a.Degraded())
			assert.NoError(t, a.Validate(), "fallbacks satisfy their own constraints")
			assert.Contains(t, a.Markdown(), Unresolved)
		})
	}

	card := FallbackBusinessCard()
	assert.Equal(t, 3, card.Asset.Scarcity)
	assert.Equal(t, 3, card.Asset.Demand)
	assert.Equal(t, 3, card.Asset.Transferability)
	assert.True(t, IsPlaceholder(card.RecommendedOpportunity))

	assert.Equal(t, FallbackActionPlan(), FallbackActionPlan(), "fallbacks are deterministic")
}

func TestClone_SharesNoLists(t *testing.T) {
	card := validCard()
	c := card.Clone()
	c.Opportunities[0].Name = "변경됨"
	c.Asset.Scarcity = 1
	assert.Equal(t, "제빵 원데이 클래스", card.Opportunities[0].Name)
	assert.Equal(t, 4, card.Asset.Scarcity)

	plan := FallbackActionPlan()
	pc := plan.Clone()
	pc.Checklist[0] = "변경됨"
	assert.Equal(t, FallbackActionPlan(), plan)
	assert.True(t, pc.Degraded(), "degraded flag is copied")

	spec := FallbackKnowledgeSpec()
	sc := spec.Clone()
	sc.TriggerSignals[0] = "변경됨"
	assert.Equal(t, FallbackKnowledgeSpec(), spec)

	var none *ExperienceMap
	assert.Nil(t, none.Clone())
}

func TestStars(t *testing.T) {
	assert.Equal(t, "★★★☆☆", Stars(3))
	assert.Equal(t, "☆☆☆☆☆", Stars(0))
	assert.Equal(t, "★★★★★", Stars(9))
}

func TestAssetScore_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    AssetScore
		wantErr string
	}{
		{
			name: "integers",
			raw:  `{"name": "감각", "scarcity_score": 4, "demand_score": 3, "transferability_score": 2}`,
			want: AssetScore{Name: "감각", Scarcity: 4, Demand: 3, Transferability: 2},
		},
		{
			name: "whole floats",
			raw:  `{"name": "감각", "scarcity_score": 4.0, "demand_score": 3.0, "transferability_score": 2e0}`,
			want: AssetScore{Name: "감각", Scarcity: 4, Demand: 3, Transferability: 2},
		},
		{
			name: "out of range floats decode and are left to Validate",
			raw:  `{"name": "감각", "scarcity_score": 7.0, "demand_score": 3, "transferability_score": 2}`,
			want: AssetScore{Name: "감각", Scarcity: 7, Demand: 3, Transferability: 2},
		},
		{
			name:    "fractional score",
			raw:     `{"name": "감각", "scarcity_score": 3.5, "demand_score": 3, "transferability_score": 2}`,
			wantErr: "knowledge_asset.scarcity_score",
		},
		{
			name:    "not a number",
			raw:     `{"name": "감각", "scarcity_score": 3, "demand_score": true, "transferability_score": 2}`,
			wantErr: "demand_score",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got AssetScore
			err := json.Unmarshal([]byte(tt.raw), &got)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckKeys(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		raw     string
		wantErr string
	}{
		{
			name: "blank strings are present",
			kind: KindExperienceMap,
			raw: `{"user_profile": {"role": "제빵사", "experience_years": "", "domain": ""},
				"tacit_knowledge_candidates": [{"area": "숙성", "description": "", "emotional_weight": "높음", "evidence": ""}],
				"recommended_focus": ""}`,
		},
		{
			name: "absent lists are allowed",
			kind: KindActionPlan,
			raw:  `{"selected_opportunity": "클래스", "first_customer": {"who": "", "why_them": "", "how_to_reach": ""}}`,
		},
		{
			name:    "missing nested key",
			kind:    KindExperienceMap,
			raw:     `{"user_profile": {"role": "제빵사", "domain": "베이커리"}, "recommended_focus": "숙성"}`,
			wantErr: "invalid user_profile.experience_years: required",
		},
		{
			name:    "null counts as missing",
			kind:    KindKnowledgeSpec,
			raw:     `{"knowledge_name": "n", "summary": null, "detailed_description": "d", "metaphor": "m", "transfer_difficulty": "중", "transfer_method": "t"}`,
			wantErr: "invalid summary: required",
		},
		{
			name: "missing key inside a list element",
			kind: KindBusinessCard,
			raw: `{"knowledge_asset": {"name": "a", "scarcity_score": 3, "demand_score": 3, "transferability_score": 3},
				"business_opportunities": [{"opportunity_name": "o", "type": "지식전수형", "target_customer": "t",
				"value_proposition": "v", "product_format": "p", "difficulty": "하"}],
				"recommended_opportunity": "o"}`,
			wantErr: "invalid business_opportunities[0].first_step: required",
		},
		{
			name:    "missing parent object",
			kind:    KindActionPlan,
			raw:     `{"selected_opportunity": "클래스"}`,
			wantErr: "invalid first_customer.who: required",
		},
		{
			name:    "malformed payload",
			kind:    KindActionPlan,
			raw:     `{"selected_opportunity": `,
			wantErr: "reading action_plan keys",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckKeys(tt.kind, []byte(tt.raw))
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
