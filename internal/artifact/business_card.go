package artifact

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
)

// AssetScore rates the knowledge as a market asset. Each sub-score is an
// integer in [MinScore, MaxScore].
type AssetScore struct {
	Name            string `json:"name" yaml:"name" toml:"name"`
	Scarcity        int    `json:"scarcity_score" yaml:"scarcity_score" toml:"scarcity_score"`
	Demand          int    `json:"demand_score" yaml:"demand_score" toml:"demand_score"`
	Transferability int    `json:"transferability_score" yaml:"transferability_score" toml:"transferability_score"`
}

// NewAssetScore builds a score and rejects out-of-range sub-scores.
func NewAssetScore(name string, scarcity, demand, transferability int) (AssetScore, error) {
	s := AssetScore{Name: name, Scarcity: scarcity, Demand: demand, Transferability: transferability}
	if err := s.Validate(); err != nil {
		return AssetScore{}, err
	}
	return s, nil
}

// UnmarshalJSON accepts sub-scores written as whole floats such as 4.0.
// Range is left to Validate.
func (s *AssetScore) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name            string      `json:"name"`
		Scarcity        json.Number `json:"scarcity_score"`
		Demand          json.Number `json:"demand_score"`
		Transferability json.Number `json:"transferability_score"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := AssetScore{Name: raw.Name}
	for _, f := range []struct {
		name  string
		value json.Number
		dst   *int
	}{
		{"knowledge_asset.scarcity_score", raw.Scarcity, &out.Scarcity},
		{"knowledge_asset.demand_score", raw.Demand, &out.Demand},
		{"knowledge_asset.transferability_score", raw.Transferability, &out.Transferability},
	} {
		n, err := wholeNumber(f.name, f.value)
		if err != nil {
			return err
		}
		*f.dst = n
	}
	*s = out
	return nil
}

// wholeNumber converts n to an int. An absent number is zero.
func wholeNumber(field string, n json.Number) (int, error) {
	if n == "" {
		return 0, nil
	}
	if i, err := n.Int64(); err == nil && i >= math.MinInt32 && i <= math.MaxInt32 {
		return int(i), nil
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, &ValidationError{Field: field, Reason: fmt.Sprintf("%s is not a whole number", n)}
	}
	return int(f), nil
}

// Validate checks that every sub-score lies within range.
func (s AssetScore) Validate() error {
	for _, f := range []struct {
		name  string
		value int
	}{
		{"knowledge_asset.scarcity_score", s.Scarcity},
		{"knowledge_asset.demand_score", s.Demand},
		{"knowledge_asset.transferability_score", s.Transferability},
	} {
		if f.value < MinScore || f.value > MaxScore {
			return &ValidationError{
				Field:  f.name,
				Reason: fmt.Sprintf("%d is outside [%d, %d]", f.value, MinScore, MaxScore),
			}
		}
	}
	return nil
}

// Opportunity is one way to turn the knowledge into a product or service.
type Opportunity struct {
	Name             string          `json:"opportunity_name" yaml:"opportunity_name" toml:"opportunity_name"`
	Type             OpportunityType `json:"type" yaml:"type" toml:"type"`
	TargetCustomer   string          `json:"target_customer" yaml:"target_customer" toml:"target_customer"`
	ValueProposition string          `json:"value_proposition" yaml:"value_proposition" toml:"value_proposition"`
	ProductFormat    string          `json:"product_format" yaml:"product_format" toml:"product_format"`
	Difficulty       Difficulty      `json:"difficulty" yaml:"difficulty" toml:"difficulty"`
	FirstStep        string          `json:"first_step" yaml:"first_step" toml:"first_step"`
}

// BusinessCard is the output of the combination phase.
type BusinessCard struct {
	Asset                  AssetScore    `json:"knowledge_asset" yaml:"knowledge_asset" toml:"knowledge_asset"`
	Opportunities          []Opportunity `json:"business_opportunities" yaml:"business_opportunities" toml:"business_opportunities"`
	RecommendedOpportunity string        `json:"recommended_opportunity" yaml:"recommended_opportunity" toml:"recommended_opportunity"`

	degraded bool
}

var _ Artifact = (*BusinessCard)(nil)

func (c *BusinessCard) Kind() Kind     { return KindBusinessCard }
func (c *BusinessCard) Degraded() bool { return c.degraded }

// Clone returns a copy that shares no lists with c.
func (c *BusinessCard) Clone() *BusinessCard {
	if c == nil {
		return nil
	}
	out := *c
	out.Opportunities = slices.Clone(c.Opportunities)
	return &out
}

func (c *BusinessCard) Normalize() {
	if c.Opportunities == nil {
		c.Opportunities = []Opportunity{}
	}
}

func (c *BusinessCard) Validate() error {
	if err := c.Asset.Validate(); err != nil {
		return err
	}
	if len(c.Opportunities) == 0 {
		return &ValidationError{Field: "business_opportunities", Reason: "at least one opportunity is required"}
	}
	for i, o := range c.Opportunities {
		prefix := fmt.Sprintf("business_opportunities[%d]", i)
		if !o.Type.Valid() {
			return &ValidationError{Field: prefix + ".type", Reason: fmt.Sprintf("unknown opportunity type %q", o.Type)}
		}
		if !o.Difficulty.Valid() {
			return &ValidationError{Field: prefix + ".difficulty", Reason: "must be one of 상, 중, 하"}
		}
	}
	return nil
}

// FallbackBusinessCard returns a card populated with placeholders and
// neutral mid-range scores.
func FallbackBusinessCard() *BusinessCard {
	return &BusinessCard{
		Asset: AssetScore{
			Name:            Unresolved,
			Scarcity:        3,
			Demand:          3,
			Transferability: 3,
		},
		Opportunities: []Opportunity{{
			Name:             Unresolved,
			Type:             OpportunityKnowledgeTransfer,
			TargetCustomer:   Unresolved,
			ValueProposition: Unresolved,
			ProductFormat:    Unresolved,
			Difficulty:       DifficultyMedium,
			FirstStep:        Unresolved,
		}},
		RecommendedOpportunity: Unresolved,
		degraded:               true,
	}
}
