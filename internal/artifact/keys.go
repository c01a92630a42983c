package artifact

import (
	"encoding/json"
	"fmt"
	"strings"
)

// requiredKeys lists the keys a generated record must carry. A segment
// ending in [] applies the rest of the path to every element of that list.
// List fields themselves may be absent; Normalize turns them into empty lists.
// Blank strings are accepted.
var requiredKeys = map[Kind][]string{
	KindExperienceMap: {
		"user_profile.role",
		"user_profile.experience_years",
		"user_profile.domain",
		"tacit_knowledge_candidates[].area",
		"tacit_knowledge_candidates[].description",
		"tacit_knowledge_candidates[].emotional_weight",
		"tacit_knowledge_candidates[].evidence",
		"recommended_focus",
	},
	KindKnowledgeSpec: {
		"knowledge_name",
		"summary",
		"detailed_description",
		"metaphor",
		"transfer_difficulty",
		"transfer_method",
	},
	KindBusinessCard: {
		"knowledge_asset.name",
		"knowledge_asset.scarcity_score",
		"knowledge_asset.demand_score",
		"knowledge_asset.transferability_score",
		"business_opportunities[].opportunity_name",
		"business_opportunities[].type",
		"business_opportunities[].target_customer",
		"business_opportunities[].value_proposition",
		"business_opportunities[].product_format",
		"business_opportunities[].difficulty",
		"business_opportunities[].first_step",
		"recommended_opportunity",
	},
	KindActionPlan: {
		"selected_opportunity",
		"this_week_experiments[].experiment_name",
		"this_week_experiments[].description",
		"this_week_experiments[].expected_outcome",
		"this_week_experiments[].success_criteria",
		"this_week_experiments[].time_required",
		"this_week_experiments[].resources_needed",
		"validation_metrics[].metric_name",
		"validation_metrics[].how_to_measure",
		"validation_metrics[].target_value",
		"first_customer.who",
		"first_customer.why_them",
		"first_customer.how_to_reach",
		"potential_obstacles[].obstacle",
		"potential_obstacles[].mitigation",
	},
}

// CheckKeys reports the first required key of kind k that payload lacks.
// A key whose value is null counts as missing.
func CheckKeys(k Kind, payload []byte) error {
	var doc any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return fmt.Errorf("reading %s keys: %w", k, err)
	}
	for _, path := range requiredKeys[k] {
		if missing := missingKey(doc, strings.Split(path, "."), ""); missing != "" {
			return &ValidationError{Field: missing, Reason: "required"}
		}
	}
	return nil
}

func missingKey(v any, path []string, prefix string) string {
	if len(path) == 0 {
		return ""
	}
	name, each := strings.CutSuffix(path[0], "[]")
	field := name
	if prefix != "" {
		field = prefix + "." + name
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return field
	}
	child, present := obj[name]

	if each {
		list, _ := child.([]any)
		for i, el := range list {
			if m := missingKey(el, path[1:], fmt.Sprintf("%s[%d]", field, i)); m != "" {
				return m
			}
		}
		return ""
	}
	if !present || child == nil {
		return field
	}
	return missingKey(child, path[1:], field)
}
