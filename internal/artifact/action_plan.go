package artifact

import "slices"

// Experiment is a small test the user can run this week.
type Experiment struct {
	Name            string `json:"experiment_name" yaml:"experiment_name" toml:"experiment_name"`
	Description     string `json:"description" yaml:"description" toml:"description"`
	ExpectedOutcome string `json:"expected_outcome" yaml:"expected_outcome" toml:"expected_outcome"`
	SuccessCriteria string `json:"success_criteria" yaml:"success_criteria" toml:"success_criteria"`
	TimeRequired    string `json:"time_required" yaml:"time_required" toml:"time_required"`
	Resources       string `json:"resources_needed" yaml:"resources_needed" toml:"resources_needed"`
}

// Metric says how an experiment is judged.
type Metric struct {
	Name         string `json:"metric_name" yaml:"metric_name" toml:"metric_name"`
	HowToMeasure string `json:"how_to_measure" yaml:"how_to_measure" toml:"how_to_measure"`
	TargetValue  string `json:"target_value" yaml:"target_value" toml:"target_value"`
}

// FirstCustomer is the person to approach first.
type FirstCustomer struct {
	Who        string `json:"who" yaml:"who" toml:"who"`
	WhyThem    string `json:"why_them" yaml:"why_them" toml:"why_them"`
	HowToReach string `json:"how_to_reach" yaml:"how_to_reach" toml:"how_to_reach"`
}

// Obstacle is an expected blocker and how to get around it.
type Obstacle struct {
	Obstacle   string `json:"obstacle" yaml:"obstacle" toml:"obstacle"`
	Mitigation string `json:"mitigation" yaml:"mitigation" toml:"mitigation"`
}

// ActionPlan is the output of the internalization phase.
type ActionPlan struct {
	SelectedOpportunity string        `json:"selected_opportunity" yaml:"selected_opportunity" toml:"selected_opportunity"`
	Experiments         []Experiment  `json:"this_week_experiments" yaml:"this_week_experiments" toml:"this_week_experiments"`
	Metrics             []Metric      `json:"validation_metrics" yaml:"validation_metrics" toml:"validation_metrics"`
	FirstCustomer       FirstCustomer `json:"first_customer" yaml:"first_customer" toml:"first_customer"`
	Checklist           []string      `json:"next_session_checklist" yaml:"next_session_checklist" toml:"next_session_checklist"`
	Obstacles           []Obstacle    `json:"potential_obstacles" yaml:"potential_obstacles" toml:"potential_obstacles"`

	degraded bool
}

var _ Artifact = (*ActionPlan)(nil)

func (p *ActionPlan) Kind() Kind     { return KindActionPlan }
func (p *ActionPlan) Degraded() bool { return p.degraded }

// Clone returns a copy that shares no lists with p.
func (p *ActionPlan) Clone() *ActionPlan {
	if p == nil {
		return nil
	}
	c := *p
	c.Experiments = slices.Clone(p.Experiments)
	c.Metrics = slices.Clone(p.Metrics)
	c.Checklist = slices.Clone(p.Checklist)
	c.Obstacles = slices.Clone(p.Obstacles)
	return &c
}

func (p *ActionPlan) Normalize() {
	if p.Experiments == nil {
		p.Experiments = []Experiment{}
	}
	if p.Metrics == nil {
		p.Metrics = []Metric{}
	}
	p.Checklist = orEmpty(p.Checklist)
	if p.Obstacles == nil {
		p.Obstacles = []Obstacle{}
	}
}

// Validate has no constraints beyond the keys CheckKeys requires.
func (p *ActionPlan) Validate() error {
	return nil
}

// FallbackActionPlan returns a plan populated with placeholders.
func FallbackActionPlan() *ActionPlan {
	return &ActionPlan{
		SelectedOpportunity: Unresolved,
		Experiments: []Experiment{{
			Name:            Unresolved,
			Description:     Unresolved,
			ExpectedOutcome: Unresolved,
			SuccessCriteria: Unresolved,
			TimeRequired:    Unresolved,
			Resources:       Unresolved,
		}},
		Metrics: []Metric{{
			Name:         Unresolved,
			HowToMeasure: Unresolved,
			TargetValue:  Unresolved,
		}},
		FirstCustomer: FirstCustomer{
			Who:        Unresolved,
			WhyThem:    Unresolved,
			HowToReach: Unresolved,
		},
		Checklist: []string{Unresolved},
		Obstacles: []Obstacle{{
			Obstacle:   Unresolved,
			Mitigation: Unresolved,
		}},
		degraded: true,
	}
}
