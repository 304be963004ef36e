package domain

// StrategyType selects the reviewer-selection policy. The set is closed:
// every consumer switches over it exhaustively, so adding a variant is a
// compile-time visible change.
type StrategyType string

const (
	StrategyRoundRobin       StrategyType = "round_robin"
	StrategyWorkloadBalanced StrategyType = "workload_balanced"
	StrategyDepartmentBased  StrategyType = "department_based"
	StrategyExpertiseBased   StrategyType = "expertise_based"
)

// Valid reports whether the value is a known strategy.
func (t StrategyType) Valid() bool {
	switch t {
	case StrategyRoundRobin, StrategyWorkloadBalanced, StrategyDepartmentBased, StrategyExpertiseBased:
		return true
	}
	return false
}

// StrategySettings is the configuration surface for the assignment engine.
// It is owned by the engine, injected at startup, and mutated only through
// the documented update interface.
type StrategySettings struct {
	Strategy      StrategyType
	MaxAssignees  int
	DepartmentMap map[ModuleType][]string
	ExpertiseMap  map[ModuleType][]string
	AssignerRoles []ReviewerRole
	EligibleRoles []ReviewerRole
}

// DefaultStrategySettings returns the settings the engine starts with when
// the environment provides no overrides.
func DefaultStrategySettings() StrategySettings {
	return StrategySettings{
		Strategy:     StrategyWorkloadBalanced,
		MaxAssignees: 2,
		DepartmentMap: map[ModuleType][]string{
			ModuleRiskAssessment:     {"risk"},
			ModuleSystemRegistration: {"it_security"},
			ModuleDocument:           {"compliance"},
			ModuleTraining:           {"compliance"},
		},
		ExpertiseMap:  map[ModuleType][]string{},
		AssignerRoles: []ReviewerRole{RoleAdmin, RoleApprovalManager, RoleDecisionMaker},
		EligibleRoles: []ReviewerRole{RoleReviewer, RoleApprovalManager, RoleDecisionMaker},
	}
}

// Clone returns a deep copy so callers cannot mutate engine-owned state.
func (s StrategySettings) Clone() StrategySettings {
	out := s
	out.DepartmentMap = make(map[ModuleType][]string, len(s.DepartmentMap))
	for k, v := range s.DepartmentMap {
		out.DepartmentMap[k] = append([]string(nil), v...)
	}
	out.ExpertiseMap = make(map[ModuleType][]string, len(s.ExpertiseMap))
	for k, v := range s.ExpertiseMap {
		out.ExpertiseMap[k] = append([]string(nil), v...)
	}
	out.AssignerRoles = append([]ReviewerRole(nil), s.AssignerRoles...)
	out.EligibleRoles = append([]ReviewerRole(nil), s.EligibleRoles...)
	return out
}
