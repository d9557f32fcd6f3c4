package emission

// Scope identifiers matching the greenhouse-gas accounting categories.
const (
	Scope1 = "scope1"
	Scope2 = "scope2"
	Scope3 = "scope3"
)

// DefaultScopeRules narrows the reference table per scope before the
// cascading selects are built. Scope 1 keeps direct-combustion and process
// rows, scope 2 keeps purchased-energy rows, scope 3 keeps everything else.
func DefaultScopeRules() map[string]*RuleSet {
	return map[string]*RuleSet{
		Scope1: {
			Scope: &Rule{Include: []string{"direct", "combustion", "process", "fugitive"}},
			State: &Rule{Exclude: []string{"purchased"}},
		},
		Scope2: {
			Scope: &Rule{Include: []string{"energy", "electricity", "steam", "heat"}},
		},
		Scope3: {
			Scope: &Rule{Exclude: []string{"direct", "electricity"}},
		},
	}
}
