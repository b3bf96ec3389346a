package admission

// State is the filter state of a single run. Create one per run with NewState;
// it must not be reused across runs.
type State struct {
	titles       []string
	exact        map[string]struct{}
	domainCounts map[string]int
	admitted     int
}

func NewState() *State {
	return &State{
		exact:        map[string]struct{}{},
		domainCounts: map[string]int{},
	}
}

// Admitted returns how many entries were accepted so far.
func (s *State) Admitted() int { return s.admitted }

// DomainCount returns how many entries from a quota domain were accepted.
func (s *State) DomainCount(domain string) int { return s.domainCounts[domain] }

func (s *State) record(normTitle, quotaDomain string) {
	s.titles = append(s.titles, normTitle)
	s.exact[normTitle] = struct{}{}
	if quotaDomain != "" {
		s.domainCounts[quotaDomain]++
	}
	s.admitted++
}
