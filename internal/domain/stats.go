package domain

// TeamAggregate holds the release counts for a single team.
// Total always equals Fast+Slow and Prod never exceeds Total.
type TeamAggregate struct {
	Name     string   `json:"name"`
	Total    int      `json:"total"`
	Fast     int      `json:"fast"`
	Slow     int      `json:"slow"`
	Prod     int      `json:"prod"`
	Branches []string `json:"branches"`
	Titles   []string `json:"titles"`
	// LeadTimeHours holds created-to-merged durations of the team's pull requests, in hours.
	LeadTimeHours []float64 `json:"lead_time_hours,omitempty"`
}

// HasBranch reports whether label has already been recorded for the team.
func (t *TeamAggregate) HasBranch(label string) bool {
	for _, b := range t.Branches {
		if b == label {
			return true
		}
	}
	return false
}

// AggregateMap maps team names to their aggregates, keeping first-seen order.
type AggregateMap struct {
	order []string
	teams map[string]*TeamAggregate

	// ProdTotal and UATTotal count aggregated pull requests per release line.
	ProdTotal int
	UATTotal  int
	// Dropped counts pull requests excluded because they had no recognised team.
	Dropped         int
	DroppedByReason map[UnclassifiedReason]int
}

// NewAggregateMap returns an empty AggregateMap.
func NewAggregateMap() *AggregateMap {
	return &AggregateMap{
		teams:           make(map[string]*TeamAggregate),
		DroppedByReason: make(map[UnclassifiedReason]int),
	}
}

// Team returns the aggregate for name, creating it on first sighting.
func (m *AggregateMap) Team(name string) *TeamAggregate {
	if t, ok := m.teams[name]; ok {
		return t
	}
	t := &TeamAggregate{Name: name, Branches: []string{}, Titles: []string{}}
	m.teams[name] = t
	m.order = append(m.order, name)
	return t
}

// Lookup returns the aggregate for name without creating it.
func (m *AggregateMap) Lookup(name string) (*TeamAggregate, bool) {
	t, ok := m.teams[name]
	return t, ok
}

// Teams returns the aggregates in first-seen order.
func (m *AggregateMap) Teams() []*TeamAggregate {
	out := make([]*TeamAggregate, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.teams[name])
	}
	return out
}

// Len returns the number of teams.
func (m *AggregateMap) Len() int {
	return len(m.order)
}
