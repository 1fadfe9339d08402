package sport

// Sport identifies the kind of game being played. Each sport has its own
// result schema and approval threshold.
type Sport string

const (
	Football   Sport = "FOOTBALL"
	Basketball Sport = "BASKETBALL"
	Padel      Sport = "PADEL"
	Volleyball Sport = "VOLLEYBALL"
)

// FieldKind is the declared type of a player stat field.
type FieldKind string

const (
	FieldNumber FieldKind = "NUMBER"
	FieldFlag   FieldKind = "FLAG"
)

// StatField declares a single player stat field and its kind.
type StatField struct {
	Name string    `json:"name"`
	Kind FieldKind `json:"kind"`
}

// ResultConfig declares the shape of a game result for a sport: the fields
// that make up the final score, the per-player stat fields, and the fraction
// of attended players whose approval finalizes the result.
type ResultConfig struct {
	ResultFields      []string    `json:"result_fields"`
	StatFields        []StatField `json:"stat_fields"`
	ApprovalThreshold float64     `json:"approval_threshold"`
}

var configs = map[Sport]ResultConfig{
	Football: {
		ResultFields: []string{"home_score", "away_score"},
		StatFields: []StatField{
			{Name: "goals", Kind: FieldNumber},
			{Name: "assists", Kind: FieldNumber},
			{Name: "own_goals", Kind: FieldNumber},
			{Name: "man_of_the_match", Kind: FieldFlag},
		},
		ApprovalThreshold: 0.5,
	},
	Basketball: {
		ResultFields: []string{"home_score", "away_score"},
		StatFields: []StatField{
			{Name: "points", Kind: FieldNumber},
			{Name: "rebounds", Kind: FieldNumber},
			{Name: "assists", Kind: FieldNumber},
		},
		ApprovalThreshold: 0.5,
	},
	Padel: {
		ResultFields: []string{"home_sets", "away_sets"},
		StatFields: []StatField{
			{Name: "sets_won", Kind: FieldNumber},
			{Name: "games_won", Kind: FieldNumber},
		},
		ApprovalThreshold: 0.75,
	},
	Volleyball: {
		ResultFields: []string{"home_sets", "away_sets"},
		StatFields: []StatField{
			{Name: "points", Kind: FieldNumber},
			{Name: "blocks", Kind: FieldNumber},
			{Name: "aces", Kind: FieldNumber},
		},
		ApprovalThreshold: 0.5,
	},
}

// ResultSchema returns the result configuration for a sport.
func ResultSchema(s Sport) (ResultConfig, bool) {
	cfg, ok := configs[s]
	return cfg, ok
}

// Known reports whether the sport has a registered result configuration.
func Known(s Sport) bool {
	_, ok := configs[s]
	return ok
}

// StatField returns the declaration for a named player stat field, if the
// sport declares one.
func (c ResultConfig) StatField(name string) (StatField, bool) {
	for _, f := range c.StatFields {
		if f.Name == name {
			return f, true
		}
	}
	return StatField{}, false
}
