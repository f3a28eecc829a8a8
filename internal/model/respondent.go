package model

// LatentFactor is one named attitude score, roughly in [-2.4, 2.4]
type LatentFactor struct {
	Name  string  `json:"name" bson:"name" yaml:"name"`
	Value float64 `json:"value" bson:"value" yaml:"value"`
}

// Respondent is a row of the survey dataset agents are sampled from
type Respondent struct {
	ID      string         `json:"id" bson:"_id,omitempty" yaml:"-"`
	Age     int            `json:"age" bson:"age" yaml:"age"`
	Gender  string         `json:"gender" bson:"gender" yaml:"gender"`
	Factors []LatentFactor `json:"factors" bson:"factors" yaml:"factors"`
}

// Persona is an agent together with the latent factors that drive its answers
type Persona struct {
	Agent   Agent          `json:"agent"`
	Factors []LatentFactor `json:"factors"`
}
