package model

// Likert bucket labels as the backend reports them
const (
	LikertStronglyAgree    = "Strongly agree"
	LikertAgree            = "Agree"
	LikertNeutral          = "Neutral"
	LikertDisagree         = "Disagree"
	LikertStronglyDisagree = "Strongly disagree"
)

// LikertMin and LikertMax bound a single agent answer
const (
	LikertMin = 1
	LikertMax = 5
)

// LikertCounts tallies answers per bucket
type LikertCounts struct {
	StronglyAgree    int `json:"Strongly agree"`
	Agree            int `json:"Agree"`
	Neutral          int `json:"Neutral"`
	Disagree         int `json:"Disagree"`
	StronglyDisagree int `json:"Strongly disagree"`
}

// Add counts one answer on the 1-5 scale. Out of range values are ignored.
func (c *LikertCounts) Add(answer int) {
	switch answer {
	case 1:
		c.StronglyDisagree++
	case 2:
		c.Disagree++
	case 3:
		c.Neutral++
	case 4:
		c.Agree++
	case 5:
		c.StronglyAgree++
	}
}

// Total returns the number of counted answers
func (c LikertCounts) Total() int {
	return c.StronglyAgree + c.Agree + c.Neutral + c.Disagree + c.StronglyDisagree
}

// Statistics are summary values computed by the backend and shown as-is
type Statistics struct {
	Median         float64 `json:"median"`
	Mode           float64 `json:"mode"`
	VariationRatio float64 `json:"variation ratio"`
}

// ResponseDistribution holds the answers for one question
type ResponseDistribution struct {
	Order      int          `json:"order"` // matches Question.Order
	Question   string       `json:"question"`
	Answers    LikertCounts `json:"answers"`
	Statistics Statistics   `json:"statistics"`
	Responses  []int        `json:"responses"` // per agent, index i is agent i+1
}

// ResponseFor returns the answer of the agent with the given 1-based ordinal
func (d ResponseDistribution) ResponseFor(ordinal int) (int, bool) {
	i := ordinal - 1
	if i < 0 || i >= len(d.Responses) {
		return 0, false
	}
	return d.Responses[i], true
}

// QuestionResponses is what the backend returns for one question upload
type QuestionResponses struct {
	Distributions       []ResponseDistribution `json:"distributions"`
	FutureDistributions []ResponseDistribution `json:"future_distributions"`
}

// Round is one question upload together with the distributions collected for it
type Round struct {
	Questions           []Question             `json:"questions"`
	Distributions       []ResponseDistribution `json:"distributions"`
	FutureDistributions []ResponseDistribution `json:"futureDistributions,omitempty"`
}

// HasResponses reports whether the backend answered this round
func (r *Round) HasResponses() bool {
	return r != nil && len(r.Distributions) > 0
}

// HasFutureResponses reports whether future distributions were collected
func (r *Round) HasFutureResponses() bool {
	return r != nil && len(r.FutureDistributions) > 0
}

// DistributionByOrder indexes distributions by question order
func DistributionByOrder(dists []ResponseDistribution) map[int]ResponseDistribution {
	byOrder := make(map[int]ResponseDistribution, len(dists))
	for _, d := range dists {
		byOrder[d.Order] = d
	}
	return byOrder
}
