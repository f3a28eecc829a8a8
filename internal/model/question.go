package model

// Question is one uploaded statement the agents answer on a Likert scale
type Question struct {
	Text  string `json:"text"`
	Order int    `json:"order"` // zero-based position in the upload
}

// NewQuestions assigns upload order to validated question texts
func NewQuestions(texts []string) []Question {
	questions := make([]Question, len(texts))
	for i, text := range texts {
		questions[i] = Question{Text: text, Order: i}
	}
	return questions
}

// QuestionTexts returns the texts in upload order
func QuestionTexts(questions []Question) []string {
	texts := make([]string, len(questions))
	for i, q := range questions {
		texts[i] = q.Text
	}
	return texts
}
