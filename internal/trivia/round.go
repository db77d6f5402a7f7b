package trivia

import (
	"math/rand"
	"strings"
)

// Round is one playable question with a shuffled answer set. It exists only
// for the duration of the executor call that builds the outgoing message; a
// later click is judged entirely from the custom_id encoding.
type Round struct {
	Category     string
	Difficulty   string
	Question     string
	Answers      []string
	CorrectIndex int
}

// NewRound shuffles the question's answers into a Round.
func NewRound(q *Question) *Round {
	answers := make([]string, 0, len(q.IncorrectAnswers)+1)
	answers = append(answers, q.CorrectAnswer)
	answers = append(answers, q.IncorrectAnswers...)

	rand.Shuffle(len(answers), func(i, j int) {
		answers[i], answers[j] = answers[j], answers[i]
	})

	correct := 0
	for i, a := range answers {
		if a == q.CorrectAnswer {
			correct = i
			break
		}
	}

	return &Round{
		Category:     q.Category,
		Difficulty:   capitalizeWord(q.Difficulty),
		Question:     q.Text,
		Answers:      answers,
		CorrectIndex: correct,
	}
}

// Correct returns the correct answer text.
func (r *Round) Correct() string {
	return r.Answers[r.CorrectIndex]
}

func capitalizeWord(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
