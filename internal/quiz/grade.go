package quiz

// Grade scores answers against the test's key. answers maps a zero-based question
// position to the chosen option text; positions without an entry count as unanswered.
// Matching is exact.
func Grade(t Test, answers map[int]string) Result {
	res := Result{
		TestID: t.ID,
		Total:  len(t.Questions),
		Review: make([]Review, len(t.Questions)),
	}

	for i, q := range t.Questions {
		answer, ok := answers[i]
		if !ok {
			answer = NoAnswer
		}
		correct := answer == q.CorrectAnswer
		if correct {
			res.Score++
		}
		res.Review[i] = Review{
			Number:        i + 1,
			Question:      q.Question,
			Answer:        answer,
			CorrectAnswer: q.CorrectAnswer,
			Correct:       correct,
		}
	}

	res.Percentage = res.Ratio() * 100
	return res
}
