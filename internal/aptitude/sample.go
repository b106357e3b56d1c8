package aptitude

import "math/rand"

// DefaultQuestionCount is how many bank questions a test draws when the
// client does not ask for a specific count.
const DefaultQuestionCount = 20

// Sample draws count random questions from the bank and shuffles each
// question's options. Asking for more questions than the bank holds
// returns the whole bank in random order.
func Sample(questions []Question, count int, rng *rand.Rand) []Question {
	if len(questions) == 0 || count <= 0 {
		return nil
	}
	if count > len(questions) {
		count = len(questions)
	}

	picked := make([]Question, 0, count)
	for _, i := range rng.Perm(len(questions))[:count] {
		picked = append(picked, ShuffleOptions(questions[i], rng))
	}
	return picked
}

// ShuffleOptions returns a copy of q with its options in random order
// and CorrectAnswer remapped to follow the correct option's new
// position. Questions with an out-of-range CorrectAnswer are returned
// unchanged.
func ShuffleOptions(q Question, rng *rand.Rand) Question {
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
		return q
	}

	correctText := q.Options[q.CorrectAnswer]

	shuffled := make([]string, len(q.Options))
	copy(shuffled, q.Options)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	q.Options = shuffled
	for i, opt := range shuffled {
		if opt == correctText {
			q.CorrectAnswer = i
			break
		}
	}
	return q
}
