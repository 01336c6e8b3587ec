package question

// DefaultQuestions is the built-in general knowledge round.
func DefaultQuestions() []Question {
	return []Question{
		{
			ID:            "1",
			Prompt:        "What is the capital of France?",
			Options:       []string{"London", "Berlin", "Paris", "Madrid"},
			CorrectAnswer: 2,
			TimeLimit:     15,
			Points:        100,
		},
		{
			ID:            "2",
			Prompt:        "Which planet is known as the Red Planet?",
			Options:       []string{"Venus", "Mars", "Jupiter", "Saturn"},
			CorrectAnswer: 1,
			TimeLimit:     15,
			Points:        100,
		},
		{
			ID:            "3",
			Prompt:        "Who painted the Mona Lisa?",
			Options:       []string{"Vincent van Gogh", "Pablo Picasso", "Leonardo da Vinci", "Michelangelo"},
			CorrectAnswer: 2,
			TimeLimit:     20,
			Points:        100,
		},
		{
			ID:            "4",
			Prompt:        "What is the largest mammal in the world?",
			Options:       []string{"African Elephant", "Blue Whale", "Giraffe", "Hippopotamus"},
			CorrectAnswer: 1,
			TimeLimit:     15,
			Points:        100,
		},
		{
			ID:            "5",
			Prompt:        "Which element has the chemical symbol Au?",
			Options:       []string{"Silver", "Copper", "Gold", "Aluminum"},
			CorrectAnswer: 2,
			TimeLimit:     20,
			Points:        100,
		},
	}
}

// DefaultBank wraps DefaultQuestions in a validated Bank.
func DefaultBank() *Bank {
	return MustBank(DefaultQuestions())
}
