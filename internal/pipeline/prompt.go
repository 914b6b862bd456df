package pipeline

// InitialContext seeds the running context of a run.
func InitialContext(seed string) string {
	return "Initial Idea: " + seed
}

// BuildPrompt returns the user prompt for the persona at position i. The first
// persona sees only the seed; everyone after sees the whole proposal so far.
func BuildPrompt(i int, seed, context string) string {
	if i == 0 {
		return `Here is the seed idea: "` + seed + `". Transform this.`
	}
	return "Here is the proposal so far:\n\n" + context + "\n\nYour turn."
}

// ContextBlock is appended to the running context once a persona finishes.
func ContextBlock(name, response string) string {
	return "\n\n--- Proposal by " + name + " ---\n" + response
}
