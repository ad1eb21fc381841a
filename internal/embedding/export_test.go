package embedding

// SplitWords exposes splitWords for testing
func SplitWords(text string, n int) []string {
	return splitWords(text, n)
}
