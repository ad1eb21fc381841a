package vectorstore

var (
	NewPassage   = newPassage
	DocumentText = documentText
	RankPassages = rankPassages
)
