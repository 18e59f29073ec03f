package translate

// promptPlaceholder is replaced with the newline-joined texts to translate.
const promptPlaceholder = "{{texts}}"

// defaultPrompt is used when no TRANSLATION_PROMPT override is configured.
const defaultPrompt = "You are translating Israeli bank and credit card transaction descriptions from Hebrew to English.\n\n" +
	"Translate each line below separately.\n" +
	"Reply with the translations only, one per line, in the same order as the input.\n" +
	"Keep merchant and brand names recognizable; transliterate when there is no common English form.\n" +
	"Do not number the lines and do not add commentary.\n\n" +
	promptPlaceholder
