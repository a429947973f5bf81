package session

// languageNames maps ISO 639-1 codes to the display names stored in session
// config and passed to the translation gateway.
var languageNames = map[string]string{
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"pt": "Portuguese",
	"zh": "Mandarin",
	"ja": "Japanese",
	"ko": "Korean",
	"ar": "Arabic",
	"hi": "Hindi",
	"de": "German",
	"it": "Italian",
	"ru": "Russian",
}

// LookupName resolves a language code to its display name.
func LookupName(code string) (string, bool) {
	name, ok := languageNames[code]
	return name, ok
}

// LookupCode resolves a display name back to its language code.
func LookupCode(name string) (string, bool) {
	for code, n := range languageNames {
		if n == name {
			return code, true
		}
	}
	return "", false
}
