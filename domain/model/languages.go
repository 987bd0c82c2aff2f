package model

var subtitleFonts = map[string]struct{}{}

var translationLanguages = map[string]struct{}{}

func init() {
	for _, f := range []string{
		"Arial", "Times New Roman", "Courier New", "Verdana", "Georgia",
		"Trebuchet MS", "Comic Sans MS", "Impact", "DejaVu Serif", "DejaVu Sans Mono",
		"Liberation Serif", "Liberation Mono", "Chiller", "Colonna MT",
	} {
		subtitleFonts[f] = struct{}{}
	}
	for _, l := range []string{
		"Spanish", "French", "German", "Italian", "Portuguese", "Dutch", "Russian", "Arabic",
		"Chinese", "English", "Japanese", "Korean", "Polish", "Turkish", "Swedish", "Danish",
		"Norwegian", "Finnish", "Greek", "Czech", "Hungarian", "Romanian", "Bulgarian",
		"Ukrainian", "Hebrew", "Hindi", "Bengali", "Punjabi", "Tamil", "Telugu", "Marathi",
		"Gujarati", "Malayalam", "Kannada", "Odia", "Assamese", "Nepali", "Sinhala", "Thai",
		"Vietnamese", "Indonesian", "Malay", "Filipino", "Swahili", "Zulu", "Xhosa",
		"Afrikaans", "Amharic", "Somali", "Hausa", "Yoruba", "Igbo", "Sesotho", "Shona",
		"Kinyarwanda", "Tigrinya", "Mongolian", "Kazakh", "Uzbek", "Turkmen", "Kyrgyz",
		"Tajik", "Pashto", "Dari", "Farsi (Persian)", "Urdu", "Sindhi", "Balochi", "Kurdish",
		"Armenian", "Georgian", "Azerbaijani", "Macedonian", "Albanian", "Serbian", "Croatian",
		"Bosnian", "Slovak", "Slovenian", "Estonian", "Latvian", "Lithuanian", "Icelandic",
		"Irish", "Scottish Gaelic", "Welsh", "Basque", "Catalan", "Galician", "Esperanto",
		"Latin", "Haitian Creole", "Quechua", "Nahuatl", "Māori", "Samoan", "Tongan", "Fijian",
		"Hmong", "Burmese", "Khmer", "Lao",
	} {
		translationLanguages[l] = struct{}{}
	}
}

func IsSubtitleFont(name string) bool {
	_, ok := subtitleFonts[name]
	return ok
}

// IsTranslationLanguage accepts the empty string as "no translation".
func IsTranslationLanguage(lang string) bool {
	if lang == "" {
		return true
	}
	_, ok := translationLanguages[lang]
	return ok
}
