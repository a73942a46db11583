package languageutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Casers are stateful, so one is built per call instead of sharing a package var.
func titleCase(value string) string {
	return cases.Title(language.Italian).String(value)
}

func lowerCase(value string) string {
	return cases.Lower(language.Italian).String(value)
}

const DefaultColorHex = "#CCCCCC"

// english category -> italian display name
var CategoryTranslations = map[string]string{
	"t-shirt":     "maglietta",
	"tshirt":      "maglietta",
	"shirt":       "camicia",
	"top":         "top",
	"blouse":      "blusa",
	"sweater":     "maglione",
	"hoodie":      "felpa",
	"jacket":      "giacca",
	"coat":        "cappotto",
	"jeans":       "jeans",
	"pants":       "pantaloni",
	"trousers":    "pantaloni",
	"shorts":      "pantaloncini",
	"skirt":       "gonna",
	"dress":       "vestito",
	"shoes":       "scarpe",
	"sneakers":    "sneakers",
	"boots":       "stivali",
	"sandals":     "sandali",
	"bag":         "borsa",
	"hat":         "cappello",
	"scarf":       "sciarpa",
	"belt":        "cintura",
	"accessory":   "accessorio",
	"accessories": "accessori",
}

var ColorTranslations = map[string]string{
	"white":  "bianco",
	"black":  "nero",
	"red":    "rosso",
	"blue":   "blu",
	"navy":   "blu navy",
	"green":  "verde",
	"yellow": "giallo",
	"gray":   "grigio",
	"grey":   "grigio",
	"brown":  "marrone",
	"beige":  "beige",
	"pink":   "rosa",
	"purple": "viola",
	"orange": "arancione",
}

var ColorHexes = map[string]string{
	"white":  "#FFFFFF",
	"black":  "#000000",
	"red":    "#FF0000",
	"blue":   "#0000FF",
	"navy":   "#000080",
	"green":  "#008000",
	"yellow": "#FFFF00",
	"gray":   "#808080",
	"grey":   "#808080",
	"brown":  "#8B4513",
	"beige":  "#F5F5DC",
	"pink":   "#FFC0CB",
	"purple": "#800080",
	"orange": "#FFA500",
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// TranslateCategory returns the italian display category, title cased.
// Unknown categories are shown as typed.
func TranslateCategory(category string) string {
	trimmed := strings.TrimSpace(category)
	if translated, ok := CategoryTranslations[normalize(category)]; ok {
		return titleCase(translated)
	}
	return titleCase(trimmed)
}

// TranslateColor returns the italian color name in lower case.
func TranslateColor(color string) string {
	if translated, ok := ColorTranslations[normalize(color)]; ok {
		return translated
	}
	return lowerCase(strings.TrimSpace(color))
}

func ColorHex(color string) string {
	if hex, ok := ColorHexes[normalize(color)]; ok {
		return hex
	}
	return DefaultColorHex
}

// ItemName derives the display name of an item as "{Category} {color}".
func ItemName(category, color string) string {
	return strings.TrimSpace(TranslateCategory(category) + " " + TranslateColor(color))
}
