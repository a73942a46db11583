package languageutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslateCategory(t *testing.T) {
	assert.Equal(t, "Maglietta", TranslateCategory("T-Shirt"))
	assert.Equal(t, "Pantaloni", TranslateCategory(" trousers "))
	assert.Equal(t, "Kimono", TranslateCategory("kimono"))
}

func TestTranslateColor(t *testing.T) {
	assert.Equal(t, "nero", TranslateColor("Black"))
	assert.Equal(t, "grigio", TranslateColor("grey"))
	assert.Equal(t, "teal", TranslateColor(" Teal"))
}

func TestColorHex(t *testing.T) {
	assert.Equal(t, "#000080", ColorHex("NAVY"))
	assert.Equal(t, DefaultColorHex, ColorHex("teal"))
}

func TestItemName(t *testing.T) {
	assert.Equal(t, "Jeans blu", ItemName("jeans", "blue"))
	assert.Equal(t, "Giacca", ItemName("jacket", ""))
	assert.Equal(t, "rosso", ItemName("", "red"))
	assert.Equal(t, ItemName("dress", "red"), ItemName("dress", "red"))
}
