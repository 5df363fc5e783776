// Package direction provides the built-in editing instruction presets.
package direction

import "github.com/colonyops/redline/internal/core/chunk"

// Preset is a reusable editing instruction template.
type Preset struct {
	ID          string
	Name        string
	Description string
	Template    string
}

// Render returns the full instruction text for the preset. A non-empty
// annotation is appended as additional guidance; for the custom preset
// (empty template) the annotation stands alone.
func (p Preset) Render(annotation string) string {
	if p.Template == "" {
		return annotation
	}
	if annotation == "" {
		return p.Template
	}
	return p.Template + "\n\nAdditional guidance: " + annotation
}

// ReplacePresets are outcome-focused directions for replace chunks.
var ReplacePresets = []Preset{
	{ID: "richer", Name: "Richer", Description: "More depth and substance",
		Template: "Rewrite with more depth, detail, and substance. Expand on ideas and add nuance."},
	{ID: "tighter", Name: "Tighter", Description: "More concise and direct",
		Template: "Rewrite to be more concise and direct. Remove fluff, tighten prose."},
	{ID: "livelier", Name: "Livelier", Description: "More energy and engagement",
		Template: "Rewrite with more energy and engagement. Make it dynamic and compelling."},
	{ID: "calmer", Name: "Calmer", Description: "More measured pace",
		Template: "Rewrite with a more measured, steady pace. Tone down intensity."},
	{ID: "elevated", Name: "Elevated", Description: "More formal language",
		Template: "Rewrite with more formal, sophisticated language. Raise the register."},
	{ID: "grounded", Name: "Grounded", Description: "More accessible language",
		Template: "Rewrite with more accessible, down-to-earth language. Lower the register."},
	{ID: "custom", Name: "Custom", Description: "Provide your own instruction", Template: ""},
}

// TweakPresets are issue-focused directions for tweak chunks.
var TweakPresets = []Preset{
	{ID: "flow", Name: "Flow", Description: "Fix rhythm and transitions",
		Template: "Improve the rhythm and transitions. Smooth out awkward phrasing without changing meaning."},
	{ID: "precision", Name: "Precision", Description: "Sharpen vague wording",
		Template: "Sharpen vague or imprecise wording. Make language more exact without changing tone."},
	{ID: "tone", Name: "Tone", Description: "Adjust voice subtly",
		Template: "Adjust the voice/register subtly. Preserve content but refine how it sounds."},
	{ID: "custom", Name: "Custom", Description: "Provide your own instruction", Template: ""},
}

// ByID returns the preset with the given id, searching the replace set first.
func ByID(id string) (Preset, bool) {
	for _, p := range ReplacePresets {
		if p.ID == id {
			return p, true
		}
	}
	for _, p := range TweakPresets {
		if p.ID == id {
			return p, true
		}
	}
	return Preset{}, false
}

// ForCategory returns the preset list applicable to the given chunk category.
// Lock chunks take no directions.
func ForCategory(c chunk.Category) []Preset {
	switch c {
	case chunk.CategoryReplace:
		return ReplacePresets
	case chunk.CategoryTweak:
		return TweakPresets
	}
	return nil
}
