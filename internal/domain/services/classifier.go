package services

import "strings"

// CategoryOther is assigned when no category rule matches.
const CategoryOther = "Other"

// CategoryRule matches a permission identifier to a category by
// case-insensitive substring. Rules are evaluated in table order and the
// first match wins, so an identifier matching several rules resolves to the
// earliest one.
type CategoryRule struct {
	Category string   `json:"category"`
	Keywords []string `json:"keywords"`
}

// categoryRules is the fixed, ordered classification table.
var categoryRules = []CategoryRule{
	{Category: "Camera", Keywords: []string{"camera"}},
	{Category: "Location", Keywords: []string{"location", "gps"}},
	{Category: "Microphone", Keywords: []string{"microphone", "record_audio"}},
	{Category: "Storage", Keywords: []string{"storage", "external_storage"}},
	{Category: "Contacts", Keywords: []string{"contacts"}},
	{Category: "Phone", Keywords: []string{"phone", "call"}},
	{Category: "SMS", Keywords: []string{"sms", "message"}},
	{Category: "Calendar", Keywords: []string{"calendar"}},
	{Category: "Bluetooth", Keywords: []string{"bluetooth"}},
}

// Classifier maps permission identifiers to a category and readable name.
// Pure and deterministic; safe for concurrent use.
type Classifier struct {
	rules []CategoryRule
}

// NewClassifier creates a classifier over the fixed rule table.
func NewClassifier() *Classifier {
	return &Classifier{rules: categoryRules}
}

// Classify returns the category and derived readable name for an identifier.
// Total: unrecognized identifiers classify as CategoryOther.
func (c *Classifier) Classify(identifier string) (category, readableName string) {
	return c.Category(identifier), ReadableName(identifier)
}

// Category resolves the category via the ordered rule table.
func (c *Classifier) Category(identifier string) string {
	lowered := strings.ToLower(identifier)
	for _, rule := range c.rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(lowered, keyword) {
				return rule.Category
			}
		}
	}
	return CategoryOther
}

// Rules returns a copy of the classification table for inspection.
func (c *Classifier) Rules() []CategoryRule {
	out := make([]CategoryRule, len(c.rules))
	copy(out, c.rules)
	return out
}

// ReadableName derives a display name from an identifier: the segment after
// the last dot, underscore-split, each word lowercased then capitalized.
// "android.permission.RECORD_AUDIO" becomes "Record Audio".
func ReadableName(identifier string) string {
	segment := identifier
	if idx := strings.LastIndex(identifier, "."); idx >= 0 {
		segment = identifier[idx+1:]
	}

	words := strings.Split(segment, "_")
	for i, word := range words {
		words[i] = capitalize(strings.ToLower(word))
	}
	return strings.Join(words, " ")
}

func capitalize(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + word[1:]
}
