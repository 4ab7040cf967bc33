// Package merchant maps raw payee text to a canonical display name. A table
// of known-merchant patterns wins; anything else goes through a generic
// cleanup. Normalization is pure and deterministic so merchantNorm can be
// recomputed from merchantRaw at any time.
package merchant

import (
	"regexp"
	"strings"
	"unicode"
)

// maxNormalizedLen bounds merchantNorm for storage and display.
const maxNormalizedLen = 100

type merchantPattern struct {
	pattern    *regexp.Regexp
	normalized string
}

// Known merchants across the banks this tool has seen, transliterated brand
// names included. Ordered: first match wins.
var merchantPatterns = []merchantPattern{
	{regexp.MustCompile(`(?i)яндекс\.?еда`), "Яндекс Еда"},
	{regexp.MustCompile(`(?i)delivery club|деливери клаб`), "Delivery Club"},
	{regexp.MustCompile(`(?i)самокат`), "Самокат"},
	{regexp.MustCompile(`(?i)пятёрочка|пятерочка|pyaterochka`), "Пятёрочка"},
	{regexp.MustCompile(`(?i)магнит`), "Магнит"},
	{regexp.MustCompile(`(?i)перекрёсток|перекресток`), "Перекрёсток"},
	{regexp.MustCompile(`(?i)ашан`), "Ашан"},
	{regexp.MustCompile(`(?i)макдональдс|mcdonald`), "McDonalds"},
	{regexp.MustCompile(`(?i)kfc|кфс`), "KFC"},
	{regexp.MustCompile(`(?i)бургер кинг|burger king`), "Burger King"},
	{regexp.MustCompile(`(?i)старбакс|starbucks`), "Starbucks"},
	{regexp.MustCompile(`(?i)яндекс\.?такси|yandex taxi`), "Яндекс Такси"},
	{regexp.MustCompile(`(?i)uber|убер`), "Uber"},
	{regexp.MustCompile(`(?i)bolt|болт`), "Bolt"},
	{regexp.MustCompile(`(?i)метро|metro card`), "Метро"},
	{regexp.MustCompile(`(?i)сбп`), "СБП"},
	{regexp.MustCompile(`(?i)ozon|озон`), "Ozon"},
	{regexp.MustCompile(`(?i)wildberries|вайлдберриз`), "Wildberries"},
	{regexp.MustCompile(`(?i)aliexpress|али[её]кспресс`), "AliExpress"},
	{regexp.MustCompile(`(?i)netflix|нетфликс`), "Netflix"},
	{regexp.MustCompile(`(?i)spotify|спотифай`), "Spotify"},
	{regexp.MustCompile(`(?i)apple|эпл`), "Apple"},
	{regexp.MustCompile(`(?i)google|гугл`), "Google"},
	{regexp.MustCompile(`(?i)yandex\.?plus|яндекс\.?плюс`), "Яндекс Плюс"},
}

var cardLast4Re = regexp.MustCompile(`\*{4}(\d{4})|(\d{4})\s*$`)

// Normalize returns the canonical display name for raw payee text.
func Normalize(raw string) string {
	cleaned := strings.Join(strings.Fields(strings.ToLower(raw)), " ")

	for _, mp := range merchantPatterns {
		if mp.pattern.MatchString(cleaned) {
			return mp.normalized
		}
	}

	return genericCleanup(raw)
}

// genericCleanup strips punctuation outside a letter/digit/hyphen allow-list,
// title-cases each word and truncates to a bounded length.
func genericCleanup(raw string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}

	words := strings.Fields(b.String())
	for i, word := range words {
		words[i] = titleWord(word)
	}

	normalized := strings.Join(words, " ")
	runes := []rune(normalized)
	if len(runes) > maxNormalizedLen {
		normalized = string(runes[:maxNormalizedLen])
	}
	return normalized
}

func titleWord(word string) string {
	runes := []rune(strings.ToLower(word))
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// ExtractCardLast4 pulls the trailing card digits out of a description,
// matching either "****1234" or a bare four-digit suffix.
func ExtractCardLast4(description string) string {
	matches := cardLast4Re.FindStringSubmatch(description)
	if matches == nil {
		return ""
	}
	if matches[1] != "" {
		return matches[1]
	}
	return matches[2]
}
