// Package readability computes fixed-arithmetic reading-level measures over
// plain text. The measures are deliberately simple (whitespace words,
// terminal-punctuation sentences, vowel-group syllables) so that the same
// input always yields the same metrics.
package readability

import (
	"math"
	"strings"

	"github.com/spectrumbridge/bridge/internal/models"
)

// Grade level labels returned by Analyze
const (
	GradeLevel12       = "Grade 1-2"
	GradeLevel34       = "Grade 3-4"
	GradeLevel56       = "Grade 5-6"
	GradeLevel7Plus    = "Grade 7+"
	maxWordsGrade2     = 8.0
	maxSyllablesGrade2 = 1.2
)

// CountWords counts whitespace-separated words
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// CountSentences counts terminal punctuation marks ('.', '!', '?').
// Any non-empty text counts as at least one sentence.
func CountSentences(text string) int {
	count := strings.Count(text, ".") + strings.Count(text, "!") + strings.Count(text, "?")
	if count < 1 {
		return 1
	}
	return count
}

// CountSyllables estimates the syllable count of a single word by counting
// vowel groups (a, e, i, o, u, y). A trailing silent 'e' is not counted
// unless it is the only syllable. Any word containing letters counts as at
// least one syllable; words with no letters count as zero.
func CountSyllables(word string) int {
	cleaned := stripNonAlpha(strings.ToLower(word))
	if cleaned == "" {
		return 0
	}

	count := 0
	prevWasVowel := false
	for _, ch := range cleaned {
		isVowel := strings.ContainsRune("aeiouy", ch)
		if isVowel && !prevWasVowel {
			count++
		}
		prevWasVowel = isVowel
	}

	// Silent 'e' at the end doesn't count
	if strings.HasSuffix(cleaned, "e") && count > 1 {
		count--
	}

	if count < 1 {
		return 1
	}
	return count
}

// Analyze computes readability metrics for the given text. Averages are
// rounded to one decimal place; the grade estimate and the Grade-2 flag are
// derived from the unrounded values.
func Analyze(text string) models.ReadabilityMetrics {
	if strings.TrimSpace(text) == "" {
		return models.ReadabilityMetrics{}
	}

	sentences := CountSentences(text)
	words := CountWords(text)

	syllables := 0
	for _, word := range strings.Fields(strings.ToLower(text)) {
		if stripNonAlpha(word) == "" {
			continue
		}
		syllables += CountSyllables(word)
	}

	avgWords := 0.0
	if sentences > 0 {
		avgWords = float64(words) / float64(sentences)
	}
	avgSyllables := 0.0
	if words > 0 {
		avgSyllables = float64(syllables) / float64(words)
	}

	return models.ReadabilityMetrics{
		WordCount:            words,
		SentenceCount:        sentences,
		AvgWordsPerSentence:  round1(avgWords),
		AvgSyllablesPerWord:  round1(avgSyllables),
		EstimatedGradeLevel:  EstimateGradeLevel(avgWords, avgSyllables),
		MeetsGrade2Threshold: avgWords <= maxWordsGrade2 && avgSyllables <= maxSyllablesGrade2,
	}
}

// EstimateGradeLevel maps average words per sentence and average syllables
// per word onto a coarse grade band
func EstimateGradeLevel(avgWords, avgSyllables float64) string {
	switch {
	case avgWords <= maxWordsGrade2 && avgSyllables <= maxSyllablesGrade2:
		return GradeLevel12
	case avgWords <= 10 && avgSyllables <= 1.4:
		return GradeLevel34
	case avgWords <= 15:
		return GradeLevel56
	default:
		return GradeLevel7Plus
	}
}

func stripNonAlpha(word string) string {
	var b strings.Builder
	for _, ch := range word {
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') {
			b.WriteRune(ch)
		}
	}
	return b.String()
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
