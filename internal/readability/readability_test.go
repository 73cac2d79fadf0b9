package readability

import (
	"math"
	"testing"
)

func TestCountWords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "simple sentence", text: "The cat sat", want: 3},
		{name: "empty string", text: "", want: 0},
		{name: "extra whitespace", text: "  spaced   out  ", want: 2},
		{name: "newlines and tabs", text: "one\ttwo\nthree", want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CountWords(tt.text)
			if got != tt.want {
				t.Errorf("CountWords(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestCountSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "single period", text: "Hello.", want: 1},
		{name: "mixed terminators", text: "Hi! How are you? Good.", want: 3},
		{name: "no terminal punctuation", text: "no stop", want: 1},
		{name: "repeated punctuation counts per mark", text: "Wow!!! Really??", want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CountSentences(tt.text)
			if got != tt.want {
				t.Errorf("CountSentences(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestCountSyllables(t *testing.T) {
	tests := []struct {
		name string
		word string
		want int
	}{
		{name: "single vowel group", word: "cat", want: 1},
		{name: "trailing y vowel", word: "happy", want: 2},
		{name: "silent trailing e", word: "home", want: 1},
		{name: "silent e not applied to single syllable", word: "the", want: 1},
		{name: "double vowel single group", word: "see", want: 1},
		{name: "ay single group", word: "play", want: 1},
		{name: "three syllables", word: "understand", want: 3},
		{name: "silent e after many groups", word: "communicate", want: 4},
		{name: "y as only vowel", word: "rhythm", want: 1},
		{name: "apostrophe stripped", word: "don't", want: 1},
		{name: "digits only", word: "123", want: 0},
		{name: "empty word", word: "", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CountSyllables(tt.word)
			if got != tt.want {
				t.Errorf("CountSyllables(%q) = %d, want %d", tt.word, got, tt.want)
			}
		})
	}
}

func TestEstimateGradeLevel(t *testing.T) {
	tests := []struct {
		name         string
		avgWords     float64
		avgSyllables float64
		want         string
	}{
		{name: "short simple text", avgWords: 5, avgSyllables: 1.0, want: GradeLevel12},
		{name: "grade 2 boundary", avgWords: 8, avgSyllables: 1.2, want: GradeLevel12},
		{name: "middle band", avgWords: 9, avgSyllables: 1.3, want: GradeLevel34},
		{name: "grade 4 boundary", avgWords: 10, avgSyllables: 1.4, want: GradeLevel34},
		{name: "long sentences", avgWords: 12, avgSyllables: 2.0, want: GradeLevel56},
		{name: "grade 6 boundary", avgWords: 15, avgSyllables: 3.0, want: GradeLevel56},
		{name: "short words but complex syllables", avgWords: 9, avgSyllables: 1.5, want: GradeLevel56},
		{name: "very long sentences", avgWords: 16, avgSyllables: 1.0, want: GradeLevel7Plus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateGradeLevel(tt.avgWords, tt.avgSyllables)
			if got != tt.want {
				t.Errorf("EstimateGradeLevel(%f, %f) = %q, want %q", tt.avgWords, tt.avgSyllables, got, tt.want)
			}
		})
	}
}

func TestAnalyze(t *testing.T) {
	t.Run("simple grade 2 text", func(t *testing.T) {
		m := Analyze("The cat sat. The dog ran.")

		if m.WordCount != 6 {
			t.Errorf("WordCount = %d, want 6", m.WordCount)
		}
		if m.SentenceCount != 2 {
			t.Errorf("SentenceCount = %d, want 2", m.SentenceCount)
		}
		if math.Abs(m.AvgWordsPerSentence-3.0) > 0.001 {
			t.Errorf("AvgWordsPerSentence = %f, want 3.0", m.AvgWordsPerSentence)
		}
		if math.Abs(m.AvgSyllablesPerWord-1.0) > 0.001 {
			t.Errorf("AvgSyllablesPerWord = %f, want 1.0", m.AvgSyllablesPerWord)
		}
		if m.EstimatedGradeLevel != GradeLevel12 {
			t.Errorf("EstimatedGradeLevel = %q, want %q", m.EstimatedGradeLevel, GradeLevel12)
		}
		if !m.MeetsGrade2Threshold {
			t.Error("MeetsGrade2Threshold = false, want true")
		}
	})

	t.Run("empty text returns zero metrics", func(t *testing.T) {
		m := Analyze("")
		if m.WordCount != 0 || m.SentenceCount != 0 {
			t.Errorf("Analyze(\"\") = %+v, want zero metrics", m)
		}
	})

	t.Run("whitespace only returns zero metrics", func(t *testing.T) {
		m := Analyze("   \n\t ")
		if m.WordCount != 0 || m.SentenceCount != 0 {
			t.Errorf("Analyze(whitespace) = %+v, want zero metrics", m)
		}
	})

	t.Run("no terminal punctuation counts one sentence", func(t *testing.T) {
		m := Analyze("hello there friend")

		if m.SentenceCount != 1 {
			t.Errorf("SentenceCount = %d, want 1", m.SentenceCount)
		}
		if m.WordCount != 3 {
			t.Errorf("WordCount = %d, want 3", m.WordCount)
		}
		// 4 syllables over 3 words rounds to 1.3
		if math.Abs(m.AvgSyllablesPerWord-1.3) > 0.001 {
			t.Errorf("AvgSyllablesPerWord = %f, want 1.3", m.AvgSyllablesPerWord)
		}
		if m.MeetsGrade2Threshold {
			t.Error("MeetsGrade2Threshold = true, want false")
		}
	})

	t.Run("seventeen word sentence lands above grade 6", func(t *testing.T) {
		m := Analyze("This sentence contains many more words than any young reader could comfortably process in one single pass.")

		if m.WordCount != 17 {
			t.Errorf("WordCount = %d, want 17", m.WordCount)
		}
		if m.EstimatedGradeLevel != GradeLevel7Plus {
			t.Errorf("EstimatedGradeLevel = %q, want %q", m.EstimatedGradeLevel, GradeLevel7Plus)
		}
		if m.MeetsGrade2Threshold {
			t.Error("MeetsGrade2Threshold = true, want false")
		}
	})
}
