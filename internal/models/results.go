package models

import "time"

// Task names used in orchestration results. tasks_completed and the per-task
// result map are keyed by these values.
const (
	TaskRetrieval      = "retrieval"
	TaskSimplification = "simplification"
	TaskStory          = "story"
	TaskImage          = "image"
)

// Passage is a single ranked chunk returned from a knowledge search.
type Passage struct {
	Text       string  `json:"text"`
	Source     string  `json:"source"`
	Topic      string  `json:"topic,omitempty"`
	Score      float64 `json:"relevance_score"`
	ChunkIndex int     `json:"chunk_index"`
}

// RetrievalResult is the outcome of a retrieval task. Failures are carried in
// the Success/Error fields rather than returned as Go errors so that a failed
// retrieval can sit alongside sibling task results.
type RetrievalResult struct {
	Success  bool      `json:"success"`
	Error    string    `json:"error,omitempty"`
	Query    string    `json:"query"`
	Passages []Passage `json:"passages,omitempty"`
	Count    int       `json:"count"`
}

// ReadabilityMetrics holds the fixed-arithmetic readability measures computed
// over simplified text. SentenceCount is at least 1 for any non-empty text.
type ReadabilityMetrics struct {
	WordCount            int     `json:"word_count"`
	SentenceCount        int     `json:"sentence_count"`
	AvgWordsPerSentence  float64 `json:"avg_words_per_sentence"`
	AvgSyllablesPerWord  float64 `json:"avg_syllables_per_word"`
	EstimatedGradeLevel  string  `json:"estimated_grade_level"`
	MeetsGrade2Threshold bool    `json:"meets_grade_2_threshold"`
}

// SimplificationResult is the outcome of a simplification task.
type SimplificationResult struct {
	Success        bool               `json:"success"`
	Error          string             `json:"error,omitempty"`
	OriginalText   string             `json:"original_text"`
	SimplifiedText string             `json:"simplified_text,omitempty"`
	Metrics        ReadabilityMetrics `json:"metrics"`
}

// StoryResult is the outcome of a social story generation task.
type StoryResult struct {
	Success      bool   `json:"success"`
	Error        string `json:"error,omitempty"`
	Title        string `json:"title,omitempty"`
	Story        string `json:"story,omitempty"`
	Situation    string `json:"situation"`
	ChildName    string `json:"child_name"`
	ReadingLevel string `json:"reading_level"`
}

// ImageResult is the outcome of an image generation task. Placeholder is true
// when the local model was unavailable and a labeled fallback image was
// written instead.
type ImageResult struct {
	Success        bool    `json:"success"`
	Error          string  `json:"error,omitempty"`
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negative_prompt,omitempty"`
	ImagePath      string  `json:"image_path,omitempty"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	Steps          int     `json:"steps"`
	Guidance       float64 `json:"guidance_scale"`
	Seconds        float64 `json:"generation_time_seconds"`
	Placeholder    bool    `json:"placeholder"`
}

// AnswerResult is the outcome of a grounded question-answering call.
type AnswerResult struct {
	Success  bool      `json:"success"`
	Error    string    `json:"error,omitempty"`
	Question string    `json:"question"`
	Answer   string    `json:"answer,omitempty"`
	Sources  []Passage `json:"sources,omitempty"`
}

// TaskResult wraps one task's outcome inside an orchestration response.
// Exactly one of the typed payload fields is populated, matching Name.
type TaskResult struct {
	Name           string                `json:"name"`
	Success        bool                  `json:"success"`
	Error          string                `json:"error,omitempty"`
	Retrieval      *RetrievalResult      `json:"retrieval,omitempty"`
	Simplification *SimplificationResult `json:"simplification,omitempty"`
	Story          *StoryResult          `json:"story,omitempty"`
	Image          *ImageResult          `json:"image,omitempty"`
}

// OrchestrationResult aggregates every task attempted for one question.
// TasksCompleted lists only tasks whose result succeeded. Success is true
// iff the mandatory retrieval and simplification tasks both succeeded.
type OrchestrationResult struct {
	Question       string                 `json:"question"`
	ChildName      string                 `json:"child_name,omitempty"`
	Timestamp      time.Time              `json:"timestamp"`
	Tasks          map[string]*TaskResult `json:"tasks"`
	TasksCompleted []string               `json:"tasks_completed"`
	TotalSeconds   float64                `json:"total_time_seconds"`
	Success        bool                   `json:"success"`
}

// Task returns the named task result, or nil when the task was not attempted.
func (r *OrchestrationResult) Task(name string) *TaskResult {
	if r.Tasks == nil {
		return nil
	}
	return r.Tasks[name]
}

// Completed reports whether the named task finished successfully.
func (r *OrchestrationResult) Completed(name string) bool {
	for _, n := range r.TasksCompleted {
		if n == name {
			return true
		}
	}
	return false
}
