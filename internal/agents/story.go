package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/spectrumbridge/bridge/internal/interfaces"
	"github.com/spectrumbridge/bridge/internal/models"
)

const (
	defaultChildName    = "friend"
	defaultReadingLevel = "grade_2"
)

const storySystemPrompt = "You are an expert in creating social stories for autistic children following Carol Gray's framework. Write clear, positive, helpful stories."

const storyGuidelines = `SOCIAL STORY FRAMEWORK (Carol Gray):
1. Descriptive sentences: what happens, where, when, who
2. Perspective sentences: how others feel or think
3. Directive sentences: what the child should do
4. Affirmative sentences: reassurance and positive outcomes

RULES:
- Use first person ("I") or third person for the child
- Present or future tense
- Positive, reassuring tone
- 5-10 sentences total
- Clear, literal language
- Include what to expect and how to respond`

const storyPromptTemplate = `Create a social story about: %s

Child's name: %s
Reading level: %s

%s

Language: %s

Write a complete social story with:
1. A clear title
2. 5-10 sentences following the framework above
3. Positive, reassuring tone
4. Practical guidance

Format:
Title: [Clear, simple title]

[The story]

Respond with ONLY the title and story, no preamble.`

const customizePromptTemplate = `Customize this social story for a specific child:

Base Story:
%s

Customization:
- Child's name: %s
- Specific details: %s

Rewrite the story with these personalizations while keeping the same structure and tone.

Respond with ONLY the customized story:`

// readingLevelGuides maps a reading level to the sentence budget woven into
// the story prompt.
var readingLevelGuides = map[string]string{
	"grade_2": "Use very simple words (5-8 words per sentence)",
	"grade_4": "Use simple words (8-12 words per sentence)",
	"grade_6": "Use clear language (12-15 words per sentence)",
}

// StoryAgent produces social stories with Carol Gray's fixed narrative
// structure.
type StoryAgent struct {
	llm    interfaces.LLMService
	logger arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.StoryGenerator = (*StoryAgent)(nil)

// NewStoryAgent creates a story agent over the LLM provider.
func NewStoryAgent(llm interfaces.LLMService, logger arbor.ILogger) *StoryAgent {
	return &StoryAgent{
		llm:    llm,
		logger: logger,
	}
}

// GenerateStory writes a social story about a situation.
func (a *StoryAgent) GenerateStory(ctx context.Context, situation, childName, readingLevel string) *models.StoryResult {
	situation = strings.TrimSpace(situation)
	if childName = strings.TrimSpace(childName); childName == "" {
		childName = defaultChildName
	}
	if _, ok := readingLevelGuides[readingLevel]; !ok {
		readingLevel = defaultReadingLevel
	}

	result := &models.StoryResult{
		Situation:    situation,
		ChildName:    childName,
		ReadingLevel: readingLevel,
	}

	if situation == "" {
		result.Error = "situation cannot be empty"
		return result
	}

	prompt := fmt.Sprintf(storyPromptTemplate,
		situation, childName, readingLevel, storyGuidelines, readingLevelGuides[readingLevel])

	response, err := a.llm.Chat(ctx, []interfaces.Message{
		{Role: "system", Content: storySystemPrompt},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		a.logger.Warn().Err(err).Str("situation", situation).Msg("Story generation failed")
		result.Error = fmt.Sprintf("story generation failed: %v", err)
		return result
	}

	title, story := parseStoryResponse(response)
	if story == "" {
		result.Error = "model returned empty story"
		return result
	}
	if title == "" {
		title = fmt.Sprintf("A Story About %s", situation)
	}

	result.Success = true
	result.Title = title
	result.Story = story

	a.logger.Debug().
		Str("situation", situation).
		Str("title", title).
		Str("reading_level", readingLevel).
		Msg("Social story generated")

	return result
}

// CustomizeStory rewrites an existing story with a child's name and
// situation-specific details woven in.
func (a *StoryAgent) CustomizeStory(ctx context.Context, baseStory, childName, details string) *models.StoryResult {
	if childName = strings.TrimSpace(childName); childName == "" {
		childName = defaultChildName
	}
	if strings.TrimSpace(details) == "" {
		details = "none"
	}

	result := &models.StoryResult{
		ChildName:    childName,
		ReadingLevel: defaultReadingLevel,
	}

	if strings.TrimSpace(baseStory) == "" {
		result.Error = "base story cannot be empty"
		return result
	}

	prompt := fmt.Sprintf(customizePromptTemplate, baseStory, childName, details)

	response, err := a.llm.Chat(ctx, []interfaces.Message{
		{Role: "system", Content: "You customize social stories for autistic children. Keep the positive tone and structure."},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		result.Error = fmt.Sprintf("story customization failed: %v", err)
		return result
	}

	title, story := parseStoryResponse(response)
	if story == "" {
		result.Error = "model returned empty story"
		return result
	}

	result.Success = true
	result.Title = title
	result.Story = story
	return result
}

// CommonSituations lists the built-in situation catalog.
func (a *StoryAgent) CommonSituations() []models.SocialSituation {
	return SituationCatalog()
}

// parseStoryResponse splits a model response into an optional "Title:" line
// and the story body.
func parseStoryResponse(response string) (title, story string) {
	var storyLines []string
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "Title:"):
			title = strings.TrimSpace(strings.TrimPrefix(line, "Title:"))
		case line != "":
			storyLines = append(storyLines, line)
		}
	}
	return title, strings.TrimSpace(strings.Join(storyLines, "\n"))
}
