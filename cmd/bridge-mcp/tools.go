package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createSearchKnowledgeTool returns the search_autism_knowledge tool definition
func createSearchKnowledgeTool() mcp.Tool {
	return mcp.NewTool("search_autism_knowledge",
		mcp.WithDescription("Search the autism education knowledge base for passages relevant to a query"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query, e.g. 'sensory overload strategies'"),
		),
		mcp.WithNumber("top_k",
			mcp.Description("Number of passages to return (default: 5, max: 50)"),
		),
	)
}

// createSimplifyContentTool returns the simplify_content tool definition
func createSimplifyContentTool() mcp.Tool {
	return mcp.NewTool("simplify_content",
		mcp.WithDescription("Rewrite text at a grade-2 reading level with readability metrics"),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Text to simplify"),
		),
	)
}

// createGenerateStoryTool returns the generate_social_story tool definition
func createGenerateStoryTool() mcp.Tool {
	return mcp.NewTool("generate_social_story",
		mcp.WithDescription("Generate a social story that walks a child through a situation step by step"),
		mcp.WithString("situation",
			mcp.Required(),
			mcp.Description("The situation the story covers, e.g. 'going to the dentist'"),
		),
		mcp.WithString("child_name",
			mcp.Description("Child's name woven into the story (default: 'friend')"),
		),
		mcp.WithString("reading_level",
			mcp.Description("Target reading level: grade_1, grade_2, or grade_3 (default: grade_2)"),
		),
	)
}

// createGenerateImageTool returns the generate_educational_image tool definition
func createGenerateImageTool() mcp.Tool {
	return mcp.NewTool("generate_educational_image",
		mcp.WithDescription("Render one educational illustration as a PNG. Generation is synchronous and can take tens of seconds"),
		mcp.WithString("prompt",
			mcp.Required(),
			mcp.Description("Description of the illustration"),
		),
	)
}

// createAnswerQuestionTool returns the answer_question tool definition
func createAnswerQuestionTool() mcp.Tool {
	return mcp.NewTool("answer_question",
		mcp.WithDescription("Answer a question grounded in the autism education knowledge base, with sources"),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The question to answer"),
		),
		mcp.WithNumber("top_k",
			mcp.Description("Number of passages used as grounding context (default: 5)"),
		),
	)
}

// createFullReportTool returns the create_full_report tool definition
func createFullReportTool() mcp.Tool {
	return mcp.NewTool("create_full_report",
		mcp.WithDescription("Run the full multi-agent pipeline for a question and render the result as a PDF report"),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The question driving the pipeline"),
		),
		mcp.WithString("child_name",
			mcp.Description("Child's name used in the social story"),
		),
		mcp.WithBoolean("include_story",
			mcp.Description("Generate a social story (default: true)"),
		),
		mcp.WithBoolean("include_image",
			mcp.Description("Generate an illustration (default: true)"),
		),
	)
}
