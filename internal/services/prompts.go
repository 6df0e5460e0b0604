package services

// LLM Prompt Constants for incident summarization

const (
	// SUMMARY_SYSTEM_PROMPT frames the model as a care-home incident reviewer
	SUMMARY_SYSTEM_PROMPT = `You are a healthcare professional helping to summarize incident reports at a senior care facility. Keep summaries concise, professional, and focused on key facts and potential follow-up actions.`

	// SUMMARY_USER_PROMPT takes the incident type and the trimmed description
	SUMMARY_USER_PROMPT = `Please provide a brief, professional summary of this %s incident at a senior care facility. Focus on key details and any actions that may be needed:

%s`

	// SUMMARY_COMBINED_PROMPT is used by providers without a separate system role
	SUMMARY_COMBINED_PROMPT = SUMMARY_SYSTEM_PROMPT + `

` + SUMMARY_USER_PROMPT
)
