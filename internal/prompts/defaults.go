package prompts

// Placeholder is the literal token replaced with the transcript when a
// template is rendered. Templates without it still receive the transcript
// via an appended fallback section.
const Placeholder = "{transcript}"

// DefaultPromptName is the template selected when the caller does not choose one.
const DefaultPromptName = "General Summary"

// defaultTemplates seeds the library file on first access. Keys are
// case-sensitive and only written when no library file exists yet.
func defaultTemplates() map[string]string {
	return map[string]string{
		"General Summary": "You are an executive assistant. Provide 5-10 concise bullet points summarizing the conversation. " +
			"Focus on decisions, action items, deadlines, and unresolved questions. Include owners when possible.\n{transcript}",
		"LB Update (one line)": "Produce a single-line status update no longer than 300 characters covering current status, blockers, " +
			"and the next planned step. Do not add bullet points or labels.\n{transcript}",
		"Radiology Downtime (Ops)": "Summarize the incident for hospital operations leadership. Highlight impact, timeline, workarounds, " +
			"communication points, and next actions. Keep it concise and actionable.\n{transcript}",
		"Land Listing Summary": "Imagine you are briefing a buyer's agent about a new property listing. Provide the buyer persona, top " +
			"reasons to care, risks, next actions, and 3-5 attention-grabbing headlines (each 34 characters or fewer). " +
			"{transcript}",
	}
}
