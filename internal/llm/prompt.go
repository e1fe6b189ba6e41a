package llm

import (
	"fmt"
	"strings"

	"github.com/calshare/calshare/constants"
)

const (
	defaultMaxTextChars = 10000
	ocrTextCap          = 5000
)

// BuildSystemPrompt composes the deterministic extraction instruction: the
// required output shape, date handling, and the category taxonomy.
func BuildSystemPrompt(currentYear int) string {
	cats := strings.Join(constants.AsStringSlice(), ", ")

	parts := []string{
		"You are a calendar event extraction expert. Your job is to extract calendar events from any format of input - text, OCR output, schedules, etc.",
		"For each event you find, extract:",
		"- title: The name/title of the event",
		fmt.Sprintf("- start_time: Start date and time in ISO format (YYYY-MM-DDTHH:MM:SS). If no year specified, assume %d or %d (whichever makes more sense for future events)", currentYear, currentYear+1),
		"- end_time: End date and time in ISO format. If not specified, assume 1 hour after start for timed events, or end of day for all-day events",
		"- location: Where the event takes place (if mentioned)",
		"- description: Any additional details about the event",
		"- category: Categorize as one of: " + cats,
		"- all_day: true if it's an all-day event, false otherwise",
		"",
		"IMPORTANT RULES:",
		"1. Be thorough - extract ALL events you can find",
		"2. If times are ambiguous (like \"9am\"), make reasonable assumptions",
		"3. If dates use formats like \"12/1\" or \"Dec 1\", parse them correctly",
		"4. For recurring patterns (e.g., \"every Tuesday\"), list each individual occurrence if dates are given",
		"5. Return ONLY valid JSON array, no other text",
		"6. If you cannot find any events, return an empty array []",
	}
	return strings.Join(parts, "\n")
}

// BuildUserPrompt packages the extracted text for the model. When an image
// is attached, the OCR text rides along as a secondary signal with a
// tighter cap, matching how much low-confidence OCR is actually worth.
func BuildUserPrompt(req StructureRequest, imageAttached bool) string {
	label := strings.TrimSpace(req.SourceLabel)
	if label == "" {
		label = "document"
	}
	limit := req.MaxTextChars
	if limit <= 0 {
		limit = defaultMaxTextChars
	}

	var b strings.Builder
	if imageAttached {
		b.WriteString("Extract all calendar events from this image. The image appears to be a ")
		b.WriteString(label)
		b.WriteString(". Also consider this OCR text that was extracted: ")
		ocr := strings.TrimSpace(req.Text)
		if ocr == "" {
			b.WriteString("No OCR text available")
		} else {
			b.WriteString(capText(ocr, min(limit, ocrTextCap)))
		}
		return b.String()
	}

	b.WriteString("Extract all calendar events from the following ")
	b.WriteString(label)
	b.WriteString(" content:\n\n")
	b.WriteString(capText(req.Text, limit))
	return b.String()
}

func capText(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
