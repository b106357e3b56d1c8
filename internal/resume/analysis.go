// Package resume holds the resume-analysis domain: the ATS analysis
// prompt, parsing of the model's structured response, and the mapping
// between analyses and their stored document shape.
package resume

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/udaykumar0515/speakup-gateway/internal/codec"
	"github.com/udaykumar0515/speakup-gateway/internal/domain"
)

// Collection is the document-store collection for analysis results.
const Collection = "resume_results"

// Generation parameters for the analysis call. Analysis runs on the
// configured analysis model at low temperature so scores stay stable
// across runs.
const (
	AnalysisTemperature = 0.3
	AnalysisMaxTokens   = 2500
)

// ParsedData is the structured candidate profile the model extracts.
type ParsedData struct {
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone"`
	Skills         []string `json:"skills"`
	Experience     string   `json:"experience"`
	Education      string   `json:"education"`
	Certifications []string `json:"certifications"`
	Summary        string   `json:"summary"`
}

// Analysis is one scored resume analysis.
type Analysis struct {
	ID          string     `json:"id"`
	FullText    string     `json:"fullText"`
	ParsedData  ParsedData `json:"parsedData"`
	ATSScore    int        `json:"atsScore"`
	Suggestions []string   `json:"suggestions"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// AnalysisPrompt builds the ATS analysis prompt for the extracted
// resume text.
func AnalysisPrompt(resumeText string) string {
	return fmt.Sprintf(`You are an expert ATS (Applicant Tracking System) and professional HR recruiter analyzing a resume.

RESUME TEXT:
%s

TASK: Provide a comprehensive analysis of this resume. Respond in VALID JSON format with these exact keys:

{
  "parsedData": {
    "name": "Full name of candidate",
    "email": "Email address or 'Not found'",
    "phone": "Phone number or 'Not found'",
    "skills": ["list", "of", "all", "technical", "and", "soft", "skills"],
    "experience": "Brief summary of work experience (2-3 sentences highlighting key roles and achievements)",
    "education": "Education details (degrees, institutions, years)",
    "certifications": ["list", "of", "certifications"] or [],
    "summary": "Professional summary/objective if present, otherwise generate a compelling 2-3 line summary based on their background"
  },
  "atsScore": <number between 0-100>,
  "suggestions": ["list", "of", "5-8", "actionable", "improvement", "suggestions"]
}

SCORING CRITERIA (0-100):
- Contact info completeness (15 pts)
- Number and relevance of skills (20 pts)
- Experience detail and quantification (25 pts)
- Education clarity (15 pts)
- Use of action verbs and keywords (15 pts)
- Quantifiable achievements (numbers, percentages) (10 pts)

SUGGESTION GUIDELINES:
- Be specific and actionable
- Focus on ATS optimization
- Include formatting, keyword, and content improvements
- Prioritize high-impact changes
- Use emojis for better readability (✅, 💡, 📊, etc.)

Respond ONLY with valid JSON.`, resumeText)
}

// ParseAnalysis decodes the model's analysis response. The resume text
// the analysis was built from is attached as FullText.
func ParseAnalysis(output, resumeText string) (*Analysis, error) {
	cleaned := codec.CleanFences(output)

	var analysis Analysis
	if err := json.Unmarshal([]byte(cleaned), &analysis); err != nil {
		return nil, fmt.Errorf("parsing analysis response: %w", err)
	}

	if analysis.ATSScore < 0 || analysis.ATSScore > 100 {
		return nil, fmt.Errorf("analysis score %d out of range", analysis.ATSScore)
	}

	analysis.FullText = resumeText
	return &analysis, nil
}

// Fields renders an analysis as document-store fields owned by userID.
func Fields(a *Analysis, userID string) map[string]any {
	return map[string]any{
		"id":       a.ID,
		"userId":   userID,
		"fullText": a.FullText,
		"parsedData": map[string]any{
			"name":           a.ParsedData.Name,
			"email":          a.ParsedData.Email,
			"phone":          a.ParsedData.Phone,
			"skills":         a.ParsedData.Skills,
			"experience":     a.ParsedData.Experience,
			"education":      a.ParsedData.Education,
			"certifications": a.ParsedData.Certifications,
			"summary":        a.ParsedData.Summary,
		},
		"atsScore":    a.ATSScore,
		"suggestions": a.Suggestions,
		"createdAt":   a.CreatedAt,
	}
}

// FromStored rebuilds an analysis from a stored document. Documents
// written by older deployments may miss fields; missing values decode
// to zero values rather than failing history reads.
func FromStored(doc domain.StoredDocument) *Analysis {
	a := &Analysis{ID: doc.ID}

	if id, ok := doc.Fields["id"].(string); ok && id != "" {
		a.ID = id
	}
	if text, ok := doc.Fields["fullText"].(string); ok {
		a.FullText = text
	}
	if score, ok := doc.Fields["atsScore"].(int64); ok {
		a.ATSScore = int(score)
	}
	if created, ok := doc.Fields["createdAt"].(time.Time); ok {
		a.CreatedAt = created
	}
	a.Suggestions = stringSlice(doc.Fields["suggestions"])

	if parsed, ok := doc.Fields["parsedData"].(map[string]any); ok {
		a.ParsedData = ParsedData{
			Name:           stringField(parsed, "name"),
			Email:          stringField(parsed, "email"),
			Phone:          stringField(parsed, "phone"),
			Skills:         stringSlice(parsed["skills"]),
			Experience:     stringField(parsed, "experience"),
			Education:      stringField(parsed, "education"),
			Certifications: stringSlice(parsed["certifications"]),
			Summary:        stringField(parsed, "summary"),
		}
	}

	return a
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func stringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
