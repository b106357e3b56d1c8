package gateway

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/udaykumar0515/speakup-gateway/internal/domain"
	"github.com/udaykumar0515/speakup-gateway/internal/extract"
	"github.com/udaykumar0515/speakup-gateway/internal/resume"
)

// Extraction sources reported to clients.
const (
	SourceLocal      = "local"
	SourceDocumentAI = "documentai"
)

// ExtractedResume is the extract-resume result.
type ExtractedResume struct {
	Text       string `json:"text"`
	Source     string `json:"source"`
	Characters int    `json:"characters"`
}

// ExtractResume pulls plain text out of an uploaded resume. Local
// extraction runs first; documents that come back too thin to be a real
// resume go through the extraction provider's OCR instead.
func (s *Service) ExtractResume(ctx context.Context, token string, doc *domain.DocumentPayload) (*ExtractedResume, error) {
	req := s.begin(domain.CapExtractResume)

	out, fault := s.extractResume(ctx, req, token, doc)
	s.settle(ctx, req, fault)
	if fault != nil {
		return nil, fault
	}
	return out, nil
}

func (s *Service) extractResume(ctx context.Context, req *domain.GatewayRequest, token string, doc *domain.DocumentPayload) (*ExtractedResume, *domain.Fault) {
	if fault := validateDocument(doc); fault != nil {
		return nil, fault
	}
	if fault := s.authenticate(ctx, req, token); fault != nil {
		return nil, fault
	}
	if err := req.Advance(domain.StateDispatching); err != nil {
		return nil, domain.AsFault(err)
	}

	text, source, fault := s.extractText(ctx, req, doc)
	if fault != nil {
		return nil, fault
	}

	if err := req.Advance(domain.StateAggregating); err != nil {
		return nil, domain.AsFault(err)
	}
	return &ExtractedResume{
		Text:       text,
		Source:     source,
		Characters: utf8.RuneCountInString(text),
	}, nil
}

// AnalyzeResume extracts the uploaded resume, scores it through the
// generation provider, and persists the result for the caller's history.
func (s *Service) AnalyzeResume(ctx context.Context, token string, doc *domain.DocumentPayload) (*resume.Analysis, error) {
	req := s.begin(domain.CapAnalyzeResume)

	out, fault := s.analyzeResume(ctx, req, token, doc)
	s.settle(ctx, req, fault)
	if fault != nil {
		return nil, fault
	}
	return out, nil
}

func (s *Service) analyzeResume(ctx context.Context, req *domain.GatewayRequest, token string, doc *domain.DocumentPayload) (*resume.Analysis, *domain.Fault) {
	if fault := validateDocument(doc); fault != nil {
		return nil, fault
	}
	if fault := s.authenticate(ctx, req, token); fault != nil {
		return nil, fault
	}
	if err := req.Advance(domain.StateDispatching); err != nil {
		return nil, domain.AsFault(err)
	}

	text, _, fault := s.extractText(ctx, req, doc)
	if fault != nil {
		return nil, fault
	}

	prompt := resume.AnalysisPrompt(text)
	if fault := s.checkPromptBudget(s.models.Analysis, prompt); fault != nil {
		return nil, fault
	}

	res, err := s.invoke(ctx, req, domain.TagGeneration, &domain.Invocation{
		Capability: domain.CapGenerateText,
		Prompt: &domain.PromptPayload{
			Prompt:      prompt,
			Model:       s.models.Analysis,
			Temperature: resume.AnalysisTemperature,
			MaxTokens:   resume.AnalysisMaxTokens,
			JSONMode:    true,
		},
	})
	if err != nil {
		return nil, domain.AsFault(err)
	}

	analysis, perr := resume.ParseAnalysis(res.Text, text)
	if perr != nil {
		s.logger.Warn("analysis response unparseable",
			slog.String("request_id", req.ID),
			slog.String("error", perr.Error()),
		)
		return nil, domain.ErrProviderUnavailable("analysis response was malformed").WithProvider(domain.TagGeneration)
	}
	analysis.ID = req.ID
	analysis.CreatedAt = time.Now().UTC()

	if _, err := s.invoke(ctx, req, domain.TagStore, &domain.Invocation{
		Capability: domain.CapStoreDocument,
		Write: &domain.WritePayload{
			Collection: resume.Collection,
			ID:         analysis.ID,
			Fields:     resume.Fields(analysis, req.UserID),
		},
	}); err != nil {
		return nil, domain.AsFault(err)
	}

	if err := req.Advance(domain.StateAggregating); err != nil {
		return nil, domain.AsFault(err)
	}
	return analysis, nil
}

// ResumeHistory returns the caller's prior analyses, newest first.
func (s *Service) ResumeHistory(ctx context.Context, token string, limit int) ([]*resume.Analysis, error) {
	req := s.begin(domain.CapResumeHistory)

	out, fault := s.resumeHistory(ctx, req, token, limit)
	s.settle(ctx, req, fault)
	if fault != nil {
		return nil, fault
	}
	return out, nil
}

func (s *Service) resumeHistory(ctx context.Context, req *domain.GatewayRequest, token string, limit int) ([]*resume.Analysis, *domain.Fault) {
	if fault := s.authenticate(ctx, req, token); fault != nil {
		return nil, fault
	}
	if err := req.Advance(domain.StateDispatching); err != nil {
		return nil, domain.AsFault(err)
	}

	res, err := s.invoke(ctx, req, domain.TagStore, &domain.Invocation{
		Capability: domain.CapQueryDocuments,
		Query: &domain.QueryPayload{
			Collection: resume.Collection,
			UserID:     req.UserID,
			Limit:      limit,
		},
	})
	if err != nil {
		return nil, domain.AsFault(err)
	}

	if err := req.Advance(domain.StateAggregating); err != nil {
		return nil, domain.AsFault(err)
	}
	results := make([]*resume.Analysis, 0, len(res.Documents))
	for _, doc := range res.Documents {
		results = append(results, resume.FromStored(doc))
	}
	return results, nil
}

// validateDocument rejects malformed uploads before any provider call.
func validateDocument(doc *domain.DocumentPayload) *domain.Fault {
	if doc == nil || len(doc.Content) == 0 {
		return domain.ErrInvalidInput("document payload is empty")
	}
	if !extract.Supported(doc.MIMEType) {
		return domain.ErrInvalidInput("unsupported file type: " + doc.MIMEType)
	}
	return nil
}

// extractText runs local extraction and falls back to the extraction
// provider when the local pass is too thin. Only PDFs take the fallback;
// the extraction provider does not accept word-processor or plain-text
// payloads, so for those whatever local text exists is the answer.
func (s *Service) extractText(ctx context.Context, req *domain.GatewayRequest, doc *domain.DocumentPayload) (string, string, *domain.Fault) {
	local, err := extract.Text(doc.Content, doc.MIMEType)
	if err != nil {
		s.logger.Warn("local extraction failed",
			slog.String("request_id", req.ID),
			slog.String("mime_type", doc.MIMEType),
			slog.String("error", err.Error()),
		)
		local = ""
	}
	local = strings.TrimSpace(local)

	if extract.Sufficient(local) {
		return local, SourceLocal, nil
	}

	if doc.MIMEType != extract.MIMEPDF {
		if local == "" {
			return "", "", domain.ErrInvalidInput("no readable text in document")
		}
		return local, SourceLocal, nil
	}

	res, ierr := s.invoke(ctx, req, domain.TagExtraction, &domain.Invocation{
		Capability: domain.CapProcessDocument,
		Document:   doc,
	})
	if ierr != nil {
		return "", "", domain.AsFault(ierr)
	}

	text := strings.TrimSpace(res.Text)
	if text == "" {
		return "", "", domain.ErrInvalidInput("no readable text in document")
	}
	return text, SourceDocumentAI, nil
}
