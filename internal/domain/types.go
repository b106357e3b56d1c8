package domain

// ProviderTag identifies the role a provider plays in the gateway.
// Exactly one credential is active per tag for the process lifetime.
type ProviderTag string

const (
	// TagIdentity is the identity provider (ID token verification).
	TagIdentity ProviderTag = "identity"

	// TagExtraction is the document-extraction provider (OCR).
	TagExtraction ProviderTag = "extraction"

	// TagGeneration is the text-generation provider.
	TagGeneration ProviderTag = "generation"

	// TagStore is the document-store provider.
	TagStore ProviderTag = "store"
)

// Capability names a unit of work. Gateway capabilities are what clients
// request over HTTP; provider capabilities are what adapters implement.
type Capability string

// Gateway-facing capabilities.
const (
	CapExtractResume     Capability = "extract-resume"
	CapAnalyzeResume     Capability = "analyze-resume"
	CapResumeHistory     Capability = "resume-history"
	CapGenerateFeedback  Capability = "generate-feedback"
	CapAptitudeQuestions Capability = "aptitude-questions"
	CapSubmitAptitude    Capability = "submit-aptitude"
	CapAptitudeHistory   Capability = "aptitude-history"
)

// Provider-facing capabilities.
const (
	CapVerifyToken     Capability = "verify-token"
	CapProcessDocument Capability = "process-document"
	CapGenerateText    Capability = "generate-text"
	CapStoreDocument   Capability = "store-document"
	CapQueryDocuments  Capability = "query-documents"
)

// Invocation is the superset of all adapter inputs. Each adapter reads the
// fields its capability needs and ignores the rest.
type Invocation struct {
	Capability Capability

	// Token carries the client identity token for verify-token.
	Token string

	// Document carries raw bytes for process-document.
	Document *DocumentPayload

	// Prompt carries generation parameters for generate-text.
	Prompt *PromptPayload

	// Write carries a document to persist for store-document.
	Write *WritePayload

	// Query selects stored documents for query-documents.
	Query *QueryPayload
}

// DocumentPayload is a raw document handed to the extraction provider.
type DocumentPayload struct {
	Content  []byte
	MIMEType string
}

// PromptPayload is a text-generation request.
type PromptPayload struct {
	Prompt      string
	Model       string
	Temperature float32
	MaxTokens   int32
	// JSONMode asks the model for a bare JSON response and enables
	// markdown-fence cleanup on the way back.
	JSONMode bool
}

// WritePayload is a document to persist.
type WritePayload struct {
	Collection string
	ID         string
	Fields     map[string]any
}

// QueryPayload selects documents owned by one user from a collection.
type QueryPayload struct {
	Collection string
	UserID     string
	Limit      int
}

// Result is the superset of all adapter outputs, mirroring Invocation.
type Result struct {
	// Text is extracted or generated text.
	Text string

	// Identity is set by verify-token.
	Identity *Identity

	// Name is the resource name of a stored document.
	Name string

	// Documents are query results, newest first.
	Documents []StoredDocument
}

// Identity is a verified caller.
type Identity struct {
	UserID string
	Email  string
}

// StoredDocument is one document returned by the store provider.
type StoredDocument struct {
	ID     string
	Fields map[string]any
}
