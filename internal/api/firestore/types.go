package firestore

// Document is one Firestore document on the wire. Name is the full resource
// path; the trailing segment is the document ID.
type Document struct {
	Name       string           `json:"name,omitempty"`
	Fields     map[string]Value `json:"fields"`
	CreateTime string           `json:"createTime,omitempty"`
	UpdateTime string           `json:"updateTime,omitempty"`
}

// RunQueryRequest wraps a structured query for documents:runQuery.
type RunQueryRequest struct {
	StructuredQuery *StructuredQuery `json:"structuredQuery"`
}

// StructuredQuery selects documents from one collection.
type StructuredQuery struct {
	From    []CollectionSelector `json:"from"`
	Where   *Filter              `json:"where,omitempty"`
	OrderBy []Order              `json:"orderBy,omitempty"`
	Limit   int                  `json:"limit,omitempty"`
}

// CollectionSelector names the collection to query.
type CollectionSelector struct {
	CollectionID string `json:"collectionId"`
}

// Filter restricts query results. Only field filters are used here.
type Filter struct {
	FieldFilter *FieldFilter `json:"fieldFilter,omitempty"`
}

// FieldFilter compares one field against a value.
type FieldFilter struct {
	Field FieldReference `json:"field"`
	Op    string         `json:"op"`
	Value Value          `json:"value"`
}

// FieldReference names a document field.
type FieldReference struct {
	FieldPath string `json:"fieldPath"`
}

// Order sorts query results.
type Order struct {
	Field     FieldReference `json:"field"`
	Direction string         `json:"direction"`
}

// Comparison operators and sort directions used by the gateway's queries.
const (
	OpEqual       = "EQUAL"
	DirectionAsc  = "ASCENDING"
	DirectionDesc = "DESCENDING"
)

// RunQueryResult is one element of the runQuery response array. Elements
// without a document carry only a read time and are skipped.
type RunQueryResult struct {
	Document *Document `json:"document,omitempty"`
	ReadTime string    `json:"readTime,omitempty"`
}
