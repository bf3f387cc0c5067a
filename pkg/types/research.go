// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the CRE research
// aggregator: normalized evidence records, session progress state,
// synthesized responses, and per-stage configuration.
package types

// RecordKind classifies a ResearchRecord by the class of source that
// produced it. The citation formatter varies its rendering by kind.
type RecordKind string

const (
	KindAcademicPaper     RecordKind = "academic_paper"
	KindMarketReport      RecordKind = "market_report"
	KindWebContent        RecordKind = "web_content"
	KindCertificationData RecordKind = "certification_data"
	KindNewsArticle       RecordKind = "news_article"
	KindEconomicData      RecordKind = "economic_data"
)

// ResearchRecord is one normalized unit of evidence returned by a
// source adapter. Every provider payload is reduced to this shape
// before aggregation and synthesis.
type ResearchRecord struct {
	// Title is the record title as returned by the provider.
	Title string `json:"title" yaml:"title"`

	// Authors is a free-text author string; empty when unknown.
	Authors string `json:"authors" yaml:"authors"`

	// Date is a display-formatted date string, not necessarily ISO.
	Date string `json:"date" yaml:"date"`

	// Source is the provider display name (e.g. "OpenAlex", "FRED").
	Source string `json:"source" yaml:"source"`

	// Link is the record URL, or "#" when the provider has none.
	Link string `json:"link" yaml:"link"`

	// Summary is free text, truncated by the adapter that produced it.
	Summary string `json:"summary" yaml:"summary"`

	// Kind classifies the record for citation formatting.
	Kind RecordKind `json:"kind" yaml:"kind"`
}

// Category is the topic label assigned to a query by the categorizer.
type Category string

const (
	CategorySustainability Category = "sustainability"
	CategoryLeasing        Category = "leasing"
	CategoryMarket         Category = "market"
	CategoryGeneral        Category = "general"
)

// Citation is one entry of the positional citation list attached to a
// synthesized response. Entry N corresponds to bracket citation [N+1]
// in the response text.
type Citation struct {
	Title   string `json:"title" yaml:"title"`
	Authors string `json:"authors" yaml:"authors"`
	Source  string `json:"source" yaml:"source"`
	Link    string `json:"link" yaml:"link"`
	Date    string `json:"date" yaml:"date"`
}

// SynthesizedResponse is the output of the synthesis pipeline: a
// markdown narrative with inline bracket citations plus the citation
// list aligned by position with the records given to synthesis.
type SynthesizedResponse struct {
	Response  string     `json:"response" yaml:"response"`
	Citations []Citation `json:"citations" yaml:"citations"`
}

// SourceDocumentAnalysis labels the record carrying supplied document
// context through the aggregated record sequence. Records with this
// source ride along for synthesis and reporting but are never cited.
const SourceDocumentAnalysis = "Document Analysis"

// DocumentContext is the shape produced by the document-analysis
// collaborator from extracted document text. The core only consumes
// this struct; it never parses file formats itself.
type DocumentContext struct {
	Summary   string   `json:"summary" yaml:"summary"`
	Topics    []string `json:"topics" yaml:"topics"`
	WordCount int      `json:"word_count" yaml:"word_count"`
}
