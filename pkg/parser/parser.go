// Package parser declares the boundary to document-to-markdown conversion.
// Parsers are external collaborators: the extraction engine consumes their
// output purely as a source of document strings and knows nothing about how
// pages were rendered.
package parser

import (
	"context"
	"errors"
)

// Parser converts a source document into markdown chunks, one per page or a
// single merged chunk.
type Parser interface {
	Parse(ctx context.Context, input Input, options *ParseOptions) (*Document, error)
}

var (
	ErrUnsupported = errors.New("unsupported document type")
)

type Input struct {
	Path string

	Content     []byte
	ContentType string
}

type ParseOptions struct {
	// Instruction customizes how the parser renders content, for parsers
	// that accept one.
	Instruction string

	// Cleanup asks the parser to strip rendering artifacts before
	// returning.
	Cleanup bool
}

type Document struct {
	Pages []Page
}

type Page struct {
	Index int

	Markdown string
}

// Texts returns the page contents in order, ready to feed into an
// extraction batch.
func (d *Document) Texts() []string {
	texts := make([]string, len(d.Pages))

	for i, page := range d.Pages {
		texts[i] = page.Markdown
	}

	return texts
}
