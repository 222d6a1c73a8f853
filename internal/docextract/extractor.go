package docextract

import (
	"context"
	"errors"
	"fmt"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"
)

// Extractor turns binary document content into plain text. Implementations
// wrap an external OCR service; callers stay transport-agnostic.
type Extractor interface {
	ExtractText(ctx context.Context, content []byte, mimeType string) (string, error)
	Close() error
}

// Options locates a Document AI processor.
type Options struct {
	ProjectID   string
	Location    string
	ProcessorID string
}

// NewDocAIExtractor connects to the Document AI processing endpoint for the
// configured location.
func NewDocAIExtractor(ctx context.Context, opts Options) (Extractor, error) {
	if opts.ProjectID == "" || opts.ProcessorID == "" {
		return nil, errors.New("project ID and processor ID are required")
	}
	if opts.Location == "" {
		opts.Location = "us"
	}

	client, err := documentai.NewDocumentProcessorClient(ctx,
		option.WithEndpoint(fmt.Sprintf("%s-documentai.googleapis.com:443", opts.Location)))
	if err != nil {
		return nil, fmt.Errorf("create document processor client: %w", err)
	}

	return &docAIExtractor{
		client: client,
		processorName: fmt.Sprintf("projects/%s/locations/%s/processors/%s",
			opts.ProjectID, opts.Location, opts.ProcessorID),
	}, nil
}

type docAIExtractor struct {
	client        *documentai.DocumentProcessorClient
	processorName string
}

func (e *docAIExtractor) ExtractText(ctx context.Context, content []byte, mimeType string) (string, error) {
	resp, err := e.client.ProcessDocument(ctx, &documentaipb.ProcessRequest{
		Name: e.processorName,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  content,
				MimeType: mimeType,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("process document: %w", err)
	}
	return resp.GetDocument().GetText(), nil
}

func (e *docAIExtractor) Close() error {
	return e.client.Close()
}
