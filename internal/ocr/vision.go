package ocr

import (
	"context"
	"encoding/base64"
	"fmt"

	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"
)

// featureDocumentText asks Vision for dense document OCR rather than sparse
// scene text, which is what printed checks need.
const featureDocumentText = "DOCUMENT_TEXT_DETECTION"

// VisionProvider recognizes check images through the Google Vision API.
type VisionProvider struct {
	service *vision.Service
}

var _ Provider = (*VisionProvider)(nil)

// NewVisionProvider creates a Vision-backed OCR provider using ambient
// credentials unless overridden by opts.
func NewVisionProvider(ctx context.Context, opts ...option.ClientOption) (*VisionProvider, error) {
	service, err := vision.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewVisionProvider: create service: %w", err)
	}
	return &VisionProvider{service: service}, nil
}

// Recognize runs document text detection on one image and maps the response
// into the provider-neutral document model. An image with no recognizable
// text yields an empty document, not an error.
func (p *VisionProvider) Recognize(ctx context.Context, image []byte) (Document, error) {
	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{
			{
				Image:    &vision.Image{Content: base64.StdEncoding.EncodeToString(image)},
				Features: []*vision.Feature{{Type: featureDocumentText}},
			},
		},
	}

	resp, err := p.service.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		return Document{}, fmt.Errorf("Recognize: annotate: %w", err)
	}
	if len(resp.Responses) == 0 {
		return Document{}, fmt.Errorf("Recognize: empty annotate response")
	}
	r := resp.Responses[0]
	if r.Error != nil {
		return Document{}, fmt.Errorf("Recognize: vision: %s", r.Error.Message)
	}

	doc := Document{}
	if r.FullTextAnnotation != nil {
		doc.FullText = r.FullTextAnnotation.Text
	}
	for _, ann := range r.TextAnnotations {
		token := Token{Text: ann.Description}
		if ann.BoundingPoly != nil {
			for _, v := range ann.BoundingPoly.Vertices {
				token.Vertices = append(token.Vertices, Vertex{X: int(v.X), Y: int(v.Y)})
			}
		}
		doc.Tokens = append(doc.Tokens, token)
	}
	return doc, nil
}
