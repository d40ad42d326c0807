package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/genai"

	"github.com/salpyeo/dream/pkg/schedule"
)

// Gemini implements Planner with GenerateContent. Extract asks for JSON
// output constrained by a response schema.
type Gemini struct {
	Client *genai.Client

	// Model should not start with "models/".
	Model string
}

var _ Planner = (*Gemini)(nil)

func (p *Gemini) MentionsSchedule(ctx context.Context, text string) (bool, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(ClassifyPrompt(), genai.RoleUser),
	}
	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleModel)}
	out, err := p.generate(ctx, contents, cfg)
	if err != nil {
		return false, err
	}
	return ParseMention(out), nil
}

func (p *Gemini) Extract(ctx context.Context, req Request) ([]schedule.Item, error) {
	inputs, err := ExtractInputs(req)
	if err != nil {
		return nil, err
	}
	schema, err := itemListSchema()
	if err != nil {
		return nil, fmt.Errorf("planner: schema: %w", err)
	}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(ExtractPrompt(req.Now), genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    geminiSchema(schema),
	}
	parts := make([]*genai.Part, 0, len(inputs))
	for _, in := range inputs {
		parts = append(parts, genai.NewPartFromText(in))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	out, err := p.generate(ctx, contents, cfg)
	if err != nil {
		return nil, err
	}
	return ParseItems(out)
}

func (p *Gemini) generate(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error) {
	resp, err := p.Client.Models.GenerateContent(ctx, p.Model, contents, cfg)
	if err != nil {
		var apiErr *apierror.APIError
		if errors.As(err, &apiErr) {
			err = apiErr.Unwrap()
		}
		return "", fmt.Errorf("planner: gemini: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("planner: gemini: no candidates")
	}
	c := resp.Candidates[0]
	if c.FinishReason != "" && c.FinishReason != genai.FinishReasonStop {
		return "", fmt.Errorf("planner: gemini: unexpected finish reason: %s", c.FinishReason)
	}
	if c.Content == nil {
		return "", ErrNoOutput
	}
	var sb strings.Builder
	for _, part := range c.Content.Parts {
		sb.WriteString(part.Text)
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", ErrNoOutput
	}
	return out, nil
}

// geminiSchema converts a JSON schema into the subset genai understands.
func geminiSchema(s *jsonschema.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	gs := &genai.Schema{
		Description: s.Description,
		Format:      s.Format,
		Items:       geminiSchema(s.Items),
		Required:    s.Required,
	}
	typ := s.Type
	for _, t := range s.Types {
		switch {
		case t == "null":
			gs.Nullable = genai.Ptr(true)
		case typ == "":
			typ = t
		}
	}
	switch typ {
	case "object":
		gs.Type = genai.TypeObject
	case "array":
		gs.Type = genai.TypeArray
	case "string":
		gs.Type = genai.TypeString
	case "number":
		gs.Type = genai.TypeNumber
	case "integer":
		gs.Type = genai.TypeInteger
	case "boolean":
		gs.Type = genai.TypeBoolean
	}
	if len(s.Properties) > 0 {
		gs.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			gs.Properties[name] = geminiSchema(prop)
		}
	}
	return gs
}
