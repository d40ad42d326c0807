package planner

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/param"

	"github.com/salpyeo/dream/pkg/schedule"
)

const finishReasonStop = "stop"

// OpenAI implements Planner with chat completions. Extract uses a strict
// JSON schema response format.
type OpenAI struct {
	Client *openai.Client
	Model  string
}

var _ Planner = (*OpenAI)(nil)

func (p *OpenAI) MentionsSchedule(ctx context.Context, text string) (bool, error) {
	content, err := p.complete(ctx, openai.ChatCompletionNewParams{
		Model: p.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(ClassifyPrompt()),
			openai.AssistantMessage(text),
		},
	})
	if err != nil {
		return false, err
	}
	return ParseMention(content), nil
}

func (p *OpenAI) Extract(ctx context.Context, req Request) ([]schedule.Item, error) {
	inputs, err := ExtractInputs(req)
	if err != nil {
		return nil, err
	}
	schema, err := itemListSchema()
	if err != nil {
		return nil, fmt.Errorf("planner: schema: %w", err)
	}
	msgs := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(ExtractPrompt(req.Now)),
	}
	for _, in := range inputs {
		msgs = append(msgs, openai.UserMessage(in))
	}
	content, err := p.complete(ctx, openai.ChatCompletionNewParams{
		Model:    p.Model,
		Messages: msgs,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        "schedules",
					Description: param.NewOpt("Schedules found in the conversation"),
					Schema:      schema,
					Strict:      param.NewOpt(true),
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}
	return ParseItems(content)
}

func (p *OpenAI) complete(ctx context.Context, params openai.ChatCompletionNewParams) (string, error) {
	resp, err := p.Client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("planner: openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("planner: openai: no choices")
	}
	choice := resp.Choices[0]
	if choice.Message.Refusal != "" {
		return "", fmt.Errorf("planner: openai: blocked: %s", choice.Message.Refusal)
	}
	if choice.FinishReason != "" && choice.FinishReason != finishReasonStop {
		return "", fmt.Errorf("planner: openai: unexpected finish reason: %s", choice.FinishReason)
	}
	content := strings.TrimSpace(choice.Message.Content)
	if content == "" {
		return "", ErrNoOutput
	}
	return content, nil
}
