// Package planner asks a language model whether an assistant's answer
// mentions a schedule and turns a conversation into a deduplicated list of
// schedule items.
package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kaptinlin/jsonrepair"

	"github.com/salpyeo/dream/pkg/schedule"
)

// Message is one stored conversation message.
type Message struct {
	Role     string `json:"role"`
	Content  string `json:"content"`
	Datetime string `json:"datetime,omitempty"`
}

// Request is the input of Extract.
type Request struct {
	// Now is the current time in the user's timezone.
	Now time.Time

	// History is the whole conversation, oldest first.
	History []Message

	// Existing holds the items extracted previously, nil when there are
	// none.
	Existing []schedule.Item
}

// Planner classifies and extracts schedules.
type Planner interface {
	// MentionsSchedule reports whether text, an assistant's answer, talks
	// about an appointment or plan of the user.
	MentionsSchedule(ctx context.Context, text string) (bool, error)

	// Extract returns every schedule found in req.History, merged with and
	// correcting req.Existing.
	Extract(ctx context.Context, req Request) ([]schedule.Item, error)
}

// ErrNoOutput is returned when the model produced no text.
var ErrNoOutput = errors.New("planner: model returned no output")

// NowLayout is how Request.Now is presented to the model.
const NowLayout = "2006-01-02 15:04 PM"

const classifyPrompt = `The input is an answer the assistant gave to the user.
Output True if the answer mentions any schedule, appointment or plan of the user, otherwise output False.
No other output is allowed.`

const extractPrompt = `The current time is %s.
The user gives you the whole conversation history and, optionally, a JSON list of schedules extracted from it before.
Organize every schedule, appointment and plan found in the data as a JSON list:
[{"date": "yyyy-mm-dd", "time": "hh:MM", "destination": string, "purpose": string, "is_done": bool, "comment": string}]
Check the context carefully. No two items may share the same date and time.
Compare the conversation with the existing list and fix or delete wrong entries. The conversation is always right.
Use comment to ask the user for missing details, or to say what was changed.
Write text fields in the language of the conversation.
No other output is allowed.`

// ClassifyPrompt returns the system prompt of MentionsSchedule.
func ClassifyPrompt() string { return classifyPrompt }

// ExtractPrompt returns the system prompt of Extract for now.
func ExtractPrompt(now time.Time) string {
	return fmt.Sprintf(extractPrompt, now.Format(NowLayout))
}

// ExtractInputs renders the user messages of Extract: the history, then the
// existing items when there are any.
func ExtractInputs(req Request) ([]string, error) {
	hist, err := json.Marshal(req.History)
	if err != nil {
		return nil, fmt.Errorf("planner: marshal history: %w", err)
	}
	inputs := []string{"The whole conversation history is:\n" + string(hist)}
	if req.Existing != nil {
		existing, err := json.Marshal(req.Existing)
		if err != nil {
			return nil, fmt.Errorf("planner: marshal existing items: %w", err)
		}
		inputs = append(inputs, "The existing schedules are:\n"+string(existing))
	}
	return inputs, nil
}

// ParseMention parses the answer of the classification prompt. Anything
// other than true means no schedule was mentioned.
func ParseMention(s string) bool {
	v := strings.Trim(strings.TrimSpace(s), "\"'`.")
	switch {
	case strings.EqualFold(v, "true"):
		return true
	case !strings.EqualFold(v, "false"):
		slog.Warn("planner: unexpected classification, treating as false", "output", s)
	}
	return false
}

// itemList is the structured output of Extract. Structured output requires
// an object at the top level.
type itemList struct {
	Items []schedule.Item `json:"items" jsonschema:"every schedule found"`
}

// ParseItems parses model output into items. It accepts a bare JSON list or
// an {"items": [...]} object, optionally inside a markdown code fence, and
// repairs malformed JSON. The result is deduplicated by date and time.
func ParseItems(s string) ([]schedule.Item, error) {
	s = stripFence(s)
	if s == "" {
		return nil, ErrNoOutput
	}
	var items []schedule.Item
	if strings.HasPrefix(s, "[") {
		if err := unmarshalJSON([]byte(s), &items); err != nil {
			return nil, fmt.Errorf("planner: parse items: %w", err)
		}
	} else {
		var list itemList
		if err := unmarshalJSON([]byte(s), &list); err != nil {
			return nil, fmt.Errorf("planner: parse items: %w", err)
		}
		items = list.Items
	}
	if items == nil {
		items = []schedule.Item{}
	}
	return schedule.Dedupe(items), nil
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// unmarshalJSON unmarshals data into v, repairing it first if it is not
// valid JSON.
func unmarshalJSON(data []byte, v any) error {
	err := json.Unmarshal(data, v)
	if err == nil {
		return nil
	}
	var syntaxErr *json.SyntaxError
	if !errors.As(err, &syntaxErr) {
		return err
	}
	fixed, rerr := jsonrepair.JSONRepair(string(data))
	if rerr != nil {
		return err
	}
	return json.Unmarshal([]byte(fixed), v)
}
