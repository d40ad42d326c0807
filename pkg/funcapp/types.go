package funcapp

import "github.com/salpyeo/dream/pkg/schedule"

// Roles of a history entry.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatTurn is the body of set_hist.
type ChatTurn struct {
	UserMessage string `json:"userMessage"`
	BotMessage  string `json:"botMessage"`
}

// HistoryEntry is one stored message of a conversation.
type HistoryEntry struct {
	Role     string `json:"role"`
	Content  string `json:"content"`
	Datetime string `json:"datetime,omitempty"`
}

// SetHistResult is the response of set_hist.
type SetHistResult struct {
	IsSuccess bool           `json:"is_success"`
	SetData   []HistoryEntry `json:"set_data,omitempty"`
}

// ScheduleRequest is the body of handle_schedule_with_gpt.
type ScheduleRequest struct {
	Todos []string `json:"todos"`
}

// ScheduleResult is the response of handle_schedule_with_gpt. When the text
// mentions no schedule the service answers with a bare "False" and
// Mentioned is false.
type ScheduleResult struct {
	Mentioned bool
	Items     []schedule.Item
}

// SetScheduleRequest is the body of set_schedule.
type SetScheduleRequest struct {
	Schedule string `json:"schedule"`
}

// SignUpResult is the response of sign_up.
type SignUpResult struct {
	UUID string `json:"uuid"`
}
