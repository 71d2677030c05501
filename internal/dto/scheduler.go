package dto

// CreateRuleRequest carries only the chat id; the assignee is always the
// authenticated staff member making the request.
type CreateRuleRequest struct {
	ChatID int64 `json:"chatId"`
}

type RuleResponse struct {
	RuleID     int64  `json:"ruleId"`
	ChatID     int64  `json:"chatId"`
	AssigneeID int64  `json:"assigneeId"`
	CreatedAt  string `json:"createdAt"`
}
