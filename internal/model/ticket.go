package model

// Ticket statuses the posting gate cares about. Values above StatusInWork
// (resolved, closed, whatever the console defines) pass through untouched.
const (
	StatusOpen   = 1
	StatusInWork = 2
)

// MaxMessageLength matches the Telegram caption limit for posts with media,
// the tightest bound a relayed message has to fit.
const MaxMessageLength = 1024

type TicketItem struct {
	TicketID int64 `dynamodbav:"ticketId"`
	// ChatID is the chat-platform user this ticket belongs to.
	ChatID int64 `dynamodbav:"chatId"`
	// AssigneeID is zero while the ticket is unassigned.
	AssigneeID int64  `dynamodbav:"assigneeId,omitempty"`
	StatusID   int    `dynamodbav:"statusId"`
	CreatedAt  string `dynamodbav:"createdAt"`
	UpdatedAt  string `dynamodbav:"updatedAt"`
}

// Assigned reports whether the ticket has an assignee. StatusInWork tickets
// always do; Update enforces that.
func (t TicketItem) Assigned() bool {
	return t.AssigneeID != 0
}

type MessageItem struct {
	MessageID int64 `dynamodbav:"messageId"`
	TicketID  int64 `dynamodbav:"ticketId"`
	// AuthorID is zero for messages that arrived from the chat platform.
	AuthorID  int64  `dynamodbav:"authorId,omitempty"`
	Content   string `dynamodbav:"content"`
	CreatedAt string `dynamodbav:"createdAt"`
}

type AssignmentRuleItem struct {
	RuleID     int64  `dynamodbav:"ruleId"`
	ChatID     int64  `dynamodbav:"chatId"`
	AssigneeID int64  `dynamodbav:"assigneeId"`
	CreatedAt  string `dynamodbav:"createdAt"`
}
