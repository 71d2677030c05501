package model

const (
	UsersTable           = "Users"
	TicketsTable         = "Tickets"
	MessagesTable        = "Messages"
	AssignmentRulesTable = "AssignmentRules"
	CountersTable        = "Counters"
)

// Sequence names for the Counters table. Every entity keeps the integer ids
// the original system exposes to the chat front end and the token claims.
const (
	UserSequence    = "user"
	TicketSequence  = "ticket"
	MessageSequence = "message"
	RuleSequence    = "rule"
)

type UserItem struct {
	UserID       int64  `dynamodbav:"userId"`
	Username     string `dynamodbav:"username"`
	PasswordHash string `dynamodbav:"passwordHash"`
	CreatedAt    string `dynamodbav:"createdAt"`
}

type CounterItem struct {
	Name  string `dynamodbav:"name"`
	Value int64  `dynamodbav:"value"`
}
