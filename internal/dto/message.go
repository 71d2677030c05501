package dto

type MessageResponse struct {
	MessageID int64 `json:"messageId"`
	TicketID  int64 `json:"ticketId"`
	// AuthorID is null for messages that arrived from the chat platform.
	AuthorID  *int64 `json:"authorId"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
}

type PostMessageRequest struct {
	TicketID int64  `json:"ticketId"`
	Content  string `json:"content"`
}

type NotifyRequest struct {
	TicketID int64  `json:"ticketId"`
	Content  string `json:"content"`
}

type NotifyResponse struct {
	Delivered bool `json:"delivered"`
}

type InboundMessageRequest struct {
	ChatID  int64  `json:"chatId"`
	Content string `json:"content"`
}

type InboundMessageResponse struct {
	Ticket  TicketResponse  `json:"ticket"`
	Message MessageResponse `json:"message"`
}
