package dto

type TicketResponse struct {
	TicketID int64 `json:"ticketId"`
	ChatID   int64 `json:"chatId"`
	// AssigneeID is null while the ticket has no assignee.
	AssigneeID *int64 `json:"assigneeId"`
	StatusID   int    `json:"statusId"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

type TicketListResponse struct {
	Tickets []TicketResponse `json:"tickets"`
}

type TicketDetailResponse struct {
	Ticket   TicketResponse    `json:"ticket"`
	Messages []MessageResponse `json:"messages"`
}

type UpdateTicketRequest struct {
	StatusID   *int   `json:"statusId"`
	AssigneeID *int64 `json:"assigneeId"`
}
