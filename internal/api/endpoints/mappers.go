package endpoints

import (
	"helpdesk-backend/internal/dto"
	"helpdesk-backend/internal/model"
)

func toUserResponse(user model.UserItem) dto.UserResponse {
	return dto.UserResponse{
		UserID:    user.UserID,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
	}
}

func toTicketResponse(tk model.TicketItem) dto.TicketResponse {
	resp := dto.TicketResponse{
		TicketID:  tk.TicketID,
		ChatID:    tk.ChatID,
		StatusID:  tk.StatusID,
		CreatedAt: tk.CreatedAt,
		UpdatedAt: tk.UpdatedAt,
	}
	if tk.Assigned() {
		assignee := tk.AssigneeID
		resp.AssigneeID = &assignee
	}
	return resp
}

func toTicketsResponse(tickets []model.TicketItem) []dto.TicketResponse {
	resp := make([]dto.TicketResponse, 0, len(tickets))
	for _, tk := range tickets {
		resp = append(resp, toTicketResponse(tk))
	}
	return resp
}

func toMessageResponse(msg model.MessageItem) dto.MessageResponse {
	resp := dto.MessageResponse{
		MessageID: msg.MessageID,
		TicketID:  msg.TicketID,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
	if msg.AuthorID != 0 {
		author := msg.AuthorID
		resp.AuthorID = &author
	}
	return resp
}

func toMessagesResponse(messages []model.MessageItem) []dto.MessageResponse {
	resp := make([]dto.MessageResponse, 0, len(messages))
	for _, msg := range messages {
		resp = append(resp, toMessageResponse(msg))
	}
	return resp
}

func toRuleResponse(rule model.AssignmentRuleItem) dto.RuleResponse {
	return dto.RuleResponse{
		RuleID:     rule.RuleID,
		ChatID:     rule.ChatID,
		AssigneeID: rule.AssigneeID,
		CreatedAt:  rule.CreatedAt,
	}
}
