package websocket

import (
	"context"
	"errors"
	"log"

	internaljwt "helpdesk-backend/internal/jwt"
	"helpdesk-backend/internal/model"
	"helpdesk-backend/internal/registry"
	messageservice "helpdesk-backend/internal/service/message"
)

type State int

const (
	// StateConnected: socket is up, no verified identity yet.
	StateConnected State = iota
	StateAuthenticated
	StateClosed
)

// Frames the session writes back on its own behalf. The posting guidance for
// rejected staff posts comes through the relay, not from here.
const (
	AckConnected     = "connection established"
	AckAuthorized    = "authorized"
	NoticeAuthNeeded = "error: authentication required"
	NoticeExpired    = "error: token expired"
	NoticeMalformed  = "error: token invalid"
)

// Verifier turns a bearer credential into a Principal.
type Verifier func(credential string) (internaljwt.Principal, error)

// Poster accepts staff message content. Satisfied by *message.Service.
type Poster interface {
	PostStaffMessage(ctx context.Context, ticketID int64, content string, authorID int64) (model.MessageItem, error)
}

// Session is the per-connection state machine. It is not safe for concurrent
// HandleFrame calls; the read loop drives it one frame at a time, which is
// what preserves per-connection ordering.
type Session struct {
	ticketID  int64
	conn      registry.Conn
	reg       *registry.Registry
	verify    Verifier
	poster    Poster
	state     State
	principal internaljwt.Principal
}

func NewSession(ticketID int64, conn registry.Conn, reg *registry.Registry, verify Verifier, poster Poster) *Session {
	return &Session{
		ticketID: ticketID,
		conn:     conn,
		reg:      reg,
		verify:   verify,
		poster:   poster,
		state:    StateConnected,
	}
}

func (s *Session) State() State {
	return s.state
}

func (s *Session) Principal() internaljwt.Principal {
	return s.principal
}

// HandleFrame processes one inbound text frame according to the current
// state. Credential failures keep the connection open so the client can
// retry with a fresh token.
func (s *Session) HandleFrame(ctx context.Context, text string) {
	if s.state == StateClosed {
		return
	}

	frame := ParseFrame(text)

	if frame.Kind == FrameCredential {
		s.authenticate(frame.Credential)
		return
	}

	if s.state != StateAuthenticated {
		// No verified author yet; content must never be persisted here.
		if err := s.conn.WriteText(NoticeAuthNeeded); err != nil {
			log.Printf("websocket: ticket %d: write auth notice: %v", s.ticketID, err)
		}
		return
	}

	if _, err := s.poster.PostStaffMessage(ctx, s.ticketID, frame.Content, s.principal.UserID); err != nil {
		var svcErr *messageservice.Error
		if errors.As(err, &svcErr) && svcErr.Code != messageservice.ErrorCodeForbidden {
			// Forbidden already produced the guidance notice via the relay.
			if werr := s.conn.WriteText("error: " + svcErr.Message); werr != nil {
				log.Printf("websocket: ticket %d: write error notice: %v", s.ticketID, werr)
			}
		}
		log.Printf("websocket: ticket %d: post from user %d rejected: %v", s.ticketID, s.principal.UserID, err)
	}
}

func (s *Session) authenticate(credential string) {
	principal, err := s.verify(credential)
	if err != nil {
		incAuthFailures()
		notice := NoticeMalformed
		if errors.Is(err, internaljwt.ErrExpired) {
			notice = NoticeExpired
		}
		if werr := s.conn.WriteText(notice); werr != nil {
			log.Printf("websocket: ticket %d: write credential notice: %v", s.ticketID, werr)
		}
		return
	}

	s.principal = principal
	s.state = StateAuthenticated
	s.reg.Register(s.ticketID, s.conn)

	if err := s.conn.WriteText(AckAuthorized); err != nil {
		log.Printf("websocket: ticket %d: write ack: %v", s.ticketID, err)
	}
}

// Close moves the session to its terminal state and releases the registry
// entry if this connection still owns it. Runs on every disconnect path,
// clean or not.
func (s *Session) Close() {
	if s.state == StateClosed {
		return
	}
	if s.state == StateAuthenticated {
		s.reg.Deregister(s.ticketID, s.conn)
	}
	s.state = StateClosed
}
