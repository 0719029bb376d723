package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"connectrpc.com/connect"
	"github.com/castlemilk/taxpilot/backend/internal/ai"
	"github.com/castlemilk/taxpilot/backend/internal/api"
)

const (
	maxChatMessageLength = 4000
	maxChatHistory       = 20
)

// Chat forwards a message and recent history to the assistant.
func (s *TaxService) Chat(ctx context.Context, req *connect.Request[api.ChatRequest]) (*connect.Response[api.ChatResponse], error) {
	if _, _, err := s.requireAccountAccess(ctx, req.Msg.AccountID, false); err != nil {
		return nil, err
	}

	message := strings.TrimSpace(req.Msg.Message)
	if message == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("message is required"))
	}
	if utf8.RuneCountInString(message) > maxChatMessageLength {
		return nil, connect.NewError(connect.CodeInvalidArgument,
			fmt.Errorf("message exceeds %d characters", maxChatMessageLength))
	}
	if s.ai == nil {
		return nil, connect.NewError(connect.CodeUnavailable, fmt.Errorf("assistant is not configured"))
	}

	history := req.Msg.History
	if len(history) > maxChatHistory {
		history = history[len(history)-maxChatHistory:]
	}

	reply, err := s.ai.Chat(ctx, ai.ChatRequest{
		AccountID: req.Msg.AccountID,
		Message:   message,
		History:   history,
	})
	if err != nil {
		return nil, mapAIError(err)
	}

	return connect.NewResponse(&api.ChatResponse{
		Reply:       reply.Reply,
		Suggestions: reply.Suggestions,
	}), nil
}
