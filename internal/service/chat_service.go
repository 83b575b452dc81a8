package service

import (
	"fmt"

	"couple-kitchen/internal/domain"
)

// recentMessageLimit bounds the chat window returned to pollers.
const recentMessageLimit = 50

type ChatService struct {
	repo MessageRepository
}

func NewChatService(repo MessageRepository) *ChatService {
	return &ChatService{repo: repo}
}

func (s *ChatService) Post(sender, content string) (*domain.Message, error) {
	if sender == "" || content == "" {
		return nil, fmt.Errorf("%w: sender and content are required", domain.ErrValidation)
	}

	msg := &domain.Message{Sender: sender, Content: content}
	if err := s.repo.AppendMessage(msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// Recent returns the most recent messages, oldest first.
func (s *ChatService) Recent() ([]domain.Message, error) {
	return s.repo.RecentMessages(recentMessageLimit)
}

var _ ChatServiceInterface = (*ChatService)(nil)
