package app

import (
	"context"

	"edge-lab-bot/internal/domain/entity"
	"edge-lab-bot/internal/domain/port"
)

type UserService struct {
	repo port.UserRepository
}

func NewUserService(repo port.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.repo.Get(ctx, userID, chatID)
}

func (s *UserService) Save(ctx context.Context, user *entity.User) error {
	return s.repo.Save(ctx, user)
}

func (s *UserService) SetState(ctx context.Context, userID, chatID int64, state entity.UserState) (*entity.User, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	user.SetState(state)
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *UserService) BeginUpload(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateAwaitingPhoto)
}

// Cancel возвращает пользователя в главное меню и сбрасывает выбранный оператор.
func (s *UserService) Cancel(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	user.SetState(entity.StateMainMenu)
	user.Select("", nil)
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}
