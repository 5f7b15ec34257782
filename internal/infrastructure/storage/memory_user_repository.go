package storage

import (
	"context"
	"sync"

	"edge-lab-bot/internal/domain/entity"
	"edge-lab-bot/internal/domain/port"
)

// MemoryUserRepository in-memory хранилище пользователей
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[int64]*entity.User
}

// NewMemoryUserRepository создаёт новое in-memory хранилище
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users: make(map[int64]*entity.User),
	}
}

// Get возвращает копию пользователя по ID, создаёт нового если не найден
func (r *MemoryUserRepository) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	r.mu.RLock()
	user, exists := r.users[userID]
	r.mu.RUnlock()

	if exists {
		return copyUser(user), nil
	}

	// Создаём нового пользователя
	newUser := entity.NewUser(userID, chatID)

	r.mu.Lock()
	if existing, ok := r.users[userID]; ok {
		r.mu.Unlock()
		return copyUser(existing), nil
	}
	r.users[userID] = newUser
	r.mu.Unlock()

	return copyUser(newUser), nil
}

// Save сохраняет состояние пользователя
func (r *MemoryUserRepository) Save(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	r.users[user.ID] = copyUser(user)
	r.mu.Unlock()

	return nil
}

// copyUser отвязывает вызывающего от внутреннего состояния хранилища.
func copyUser(u *entity.User) *entity.User {
	c := *u
	if u.Controls != nil {
		c.Controls = u.Controls.Clone()
	}
	return &c
}

// Проверка реализации интерфейса
var _ port.UserRepository = (*MemoryUserRepository)(nil)
