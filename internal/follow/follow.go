// Package follow управляет графом подписок. Нарушения ограничений
// (дубль подписки, подписка на себя) на этом уровне превращаются
// в успешный no-op и наружу не выходят.
package follow

import (
	"github.com/MosinFAM/blog-platform/internal/storage"

	"github.com/sirupsen/logrus"
)

type Manager struct {
	store storage.Storage
}

func NewManager(store storage.Storage) *Manager {
	return &Manager{store: store}
}

// Follow подписывает user на author. Подписка на себя - тихий no-op,
// повторная подписка тоже (идемпотентность обеспечивает хранилище)
func (m *Manager) Follow(userID, authorID string) error {
	if userID == authorID {
		return nil
	}
	return m.store.AddFollow(userID, authorID)
}

// Unfollow снимает подписку. Отсутствие подписки - не ошибка
func (m *Manager) Unfollow(userID, authorID string) error {
	return m.store.DeleteFollow(userID, authorID)
}

// IsFollowing отвечает, подписан ли user на author. Ошибка хранилища
// деградирует в false
func (m *Manager) IsFollowing(userID, authorID string) bool {
	following, err := m.store.IsFollowing(userID, authorID)
	if err != nil {
		logrus.WithError(err).Error("Failed to check follow status")
		return false
	}
	return following
}
