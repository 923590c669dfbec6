package store

import (
	"context"

	"mediconnect/internal/model"
)

func (s *Store) CreateNotification(ctx context.Context, n *model.Notification) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO notifications (id, type, message, sent_to, sent_at) VALUES ($1,$2,$3,$4,$5)`,
		n.ID, n.Type, n.Message, n.SentTo, n.SentAt,
	)
	return err
}
