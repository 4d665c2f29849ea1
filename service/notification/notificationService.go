package notificationsvc

import (
	"context"
	"log/slog"

	devicerepo "nebeng/repository/device"
	pushrepo "nebeng/repository/push"
)

type Service interface {
	RegisterToken(ctx context.Context, userID int64, token, platform string) error

	// NotifyUser fans a push out to every device the user registered.
	// Fire-and-forget: failures are logged, never returned.
	NotifyUser(ctx context.Context, userID int64, title, body string, data map[string]string)
}

type service struct {
	d   devicerepo.Repo
	p   pushrepo.Repo
	log *slog.Logger
}

func New(d devicerepo.Repo, p pushrepo.Repo, log *slog.Logger) Service {
	return &service{d: d, p: p, log: log}
}

func (s *service) RegisterToken(ctx context.Context, userID int64, token, platform string) error {
	return s.d.Upsert(ctx, userID, token, platform)
}

func (s *service) NotifyUser(ctx context.Context, userID int64, title, body string, data map[string]string) {
	tokens, err := s.d.TokensByUser(ctx, userID)
	if err != nil {
		s.log.Error("load device tokens", "user_id", userID, "err", err)
		return
	}
	for _, t := range tokens {
		if err := s.p.Send(pushrepo.SendReq{Token: t, Title: title, Body: body, Data: data}); err != nil {
			s.log.Warn("push send failed", "user_id", userID, "err", err)
		}
	}
}
