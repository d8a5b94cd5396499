package services

import (
	"context"

	"pedidos-system/internal/authz"
	"pedidos-system/internal/entities"
	apperrors "pedidos-system/pkg/errors"
	"pedidos-system/pkg/types"
)

type ActivityServiceInterface interface {
	ListActivities(ctx context.Context, filter types.Filter, actorIdentity string) ([]entities.ActivityRecord, uint64, error)
}

type ActivityService struct {
	auth       AuthServiceInterface
	gatekeeper *authz.Gatekeeper
	activity   ActivityLoggerInterface
}

func NewActivityService(auth AuthServiceInterface, gatekeeper *authz.Gatekeeper, activity ActivityLoggerInterface) ActivityServiceInterface {
	return &ActivityService{auth: auth, gatekeeper: gatekeeper, activity: activity}
}

func (s *ActivityService) ListActivities(ctx context.Context, filter types.Filter, actorIdentity string) ([]entities.ActivityRecord, uint64, error) {
	actor, err := s.auth.ResolveIdentity(ctx, actorIdentity)
	if err != nil {
		return nil, 0, err
	}
	if !s.gatekeeper.Can(actor, authz.AtividadesView) {
		return nil, 0, apperrors.NewPermissionDenied("acesso permitido apenas para gestores e administradores")
	}
	return s.activity.List(ctx, filter)
}
