package services

import (
	"context"
	"time"

	"github.com/aarondl/null/v8"
	"go.uber.org/zap"

	"pedidos-system/internal/dto"
	"pedidos-system/internal/entities"
	"pedidos-system/internal/repositories"
	"pedidos-system/pkg/types"
	"pedidos-system/pkg/utils"
)

type ActivityEntry struct {
	Tipo      string
	Descricao string
	Actor     string
	PedidoID  int64
	Meta      *dto.RequestMeta
	Extra     map[string]interface{}
}

type ActivityLoggerInterface interface {
	// Log никогда не возвращает ошибку: сбой записи только логируется.
	Log(ctx context.Context, entry ActivityEntry)
	List(ctx context.Context, filter types.Filter) ([]entities.ActivityRecord, uint64, error)
	ListForUser(ctx context.Context, user *entities.User, filter types.Filter) ([]entities.ActivityRecord, uint64, error)
}

type ActivityLogger struct {
	repo   repositories.ActivityRepositoryInterface
	logger *zap.Logger
	now    func() time.Time
}

func NewActivityLogger(repo repositories.ActivityRepositoryInterface, logger *zap.Logger) ActivityLoggerInterface {
	return &ActivityLogger{repo: repo, logger: logger, now: time.Now}
}

func (l *ActivityLogger) Log(ctx context.Context, entry ActivityEntry) {
	rec := &entities.ActivityRecord{
		Tipo:            entry.Tipo,
		Descricao:       entry.Descricao,
		UsuarioNome:     entry.Actor,
		Data:            l.now().UTC(),
		DadosAdicionais: entry.Extra,
	}
	if entry.PedidoID != 0 {
		rec.PedidoID = null.Int64From(entry.PedidoID)
	}
	if entry.Meta != nil {
		rec.IPAddress = null.NewString(entry.Meta.IPAddress, entry.Meta.IPAddress != "")
		rec.UserAgent = null.NewString(entry.Meta.UserAgent, entry.Meta.UserAgent != "")
	}

	utils.BestEffort(l.logger, "registrar_atividade", func() error {
		return l.repo.Append(ctx, rec)
	}, zap.String("tipo", entry.Tipo), zap.String("usuario", entry.Actor))
}

func (l *ActivityLogger) List(ctx context.Context, filter types.Filter) ([]entities.ActivityRecord, uint64, error) {
	return l.repo.List(ctx, filter)
}

func (l *ActivityLogger) ListForUser(ctx context.Context, user *entities.User, filter types.Filter) ([]entities.ActivityRecord, uint64, error) {
	return l.repo.ListForUser(ctx, user, filter)
}
