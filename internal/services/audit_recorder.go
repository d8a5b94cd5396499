package services

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"pedidos-system/internal/entities"
	"pedidos-system/internal/lifecycle"
	"pedidos-system/internal/repositories"
)

type AuditRecorderInterface interface {
	// RecordInTx добавляет по одной записи на дифф, в порядке диффов.
	RecordInTx(ctx context.Context, tx pgx.Tx, orderID int64, diffs []lifecycle.Diff, actor string, ts time.Time) error
	History(ctx context.Context, orderID int64) ([]entities.HistoryRecord, error)
}

type AuditRecorder struct {
	repo repositories.OrderHistoryRepositoryInterface
}

func NewAuditRecorder(repo repositories.OrderHistoryRepositoryInterface) AuditRecorderInterface {
	return &AuditRecorder{repo: repo}
}

func HistoryRecords(orderID int64, diffs []lifecycle.Diff, actor string, ts time.Time) []entities.HistoryRecord {
	records := make([]entities.HistoryRecord, 0, len(diffs))
	for _, d := range diffs {
		records = append(records, entities.HistoryRecord{
			PedidoID:      orderID,
			CampoAlterado: d.Label,
			ValorAnterior: d.Old,
			ValorNovo:     d.New,
			UsuarioNome:   actor,
			DataEdicao:    ts,
		})
	}
	return records
}

func (r *AuditRecorder) RecordInTx(ctx context.Context, tx pgx.Tx, orderID int64, diffs []lifecycle.Diff, actor string, ts time.Time) error {
	return r.repo.AppendInTx(ctx, tx, HistoryRecords(orderID, diffs, actor, ts))
}

func (r *AuditRecorder) History(ctx context.Context, orderID int64) ([]entities.HistoryRecord, error) {
	return r.repo.FindByOrderID(ctx, orderID)
}
