package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// TxManagerInterface - единственный способ записать заказ вместе с его
// историей: обе записи либо коммитятся, либо откатываются.
type TxManagerInterface interface {
	RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// beginner - часть pgxpool.Pool, нужная менеджеру.
type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type TxManager struct {
	pool   beginner
	logger *zap.Logger
}

func NewTxManager(pool *pgxpool.Pool, logger *zap.Logger) TxManagerInterface {
	return &TxManager{pool: pool, logger: logger}
}

// RunInTransaction: ошибка или паника в fn - откат, иначе коммит.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("не удалось начать транзакцию: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			m.rollback(ctx, tx, fmt.Errorf("panic: %v", p))
			panic(p)
		}
		if err != nil {
			if rbErr := m.rollback(ctx, tx, err); rbErr != nil {
				err = fmt.Errorf("ошибка при откате транзакции: %v (изначальная ошибка: %w)", rbErr, err)
			}
			return
		}
		if cErr := tx.Commit(ctx); cErr != nil {
			err = fmt.Errorf("ошибка при коммите транзакции: %w", cErr)
		}
	}()

	return fn(tx)
}

func (m *TxManager) rollback(ctx context.Context, tx pgx.Tx, cause error) error {
	m.logger.Debug("Откат транзакции", zap.Error(cause))
	rbErr := tx.Rollback(ctx)
	if rbErr != nil {
		m.logger.Error("Не удалось откатить транзакцию", zap.Error(rbErr), zap.NamedError("cause", cause))
	}
	return rbErr
}
