package utils

import (
	"fmt"

	"go.uber.org/zap"
)

// BestEffort выполняет побочный эффект, ошибки и паники которого не должны
// влиять на основную операцию. Всегда возвращает управление без ошибки.
func BestEffort(logger *zap.Logger, what string, fn func() error, fields ...zap.Field) {
	defer func() {
		if p := recover(); p != nil {
			logger.Error("Паника в побочном эффекте",
				append(fields, zap.String("effect", what), zap.String("panic", fmt.Sprint(p)))...,
			)
		}
	}()

	if err := fn(); err != nil {
		logger.Warn("Побочный эффект завершился ошибкой",
			append(fields, zap.String("effect", what), zap.Error(err))...,
		)
	}
}
