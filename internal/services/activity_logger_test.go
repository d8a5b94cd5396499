package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"pedidos-system/internal/dto"
	"pedidos-system/pkg/constants"
)

func TestActivityLoggerWritesRecord(t *testing.T) {
	repo := &fakeActivityRepository{}
	l := NewActivityLogger(repo, zap.NewNop()).(*ActivityLogger)
	l.now = func() time.Time { return fixedNow }

	l.Log(context.Background(), ActivityEntry{
		Tipo:      constants.ActivityEdicao,
		Descricao: "Pedido #10 editado por Ana",
		Actor:     "Ana",
		PedidoID:  10,
		Meta:      &dto.RequestMeta{IPAddress: "10.0.0.5"},
		Extra:     map[string]interface{}{"campos": []string{"Descrição"}},
	})

	require.Len(t, repo.records, 1)
	rec := repo.records[0]
	assert.Equal(t, int64(10), rec.PedidoID.Int64)
	assert.Equal(t, "10.0.0.5", rec.IPAddress.String)
	assert.False(t, rec.UserAgent.Valid)
	assert.Equal(t, fixedNow, rec.Data)
	assert.Equal(t, []string{"Descrição"}, rec.DadosAdicionais["campos"])
}

func TestActivityLoggerSwallowsErrors(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	repo := &fakeActivityRepository{failWith: errors.New("conexão perdida")}
	l := NewActivityLogger(repo, zap.New(core))

	assert.NotPanics(t, func() {
		l.Log(context.Background(), ActivityEntry{Tipo: constants.ActivityLogin, Actor: "Ana"})
	})
	assert.Equal(t, 1, logs.FilterField(zap.String("effect", "registrar_atividade")).Len())
}
