package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"lingo-server/internal/interfaces"
	"lingo-server/internal/models"
)

// TxManager is a mock type for the TxManager interface.
// By default WithTransaction runs the callback with a nil querier,
// so repository mocks can match it with mock.Anything.
type TxManager struct {
	mock.Mock
}

var _ interfaces.TxManager = (*TxManager)(nil)

func (_m *TxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx interfaces.DBTX) error) error {
	ret := _m.Called(ctx, fn)

	if rf, ok := ret.Get(0).(func(context.Context, func(context.Context, interfaces.DBTX) error) error); ok {
		return rf(ctx, fn)
	}
	return ret.Error(0)
}

// PassthroughTx настраивает мок на прямой вызов переданной функции.
func (_m *TxManager) PassthroughTx() *mock.Call {
	return _m.On("WithTransaction", mock.Anything, mock.Anything).
		Return(func(ctx context.Context, fn func(context.Context, interfaces.DBTX) error) error {
			return fn(ctx, nil)
		})
}

// PlayEventPublisher is a mock type for the PlayEventPublisher interface
type PlayEventPublisher struct {
	mock.Mock
}

var _ interfaces.PlayEventPublisher = (*PlayEventPublisher)(nil)

func (_m *PlayEventPublisher) PublishPlayCompleted(ctx context.Context, event models.PlayCompletedEvent) error {
	ret := _m.Called(ctx, event)
	return ret.Error(0)
}
