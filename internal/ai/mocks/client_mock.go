package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"lingo-server/internal/ai"
)

// MockClient is a mock type for the ai.Client interface
type MockClient struct {
	mock.Mock
}

var _ ai.Client = (*MockClient)(nil)

// GenerateText provides a mock function with given fields: ctx, flow, systemPrompt, userInput
func (_m *MockClient) GenerateText(ctx context.Context, flow string, systemPrompt string, userInput string) (string, ai.UsageInfo, error) {
	ret := _m.Called(ctx, flow, systemPrompt, userInput)

	var r1 ai.UsageInfo
	if ret.Get(1) != nil {
		r1 = ret.Get(1).(ai.UsageInfo)
	}
	return ret.String(0), r1, ret.Error(2)
}
