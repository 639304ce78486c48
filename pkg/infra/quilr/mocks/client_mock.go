package mocks

import (
	"context"
	"fmt"

	"github.com/stretchr/testify/mock"

	"github.com/quilr/guardrails-go/pkg/infra/quilr"
)

type MockClient struct {
	mock.Mock
}

func (m *MockClient) Check(
	ctx context.Context,
	content quilr.CheckContent,
	credentials quilr.Credentials,
) (*quilr.CheckResult, error) {
	args := m.Called(ctx, content, credentials)
	result, ok := args.Get(0).(*quilr.CheckResult)
	if !ok && args.Get(0) != nil {
		return nil, fmt.Errorf("expected *quilr.CheckResult, got %T", args.Get(0))
	}
	return result, args.Error(1)
}
