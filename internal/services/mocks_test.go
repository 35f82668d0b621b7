package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"licmgr/pkg/contracts/domain"
)

type mockCustomerStore struct {
	mock.Mock
}

func (m *mockCustomerStore) Load(ctx context.Context) ([]domain.CustomerRecord, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.CustomerRecord), args.Error(1)
}

func (m *mockCustomerStore) Add(ctx context.Context, record domain.CustomerRecord) error {
	return m.Called(ctx, record).Error(0)
}

func (m *mockCustomerStore) Remove(ctx context.Context, record domain.CustomerRecord) (bool, error) {
	args := m.Called(ctx, record)
	return args.Bool(0), args.Error(1)
}

func (m *mockCustomerStore) List() []domain.CustomerRecord {
	return m.Called().Get(0).([]domain.CustomerRecord)
}

func (m *mockCustomerStore) FindByHardwareID(hardwareID string) []domain.CustomerRecord {
	return m.Called(hardwareID).Get(0).([]domain.CustomerRecord)
}

func (m *mockCustomerStore) Quarantine(ctx context.Context, now time.Time) (string, error) {
	args := m.Called(ctx, now)
	return args.String(0), args.Error(1)
}

type mockAuthenticator struct {
	mock.Mock
}

func (m *mockAuthenticator) Login(ctx context.Context, password string) error {
	return m.Called(ctx, password).Error(0)
}
