package mocks

import (
	"context"

	"heroes/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockHeroRepository struct {
	mock.Mock
}

func (m *MockHeroRepository) List(ctx context.Context) ([]model.Hero, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Hero), args.Error(1)
}

func (m *MockHeroRepository) Search(ctx context.Context, term string) ([]model.Hero, error) {
	args := m.Called(ctx, term)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Hero), args.Error(1)
}

func (m *MockHeroRepository) FindByID(ctx context.Context, id int) (*model.Hero, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Hero), args.Error(1)
}

func (m *MockHeroRepository) Create(ctx context.Context, in model.HeroInput) (*model.Hero, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Hero), args.Error(1)
}

func (m *MockHeroRepository) Update(ctx context.Context, h model.Hero) (*model.Hero, error) {
	args := m.Called(ctx, h)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Hero), args.Error(1)
}

func (m *MockHeroRepository) Delete(ctx context.Context, id int) (*model.Hero, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Hero), args.Error(1)
}

func (m *MockHeroRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
