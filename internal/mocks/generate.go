// Package mocks provides mock implementations for testing the booking system.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our repository interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockRepo := mocks.NewMockJobRepository(ctrl)
//	mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(job, nil)
package mocks

// Generate mock for JobRepository interface from internal/core package.
// This creates MockJobRepository with methods for all JobRepository interface methods:
// Create, GetByID, ListByCustomer, ListByTranslator, ListPending, List, History,
// TryAssign, Transition, UpdateFields, SetContactEmail, UpdateAdminFields, ExpireStalePending
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=job_repository_mock.go github.com/interpretek/booking-core/internal/core JobRepository

// Generate mock for UserDirectory interface from internal/core package.
// This creates MockUserDirectory with methods for all UserDirectory interface methods:
// GetTranslator, GetCustomer, KindOf, ListTranslators
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=user_directory_mock.go github.com/interpretek/booking-core/internal/core UserDirectory

// Generate mock for NotificationEventRepository interface from internal/core package.
// This creates MockNotificationEventRepository with methods:
// Record, ListByJob
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=notification_event_repository_mock.go github.com/interpretek/booking-core/internal/core NotificationEventRepository
