// Package mocks provides mock implementations for testing the ticketing service.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our port interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	store := mocks.NewMockUserStore(ctrl)
//	store.EXPECT().UpsertUser(gomock.Any(), gomock.Any()).Return(nil)
package mocks

// Generate mock for UserStore interface from internal/ports package.
// This creates MockUserStore with methods for all UserStore interface methods:
// UpsertUser
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=user_store_mock.go github.com/stepperslife/tickets/internal/ports UserStore

// Generate mock for DocumentStore interface from internal/ports package.
// This creates MockDocumentStore with methods for all DocumentStore interface methods:
// Events, TicketByID, GenerateUploadURL, StorageURL
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=document_store_mock.go github.com/stepperslife/tickets/internal/ports DocumentStore
