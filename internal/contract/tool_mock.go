package contract

import (
	"context"

	"github.com/huangsam/rcqm/schema"
	"github.com/stretchr/testify/mock"
)

// MockToolRunner is a mock implementation of ToolRunner for testing.
type MockToolRunner struct {
	mock.Mock
}

var _ ToolRunner = &MockToolRunner{} // Compile-time check

// Run implements the ToolRunner interface.
func (m *MockToolRunner) Run(ctx context.Context, dir, file string) ([]byte, error) {
	args := m.Called(ctx, dir, file)
	out, _ := args.Get(0).([]byte)
	return out, args.Error(1)
}

// MockReportStore is a mock implementation of ReportStore for testing.
type MockReportStore struct {
	mock.Mock
}

var _ ReportStore = &MockReportStore{} // Compile-time check

// Append implements the ReportStore interface.
func (m *MockReportStore) Append(metric schema.MetricName, path string, entry any) error {
	args := m.Called(metric, path, entry)
	return args.Error(0)
}
