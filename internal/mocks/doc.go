// Package mocks provides testify mocks of the ports interfaces.
//
// Each constructor registers AssertExpectations with t.Cleanup, so a test
// fails if an expected call never happens.
package mocks
