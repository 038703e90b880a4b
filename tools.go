//go:build tools
// +build tools

// Package tools pins the code generators run by `go generate` (mockgen)
// as module dependencies.
package chat_rooms

import (
	_ "go.uber.org/mock/mockgen"
)
