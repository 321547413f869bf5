//go:build tools

package tools

// This file tracks versions of CLI tool dependencies.
// It is not compiled into the binary.
//
// - github.com/matryer/moq regenerates internal/transport/middleware/token_validator_mock_test.go
//   (moq -out token_validator_mock_test.go -pkg middleware . tokenValidator)
// - schema migrations run through `claimsctl migrate`, which embeds goose.
