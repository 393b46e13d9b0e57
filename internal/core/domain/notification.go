package domain

import (
	"fmt"
	"strings"

	apperrors "github.com/lorrc/user-registry/internal/core/errors"
)

// Environment is the resolved runtime environment.
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

// ParseEnvironment resolves a configuration value into an Environment.
func ParseEnvironment(value string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "development", "dev":
		return Development, nil
	case "production", "prod":
		return Production, nil
	default:
		return "", fmt.Errorf("%w: unknown environment %q", apperrors.ErrInvalidSelector, value)
	}
}

// Valid reports whether e is one of the declared environments.
func (e Environment) Valid() bool {
	return e == Development || e == Production
}

// Channel identifies a notification transport.
type Channel string

const (
	ChannelEmail  Channel = "email"
	ChannelBroker Channel = "broker"
)

// Valid reports whether c is one of the declared channels.
func (c Channel) Valid() bool {
	return c == ChannelEmail || c == ChannelBroker
}

// Notification messages sent after a user is created.
const (
	WelcomeMessage     = "Welcome to the platform!"
	UserCreatedMessage = "User created successfully"
)
