package services

import (
	"fmt"

	"github.com/lorrc/user-registry/internal/core/domain"
	apperrors "github.com/lorrc/user-registry/internal/core/errors"
	"github.com/lorrc/user-registry/internal/core/ports"
)

// SenderSet holds one sender per channel. Nil entries are not configured.
type SenderSet struct {
	Email  ports.Sender
	Broker ports.Sender
}

func (set SenderSet) table() map[domain.Channel]ports.Sender {
	t := make(map[domain.Channel]ports.Sender, 2)
	if set.Email != nil {
		t[domain.ChannelEmail] = set.Email
	}
	if set.Broker != nil {
		t[domain.ChannelBroker] = set.Broker
	}
	return t
}

// SenderSelector maps (environment, channel) to a sender. Production gets the
// real transports; every other environment gets the inert doubles. The tables
// are fixed at construction and safe for concurrent reads.
type SenderSelector struct {
	production map[domain.Channel]ports.Sender
	inert      map[domain.Channel]ports.Sender
}

var _ ports.SenderSelector = (*SenderSelector)(nil)

// NewSenderSelector builds the selector. production may be empty outside production.
func NewSenderSelector(production, inert SenderSet) *SenderSelector {
	return &SenderSelector{
		production: production.table(),
		inert:      inert.table(),
	}
}

// Sender returns the sender registered for env and channel.
func (s *SenderSelector) Sender(env domain.Environment, channel domain.Channel) (ports.Sender, error) {
	if !env.Valid() {
		return nil, fmt.Errorf("%w: environment %q", apperrors.ErrInvalidSelector, env)
	}
	if !channel.Valid() {
		return nil, fmt.Errorf("%w: channel %q", apperrors.ErrInvalidSelector, channel)
	}

	table := s.inert
	if env == domain.Production {
		table = s.production
	}

	sender, ok := table[channel]
	if !ok {
		return nil, fmt.Errorf("%w: %s sender in %s", apperrors.ErrSenderUnavailable, channel, env)
	}
	return sender, nil
}
