package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/user-registry/internal/core/domain"
	apperrors "github.com/lorrc/user-registry/internal/core/errors"
	"github.com/lorrc/user-registry/internal/core/mocks"
	"github.com/lorrc/user-registry/internal/core/services"
)

func TestSenderSelector_Sender(t *testing.T) {
	realEmail, realBroker := mocks.NewMockSender(), mocks.NewMockSender()
	fakeEmail, fakeBroker := mocks.NewMockSender(), mocks.NewMockSender()

	selector := services.NewSenderSelector(
		services.SenderSet{Email: realEmail, Broker: realBroker},
		services.SenderSet{Email: fakeEmail, Broker: fakeBroker},
	)

	tests := []struct {
		env     domain.Environment
		channel domain.Channel
		want    *mocks.MockSender
	}{
		{domain.Production, domain.ChannelEmail, realEmail},
		{domain.Production, domain.ChannelBroker, realBroker},
		{domain.Development, domain.ChannelEmail, fakeEmail},
		{domain.Development, domain.ChannelBroker, fakeBroker},
	}
	for _, tt := range tests {
		t.Run(string(tt.env)+"/"+string(tt.channel), func(t *testing.T) {
			got, err := selector.Sender(tt.env, tt.channel)
			require.NoError(t, err)
			assert.Same(t, tt.want, got)
		})
	}

	t.Run("selection is stable", func(t *testing.T) {
		a, _ := selector.Sender(domain.Production, domain.ChannelEmail)
		b, _ := selector.Sender(domain.Production, domain.ChannelEmail)
		assert.Same(t, a, b)
	})

	t.Run("unknown environment", func(t *testing.T) {
		_, err := selector.Sender("staging", domain.ChannelEmail)
		assert.ErrorIs(t, err, apperrors.ErrInvalidSelector)
	})

	t.Run("unknown channel", func(t *testing.T) {
		_, err := selector.Sender(domain.Production, "sms")
		assert.ErrorIs(t, err, apperrors.ErrInvalidSelector)
	})
}

func TestSenderSelector_ProductionNotConfigured(t *testing.T) {
	selector := services.NewSenderSelector(
		services.SenderSet{},
		services.SenderSet{Email: mocks.NewMockSender(), Broker: mocks.NewMockSender()},
	)

	_, err := selector.Sender(domain.Production, domain.ChannelBroker)
	assert.ErrorIs(t, err, apperrors.ErrSenderUnavailable)

	_, err = selector.Sender(domain.Development, domain.ChannelBroker)
	assert.NoError(t, err)
}
