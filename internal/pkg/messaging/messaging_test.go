package messaging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromDriver(t *testing.T) {
	tests := []struct {
		name    string
		driver  string
		opts    FactoryOptions
		wantErr error
		want    any
	}{
		{name: "empty is none", driver: "", want: None{}},
		{name: "none", driver: " NONE ", want: None{}},
		{name: "unknown", driver: "rabbitmq", wantErr: ErrUnknownDriver},
		{name: "nats without url", driver: DriverNATS, wantErr: ErrNATSURLRequired},
		{name: "nsq without addr", driver: DriverNSQ, wantErr: ErrNSQAddrRequired},
		{name: "kafka without brokers", driver: DriverKafka, wantErr: ErrKafkaBrokersRequired},
		{name: "pubsub without project", driver: DriverGooglePubSub, wantErr: ErrPubSubProjectIDRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub, err := NewFromDriver(context.Background(), tt.driver, tt.opts)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, pub)
		})
	}
}

func TestNewKafkaAndClose(t *testing.T) {
	k, err := NewKafka(KafkaConfig{Brokers: []string{"localhost:9092"}})
	require.NoError(t, err)

	require.NoError(t, k.Close())
	require.NoError(t, k.Close())

	_, err = k.Publish(context.Background(), "otp.issued", Message{Body: []byte("{}")})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestNSQPublishValidation(t *testing.T) {
	n, err := NewNSQ(NSQConfig{ProducerAddr: "127.0.0.1:4150"})
	require.NoError(t, err)
	defer n.Close()

	_, err = n.Publish(context.Background(), "", Message{})
	assert.ErrorIs(t, err, ErrDestinationRequired)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = n.Publish(ctx, "otp.issued", Message{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNonePublish(t *testing.T) {
	res, err := None{}.Publish(context.Background(), "otp.issued", Message{Body: []byte("x")})

	require.NoError(t, err)
	assert.Equal(t, "otp.issued", res.Topic)

	_, err = None{}.Publish(context.Background(), "", Message{})
	assert.ErrorIs(t, err, ErrDestinationRequired)
}
