package publish

import (
	"context"
	"fmt"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRabbitMQ(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "rabbitmq:3.13-alpine",
			ExposedPorts: []string{"5672/tcp"},
			WaitingFor:   wait.ForLog("Server startup complete").WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5672")
	require.NoError(t, err)
	return fmt.Sprintf("amqp://guest:guest@%s:%s/", host, port.Port())
}

func TestRabbitMQPublisher_RoutesByKind(t *testing.T) {
	url := setupRabbitMQ(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pub, err := NewRabbitMQPublisher(RabbitMQConfig{URL: url, Exchange: "governor.test"})
	require.NoError(t, err)
	defer pub.Close()

	conn, err := amqp.Dial(url)
	require.NoError(t, err)
	defer conn.Close()
	ch, err := conn.Channel()
	require.NoError(t, err)
	defer ch.Close()

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	require.NoError(t, err)
	require.NoError(t, ch.QueueBind(q.Name, KindGuardianPolicy, pub.Exchange(), false, nil))
	deliveries, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	require.NoError(t, err)

	require.NoError(t, pub.Publish(ctx, Message{Kind: KindCycleReport, Key: "c-1", Body: []byte(`{"cycle":1}`)}))
	require.NoError(t, pub.Publish(ctx, Message{Kind: KindGuardianPolicy, Key: "p-1", Body: []byte(`{"mode":"calm"}`)}))

	select {
	case d := <-deliveries:
		assert.Equal(t, "p-1", d.MessageId)
		assert.Equal(t, KindGuardianPolicy, d.Type)
		assert.Equal(t, "application/json", d.ContentType)
		assert.JSONEq(t, `{"mode":"calm"}`, string(d.Body))
	case <-ctx.Done():
		t.Fatal("timed out waiting for delivery")
	}

	require.NoError(t, pub.Close())
	assert.ErrorIs(t, pub.Publish(ctx, Message{Kind: KindCycleReport}), ErrClosed)
}
