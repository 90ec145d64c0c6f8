//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalog "github.com/dmehra2102/lesson-reservation/internal/catalog/domain"
	"github.com/dmehra2102/lesson-reservation/internal/order/application"
	"github.com/dmehra2102/lesson-reservation/internal/order/domain"
	orderkafka "github.com/dmehra2102/lesson-reservation/internal/order/infrastructure/kafka"
	"github.com/dmehra2102/lesson-reservation/pkg/database"
	"github.com/dmehra2102/lesson-reservation/pkg/outbox"
)

const topic = "order.events.test"

func createTopic(t *testing.T) {
	t.Helper()
	conn, err := kafka.Dial("tcp", env.KAddr[0])
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	cc, err := kafka.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer cc.Close()

	require.NoError(t, cc.CreateTopics(kafka.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1}))
}

func TestRelay_PublishesOrderPlaced(t *testing.T) {
	if env.Kafka == nil {
		t.Skip("set INTEGRATION_KAFKA=1 to run against Kafka")
	}
	createTopic(t)

	lesson := catalog.NewEntry("Sega Dance Basics", "Flic-en-Flac", 900, 5)
	f := newFixture(t, lesson)
	coord := application.NewCoordinator(f.log, database.NewTransactor(f.db), f.lessons, f.orders, application.DefaultRetryPolicy())

	out, err := coord.Reserve(context.Background(), domain.Customer{Name: "Cara", Phone: "2"},
		[]domain.LineItem{{EntryID: lesson.ID, Quantity: 2}})
	require.NoError(t, err)
	require.True(t, out.Committed())

	writer := orderkafka.NewWriter(env.KAddr)
	defer writer.Close()
	relay := outbox.NewRelay(f.log, outboxStore(f), outbox.NewDispatcher(f.log, writer, topic), "it-relay").
		WithInterval(100 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	go func() { _ = relay.Run(ctx) }()

	reader := kafka.NewReader(kafka.ReaderConfig{Brokers: env.KAddr, Topic: topic, MaxWait: 200 * time.Millisecond})
	defer reader.Close()

	msg, err := reader.ReadMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, out.OrderID, string(msg.Key))

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, domain.EventOrderPlaced, headers["event_type"])
	assert.Equal(t, "integration-test", headers["source"])

	var ev domain.OrderPlaced
	require.NoError(t, json.Unmarshal(msg.Value, &ev))
	assert.Equal(t, out.OrderID, ev.OrderID)
	assert.Equal(t, 2, ev.Seats)

	require.Eventually(t, func() bool {
		pool, err := f.db.Pool(ctx)
		if err != nil {
			return false
		}
		var status string
		err = pool.QueryRow(ctx, `SELECT status FROM outbox WHERE aggregate_id = $1`, out.OrderID).Scan(&status)
		return err == nil && status == string(outbox.StatusSent)
	}, 10*time.Second, 100*time.Millisecond)
}
