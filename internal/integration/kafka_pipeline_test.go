//go:build integration

package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	httpadapter "github.com/couchcryptid/odp-dashboard-service/internal/adapter/http"
	"github.com/couchcryptid/odp-dashboard-service/internal/adapter/kafka"
	"github.com/couchcryptid/odp-dashboard-service/internal/config"
	"github.com/couchcryptid/odp-dashboard-service/internal/domain"
	"github.com/couchcryptid/odp-dashboard-service/internal/mockdata"
	"github.com/couchcryptid/odp-dashboard-service/internal/observability"
	"github.com/couchcryptid/odp-dashboard-service/internal/pipeline"
	"github.com/couchcryptid/odp-dashboard-service/internal/session"
)

const testTopic = "test-dataset-events"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("odp-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1}))
}

type publishedEvent struct {
	Event   domain.DatasetLoaded
	Key     string
	Headers map[string]string
}

func readEvent(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedEvent {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from dataset topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var event domain.DatasetLoaded
	require.NoError(t, json.Unmarshal(msg.Value, &event), "unmarshal dataset event")
	return publishedEvent{Event: event, Key: string(msg.Key), Headers: headers}
}

func newConsumer(t *testing.T, broker string) *kafkago.Reader {
	t.Helper()
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })
	return consumer
}

// TestPublisher verifies the adapter writes a keyed event with headers.
func TestPublisher(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic}
	pub := kafka.NewPublisher(cfg, observability.NewMetricsForTesting(), discardLogger())
	t.Cleanup(func() { _ = pub.Close() })

	require.NoError(t, pub.CheckReadiness(ctx))

	event := domain.DatasetLoaded{
		FileID:      "file-1",
		FileName:    "odp.csv",
		RecordCount: 3,
		LoadedAt:    time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
	}
	require.NoError(t, pub.PublishDatasetLoaded(ctx, event))

	got := readEvent(ctx, t, newConsumer(t, broker))
	assert.Equal(t, "file-1", got.Key)
	assert.Equal(t, kafka.EventTypeDatasetLoaded, got.Headers["event_type"])
	assert.Equal(t, "2024-03-01T08:00:00Z", got.Headers["loaded_at"])
	assert.Equal(t, 3, got.Event.RecordCount)
}

// TestUploadPublishesEvent wires the HTTP API to a real broker: one upload
// yields one event, and re-uploading the same bytes does not publish again.
func TestUploadPublishesEvent(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	metrics := observability.NewMetricsForTesting()
	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic, MaxUploadBytes: 1 << 20, MaxSessions: 4}
	pub := kafka.NewPublisher(cfg, metrics, discardLogger())
	t.Cleanup(func() { _ = pub.Close() })

	api := httpadapter.NewAPI(httpadapter.Deps{
		Store:     session.NewStore(cfg.MaxSessions, metrics, discardLogger()),
		Pipeline:  pipeline.New(nil, discardLogger(), metrics),
		Publisher: pub,
		Metrics:   metrics,
		Logger:    discardLogger(),
		MaxUpload: cfg.MaxUploadBytes,
	})
	srv := httptest.NewServer(httpadapter.NewServer("", api, pub, discardLogger()))
	t.Cleanup(srv.Close)

	var file bytes.Buffer
	records := mockdata.Generate(mockdata.Options{Rows: 120, Seed: 5})
	require.NoError(t, mockdata.WriteSourceCSV(&file, records))

	upload := func(sessionID string) *http.Response {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		part, err := mw.CreateFormFile("file", "mock.csv")
		require.NoError(t, err)
		_, err = part.Write(file.Bytes())
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, srv.URL+"/api/dataset", &body)
		require.NoError(t, err)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		if sessionID != "" {
			req.Header.Set(httpadapter.SessionHeader, sessionID)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		return resp
	}

	resp := upload("")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sid := resp.Header.Get(httpadapter.SessionHeader)
	resp.Body.Close()
	require.NotEmpty(t, sid)

	resp = upload(sid)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	consumer := newConsumer(t, broker)
	got := readEvent(ctx, t, consumer)
	assert.Equal(t, 120, got.Event.RecordCount)
	assert.Equal(t, "mock.csv", got.Event.FileName)
	assert.Equal(t, got.Event.FileID, got.Key)

	quiet, cancelQuiet := context.WithTimeout(ctx, 3*time.Second)
	defer cancelQuiet()
	_, err := consumer.ReadMessage(quiet)
	assert.Error(t, err, "cached re-upload must not publish a second event")
}
