// Package session keeps one uploaded dataset per browser session.
package session

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/odp-dashboard-service/internal/domain"
	"github.com/couchcryptid/odp-dashboard-service/internal/loader"
	"github.com/couchcryptid/odp-dashboard-service/internal/lru"
	"github.com/couchcryptid/odp-dashboard-service/internal/observability"
)

// ErrNoFile is returned when a session has not uploaded a dataset yet.
var ErrNoFile = errors.New("no dataset loaded")

// Dataset is an immutable parsed upload. Records and Index are shared read-only
// between concurrent requests of the same session.
type Dataset struct {
	FileID   string
	FileName string
	Records  domain.RecordSet
	Index    *domain.PointIndex
	LoadedAt time.Time
}

// Event summarizes the dataset for downstream consumers.
func (d *Dataset) Event() domain.DatasetLoaded {
	first, last, _ := domain.DateBounds(d.Records)
	return domain.DatasetLoaded{
		FileID:      d.FileID,
		FileName:    d.FileName,
		RecordCount: len(d.Records),
		Status:      domain.CountStatuses(d.Records),
		Summary:     domain.Summarize(d.Records),
		FirstDate:   first,
		LastDate:    last,
		LoadedAt:    d.LoadedAt,
	}
}

// NewID returns a fresh random session identifier.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id looks like an identifier issued by NewID.
func ValidID(id string) bool {
	return uuid.Validate(id) == nil
}

// FileID is the content identity of an upload.
func FileID(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Store is a bounded LRU of session datasets, safe for concurrent use.
type Store struct {
	sessions *lru.Cache[string, *Dataset]
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewStore creates a store that keeps at most maxSessions datasets.
func NewStore(maxSessions int, metrics *observability.Metrics, logger *slog.Logger) *Store {
	s := &Store{metrics: metrics, logger: logger}
	s.sessions = lru.New(maxSessions, func(id string, d *Dataset) {
		logger.Info("session evicted", "session_id", id, "file_id", d.FileID)
	})
	return s
}

// Load parses data as the session's current dataset. Uploading the same bytes
// again reuses the parsed records (cached is true). A different file replaces
// the previous dataset; a file that fails to parse leaves the session empty.
func (s *Store) Load(sessionID, name string, data []byte) (ds *Dataset, cached bool, err error) {
	id := FileID(data)
	if cur, ok := s.sessions.Get(sessionID); ok && cur.FileID == id {
		s.metrics.DatasetCache.WithLabelValues("hit").Inc()
		s.logger.Debug("dataset cache hit", "session_id", sessionID, "file_id", id)
		return cur, true, nil
	}
	s.metrics.DatasetCache.WithLabelValues("miss").Inc()

	start := time.Now()
	records, err := loader.Load(name, bytes.NewReader(data))
	s.metrics.LoadDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.sessions.Remove(sessionID)
		s.metrics.SessionsActive.Set(float64(s.sessions.Len()))
		s.metrics.LoadErrors.WithLabelValues(errorKind(err)).Inc()
		return nil, false, fmt.Errorf("load %s: %w", name, err)
	}

	ds = &Dataset{
		FileID:   id,
		FileName: name,
		Records:  records,
		Index:    domain.NewPointIndex(records),
		LoadedAt: domain.Now(),
	}
	s.sessions.Put(sessionID, ds)

	s.metrics.DatasetsLoaded.Inc()
	s.metrics.RecordsLoaded.Observe(float64(len(records)))
	s.metrics.SessionsActive.Set(float64(s.sessions.Len()))
	s.logger.Info("dataset loaded",
		"session_id", sessionID,
		"file_id", id,
		"file_name", name,
		"records", len(records),
	)
	return ds, false, nil
}

// Dataset returns the session's current dataset or ErrNoFile.
func (s *Store) Dataset(sessionID string) (*Dataset, error) {
	ds, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, ErrNoFile
	}
	return ds, nil
}

// Clear forgets the session's dataset.
func (s *Store) Clear(sessionID string) {
	s.sessions.Remove(sessionID)
	s.metrics.SessionsActive.Set(float64(s.sessions.Len()))
}

// Len returns the number of sessions holding a dataset.
func (s *Store) Len() int {
	return s.sessions.Len()
}

func errorKind(err error) string {
	var le *loader.LoadError
	if errors.As(err, &le) {
		return string(le.Kind)
	}
	return "io"
}
