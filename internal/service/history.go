package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/orchid-health/breastcare-backend/internal/security"
	"github.com/orchid-health/breastcare-backend/pkg/model"
	"go.uber.org/zap"
)

// historyKey is the single key under which the whole record list is stored.
const historyKey = "assessment_history"

// KeyValueStore is the asynchronous persistence surface the history store
// consumes. *repository.KVRepository satisfies it. Both operations may fail;
// the history store swallows those failures.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// HistoryStore owns the ordered, most-recent-first list of completed
// assessment records and its persisted serialization. It is a process-wide
// singleton with load-once-then-cache semantics.
//
// Persistence is deliberately best-effort: a failed load is indistinguishable
// from "no history yet", and a failed write never rolls back the in-memory
// prepend. The UI stays responsive; durability is secondary.
type HistoryStore struct {
	kv        KeyValueStore
	encryptor *security.Encryptor
	logger    *zap.Logger

	mu      sync.Mutex
	records []model.AssessmentRecord
	loaded  bool

	// writeMu serializes full-list writes so concurrent appends cannot
	// interleave into a lost update; each write carries a fresh snapshot,
	// so the last writer wins.
	writeMu      sync.Mutex
	writeTimeout time.Duration
}

// NewHistoryStore creates a history store over the given key-value backend.
// encryptor may be nil; the serialized list is then stored as plain JSON.
func NewHistoryStore(kv KeyValueStore, encryptor *security.Encryptor, logger *zap.Logger) *HistoryStore {
	return &HistoryStore{
		kv:           kv,
		encryptor:    encryptor,
		logger:       logger,
		writeTimeout: 10 * time.Second,
	}
}

// Load reads the persisted history into memory. It runs at most once; any
// read, decrypt or parse failure leaves the in-memory list at its prior
// value and is logged, never surfaced.
func (s *HistoryStore) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return
	}
	s.loaded = true

	raw, err := s.kv.Get(ctx, historyKey)
	if err != nil {
		s.logger.Warn("history load failed, starting empty", zap.Error(err))
		return
	}

	if s.encryptor != nil {
		raw, err = s.encryptor.Decrypt(raw)
		if err != nil {
			s.logger.Warn("history blob could not be decrypted", zap.Error(err))
			return
		}
	}

	var records []model.AssessmentRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		s.logger.Warn("history blob could not be parsed", zap.Error(err))
		return
	}

	s.records = records
	s.logger.Info("assessment history loaded", zap.Int("records", len(records)))
}

// Append prepends the record in memory and persists the full list
// asynchronously. The caller gets control back immediately; the history list
// may not be durable yet when this returns.
func (s *HistoryStore) Append(record model.AssessmentRecord) {
	s.mu.Lock()
	s.records = append([]model.AssessmentRecord{record}, s.records...)
	s.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
		defer cancel()
		if err := s.persist(ctx); err != nil {
			s.logger.Warn("history persistence failed",
				zap.String("record_id", record.ID),
				zap.Error(err),
			)
		}
	}()
}

// Flush synchronously writes the current list and reports the outcome.
// Production callers ignore durability; tests and the shutdown path await it.
func (s *HistoryStore) Flush(ctx context.Context) error {
	return s.persist(ctx)
}

// Records returns a snapshot copy, most recent first.
func (s *HistoryStore) Records() []model.AssessmentRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.AssessmentRecord, len(s.records))
	copy(out, s.records)
	return out
}

// ExportJSON serializes the current history for a data export request.
func (s *HistoryStore) ExportJSON() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return json.MarshalIndent(s.records, "", "  ")
}

// Clear erases the history in memory and persists the empty list
// synchronously. Unlike Append, erasure surfaces persistence errors: a
// privacy request must not silently leave data behind.
func (s *HistoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.records = nil
	s.mu.Unlock()
	return s.persist(ctx)
}

// persist writes a snapshot of the current list. The snapshot is taken while
// holding writeMu, so even when appends race for the lock every write
// reflects at least the state the previous one did: last write wins.
func (s *HistoryStore) persist(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	records := s.records
	if records == nil {
		records = []model.AssessmentRecord{}
	}
	data, err := json.Marshal(records)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	payload := string(data)
	if s.encryptor != nil {
		payload, err = s.encryptor.Encrypt(payload)
		if err != nil {
			return err
		}
	}
	return s.kv.Set(ctx, historyKey, payload)
}
