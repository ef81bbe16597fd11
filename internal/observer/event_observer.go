package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// TranslationEvent represents one event in a translation request's life.
type TranslationEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	RequestID      string                 `json:"request_id,omitempty"`
	Source         string                 `json:"source,omitempty"` // upload | url | text | batch
	ProcessingTime time.Duration          `json:"processing_time"`
	Success        bool                   `json:"success"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of translation event
type EventType string

const (
	// TranslationStarted when a translation request begins
	TranslationStarted EventType = "translation_started"
	// TranslationCompleted when a translation finishes successfully
	TranslationCompleted EventType = "translation_completed"
	// TranslationFailed when a translation fails
	TranslationFailed EventType = "translation_failed"
	// ParseFallback when the response parser degraded to whole-text output
	ParseFallback EventType = "parse_fallback"
	// ArchiveFailed when best-effort attachment archiving fails
	ArchiveFailed EventType = "archive_failed"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event TranslationEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	NotifyObservers(ctx context.Context, event TranslationEvent)
}

// LoggingObserver logs translation events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{logger: logger}
}

// OnEvent handles translation events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event TranslationEvent) {
	fields := logrus.Fields{
		"event_type":      event.EventType,
		"request_id":      event.RequestID,
		"source":          event.Source,
		"processing_time": event.ProcessingTime,
		"success":         event.Success,
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	switch event.EventType {
	case TranslationStarted:
		o.logger.WithFields(fields).Debug("Translation started")
	case TranslationCompleted:
		o.logger.WithFields(fields).Info("Translation completed")
	case TranslationFailed:
		o.logger.WithFields(fields).Error("Translation failed")
	case ParseFallback:
		o.logger.WithFields(fields).Warn("Response parse degraded to whole-text fallback")
	case ArchiveFailed:
		o.logger.WithFields(fields).Warn("Attachment archive failed")
	default:
		o.logger.WithFields(fields).Info("Translation event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsObserver collects counters from translation events
type MetricsObserver struct {
	mu                  sync.RWMutex
	totalTranslations   int64
	successfulCount     int64
	failedCount         int64
	parseFallbacks      int64
	archiveFailures     int64
	totalProcessingTime time.Duration
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{}
}

// OnEvent handles translation events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event TranslationEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case TranslationStarted:
		o.totalTranslations++
	case TranslationCompleted:
		o.successfulCount++
		o.totalProcessingTime += event.ProcessingTime
	case TranslationFailed:
		o.failedCount++
	case ParseFallback:
		o.parseFallbacks++
	case ArchiveFailed:
		o.archiveFailures++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns current counters
func (o *MetricsObserver) GetMetrics() map[string]interface{} {
	o.mu.RLock()
	defer o.mu.RUnlock()

	avgProcessingTime := time.Duration(0)
	if o.successfulCount > 0 {
		avgProcessingTime = o.totalProcessingTime / time.Duration(o.successfulCount)
	}

	return map[string]interface{}{
		"total_translations":      o.totalTranslations,
		"successful_translations": o.successfulCount,
		"failed_translations":     o.failedCount,
		"parse_fallbacks":         o.parseFallbacks,
		"archive_failures":        o.archiveFailures,
		"avg_processing_time":     avgProcessingTime.String(),
	}
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{observers: make([]Observer, 0)}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// NotifyObservers notifies all observers of an event
func (p *EventPublisher) NotifyObservers(ctx context.Context, event TranslationEvent) {
	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	for _, observer := range observers {
		observer.OnEvent(ctx, event)
	}
}
