package usecase

import (
	"time"

	"github.com/kirillkom/legal-doc-assistant/internal/core/domain"
)

// NopObserver discards pipeline observations.
type NopObserver struct{}

func (NopObserver) ObserveStage(domain.IngestStage, time.Duration, error) {}
func (NopObserver) ObservePoll(int, domain.FileState)                   {}
func (NopObserver) ObserveOutcome(string, domain.ErrorKind)             {}
func (NopObserver) ObserveCleanup(string, error)                        {}
