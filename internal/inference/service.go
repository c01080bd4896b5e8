package inference

import (
	"context"
	"sync"

	"github.com/brightpath/wellbeing-worker/internal/logger"
)

// Service serializes access to a Classifier. The sidecar scores one batch at
// a time; overlapping runs queue here instead of racing.
type Service struct {
	mu         sync.Mutex
	classifier Classifier
	log        *logger.Logger
}

func NewService(classifier Classifier, baseLog *logger.Logger) *Service {
	return &Service{
		classifier: classifier,
		log:        baseLog.With("service", "InferenceService"),
	}
}

func (s *Service) Classify(ctx context.Context, inputs [][]float64, topK int) ([]Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log.Debug("classifying batch", "rows", len(inputs), "top_k", topK)
	return s.classifier.Classify(ctx, inputs, topK)
}
