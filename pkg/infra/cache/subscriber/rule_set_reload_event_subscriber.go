package subscriber

import (
	"context"

	appSafety "github.com/NeuralTrust/DoctourGate/pkg/app/safety"
	"github.com/NeuralTrust/DoctourGate/pkg/domain/safety"
	infraCache "github.com/NeuralTrust/DoctourGate/pkg/infra/cache"
	"github.com/NeuralTrust/DoctourGate/pkg/infra/cache/event"
	"github.com/sirupsen/logrus"
)

//go:generate mockery --name=RuleReloader --dir=. --output=./mocks --filename=rule_reloader_mock.go --case=underscore --with-expecter
type RuleReloader interface {
	Reload(ctx context.Context, path, trigger string) (*safety.RuleSet, error)
}

type RuleSetReloadEventSubscriber struct {
	logger     *logrus.Logger
	reloader   RuleReloader
	instanceID string
}

func NewRuleSetReloadEventSubscriber(
	logger *logrus.Logger,
	reloader RuleReloader,
	instanceID string,
) infraCache.EventSubscriber[event.RuleSetReloadEvent] {
	return &RuleSetReloadEventSubscriber{
		logger:     logger,
		reloader:   reloader,
		instanceID: instanceID,
	}
}

func (s *RuleSetReloadEventSubscriber) OnEvent(ctx context.Context, evt event.RuleSetReloadEvent) error {
	if evt.Origin == s.instanceID {
		return nil
	}
	s.logger.WithFields(logrus.Fields{
		"origin": evt.Origin,
		"path":   evt.Path,
	}).Debug("reloading safety rules on request from peer")

	_, err := s.reloader.Reload(ctx, evt.Path, appSafety.TriggerEvent)
	return err
}
