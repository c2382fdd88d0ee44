package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ticket-mailer/internal/config"
	"ticket-mailer/internal/logger"
	"ticket-mailer/internal/models"
)

var ErrEventNameRequired = errors.New("settings: event name is required")

// Service layers the configured event defaults over a Store.
type Service struct {
	Store    Store
	Defaults models.EventConfig
	Logger   *logger.Logger
}

func NewService(store Store, defaults config.EventDefaults, log *logger.Logger) *Service {
	return &Service{
		Store: store,
		Defaults: models.EventConfig{
			ID:            defaults.ID,
			Name:          defaults.Name,
			Address:       defaults.Address,
			Date:          defaults.Date,
			Time:          defaults.Time,
			WelcomeMsg:    defaults.WelcomeMsg,
			AssistanceMsg: defaults.AssistanceMsg,
		},
		Logger: log,
	}
}

// EventConfig returns the saved configuration, or the defaults when nothing
// was saved yet.
func (s *Service) EventConfig(ctx context.Context) (models.EventConfig, error) {
	cfg, err := s.Store.GetEventConfig(ctx)
	if errors.Is(err, ErrNotFound) {
		return s.Defaults, nil
	}
	if err != nil {
		return models.EventConfig{}, err
	}
	return cfg, nil
}

func (s *Service) SaveEventConfig(ctx context.Context, cfg models.EventConfig) (models.EventConfig, error) {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Name = strings.TrimSpace(cfg.Name)
	if cfg.Name == "" {
		return models.EventConfig{}, ErrEventNameRequired
	}
	if cfg.ID == "" {
		cfg.ID = models.DefaultEventID
	}

	if err := s.Store.SaveEventConfig(ctx, cfg); err != nil {
		return models.EventConfig{}, err
	}
	s.Logger.LogStore("SAVE", "event_config", fmt.Sprintf("event %s (%s) saved", cfg.ID, cfg.Name))
	return cfg, nil
}

func (s *Service) LastSequence(ctx context.Context) (int64, error) {
	return s.Store.LastSequence(ctx)
}

// IncrementSequence records that quantity more codes were issued and returns
// the new last value.
func (s *Service) IncrementSequence(ctx context.Context, quantity int64) (int64, error) {
	value, err := s.Store.IncrementSequence(ctx, quantity)
	if err != nil {
		return 0, err
	}
	s.Logger.LogStore("INCR", SequenceKey, fmt.Sprintf("+%d -> %d", quantity, value))
	return value, nil
}

func (s *Service) ResetSequence(ctx context.Context) error {
	if err := s.Store.ResetSequence(ctx); err != nil {
		return err
	}
	s.Logger.LogStore("RESET", SequenceKey, "sequence reset to 0")
	return nil
}
