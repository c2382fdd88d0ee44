package models

import (
	"time"

	"github.com/uptrace/bun"
)

// SequenceCounter persists the advisory last-used ticket sequence.
type SequenceCounter struct {
	bun.BaseModel `bun:"table:sequence_counters"`

	Name      string    `bun:"name,pk"`
	Value     int64     `bun:"value,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// EventSetting persists the single saved event configuration.
type EventSetting struct {
	bun.BaseModel `bun:"table:event_settings"`

	ID            int64     `bun:"id,pk"`
	EventID       string    `bun:"event_id"`
	Name          string    `bun:"name"`
	Address       string    `bun:"address"`
	Date          string    `bun:"event_date"`
	Time          string    `bun:"event_time"`
	WelcomeMsg    string    `bun:"welcome_msg"`
	AssistanceMsg string    `bun:"assistance_msg"`
	UpdatedAt     time.Time `bun:"updated_at,notnull"`
}

func (s EventSetting) ToEventConfig() EventConfig {
	return EventConfig{
		ID:            s.EventID,
		Name:          s.Name,
		Address:       s.Address,
		Date:          s.Date,
		Time:          s.Time,
		WelcomeMsg:    s.WelcomeMsg,
		AssistanceMsg: s.AssistanceMsg,
	}
}

func EventSettingFrom(cfg EventConfig) EventSetting {
	return EventSetting{
		ID:            1,
		EventID:       cfg.ID,
		Name:          cfg.Name,
		Address:       cfg.Address,
		Date:          cfg.Date,
		Time:          cfg.Time,
		WelcomeMsg:    cfg.WelcomeMsg,
		AssistanceMsg: cfg.AssistanceMsg,
		UpdatedAt:     time.Now(),
	}
}
