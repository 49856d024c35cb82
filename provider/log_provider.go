package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/Digital-Creators-Team/prize-wheel-module/config"
	"github.com/Digital-Creators-Team/prize-wheel-module/events/kafka"
	"github.com/Digital-Creators-Team/prize-wheel-module/httpclient"
	"github.com/Digital-Creators-Team/prize-wheel-module/pkg/providers"
	"github.com/Digital-Creators-Team/prize-wheel-module/types"
	"github.com/mitchellh/mapstructure"
	"github.com/rs/zerolog"
)

// SpinDetails mirrors spin audit details for mapstructure decoding
type SpinDetails struct {
	SpinID    string `mapstructure:"spinId" json:"spinId"`
	PlayerID  string `mapstructure:"playerId" json:"playerId"`
	ClubID    string `mapstructure:"clubId" json:"clubId"`
	PrizeID   string `mapstructure:"prizeId" json:"prizeId"`
	PrizeName string `mapstructure:"prizeName" json:"prizeName"`
	Cost      int64  `mapstructure:"cost" json:"cost"`
}

// ClaimDetails mirrors claim audit details for mapstructure decoding
type ClaimDetails struct {
	ClaimID string `mapstructure:"claimId" json:"claimId"`
	PrizeID string `mapstructure:"prizeId" json:"prizeId"`
	Action  string `mapstructure:"action" json:"action"`
	ActorID string `mapstructure:"actorId" json:"actorId"`
}

// LogProvider implements providers.LogProvider using Kafka for writes
// and the audit service HTTP API for history reads
type LogProvider struct {
	client        *httpclient.Client
	kafkaProducer *kafka.Producer
	auditTopic    string
	logger        zerolog.Logger
}

// NewLogProvider creates a new log provider
func NewLogProvider(cfg *config.Config, kafkaProducer *kafka.Producer, logger zerolog.Logger) *LogProvider {
	auditTopic := "roulette.audit"
	if cfg.Kafka.Topics != nil {
		if t, ok := cfg.Kafka.Topics["audit"]; ok {
			auditTopic = t
		}
	}

	return &LogProvider{
		client: httpclient.New(httpclient.Config{
			BaseURL: cfg.ExternalServices.LogService.BaseURL,
			Timeout: cfg.ExternalServices.LogService.Timeout,
			Logger:  logger,
		}),
		kafkaProducer: kafkaProducer,
		auditTopic:    auditTopic,
		logger:        logger.With().Str("component", "log_provider").Logger(),
	}
}

// AuditEvent represents an audit event published to Kafka
type AuditEvent struct {
	Timestamp     time.Time   `json:"timestamp"`
	UserID        string      `json:"user_id"`
	ClubID        string      `json:"club_id,omitempty"`
	SourceService string      `json:"source_service"`
	Action        string      `json:"action"`
	Details       interface{} `json:"details"`
	Result        string      `json:"result"`
	TraceID       string      `json:"trace_id,omitempty"`
}

// LogSpin records a spin audit event
func (p *LogProvider) LogSpin(ctx context.Context, log *providers.SpinLog) error {
	if p.kafkaProducer == nil {
		p.logger.Warn().Msg("Kafka producer not configured, skipping spin log")
		return nil
	}

	event := AuditEvent{
		Timestamp:     log.Timestamp,
		UserID:        log.PlayerID,
		ClubID:        log.ClubID,
		SourceService: "prize-wheel",
		Action:        "spin",
		Details: SpinDetails{
			SpinID:    log.SpinID,
			PlayerID:  log.PlayerID,
			ClubID:    log.ClubID,
			PrizeID:   log.PrizeID,
			PrizeName: log.PrizeName,
			Cost:      log.Cost,
		},
		Result:  "success",
		TraceID: log.SpinID,
	}

	if err := p.kafkaProducer.SendMessage(p.auditTopic, log.SpinID, event); err != nil {
		p.logger.Error().Err(err).Msg("Failed to send spin log to Kafka")
		return fmt.Errorf("failed to log spin: %w", err)
	}

	return nil
}

// LogClaim records a claim transition audit event
func (p *LogProvider) LogClaim(ctx context.Context, log *providers.ClaimLog) error {
	if p.kafkaProducer == nil {
		p.logger.Warn().Msg("Kafka producer not configured, skipping claim log")
		return nil
	}

	event := AuditEvent{
		Timestamp:     log.Timestamp,
		UserID:        log.PlayerID,
		ClubID:        log.ClubID,
		SourceService: "prize-wheel",
		Action:        log.Action,
		Details: ClaimDetails{
			ClaimID: log.ClaimID,
			PrizeID: log.PrizeID,
			Action:  log.Action,
			ActorID: log.ActorID,
		},
		Result:  "success",
		TraceID: log.ClaimID,
	}

	if err := p.kafkaProducer.SendMessage(p.auditTopic, log.ClaimID, event); err != nil {
		p.logger.Error().Err(err).Msg("Failed to send claim log to Kafka")
		return fmt.Errorf("failed to log claim: %w", err)
	}

	return nil
}

// LogEntry represents an audit log entry from the log service
type LogEntry struct {
	ID            string                 `json:"id"`
	Timestamp     time.Time              `json:"timestamp"`
	UserID        string                 `json:"user_id"`
	ClubID        string                 `json:"club_id,omitempty"`
	SourceService string                 `json:"source_service"`
	Action        string                 `json:"action"`
	Details       map[string]interface{} `json:"details"`
	Result        string                 `json:"result"`
	TraceID       string                 `json:"trace_id,omitempty"`
}

// DataAuditEvent represents the response payload from the log service
type DataAuditEvent struct {
	Logs  []LogEntry `json:"logs"`
	Total int        `json:"total"`
}

// LogServiceResponse wraps the log service response
type LogServiceResponse struct {
	StatusCode int               `json:"status_code"`
	IsSuccess  bool              `json:"is_success"`
	Data       DataAuditEvent    `json:"data,omitempty"`
	Error      types.ErrorDetail `json:"error,omitempty"`
}

// GetSpinHistory returns a player's spin history from the audit service
func (p *LogProvider) GetSpinHistory(ctx context.Context, query *providers.SpinHistoryQuery) (*providers.SpinHistoryResponse, error) {
	path := fmt.Sprintf("/logs/search?source_service=prize-wheel&action=spin&offset=%d&limit=%d",
		query.Page, query.Limit)

	if query.PlayerID != "" {
		path += fmt.Sprintf("&user_id=%s", query.PlayerID)
	}
	if query.ClubID != "" {
		path += fmt.Sprintf("&club_id=%s", query.ClubID)
	}

	var result LogServiceResponse
	if err := p.client.GetJSON(ctx, path, nil, &result); err != nil {
		return nil, fmt.Errorf("failed to get spin history: %w", err)
	}

	if !result.IsSuccess {
		errMsg := "unknown error"
		if result.Error.ErrorMessage != "" {
			errMsg = result.Error.ErrorMessage
		}
		return nil, fmt.Errorf("log service error: %s", errMsg)
	}

	items := make([]providers.SpinHistoryItem, 0, len(result.Data.Logs))
	for _, entry := range result.Data.Logs {
		var details SpinDetails
		if err := mapstructure.Decode(entry.Details, &details); err != nil {
			p.logger.Warn().Err(err).Msg("Failed to decode spin details")
			continue
		}
		items = append(items, providers.SpinHistoryItem{
			SpinID:    details.SpinID,
			PrizeID:   details.PrizeID,
			PrizeName: details.PrizeName,
			Cost:      details.Cost,
			Time:      entry.Timestamp,
		})
	}

	return &providers.SpinHistoryResponse{
		Total: result.Data.Total,
		Items: items,
	}, nil
}
