package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jkstudio99/DropStockAPI/internal/domain"
	pkgkafka "github.com/jkstudio99/DropStockAPI/pkg/kafka"
)

// Kafka topic constants for account lifecycle events.
const (
	TopicUserRegistered    = "dropstock.user.registered"
	TopicUserPasswordReset = "dropstock.user.password_reset"
	TopicUserLoggedOut     = "dropstock.user.logged_out"
)

// Aggregate type constant.
const AggregateTypeUser = "user"

// Source identifier for events originating from this service.
const SourceDropStockAPI = "dropstock-api"

// UserRegisteredData is the payload for a user.registered event.
type UserRegisteredData struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// UserPasswordResetData is the payload for a user.password_reset event.
type UserPasswordResetData struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// UserLoggedOutData is the payload for a user.logged_out event.
type UserLoggedOutData struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// Producer publishes account lifecycle events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishUserRegistered publishes a user.registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User, roles []string) error {
	data := UserRegisteredData{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Roles:    roles,
	}

	event, err := pkgkafka.NewEvent(TopicUserRegistered, user.ID, AggregateTypeUser, SourceDropStockAPI, data)
	if err != nil {
		return fmt.Errorf("create user.registered event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicUserRegistered, event); err != nil {
		return fmt.Errorf("publish user.registered event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.registered event",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return nil
}

// PublishUserPasswordReset publishes a user.password_reset event.
func (p *Producer) PublishUserPasswordReset(ctx context.Context, userID, email string) error {
	data := UserPasswordResetData{
		UserID: userID,
		Email:  email,
	}

	event, err := pkgkafka.NewEvent(TopicUserPasswordReset, userID, AggregateTypeUser, SourceDropStockAPI, data)
	if err != nil {
		return fmt.Errorf("create user.password_reset event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicUserPasswordReset, event); err != nil {
		return fmt.Errorf("publish user.password_reset event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.password_reset event",
		slog.String("user_id", userID),
	)

	return nil
}

// PublishUserLoggedOut publishes a user.logged_out event.
func (p *Producer) PublishUserLoggedOut(ctx context.Context, userID, username string) error {
	data := UserLoggedOutData{
		UserID:   userID,
		Username: username,
	}

	event, err := pkgkafka.NewEvent(TopicUserLoggedOut, userID, AggregateTypeUser, SourceDropStockAPI, data)
	if err != nil {
		return fmt.Errorf("create user.logged_out event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicUserLoggedOut, event); err != nil {
		return fmt.Errorf("publish user.logged_out event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.logged_out event",
		slog.String("user_id", userID),
		slog.String("username", username),
	)

	return nil
}
