package payment

import (
	"context"
	"database/sql"
	"encoding/json"
)

type Repository interface {
	SavePayment(ctx context.Context, p *Payment) error
	UpdatePaymentStatus(ctx context.Context, externalID, status string) error
	GetPaymentByOrder(ctx context.Context, orderID string) (*Payment, error)

	// SavePaymentWebhook records an inbound provider event, keyed by
	// (provider, event_id). isDuplicate is true only when the event was
	// already processed to completion; redeliveries of an event whose
	// first attempt failed come back with the original row id so the
	// caller can retry.
	SavePaymentWebhook(
		ctx context.Context,
		provider string,
		eventID string,
		eventType string,
		externalID string,
		payload json.RawMessage,
		signatureValid bool,
	) (webhookID int64, isDuplicate bool, err error)

	MarkWebhookProcessed(ctx context.Context, webhookID int64) error
	MarkWebhookFailed(ctx context.Context, webhookID int64, reason string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) SavePayment(ctx context.Context, p *Payment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payments (order_id, provider, external_id, amount, status)
		VALUES ($1, $2, $3, $4, $5)
	`,
		p.OrderID, p.Provider, p.ExternalID, p.Amount, p.Status,
	)
	return err
}

func (r *repository) UpdatePaymentStatus(ctx context.Context, externalID, status string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE payments SET status = $1, updated_at = now() WHERE external_id = $2
	`, status, externalID)
	return err
}

func (r *repository) GetPaymentByOrder(ctx context.Context, orderID string) (*Payment, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, order_id, provider, external_id, amount, status, created_at, updated_at
		FROM payments WHERE order_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, orderID)

	var p Payment
	err := row.Scan(
		&p.ID, &p.OrderID, &p.Provider, &p.ExternalID,
		&p.Amount, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) SavePaymentWebhook(
	ctx context.Context,
	provider string,
	eventID string,
	eventType string,
	externalID string,
	payload json.RawMessage,
	signatureValid bool,
) (int64, bool, error) {

	// A redelivered event only counts as a duplicate once the original
	// delivery was fully processed. Providers retry exactly because a
	// delivery can fail mid-flight, so an unprocessed row must stay
	// re-processable.
	const q = `
	INSERT INTO payment_webhooks (
		provider,
		event_type,
		event_id,
		external_id,
		signature_valid,
		payload
	)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (provider, event_id)
	DO UPDATE SET payload = EXCLUDED.payload
	RETURNING id, processed_at IS NOT NULL;
	`

	var (
		id        int64
		processed bool
	)
	err := r.db.QueryRowContext(
		ctx,
		q,
		provider,
		eventType,
		eventID,
		externalID,
		signatureValid,
		payload,
	).Scan(&id, &processed)
	if err != nil {
		return 0, false, err
	}

	return id, processed, nil
}

func (r *repository) MarkWebhookProcessed(
	ctx context.Context,
	webhookID int64,
) error {

	const q = `
	UPDATE payment_webhooks
	SET processed_at = now()
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, webhookID)
	return err
}

func (r *repository) MarkWebhookFailed(
	ctx context.Context,
	webhookID int64,
	reason string,
) error {

	const q = `
	UPDATE payment_webhooks
	SET process_error = $2
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, webhookID, reason)
	return err
}
