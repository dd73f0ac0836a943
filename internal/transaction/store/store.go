package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sokopay/sokopay/internal/transaction"
)

// activeCodeConstraint is the partial unique index on transaction_code
// scoped to non-rejected transactions. Violations become ErrCodeConflict so
// the duplicate-code check-then-act race fails closed at the storage layer.
const activeCodeConstraint = "transactions_code_active_key"

// DBTX is satisfied by *sql.DB and *sql.Tx, so the store can run inside a
// transaction the caller owns.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db DBTX
}

func New(db DBTX) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectTransactionColumns = `
	t.id, t.seller_id, t.product_id, t.item_name, t.item_description, t.item_images,
	t.amount, t.currency, t.buyer_name, t.buyer_phone, t.buyer_email, t.buyer_address,
	t.payment_method, t.platform_fee, t.seller_payout, t.fee_percent,
	t.status, t.verification_status, t.transaction_code, t.screenshot_url,
	t.verification_details, t.submission_attempts,
	t.rejection_reason, t.admin_rejection_reason, t.approved_by,
	t.created_at, t.updated_at, t.paid_at, t.approved_at, t.rejected_at
`

// scanTransaction reads a transaction row in the selectTransactionColumns order.
func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var (
		tx          transaction.Transaction
		statusStr   string
		vStatus     sql.NullString
		images      []byte
		details     []byte
		buyerEmail  sql.NullString
		buyerAddr   sql.NullString
		code        sql.NullString
		screenshot  sql.NullString
		rejReason   sql.NullString
		adminReason sql.NullString
	)

	if err := s.Scan(
		&tx.ID, &tx.SellerID, &tx.ProductID, &tx.ItemName, &tx.ItemDescription, &images,
		&tx.Amount, &tx.Currency, &tx.BuyerName, &tx.BuyerPhone, &buyerEmail, &buyerAddr,
		&tx.PaymentMethod, &tx.PlatformFee, &tx.SellerPayout, &tx.FeePercent,
		&statusStr, &vStatus, &code, &screenshot,
		&details, &tx.SubmissionAttempts,
		&rejReason, &adminReason, &tx.ApprovedBy,
		&tx.CreatedAt, &tx.UpdatedAt, &tx.PaidAt, &tx.ApprovedAt, &tx.RejectedAt,
	); err != nil {
		return nil, err
	}

	tx.Status = transaction.Status(statusStr)
	tx.VerificationStatus = transaction.VerificationStatus(vStatus.String)
	tx.BuyerEmail = buyerEmail.String
	tx.BuyerAddress = buyerAddr.String
	tx.TransactionCode = code.String
	tx.ScreenshotURL = screenshot.String
	tx.RejectionReason = rejReason.String
	tx.AdminRejectionReason = adminReason.String
	tx.VerificationDetails = details

	if len(images) > 0 {
		if err := json.Unmarshal(images, &tx.ItemImages); err != nil {
			return nil, fmt.Errorf("decoding item images: %w", err)
		}
	}

	return &tx, nil
}

func (s *Store) CreateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	images, err := json.Marshal(tx.ItemImages)
	if err != nil {
		return fmt.Errorf("encoding item images: %w", err)
	}

	query := `
		INSERT INTO transactions (
			id, seller_id, product_id, item_name, item_description, item_images,
			amount, currency, buyer_name, buyer_phone, buyer_email, buyer_address,
			payment_method, platform_fee, seller_payout, fee_percent, status,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err = s.db.QueryRowContext(ctx, query,
		tx.ID, tx.SellerID, tx.ProductID, tx.ItemName, tx.ItemDescription, images,
		tx.Amount, tx.Currency, tx.BuyerName, tx.BuyerPhone,
		nullable(tx.BuyerEmail), nullable(tx.BuyerAddress),
		tx.PaymentMethod, tx.PlatformFee, tx.SellerPayout, tx.FeePercent, tx.Status,
	).Scan(&tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating transaction: %w", err)
	}

	return nil
}

func (s *Store) GetTransaction(ctx context.Context, id string) (*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + ` FROM transactions t WHERE t.id = $1`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return tx, nil
}

func (s *Store) ListTransactions(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + ` FROM transactions t WHERE 1=1`

	var args []any

	argIdx := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND t.status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.VerificationStatus != nil {
		query += fmt.Sprintf(" AND t.verification_status = $%d", argIdx)

		args = append(args, *filter.VerificationStatus)
		argIdx++
	}

	if filter.SellerID != nil {
		query += fmt.Sprintf(" AND t.seller_id = $%d", argIdx)

		args = append(args, *filter.SellerID)
		argIdx++
	}

	query += " ORDER BY t.created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []*transaction.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}

	return txs, nil
}

func (s *Store) FindByCode(ctx context.Context, code, excludeID string) ([]transaction.CodeMatch, error) {
	query := `
		SELECT id, status, created_at
		FROM transactions
		WHERE transaction_code = $1 AND id <> $2
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, code, excludeID)
	if err != nil {
		return nil, fmt.Errorf("finding transactions by code: %w", err)
	}
	defer rows.Close()

	var matches []transaction.CodeMatch

	for rows.Next() {
		var m transaction.CodeMatch

		var statusStr string

		if err := rows.Scan(&m.ID, &statusStr, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning code match: %w", err)
		}

		m.Status = transaction.Status(statusStr)
		matches = append(matches, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating code matches: %w", err)
	}

	return matches, nil
}

func (s *Store) ApplySubmission(ctx context.Context, id string, sub transaction.Submission) error {
	query := `
		UPDATE transactions
		SET transaction_code = $1,
			payment_method = $2,
			buyer_phone = $3,
			buyer_name = $4,
			screenshot_url = COALESCE(NULLIF($5, ''), screenshot_url),
			verification_status = $6,
			verification_details = $7,
			submission_attempts = submission_attempts + 1,
			status = $8,
			updated_at = NOW()
		WHERE id = $9
	`

	res, err := s.db.ExecContext(ctx, query,
		sub.Code, sub.PaymentMethod, sub.BuyerPhone, sub.BuyerName, sub.ScreenshotURL,
		sub.VerificationStatus, []byte(sub.VerificationDetails), transaction.StatusProcessing, id,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == activeCodeConstraint {
			return transaction.ErrCodeConflict
		}

		return fmt.Errorf("applying submission: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("applying submission: %w", err)
	}

	if affected == 0 {
		return transaction.ErrNotFound
	}

	return nil
}

func (s *Store) MarkPaid(ctx context.Context, id string, params transaction.ApproveParams) error {
	query := `
		UPDATE transactions
		SET status = $1,
			verification_status = $2,
			platform_fee = $3,
			seller_payout = $4,
			fee_percent = $5,
			approved_by = $6,
			approved_at = $7,
			paid_at = $8,
			updated_at = NOW()
		WHERE id = $9 AND status = $10
	`

	res, err := s.db.ExecContext(ctx, query,
		transaction.StatusPaid, transaction.VerificationApproved,
		params.PlatformFee, params.SellerPayout, params.FeePercent,
		params.ApprovedBy, params.ApprovedAt, params.PaidAt,
		id, transaction.StatusProcessing,
	)
	if err != nil {
		return fmt.Errorf("marking transaction paid: %w", err)
	}

	return s.checkAdjudicated(ctx, id, res)
}

func (s *Store) MarkRejected(ctx context.Context, id string, params transaction.RejectParams) error {
	query := `
		UPDATE transactions
		SET status = $1,
			verification_status = $2,
			rejection_reason = $3,
			admin_rejection_reason = $3,
			rejected_at = $4,
			updated_at = NOW()
		WHERE id = $5 AND status = $6
	`

	res, err := s.db.ExecContext(ctx, query,
		transaction.StatusPending, transaction.VerificationRejected,
		params.Reason, params.RejectedAt,
		id, transaction.StatusProcessing,
	)
	if err != nil {
		return fmt.Errorf("marking transaction rejected: %w", err)
	}

	return s.checkAdjudicated(ctx, id, res)
}

// checkAdjudicated distinguishes a missing transaction from one that is not
// in the processing state after a conditional adjudication update matched
// zero rows.
func (s *Store) checkAdjudicated(ctx context.Context, id string, res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking adjudication result: %w", err)
	}

	if affected > 0 {
		return nil
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM transactions WHERE id = $1)", id,
	).Scan(&exists); err != nil {
		return fmt.Errorf("checking transaction existence: %w", err)
	}

	if !exists {
		return transaction.ErrNotFound
	}

	return transaction.ErrNotAwaitingApproval
}

func nullable(s string) any {
	if s == "" {
		return nil
	}

	return s
}
