package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/whytehoux-projecty/MIS/internal/domain"
	"github.com/whytehoux-projecty/MIS/internal/repository"
)

type interestRequestRepository struct {
	db *sql.DB
}

func NewInterestRequestRepository(db *sql.DB) repository.InterestRequestRepository {
	return &interestRequestRepository{db: db}
}

const interestColumns = `id, given_name, middle_name, family_name, alias, gender, marital_status,
	primary_email, primary_phone, has_referral, referral_member_id,
	face_photo_id, government_id_type, government_id_photo_id,
	source, status, reviewed_by, reviewed_at, admin_notes, rejection_reason,
	info_request_message, info_response, invitation_id, created_at, updated_at`

func (r *interestRequestRepository) Create(ctx context.Context, req *domain.InterestRequest) error {
	query := `INSERT INTO interest_requests
		(given_name, middle_name, family_name, alias, gender, marital_status,
		 primary_email, primary_phone, has_referral, referral_member_id,
		 face_photo_id, government_id_type, government_id_photo_id,
		 source, status, reviewed_by, reviewed_at, admin_notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $19)
		RETURNING id`
	now := time.Now()
	req.CreatedAt = now
	req.UpdatedAt = now
	return r.db.QueryRowContext(ctx, query,
		req.GivenName, nullString(req.MiddleName), req.FamilyName, nullString(req.Alias),
		req.Gender, req.MaritalStatus,
		req.PrimaryEmail, req.PrimaryPhone, req.HasReferral, nullString(req.ReferralMemberID),
		nullString(req.FacePhotoID), nullString(req.GovernmentIDType), nullString(req.GovernmentIDPhotoID),
		req.Source, req.Status, nullString(req.ReviewedBy), req.ReviewedAt, nullString(req.AdminNotes),
		now,
	).Scan(&req.ID)
}

func (r *interestRequestRepository) GetByID(ctx context.Context, id int64) (*domain.InterestRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM interest_requests WHERE id = $1`, interestColumns)
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *interestRequestRepository) GetByEmail(ctx context.Context, email string) (*domain.InterestRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM interest_requests WHERE primary_email = $1 ORDER BY created_at DESC LIMIT 1`, interestColumns)
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

func (r *interestRequestRepository) TransitionStatus(ctx context.Context, id int64, from, to domain.InterestStatus, stamp *domain.ReviewStamp) error {
	if stamp == nil {
		stamp = &domain.ReviewStamp{}
	}
	var reviewedAt, invitationID interface{}
	if !stamp.ReviewedAt.IsZero() {
		reviewedAt = stamp.ReviewedAt
	}
	if stamp.InvitationID != nil {
		invitationID = *stamp.InvitationID
	}
	query := `UPDATE interest_requests SET
		status = $3,
		reviewed_by = COALESCE(NULLIF($4, ''), reviewed_by),
		reviewed_at = COALESCE($5, reviewed_at),
		admin_notes = COALESCE(NULLIF($6, ''), admin_notes),
		rejection_reason = COALESCE(NULLIF($7, ''), rejection_reason),
		info_request_message = COALESCE(NULLIF($8, ''), info_request_message),
		info_response = COALESCE(NULLIF($9, ''), info_response),
		invitation_id = COALESCE($10, invitation_id),
		updated_at = NOW()
		WHERE id = $1 AND status = $2`
	res, err := r.db.ExecContext(ctx, query, id, from, to,
		stamp.ReviewedBy, reviewedAt, stamp.AdminNotes, stamp.RejectionReason,
		stamp.InfoRequestMessage, stamp.InfoResponse, invitationID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: request %d is not %s", domain.ErrConflict, id, from)
	}
	return nil
}

func (r *interestRequestRepository) List(ctx context.Context, status domain.InterestStatus, limit, offset int32) ([]domain.InterestRequest, error) {
	var rows *sql.Rows
	var err error
	if status != "" {
		query := fmt.Sprintf(`SELECT %s FROM interest_requests WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, interestColumns)
		rows, err = r.db.QueryContext(ctx, query, status, limit, offset)
	} else {
		query := fmt.Sprintf(`SELECT %s FROM interest_requests ORDER BY created_at DESC LIMIT $1 OFFSET $2`, interestColumns)
		rows, err = r.db.QueryContext(ctx, query, limit, offset)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []domain.InterestRequest
	for rows.Next() {
		req, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, *req)
	}
	return reqs, rows.Err()
}

func (r *interestRequestRepository) CountByStatus(ctx context.Context) (map[domain.InterestStatus]int, error) {
	query := `SELECT status, COUNT(id) FROM interest_requests GROUP BY status`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.InterestStatus]int)
	for rows.Next() {
		var status domain.InterestStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *interestRequestRepository) ExpireWithLapsedInvitations(ctx context.Context, now time.Time) (int64, error) {
	// Requests whose invitation window (or registration session) lapsed
	// before anyone redeemed it.
	query := `UPDATE interest_requests r SET status = 'EXPIRED', updated_at = NOW()
		FROM invitations i
		WHERE r.invitation_id = i.id
		  AND r.status IN ('INVITED', 'REGISTRATION_STARTED')
		  AND i.is_used = FALSE
		  AND (i.expires_at < $1 OR (i.session_expires_at IS NOT NULL AND i.session_expires_at < $1))`
	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *interestRequestRepository) ExpireInfoRequestedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `UPDATE interest_requests SET status = 'EXPIRED', updated_at = NOW()
		WHERE status = 'INFO_REQUESTED' AND reviewed_at < $1`
	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *interestRequestRepository) scanOne(row *sql.Row) (*domain.InterestRequest, error) {
	req, err := r.scanRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return req, err
}

func (r *interestRequestRepository) scanRow(row rowScanner) (*domain.InterestRequest, error) {
	req := &domain.InterestRequest{}
	var middleName, alias, referralID, facePhotoID, govIDType, govIDPhotoID sql.NullString
	var reviewedBy, adminNotes, rejectionReason, infoMessage, infoResponse sql.NullString
	var reviewedAt sql.NullTime
	var invitationID sql.NullInt64
	err := row.Scan(
		&req.ID, &req.GivenName, &middleName, &req.FamilyName, &alias,
		&req.Gender, &req.MaritalStatus,
		&req.PrimaryEmail, &req.PrimaryPhone, &req.HasReferral, &referralID,
		&facePhotoID, &govIDType, &govIDPhotoID,
		&req.Source, &req.Status, &reviewedBy, &reviewedAt, &adminNotes,
		&rejectionReason, &infoMessage, &infoResponse, &invitationID,
		&req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	req.MiddleName = middleName.String
	req.Alias = alias.String
	req.ReferralMemberID = referralID.String
	req.FacePhotoID = facePhotoID.String
	req.GovernmentIDType = govIDType.String
	req.GovernmentIDPhotoID = govIDPhotoID.String
	req.ReviewedBy = reviewedBy.String
	req.AdminNotes = adminNotes.String
	req.RejectionReason = rejectionReason.String
	req.InfoRequestMessage = infoMessage.String
	req.InfoResponse = infoResponse.String
	if reviewedAt.Valid {
		req.ReviewedAt = &reviewedAt.Time
	}
	if invitationID.Valid {
		req.InvitationID = &invitationID.Int64
	}
	return req, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
