package expense

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	userDatamodel "github.com/fieldserve/reimbursement/internal/core/datamodel/user"
	"github.com/fieldserve/reimbursement/internal/storage"
)

// Repository defines the data access methods for claims.
type Repository interface {
	Create(claim *Claim) error
	GetByID(id int64) (*Claim, error)
	List(filter ListFilter) ([]*Claim, error)
	SaveApproval(claim *Claim) error
	SaveRejection(claim *Claim) error
}

// FileUpload is one multipart image part from the submission form.
type FileUpload struct {
	Filename string
	Reader   io.Reader
}

// Service handles claim submission and the approve/reject transitions.
type Service struct {
	repo   Repository
	store  storage.Storage
	clock  *ApprovalClock
	logger *slog.Logger
}

func NewService(repo Repository, store storage.Storage, clock *ApprovalClock, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		store:  store,
		clock:  clock,
		logger: logger,
	}
}

// SubmitClaim stores the uploaded images and creates a PENDING claim. One
// receipt is mandatory, up to three further evidence shots are allowed.
func (s *Service) SubmitClaim(ctx context.Context, userID int64, dto SubmitClaimDTO, receipt *FileUpload, evidence []FileUpload) (*Claim, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("claim validation failed", "error", err, "user_id", userID)
		return nil, err
	}
	if receipt == nil {
		return nil, ErrMissingReceipt
	}
	if len(evidence) > MaxEvidenceAttachments {
		return nil, ErrTooManyEvidence
	}

	attachments := make([]Attachment, 0, 1+len(evidence))

	receiptURL, err := s.storeUpload(ctx, receipt)
	if err != nil {
		s.logger.Error("failed to store receipt", "error", err, "user_id", userID)
		return nil, fmt.Errorf("store receipt: %w", err)
	}
	attachments = append(attachments, Attachment{Type: AttachmentTypeReceipt, FileURL: receiptURL})

	for i := range evidence {
		url, err := s.storeUpload(ctx, &evidence[i])
		if err != nil {
			s.logger.Error("failed to store evidence", "error", err, "user_id", userID)
			return nil, fmt.Errorf("store evidence: %w", err)
		}
		attachments = append(attachments, Attachment{Type: AttachmentTypeEvidence, FileURL: url})
	}

	now := time.Now()
	claim := &Claim{
		UserID:      userID,
		CategoryID:  dto.CategoryID,
		Amount:      dto.Amount,
		Description: dto.Description,
		Status:      StatusPending,
		ExpenseDate: dto.ExpenseDate,
		Attachments: attachments,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(claim); err != nil {
		s.logger.Error("failed to create claim", "error", err, "user_id", userID)
		return nil, err
	}

	s.logger.Info("claim submitted",
		"claim_id", claim.ID,
		"user_id", userID,
		"amount", claim.Amount,
		"attachments", len(attachments))

	return claim, nil
}

func (s *Service) storeUpload(ctx context.Context, upload *FileUpload) (string, error) {
	name := uuid.NewString() + filepath.Ext(upload.Filename)
	return s.store.Store(ctx, name, upload.Reader)
}

// GetClaimByID retrieves a claim, restricting technicians to their own.
func (s *Service) GetClaimByID(id, requesterID int64, role string) (*Claim, error) {
	claim, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get claim", "error", err, "claim_id", id)
		return nil, ErrClaimNotFound
	}

	if role != userDatamodel.RoleAdmin && claim.UserID != requesterID {
		s.logger.Warn("unauthorized claim access", "claim_id", id, "user_id", requesterID)
		return nil, ErrClaimNotFound
	}

	return claim, nil
}

// ListClaims returns claims for the filter. Technicians only ever see their
// own regardless of the filter they send.
func (s *Service) ListClaims(filter ListFilter, requesterID int64, role string) ([]*Claim, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if role != userDatamodel.RoleAdmin {
		filter.UserID = requesterID
	}

	claims, err := s.repo.List(filter)
	if err != nil {
		s.logger.Error("failed to list claims", "error", err)
		return nil, err
	}
	return claims, nil
}

// ApproveClaim moves a pending claim to APPROVED, stamping it with the
// shared approval clock and optionally correcting the amount.
func (s *Service) ApproveClaim(id, adminID int64, dto ApproveClaimDTO) (*ApproveResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	claim, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("claim not found for approval", "error", err, "claim_id", id)
		return nil, ErrClaimNotFound
	}

	if err := claim.Approve(adminID, dto.CorrectedAmount, s.clock.Now()); err != nil {
		s.logger.Warn("cannot approve claim",
			"claim_id", id,
			"status", claim.Status,
			"error", err)
		return nil, err
	}

	if err := s.repo.SaveApproval(claim); err != nil {
		s.logger.Error("failed to persist approval", "error", err, "claim_id", id)
		return nil, err
	}

	s.logger.Info("claim approved",
		"claim_id", id,
		"admin_id", adminID,
		"amount", claim.Amount,
		"approved_at", claim.ApprovedAt)

	return &ApproveResponse{ID: claim.ID, Status: claim.Status, ApprovedAt: *claim.ApprovedAt}, nil
}

// RejectClaim moves a pending claim to REJECTED with a mandatory reason the
// technician can read back later.
func (s *Service) RejectClaim(id, adminID int64, dto RejectClaimDTO) (*RejectResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	claim, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("claim not found for rejection", "error", err, "claim_id", id)
		return nil, ErrClaimNotFound
	}

	if err := claim.Reject(dto.Reason, time.Now()); err != nil {
		s.logger.Warn("cannot reject claim",
			"claim_id", id,
			"status", claim.Status,
			"error", err)
		return nil, err
	}

	if err := s.repo.SaveRejection(claim); err != nil {
		s.logger.Error("failed to persist rejection", "error", err, "claim_id", id)
		return nil, err
	}

	s.logger.Info("claim rejected",
		"claim_id", id,
		"admin_id", adminID,
		"reason", dto.Reason)

	return &RejectResponse{ID: claim.ID, Status: claim.Status}, nil
}
