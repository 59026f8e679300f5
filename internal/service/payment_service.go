package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/hikma-academy/academy-api/internal/dto"
	"github.com/hikma-academy/academy-api/internal/models"
	"github.com/hikma-academy/academy-api/internal/repository"
)

// ErrPaymentProofNotFound indicates the proof could not be located.
var ErrPaymentProofNotFound = errors.New("payment proof not found")

// ErrPaymentAlreadyReviewed indicates a decision was already recorded.
var ErrPaymentAlreadyReviewed = errors.New("payment proof already reviewed")

// ErrRejectionNeedsFeedback indicates a reject decision with no rationale.
var ErrRejectionNeedsFeedback = errors.New("rejection requires feedback")

// NotificationPublisher is the slice of the notification service the
// payment workflow needs.
type NotificationPublisher interface {
	Publish(ctx context.Context, payload dto.NotificationCreateRequest) (dto.NotificationResponse, error)
}

// PaymentService manages the payment-proof approval workflow.
type PaymentService interface {
	Register(ctx context.Context, payload dto.PaymentProofCreateRequest) (dto.PaymentProofResponse, error)
	List(ctx context.Context, filter dto.PaymentProofFilter) ([]dto.PaymentProofResponse, error)
	Decide(ctx context.Context, proofID uint, payload dto.PaymentProofDecisionRequest, actor ActivityActor) (dto.PaymentProofResponse, error)
}

type paymentService struct {
	proofs        repository.PaymentProofRepository
	courses       repository.CourseRepository
	validator     *validator.Validate
	activity      ActivityRecorder
	notifications NotificationPublisher
	logger        zerolog.Logger
	tracer        trace.Tracer
	now           func() time.Time
}

// NewPaymentService constructs the payment approval service.
func NewPaymentService(
	proofs repository.PaymentProofRepository,
	courses repository.CourseRepository,
	validate *validator.Validate,
	activity ActivityRecorder,
	notifications NotificationPublisher,
	logger zerolog.Logger,
) PaymentService {
	return &paymentService{
		proofs:        proofs,
		courses:       courses,
		validator:     validate,
		activity:      activity,
		notifications: notifications,
		logger:        logger.With().Str("component", "payment_service").Logger(),
		tracer:        otel.Tracer("github.com/hikma-academy/academy-api/internal/service/payment"),
		now:           time.Now,
	}
}

func (s *paymentService) Register(ctx context.Context, payload dto.PaymentProofCreateRequest) (dto.PaymentProofResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.PaymentProofResponse{}, err
	}

	if _, err := s.courses.GetByID(ctx, payload.CourseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PaymentProofResponse{}, ErrCourseNotFound
		}
		return dto.PaymentProofResponse{}, err
	}

	proof := models.PaymentProof{
		StudentID: payload.StudentID,
		CourseID:  payload.CourseID,
		ProofURL:  payload.ProofURL,
		Status:    models.PaymentProofStatusPending,
	}

	if err := s.proofs.Create(ctx, &proof); err != nil {
		return dto.PaymentProofResponse{}, err
	}

	s.logger.Info().Uint("proof_id", proof.ID).Uint("course_id", proof.CourseID).Msg("payment proof registered")

	return dto.NewPaymentProofResponse(proof), nil
}

func (s *paymentService) List(ctx context.Context, filter dto.PaymentProofFilter) ([]dto.PaymentProofResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	proofs, err := s.proofs.List(ctx, repository.PaymentProofFilter{
		StudentID: filter.StudentID,
		CourseID:  filter.CourseID,
		Status:    filter.Status,
	})
	if err != nil {
		return nil, err
	}

	return dto.NewPaymentProofResponseSlice(proofs), nil
}

func (s *paymentService) Decide(ctx context.Context, proofID uint, payload dto.PaymentProofDecisionRequest, actor ActivityActor) (dto.PaymentProofResponse, error) {
	ctx, span := s.tracer.Start(ctx, "payment.decide", trace.WithAttributes(
		attribute.Int64("payment.proof_id", int64(proofID)),
		attribute.Int64("payment.actor_id", int64(actor.ID)),
		attribute.Bool("payment.approve", payload.Approve),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.PaymentProofResponse{}, err
	}

	feedback := strings.TrimSpace(payload.Feedback)
	if !payload.Approve && feedback == "" {
		return dto.PaymentProofResponse{}, ErrRejectionNeedsFeedback
	}

	proof, err := s.proofs.GetByID(ctx, proofID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PaymentProofResponse{}, ErrPaymentProofNotFound
		}
		return dto.PaymentProofResponse{}, err
	}

	if proof.IsReviewed() {
		span.SetStatus(codes.Error, "already_reviewed")
		return dto.PaymentProofResponse{}, ErrPaymentAlreadyReviewed
	}

	status := models.PaymentProofStatusRejected
	if payload.Approve {
		status = models.PaymentProofStatusApproved
	}

	reviewedAt := s.now()
	reviewedBy := actor.ID
	proof.Status = status
	proof.Feedback = feedback
	proof.ReviewedAt = &reviewedAt
	proof.ReviewedBy = &reviewedBy

	if err := s.proofs.Update(ctx, &proof); err != nil {
		span.RecordError(err)
		return dto.PaymentProofResponse{}, err
	}

	if payload.Approve {
		if err := s.enroll(ctx, proof); err != nil {
			// The decision stands; enrollment is retried by support
			// tooling if this ever fails.
			s.logger.Error().Err(err).Uint("proof_id", proof.ID).Msg("enrollment after approval failed")
			span.RecordError(err)
		}
	}

	s.recordDecision(ctx, proof, actor)
	s.notifyStudent(ctx, proof)

	s.logger.Info().
		Uint("proof_id", proof.ID).
		Str("status", proof.Status).
		Uint("reviewer", actor.ID).
		Msg("payment proof reviewed")

	return dto.NewPaymentProofResponse(proof), nil
}

func (s *paymentService) enroll(ctx context.Context, proof models.PaymentProof) error {
	enrolled, err := s.courses.IsEnrolled(ctx, proof.StudentID, proof.CourseID)
	if err != nil {
		return err
	}
	if enrolled {
		return nil
	}
	return s.courses.Enroll(ctx, &models.Enrollment{StudentID: proof.StudentID, CourseID: proof.CourseID})
}

func (s *paymentService) recordDecision(ctx context.Context, proof models.PaymentProof, actor ActivityActor) {
	if s.activity == nil {
		return
	}
	_, _ = s.activity.Record(ctx, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     "payment." + proof.Status,
		EntityType: "payment_proof",
		EntityID:   &proof.ID,
		Metadata: map[string]interface{}{
			"student_id": proof.StudentID,
			"course_id":  proof.CourseID,
		},
	})
}

func (s *paymentService) notifyStudent(ctx context.Context, proof models.PaymentProof) {
	if s.notifications == nil {
		return
	}

	message := fmt.Sprintf("Your payment for course %d was approved.", proof.CourseID)
	if proof.Status == models.PaymentProofStatusRejected {
		message = fmt.Sprintf("Your payment for course %d was rejected: %s", proof.CourseID, proof.Feedback)
	}

	_, err := s.notifications.Publish(ctx, dto.NotificationCreateRequest{
		UserID:  fmt.Sprintf("%d", proof.StudentID),
		Type:    "payment_" + proof.Status,
		Message: message,
	})
	if err != nil {
		s.logger.Warn().Err(err).Uint("proof_id", proof.ID).Msg("failed to notify student about payment decision")
	}
}
