package models

import "time"

// PaymentProofStatus enumerates the review states of a payment proof.
const (
	PaymentProofStatusPending  = "pending"
	PaymentProofStatusApproved = "approved"
	PaymentProofStatusRejected = "rejected"
)

// PaymentProof is a student's claim of payment for a course, referencing
// an already-uploaded receipt image. Review happens in the admin workflow;
// approval creates the enrollment.
type PaymentProof struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	StudentID uint   `gorm:"index;not null" json:"student_id"`
	CourseID  uint   `gorm:"index;not null" json:"course_id"`
	ProofURL  string `gorm:"size:512;not null" json:"proof_url"`
	Status    string `gorm:"size:16;index;not null;default:pending" json:"status"`
	Feedback  string `gorm:"type:text" json:"feedback"`

	ReviewedBy *uint      `json:"reviewed_by"`
	ReviewedAt *time.Time `json:"reviewed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Student Student `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Course  Course  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// IsReviewed reports whether a decision has already been made.
func (p PaymentProof) IsReviewed() bool {
	return p.Status != PaymentProofStatusPending
}
