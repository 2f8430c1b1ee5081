package entities

import (
	"time"

	"facegate.io/application/utils"
)

// Attempt kinds.
const (
	AttemptKindVerify = "verify"
	AttemptKindEnroll = "enroll"
)

// VerificationAttempt is one audit row per orchestrated verify or enroll
// call. The core pipeline never persists these; the controller records them
// after the decision.
type VerificationAttempt struct {
	Kind             string   `bson:"kind" json:"kind" gorm:"index"`
	Decision         string   `bson:"decision" json:"decision" gorm:"index"`
	MatchedIdentity  *string  `bson:"matchedIdentity" json:"matchedIdentity"`
	Distance         float64  `bson:"distance" json:"distance"`
	IsLive           bool     `bson:"isLive" json:"isLive"`
	SpoofProbability float64  `bson:"spoofProbability" json:"spoofProbability"`
	FailureReason    *string  `bson:"failureReason" json:"failureReason,omitempty"`
	ClientName       *string  `bson:"clientName" json:"clientName,omitempty"`
	ProcessingTimeMs int64    `bson:"processingTimeMs" json:"processingTimeMs"`

	ID        string    `bson:"_id" json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (model VerificationAttempt) ParseModel() any {
	now := time.Now()
	if model.CreatedAt.IsZero() {
		model.CreatedAt = now
		if model.ID == "" {
			// ULIDs sort by creation time, which gives the audit page its
			// cursor ordering for free.
			model.ID = utils.GenerateULIDString()
		}
	}
	model.UpdatedAt = now
	return &model
}
