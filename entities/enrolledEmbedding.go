package entities

import (
	"strings"
	"time"

	"facegate.io/application/utils"
)

// EnrolledEmbedding is one identity capture: a display name plus the face
// descriptor produced at enrollment, serialized as little-endian float32
// bytes. An identity holds one row per capture; NameKey carries the
// lower-cased name for case-insensitive lookups.
type EnrolledEmbedding struct {
	Name       string `bson:"name" json:"name" gorm:"index"`
	NameKey    string `bson:"nameKey" json:"-" gorm:"index"`
	Descriptor []byte `bson:"descriptor" json:"-" gorm:"type:blob"`

	ID        string    `bson:"_id" json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (model EnrolledEmbedding) ParseModel() any {
	now := time.Now()
	if model.CreatedAt.IsZero() {
		model.CreatedAt = now
		if model.ID == "" {
			model.ID = utils.GenerateULIDString()
		}
	}
	model.NameKey = strings.ToLower(strings.TrimSpace(model.Name))
	model.UpdatedAt = now
	return &model
}
