package models

import (
	"time"

	"gorm.io/datatypes"
)

type ActionFlag int

const (
	ActionAddition ActionFlag = 1
	ActionChange   ActionFlag = 2
	ActionDeletion ActionFlag = 3
)

func (f ActionFlag) String() string {
	switch f {
	case ActionAddition:
		return "addition"
	case ActionChange:
		return "change"
	case ActionDeletion:
		return "deletion"
	default:
		return "unknown"
	}
}

// Content types recorded in the admin log.
const (
	ContentTypeUserProfile = "userprofile"
	ContentTypeStudentData = "studentdata"
	ContentTypeUser        = "user"
)

// AdminLogEntry records one change made through the admin surface.
type AdminLogEntry struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ActionTime time.Time `json:"action_time" gorm:"autoCreateTime;index"`

	ActorID *uint `json:"actor_id" gorm:"index"`
	Actor   *User `json:"-" gorm:"constraint:OnDelete:SET NULL;foreignKey:ActorID;references:ID"`

	ContentType   string         `json:"content_type" gorm:"not null;size:100;index:idx_admin_log_object"`
	ObjectID      uint           `json:"object_id" gorm:"index:idx_admin_log_object"`
	ObjectRepr    string         `json:"object_repr" gorm:"size:200"`
	ActionFlag    ActionFlag     `json:"action_flag" gorm:"not null"`
	ChangeMessage datatypes.JSON `json:"change_message"`
}

func (AdminLogEntry) TableName() string {
	return "admin_log_entry"
}

// ChangeMessage is the decoded form of AdminLogEntry.ChangeMessage.
type ChangeMessage struct {
	Added   bool     `json:"added,omitempty"`
	Deleted bool     `json:"deleted,omitempty"`
	Changed []string `json:"changed,omitempty"`
}
