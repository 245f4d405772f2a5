// Package historylog is an optional, out-of-core persistence layer for
// completed calls. core/ never imports this package — spec.md's "no
// persisted state in core" invariant holds regardless of whether a
// collaborator chooses to wire historylog in at the application layer.
// The model and store below generalize the teacher pack's CallContext
// gorm model (rapidaai callcontext.CallContext) from telephony call
// metadata to WebRTC call-lifecycle history.
package historylog

import (
	"time"

	"gorm.io/gorm"
)

// Status constants are this package's own lifecycle labels: "connected"
// and "failed" match call.State's text form, "initiated" and "ended" have
// no call.State counterpart. They are independent string constants so this
// package carries no import on core/call.
const (
	StatusInitiated = "initiated"
	StatusConnected = "connected"
	StatusEnded     = "ended"
	StatusFailed    = "failed"
)

// CallRecord is one row of call history: who called whom, when, how it
// ended, and the last quality sample observed.
type CallRecord struct {
	ID                uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	CallID            string    `gorm:"column:call_id;type:varchar(36);uniqueIndex;not null" json:"callId"`
	LocalPeer         string    `gorm:"column:local_peer;type:varchar(200);not null" json:"localPeer"`
	RemotePeer        string    `gorm:"column:remote_peer;type:varchar(200);not null" json:"remotePeer"`
	Status            string    `gorm:"column:status;type:varchar(20);not null;default:initiated" json:"status"`
	Architecture      string    `gorm:"column:architecture;type:varchar(20);not null;default:''" json:"architecture"`
	StartedAt         time.Time `gorm:"column:started_at;not null" json:"startedAt"`
	EndedAt           *time.Time `gorm:"column:ended_at" json:"endedAt,omitempty"`
	FailureReason     string    `gorm:"column:failure_reason;type:text;not null;default:''" json:"failureReason,omitempty"`
	PacketLossPercent float64   `gorm:"column:packet_loss_percent;default:0" json:"packetLossPercent"`
	JitterMs          float64   `gorm:"column:jitter_ms;default:0" json:"jitterMs"`
	RoundTripMs       float64   `gorm:"column:round_trip_ms;default:0" json:"roundTripMs"`
}

func (CallRecord) TableName() string { return "call_records" }

func (r *CallRecord) BeforeCreate(tx *gorm.DB) error {
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}
	return nil
}
