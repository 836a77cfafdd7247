package domain

import "time"

const (
	TicketIssued   = "issued"
	TicketVerified = "verified"
)

// RecoveryTicket is the one-time-code artifact for password recovery.
// PK: user_id, SK: type. ExpiresAt doubles as the DynamoDB TTL attribute.
// Version increments on every write and guards compare-and-swap issuance.
// Attempts counts wrong codes submitted against the current code.
type RecoveryTicket struct {
	UserID    string    `json:"user_id" dynamodbav:"user_id"`
	Type      string    `json:"type" dynamodbav:"type"`
	State     string    `json:"state" dynamodbav:"state"`
	Code      string    `json:"-" dynamodbav:"code"`
	GrantHash string    `json:"-" dynamodbav:"grant_hash,omitempty"`
	IssuedAt  time.Time `json:"issued_at" dynamodbav:"issued_at,unixtime"`
	ExpiresAt time.Time `json:"expires_at" dynamodbav:"expires_at,unixtime"`
	Version   int64     `json:"version" dynamodbav:"version"`
	Attempts  int       `json:"attempts" dynamodbav:"attempts"`
}

const TicketTypePasswordRecovery = "password_recovery"
