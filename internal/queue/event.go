// Package queue defines message payloads exchanged over the message broker.
package queue

// NotificationQueueName is the durable queue carrying account
// notification events to the mail worker.
const NotificationQueueName = "account.notifications"

// Notification kinds.
const (
    KindEmailVerification = "email_verification"
    KindPasswordReset     = "password_reset"
)

// AccountNotificationEvent is published when the credential service
// needs to reach the account owner out of band: a freshly registered
// account's verification token, or a password-reset token.  The raw
// token rides only on this event; the primary database holds its
// digest.
type AccountNotificationEvent struct {
    Kind        string `json:"kind"`
    Email       string `json:"email"`
    DisplayName string `json:"display_name"`
    Token       string `json:"token"`
    RequestedAt string `json:"requested_at"`
}
