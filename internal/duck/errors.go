package duck

import "fmt"

// BotChallengeError signals that the provider rejected an OTP request
// as automated traffic. It is not fatal: a one-time manual browser
// login clears the flag, and the OTP mail is usually sent anyway.
type BotChallengeError struct {
	Status int
}

func (e *BotChallengeError) Error() string {
	return fmt.Sprintf("otp request rejected with status %d: provider suspects automated traffic", e.Status)
}

// RedemptionError reports a failed OTP redemption. OTPs are single-use
// and short-lived, so a failed redemption is never retried with the
// same token.
type RedemptionError struct {
	Status int
}

func (e *RedemptionError) Error() string {
	return fmt.Sprintf("otp redemption failed with status %d", e.Status)
}

// IssuanceError reports a failed alias mint. Aliases are rate limited
// per account, so issuance is never retried automatically.
type IssuanceError struct {
	Status int
}

func (e *IssuanceError) Error() string {
	return fmt.Sprintf("alias issuance failed with status %d", e.Status)
}
