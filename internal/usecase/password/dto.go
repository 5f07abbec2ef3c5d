package password

type RequestCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ValidateCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

// ValidateCodeResponse carries the opaque user reference and the signed
// reset token the client must present when submitting a new password.
type ValidateCodeResponse struct {
	Uidb64 string `json:"uidb64"`
	Token  string `json:"token"`
}

type SubmitPasswordRequest struct {
	// Password is stored exactly as submitted. Whitespace is significant.
	Password string `json:"password" validate:"required"`
}
