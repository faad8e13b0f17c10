package waitlist

type SubmitWaitlistRequest struct {
	Name   string `json:"name" form:"name" binding:"required,min=1,max=255"`
	Email  string `json:"email" form:"email" binding:"required,email,max=255"`
	FormID string `json:"form_id" form:"form_id" binding:"omitempty,max=64"`
}

type SubmissionResponse struct {
	FormID  string `json:"form_id"`
	State   string `json:"state"`
	Message string `json:"message,omitempty"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

type FormStatusResponse struct {
	Configured bool   `json:"backend_configured"`
	DemoMode   bool   `json:"demo_mode"`
	Driver     string `json:"driver"`
}

// ========================================
// Mappers
// ========================================

func ToSubmissionResponse(form *Form, state State) SubmissionResponse {
	name, email := form.Fields()

	return SubmissionResponse{
		FormID:  form.ID(),
		State:   state.StateName(),
		Message: responseMessage(state),
		Name:    name,
		Email:   email,
	}
}

func responseMessage(state State) string {
	switch s := state.(type) {
	case Success:
		return ConfirmationMessage
	case Failed:
		return s.Message
	default:
		return ""
	}
}
