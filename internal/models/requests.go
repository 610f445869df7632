package models

type StartChatRequest struct {
	Language string `json:"language" example:"pt" description:"Idioma do widget (pt ou en)"`
}

type ChatMessageRequest struct {
	ConversationID string `json:"conversationId" swagger:"required"`
	Message        string `json:"message" example:"Maria Silva" swagger:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type CreateAdminRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

type UpdateStatusRequest struct {
	// Target is either a stage id or the id of the card the drop landed on;
	// both resolve to the same stage reassignment.
	Target string `json:"target" validate:"required"`
}

type UpdateProjectRequest struct {
	EstimatedValue    float64 `json:"estimated_value"`
	Probability       int     `json:"probability" validate:"gte=0,lte=100"`
	ExpectedCloseDate string  `json:"expected_close_date"`
	Notes             string  `json:"notes"`
}
