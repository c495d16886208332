package history

import (
	"time"

	"github.com/casualjim/strix/messages"
	"github.com/casualjim/strix/pkg/uuidx"
	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
)

// Turn is one message in the conversation log. User turns are finalized at
// creation; assistant turns start as unfinalized placeholders and are filled
// incrementally while their stream is open.
type Turn struct {
	ID          uuid.UUID             `json:"id"`
	Role        messages.Role         `json:"role"`
	Text        string                `json:"text"`
	Attachments []messages.Attachment `json:"attachments,omitempty"`
	Finalized   bool                  `json:"finalized"`
	CreatedAt   strfmt.DateTime       `json:"created_at"`
}

func newTurn(role messages.Role, text string, attachments []messages.Attachment, finalized bool) Turn {
	return Turn{
		ID:          uuidx.New(),
		Role:        role,
		Text:        text,
		Attachments: attachments,
		Finalized:   finalized,
		CreatedAt:   strfmt.DateTime(time.Now()),
	}
}
