package codec

import (
	"time"

	"github.com/okian/comptrack/internal/domain/model"
)

// FieldBody carries a rendered report's text.
const FieldBody = "Body"

// EncodeReport wraps a rendered report in an envelope. Reports have no
// decode counterpart; they are display artifacts, not records.
func EncodeReport(title, body string) model.Envelope {
	return model.Envelope{
		Title:     title,
		CreatedAt: time.Now().UTC(),
		Fields: []model.Field{
			{Name: FieldBody, Value: body},
		},
	}
}
