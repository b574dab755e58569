package ipc

import "encoding/json"

const (
	NewText     = "new_text"
	TextUpdate  = "text_update"
	DeathNotice = "death_notice"
	Error       = "error"
)

// Payload carries every field used by any message type. Unused fields are
// left out of the JSON encoding.
type Payload struct {
	Id        string `json:"id,omitempty"`
	Text      string `json:"text,omitempty"`
	Caret     int    `json:"caret,omitempty"`
	Subject   string `json:"subject,omitempty"`
	Editor    string `json:"editor,omitempty"`
	Extension string `json:"extension,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Message is one native messaging frame exchanged between the extension
// and the helper process.
type Message struct {
	Type    string  `json:"type,omitempty"`
	Payload Payload `json:"payload"`
}

// NewTextMessage asks the helper to open a document in the editor.
func NewTextMessage(id, text string, caret int, subject, editor, extension string) *Message {
	return &Message{
		Type: NewText,
		Payload: Payload{
			Id:        id,
			Text:      text,
			Caret:     caret,
			Subject:   subject,
			Editor:    editor,
			Extension: extension,
		},
	}
}

// TextUpdateMessage reports the current contents of an edited document.
func TextUpdateMessage(id, text string) *Message {
	return &Message{Type: TextUpdate, Payload: Payload{Id: id, Text: text}}
}

// DeathNoticeMessage reports that a document is no longer open.
func DeathNoticeMessage(id string) *Message {
	return &Message{Type: DeathNotice, Payload: Payload{Id: id}}
}

func ErrorMessage(err error) *Message {
	return &Message{Type: Error, Payload: Payload{Error: err.Error()}}
}

// Encode transforms the message in an easier to transfer format
func (msg *Message) Encode() ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage consumes a raw message and returns the message contained
// within.
func DecodeMessage(data []byte) (*Message, error) {
	msg := new(Message)
	err := json.Unmarshal(data, msg)
	return msg, err
}
