package tenancy

import (
	"fmt"

	"github.com/google/uuid"
)

var _ Session = &SessionObject{}

// SessionObject is the concrete session handed to the bootstrapper by
// credential authority adapters.
type SessionObject struct {
	UserID string         `json:"user_id,omitempty"`
	Email  string         `json:"email,omitempty"`
	Data   map[string]any `json:"data,omitempty"`
}

func (s *SessionObject) GetUserID() string {
	return s.UserID
}

func (s *SessionObject) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(s.UserID)
}

func (s *SessionObject) GetEmail() string {
	return s.Email
}

func (s *SessionObject) GetData() map[string]any {
	return s.Data
}

func (s SessionObject) String() string {
	return fmt.Sprintf("user=%s email=%s data=%v", s.UserID, s.Email, s.Data)
}

// SessionFromCredential builds a session view over a credential record.
func SessionFromCredential(cred *Credential) *SessionObject {
	if cred == nil {
		return nil
	}
	return &SessionObject{
		UserID: cred.ID.String(),
		Email:  cred.Email,
		Data:   cred.Metadata,
	}
}
