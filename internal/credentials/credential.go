package credentials

import (
	"encoding/base64"
	"errors"
	"fmt"
)

// ErrCredentialType rejects credential kinds the store cannot hold
var ErrCredentialType = errors.New("unsupported credential type")

// Credential is anything a request can authenticate with
type Credential interface {
	// Principal names the user the credential belongs to
	Principal() string
}

// UsernamePassword is a plain user/password pair
type UsernamePassword struct {
	Username string
	Password string
}

// Principal implements Credential
func (c UsernamePassword) Principal() string { return c.Username }

// IsEmpty reports whether both fields are blank
func (c UsernamePassword) IsEmpty() bool { return c.Username == "" && c.Password == "" }

// BasicAuth returns the Authorization header value for the Basic scheme
func (c UsernamePassword) BasicAuth() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(c.Username+":"+c.Password))
}

func (c UsernamePassword) String() string {
	return fmt.Sprintf("%s:***", c.Username)
}

// NTLM carries the extra domain and workstation NTLM needs
type NTLM struct {
	Username    string
	Password    string
	Workstation string
	Domain      string
}

// Principal implements Credential
func (c NTLM) Principal() string {
	if c.Domain == "" {
		return c.Username
	}
	return c.Domain + `\` + c.Username
}

// BasicAuth returns the Authorization header value for servers that answer
// an NTLM-configured client with a Basic challenge
func (c NTLM) BasicAuth() string {
	return UsernamePassword{Username: c.Principal(), Password: c.Password}.BasicAuth()
}

func (c NTLM) String() string {
	return fmt.Sprintf("%s:***", c.Principal())
}

// checkType accepts only the kinds the store knows how to send
func checkType(c Credential) error {
	switch v := c.(type) {
	case UsernamePassword, NTLM:
		return nil
	case *UsernamePassword:
		if v == nil {
			return fmt.Errorf("%w: nil %T", ErrCredentialType, c)
		}
		return nil
	case *NTLM:
		if v == nil {
			return fmt.Errorf("%w: nil %T", ErrCredentialType, c)
		}
		return nil
	case nil:
		return fmt.Errorf("%w: nil credential", ErrCredentialType)
	default:
		return fmt.Errorf("%w: %T", ErrCredentialType, c)
	}
}

// BasicAuthorization returns the Basic Authorization header for c, if the
// credential kind can produce one
func BasicAuthorization(c Credential) (string, bool) {
	switch v := c.(type) {
	case UsernamePassword:
		return v.BasicAuth(), true
	case *UsernamePassword:
		return v.BasicAuth(), true
	case NTLM:
		return v.BasicAuth(), true
	case *NTLM:
		return v.BasicAuth(), true
	}
	return "", false
}
