package model

// An Account is the Udemy account selected by the backend for the current user.
// Its JSON form is the `udemyAccount` blob of the credential store.
type Account struct {
	ID          string            `json:"id"`
	Email       string            `json:"email,omitempty"`
	AccessToken string            `json:"access_token"`
	SessionID   string            `json:"session_id"`
	ClientID    string            `json:"client_id"`
	CSRFToken   string            `json:"csrf_token,omitempty"`
	Cookies     map[string]string `json:"cookies,omitempty"` // Provider-specific cookies
}

// Usable returns true if the account carries enough to open a browsing session.
func (a Account) Usable() bool {
	return a.AccessToken != ""
}
