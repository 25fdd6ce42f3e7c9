package backend

// LoginRequest is the body of the social login call
type LoginRequest struct {
	Provider    string `json:"provider"`
	AccessToken string `json:"accessToken"`
}

// LoginResult is the backend envelope, shared by successful and failed logins.
// Status and Code are left untyped: deployments send them as numbers or strings.
type LoginResult struct {
	Status  interface{} `json:"status,omitempty" yaml:"status,omitempty"`
	Code    interface{} `json:"code,omitempty" yaml:"code,omitempty"`
	Message string      `json:"message,omitempty" yaml:"message,omitempty"`
	Data    *LoginData  `json:"data,omitempty" yaml:"data,omitempty"`

	// Older deployments answer with the token outside of data
	AccessToken      string `json:"accessToken,omitempty" yaml:"accessToken,omitempty"`
	AccessTokenSnake string `json:"access_token,omitempty" yaml:"access_token,omitempty"`
}

type LoginData struct {
	AccessToken       string `json:"accessToken,omitempty" yaml:"accessToken,omitempty"`
	AccessTokenSnake  string `json:"access_token,omitempty" yaml:"access_token,omitempty"`
	RefreshToken      string `json:"refreshToken,omitempty" yaml:"refreshToken,omitempty"`
	RefreshTokenSnake string `json:"refresh_token,omitempty" yaml:"refresh_token,omitempty"`
	NewUser           *bool  `json:"newUser,omitempty" yaml:"newUser,omitempty"`
}

// GetAccessToken returns the service access token, looking at data first
func (r *LoginResult) GetAccessToken() string {
	if r == nil {
		return ""
	}
	if r.Data != nil {
		if r.Data.AccessToken != "" {
			return r.Data.AccessToken
		}
		if r.Data.AccessTokenSnake != "" {
			return r.Data.AccessTokenSnake
		}
	}
	if r.AccessToken != "" {
		return r.AccessToken
	}
	return r.AccessTokenSnake
}

func (r *LoginResult) GetRefreshToken() string {
	if r == nil || r.Data == nil {
		return ""
	}
	if r.Data.RefreshToken != "" {
		return r.Data.RefreshToken
	}
	return r.Data.RefreshTokenSnake
}

// GetNewUser returns nil when the backend did not say
func (r *LoginResult) GetNewUser() *bool {
	if r == nil || r.Data == nil {
		return nil
	}
	return r.Data.NewUser
}

// LoginResponse is the outcome of a login call that reached the backend.
// Result is always set, synthesized from the raw body when it was not JSON.
type LoginResponse struct {
	StatusCode int
	Result     *LoginResult
}

// Success reports a 2xx answer
func (r *LoginResponse) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
