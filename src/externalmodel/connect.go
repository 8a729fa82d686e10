package externalmodel

// ConnectRequest links a brokerage account by storing its credentials.
type ConnectRequest struct {
	Server       string `json:"server"`
	Login        string `json:"login"`
	Password     string `json:"password"`
	InvestorMode bool   `json:"investorMode,omitempty"`
}

func (r *ConnectRequest) Validate() error {
	var fields []string
	if r.Server == "" {
		fields = append(fields, "server")
	}
	if r.Login == "" {
		fields = append(fields, "login")
	}
	if r.Password == "" {
		fields = append(fields, "password")
	}
	return newValidationError(fields...)
}
