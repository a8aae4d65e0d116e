package smtp_client

type SmtpServerList struct {
	Servers []SmtpServer `json:"servers" yaml:"servers"`
	From    string       `json:"from" yaml:"from"`
	Sender  string       `json:"sender" yaml:"sender"`
	ReplyTo []string     `json:"replyTo" yaml:"replyTo"`
}

type SmtpServer struct {
	Host               string `json:"host" yaml:"host"`
	Port               string `json:"port" yaml:"port"`
	Connections        int    `json:"connections" yaml:"connections"`
	InsecureSkipVerify bool   `json:"insecureSkipVerify" yaml:"insecureSkipVerify"`
	AuthData           struct {
		Username string `json:"user" yaml:"user"`
		Password string `json:"password" yaml:"password"`
	} `json:"auth" yaml:"auth"`
	SendTimeout int `json:"sendTimeout" yaml:"sendTimeout"`
}

// Address URI to smtp server
func (s *SmtpServer) Address() string {
	return s.Host + ":" + s.Port
}

// SetPassword sets the password for SMTP authentication
func (s *SmtpServer) SetPassword(password string) {
	s.AuthData.Password = password
}
