package email

// Config holds email settings. Leaving PostmarkServerToken empty switches to
// the log sender.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL" envDefault:"no-reply@todo-app.local"`
	SupportEmail         string `env:"SUPPORT_EMAIL"`
}
