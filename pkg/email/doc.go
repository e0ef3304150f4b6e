// Package email sends transactional email through Postmark.
//
// Without a Postmark server token, New returns a LogSender that writes each
// message to the logger instead, which is what local development uses.
//
//	sender, err := email.New(cfg, log)
//	err = sender.SendEmail(ctx, email.SendEmailParams{
//		SendTo:   "user@example.com",
//		Subject:  "Task due soon",
//		BodyHTML: html,
//		BodyText: text,
//		Tag:      "task-reminder",
//	})
package email
