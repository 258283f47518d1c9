package service

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client     *sesv2.Client
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
}

// NewEmailService creates a new email service. An empty fromEmail
// produces a disabled service that skips every send.
func NewEmailService(awsRegion, fromEmail, fromName, appBaseURL string) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false}, nil
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := sesv2.NewFromConfig(cfg)
	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)

	return &EmailService{
		client:     client,
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendWelcomeEmail sends a welcome email to new users
func (s *EmailService) SendWelcomeEmail(ctx context.Context, toEmail, toName string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): welcome to %s", toEmail)
		return nil
	}

	subject := "Welcome to OmCounter"
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #b45309; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #fdf8f0; padding: 30px; border-radius: 0 0 5px 5px; }
		.button { display: inline-block; padding: 12px 30px; background-color: #b45309; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Welcome to OmCounter</h1>
		</div>
		<div class="content">
			<p>Hi %s,</p>
			<p>Your OmCounter account is ready. Count your chants, keep your streak alive, and practice together with your Sangha.</p>
			<p>Here's what you can do next:</p>
			<ul>
				<li>Start a practice session with the tap counter</li>
				<li>Save your favourite mantras to your library</li>
				<li>Create or join a chanting circle</li>
				<li>Set a daily reminder so your streak never breaks</li>
			</ul>
			<p style="text-align: center;">
				<a href="%s/login" class="button">Begin Practice</a>
			</p>
		</div>
		<div class="footer">
			<p>This is an automated email from OmCounter. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, toName, s.appBaseURL)

	textBody := fmt.Sprintf(`Hi %s,

Your OmCounter account is ready. Count your chants, keep your streak alive, and practice together with your Sangha.

Here's what you can do next:
- Start a practice session with the tap counter
- Save your favourite mantras to your library
- Create or join a chanting circle
- Set a daily reminder so your streak never breaks

Begin practice: %s/login

---
This is an automated email from OmCounter. Please do not reply.
`, toName, s.appBaseURL)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// SendReminderEmail sends a daily practice reminder
func (s *EmailService) SendReminderEmail(ctx context.Context, toEmail, toName string, streakDays int) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): reminder to %s", toEmail)
		return nil
	}

	streakLine := "Start a new streak with a single chant today."
	if streakDays > 0 {
		streakLine = fmt.Sprintf("Your streak is %d days. One chant today keeps it alive.", streakDays)
	}

	subject := "Time for your daily practice"
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #b45309; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #fdf8f0; padding: 30px; border-radius: 0 0 5px 5px; }
		.button { display: inline-block; padding: 12px 30px; background-color: #b45309; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Time for Your Practice</h1>
		</div>
		<div class="content">
			<p>Hi %s,</p>
			<p>This is your daily practice reminder. %s</p>
			<p style="text-align: center;">
				<a href="%s/practice" class="button">Open the Counter</a>
			</p>
		</div>
		<div class="footer">
			<p>You can turn these reminders off in your reminder settings.</p>
		</div>
	</div>
</body>
</html>
`, toName, streakLine, s.appBaseURL)

	textBody := fmt.Sprintf(`Hi %s,

This is your daily practice reminder. %s

Open the counter: %s/practice

---
You can turn these reminders off in your reminder settings.
`, toName, streakLine, s.appBaseURL)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// SendReceiptEmail confirms a verified premium purchase
func (s *EmailService) SendReceiptEmail(ctx context.Context, toEmail, toName, orderID string, amountPaise int64, currency string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): receipt to %s", toEmail)
		return nil
	}

	amount := fmt.Sprintf("%.2f %s", float64(amountPaise)/100, currency)

	subject := "Your OmCounter Premium receipt"
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #b45309; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #fdf8f0; padding: 30px; border-radius: 0 0 5px 5px; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Premium Unlocked</h1>
		</div>
		<div class="content">
			<p>Hi %s,</p>
			<p>Thank you for upgrading to OmCounter Premium. Your payment has been verified.</p>
			<p><strong>Order:</strong> %s<br><strong>Amount:</strong> %s</p>
			<p>Unlimited circles, larger rosters, CSV exports and the full practice experience are now yours.</p>
		</div>
		<div class="footer">
			<p>This is an automated email from OmCounter. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, toName, orderID, amount)

	textBody := fmt.Sprintf(`Hi %s,

Thank you for upgrading to OmCounter Premium. Your payment has been verified.

Order: %s
Amount: %s

Unlimited circles, larger rosters, CSV exports and the full practice experience are now yours.

---
This is an automated email from OmCounter. Please do not reply.
`, toName, orderID, amount)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}
