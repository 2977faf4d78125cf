package services

import (
	"fmt"
	"log"

	"fonegitim-api-io/api/pkg/models"
	"fonegitim-api-io/api/pkg/util"
)

type emailService struct {
	sender     string
	senderName string
}

// NewEmailService creates a new instance of EmailService
func NewEmailService() EmailService {
	return &emailService{
		sender:     "no-reply@fonegitim.com",
		senderName: "FonEgitim",
	}
}

// SendWelcomeEmail greets a newly registered student.
func (e *emailService) SendWelcomeEmail(email, loginName string) error {
	mail := util.EmailComposer{
		To:         email,
		ToName:     loginName,
		Sender:     e.sender,
		SenderName: e.senderName,
		Body:       fmt.Sprintf(`<body style="font-family: Arial, sans-serif; font-size: 14px;"><p>Merhaba %v,</p><p>Welcome to FonEgitim, the crowdfunding platform for students. Complete your student verification to publish your first campaign and start collecting support for your education.</p><p>Best,</p><p>The FonEgitim Team</p></body>`, loginName),
		Subject:    "Welcome to FonEgitim",
	}

	err := util.SendMail(mail)
	if err != nil {
		log.Println("Failed to send welcome email:", err)
		return err
	}
	log.Printf("Welcome email sent to %v", email)
	return nil
}

// SendVerificationSubmittedEmail confirms that a submission reached the
// review queue.
func (e *emailService) SendVerificationSubmittedEmail(email, loginName string, tier models.VerificationTier) error {
	mail := util.EmailComposer{
		To:         email,
		ToName:     loginName,
		Sender:     e.sender,
		SenderName: e.senderName,
		Body:       fmt.Sprintf(`<body style="font-family: Arial, sans-serif; font-size: 14px;"><p>Merhaba %v,</p><p>Your %v student verification has been submitted and is now waiting for review. We will let you know as soon as a decision is made, usually within two business days.</p><p>Best regards,</p><p>The FonEgitim Team</p></body>`, loginName, tier),
		Subject:    "Your student verification was submitted",
	}

	err := util.SendMail(mail)
	if err != nil {
		log.Println("Failed to send verification submitted email:", err)
		return err
	}
	log.Printf("Verification submitted email sent to %v", email)
	return nil
}

// SendVerificationApprovedEmail notifies the student of an approval.
func (e *emailService) SendVerificationApprovedEmail(email, loginName string) error {
	mail := util.EmailComposer{
		To:         email,
		ToName:     loginName,
		Sender:     e.sender,
		SenderName: e.senderName,
		Body:       fmt.Sprintf(`<body style="font-family: Arial, sans-serif; font-size: 14px;"><p>Merhaba %v,</p><p>Your student verification has been approved! You can now publish your campaign and start receiving donations.</p><p>Best regards,</p><p>The FonEgitim Team</p></body>`, loginName),
		Subject:    "Your student verification was approved",
	}

	err := util.SendMail(mail)
	if err != nil {
		log.Println("Failed to send verification approved email:", err)
		return err
	}
	log.Printf("Verification approved email sent to %v", email)
	return nil
}

// SendVerificationRejectedEmail notifies the student of a rejection,
// including the reviewer's note when one was left.
func (e *emailService) SendVerificationRejectedEmail(email, loginName, note string) error {
	reason := ""
	if note != "" {
		reason = fmt.Sprintf(`<p>Reviewer note: %v</p>`, note)
	}

	mail := util.EmailComposer{
		To:         email,
		ToName:     loginName,
		Sender:     e.sender,
		SenderName: e.senderName,
		Body:       fmt.Sprintf(`<body style="font-family: Arial, sans-serif; font-size: 14px;"><p>Merhaba %v,</p><p>Unfortunately your student verification could not be approved this time.</p>%v<p>You can start a new verification with corrected documents at any time.</p><p>Best regards,</p><p>The FonEgitim Team</p></body>`, loginName, reason),
		Subject:    "Your student verification was not approved",
	}

	err := util.SendMail(mail)
	if err != nil {
		log.Println("Failed to send verification rejected email:", err)
		return err
	}
	log.Printf("Verification rejected email sent to %v", email)
	return nil
}
