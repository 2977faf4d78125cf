package util

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
)

type EmailComposer struct {
	Body       string
	Subject    string
	Sender     string
	SenderName string
	To         string
	ToName     string
}

// SendMail delivers a composed email through the transactional mail API.
func SendMail(mail EmailComposer) error {
	data := map[string]interface{}{
		"sender": map[string]string{
			"name":  mail.SenderName,
			"email": mail.Sender,
		},
		"to": []map[string]string{
			{
				"email": mail.To,
				"name":  mail.ToName,
			},
		},
		"subject":     mail.Subject,
		"htmlContent": mail.Body,
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Println("Email service: Error marshaling JSON:", err)
		return err
	}

	mailApiKey := LoadEnvFor("MAIL_API_KEY")
	mailEndPoint := LoadEnvFor("MAIL_ENDPOINT")
	req, err := http.NewRequest("POST", mailEndPoint, bytes.NewBuffer(jsonData))
	if err != nil {
		log.Println("Email service:", err)
		return err
	}

	req.Header.Set("accept", "application/json")
	req.Header.Set("api-key", mailApiKey)
	req.Header.Set("content-type", "application/json")

	client := http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		log.Println("Email service: error sending request:", err)
		return err
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			log.Println(err)
		}
	}(resp.Body)

	responseBody := &bytes.Buffer{}
	_, err = responseBody.ReadFrom(resp.Body)
	if err != nil {
		log.Println("Email service: error reading response:", err)
		return err
	}

	return nil
}
