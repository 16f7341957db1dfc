package services

import (
	"context"
	"database/sql"
	"log"
	"sync"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

var (
	messagingClient *messaging.Client
	once            sync.Once
	initError       error
)

// InitFirebase sets up the FCM client used for engagement push
// notifications. Push is best-effort: when no credentials are configured the
// rest of the application works without it.
func InitFirebase(credentialsPath string) error {
	once.Do(func() {
		ctx := context.Background()

		log.Printf("[FCM] Initializing Firebase with credentials: %s", credentialsPath)

		opt := option.WithCredentialsFile(credentialsPath)
		app, err := firebase.NewApp(ctx, nil, opt)
		if err != nil {
			initError = err
			log.Printf("[FCM][ERROR] Failed to init Firebase app: %v", err)
			return
		}

		messagingClient, err = app.Messaging(ctx)
		if err != nil {
			initError = err
			log.Printf("[FCM][ERROR] Failed to get messaging client: %v", err)
			return
		}

		log.Println("[FCM] Firebase Messaging client initialized successfully")
	})

	return initError
}

// NotificationsEnabled reports whether FCM was initialized.
func NotificationsEnabled() bool {
	return messagingClient != nil
}

// NotifyUser pushes a notification to every registered device of a user.
// Dead tokens reported by FCM are pruned from the device_tokens table.
func NotifyUser(db *sql.DB, userID int, title, body string, data map[string]string) error {
	if messagingClient == nil {
		return initError
	}

	rows, err := db.Query(`
		SELECT token FROM device_tokens
		WHERE user_id = $1 AND token != ''`,
		userID)
	if err != nil {
		return err
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			log.Printf("[FCM] Error scanning device token: %v", err)
			continue
		}
		tokens = append(tokens, token)
	}

	if len(tokens) == 0 {
		return nil
	}

	message := &messaging.MulticastMessage{
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data:   data,
		Tokens: tokens,
	}

	response, err := messagingClient.SendEachForMulticast(context.Background(), message)
	if err != nil {
		log.Printf("[FCM][ERROR] Multicast send failed: %v", err)
		return err
	}

	log.Printf("[FCM] Sent to user %d | success=%d failure=%d",
		userID, response.SuccessCount, response.FailureCount)

	for i, resp := range response.Responses {
		if resp.Success {
			continue
		}

		token := tokens[i]
		log.Printf("[FCM][TOKEN ERROR] token=%s error=%v", token, resp.Error)

		if messaging.IsUnregistered(resp.Error) {
			log.Printf("[FCM] Deleting dead token: %s", token)
			if _, err := db.Exec(`DELETE FROM device_tokens WHERE token = $1`, token); err != nil {
				log.Printf("[FCM][ERROR] Failed to delete token %s: %v", token, err)
			}
		}
	}

	return nil
}
