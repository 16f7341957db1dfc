package handlers

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"regexp"

	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
	"quillbox.dev/project-quillbox/middleware"
	"quillbox.dev/project-quillbox/models"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const minPasswordLen = 6

func validEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func isUniqueViolation(err error) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code == "23505"
}

func Register(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if !validEmail(req.Email) {
			http.Error(w, "Invalid email address", http.StatusBadRequest)
			return
		}
		if len(req.Password) < minPasswordLen {
			http.Error(w, "Password must be at least 6 characters long", http.StatusBadRequest)
			return
		}

		var exists bool
		err := db.QueryRow(`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, req.Email).
			Scan(&exists)
		if err != nil {
			http.Error(w, "Database query failed", http.StatusInternalServerError)
			log.Println("Register exists check error:", err)
			return
		}
		if exists {
			http.Error(w, "Email already in use", http.StatusConflict)
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			http.Error(w, "Failed to hash password", http.StatusInternalServerError)
			return
		}

		var u models.User
		err = db.QueryRow(`
			INSERT INTO users (email, password, created_at)
			VALUES ($1, $2, NOW())
			RETURNING id, email`,
			req.Email, string(hashedPassword),
		).Scan(&u.ID, &u.Email)
		if err != nil {
			// Concurrent registration with the same email loses the race
			// on the unique index.
			if isUniqueViolation(err) {
				http.Error(w, "Email already in use", http.StatusConflict)
				return
			}
			http.Error(w, "Failed to create user", http.StatusInternalServerError)
			log.Println("Register error:", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":    u.ID,
			"email": u.Email,
		})
	}
}

func Login(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		var u models.User
		err := db.QueryRow(`SELECT id, email, password FROM users WHERE email = $1`, req.Email).
			Scan(&u.ID, &u.Email, &u.Password)
		if err != nil {
			if err == sql.ErrNoRows {
				http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			} else {
				http.Error(w, "Database query failed", http.StatusInternalServerError)
				log.Println("Login error:", err)
			}
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)); err != nil {
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}

		token, err := middleware.SignToken(u.ID, u.Email)
		if err != nil {
			http.Error(w, "Failed to issue token", http.StatusInternalServerError)
			log.Println("Login token error:", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": token,
			"user": models.Author{
				ID:    u.ID,
				Email: u.Email,
			},
		})
	}
}

func RegisterDeviceToken(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFrom(r)
		if !ok {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		var req struct {
			Token string `json:"token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.Token == "" {
			http.Error(w, "Device token is required", http.StatusBadRequest)
			return
		}

		_, err := db.Exec(`
			INSERT INTO device_tokens (user_id, token, created_at, updated_at)
			VALUES ($1, $2, NOW(), NOW())
			ON CONFLICT (user_id, token)
			DO UPDATE SET updated_at = NOW()`,
			userID, req.Token)
		if err != nil {
			http.Error(w, "Failed to register device token", http.StatusInternalServerError)
			log.Println("RegisterDeviceToken error:", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"message": "Device token registered successfully",
		})
	}
}
