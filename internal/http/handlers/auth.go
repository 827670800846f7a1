package handlers

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"ridemate/internal/http/middleware"
	"ridemate/internal/repositories"
)

var jwtSecret = []byte("super-secret-key-change-me")

// SetJWTSecret overrides the signing key; called once from the router with
// the configured secret.
func SetJWTSecret(secret []byte) {
	if len(secret) > 0 {
		jwtSecret = secret
	}
}

func issueToken(id int64, role string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":   id,
		"role": role,
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
	})
	return token.SignedString(jwtSecret)
}

type studentRegisterRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/auth/student/register
func RegisterStudent(c *gin.Context) {
	var req studentRegisterRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Name == "" || req.Phone == "" || len(req.Password) < 6 {
		respondError(c, http.StatusBadRequest, "validation_error",
			"name, phone and a password of at least 6 characters are required")
		return
	}

	repo := repositories.StudentRepository{}
	if _, _, err := repo.GetByPhone(req.Phone); err == nil {
		respondError(c, http.StatusBadRequest, "conflict", "phone number already registered")
		return
	} else if err != sql.ErrNoRows {
		respondError(c, http.StatusInternalServerError, "internal_error", "failed to check phone")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "failed to hash password")
		return
	}

	id, err := repo.Create(req.Name, req.Phone, strings.TrimSpace(req.Email), string(hash))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "failed to create account")
		return
	}

	token, err := issueToken(id, middleware.RoleStudent)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "failed to create token")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  gin.H{"id": id, "name": req.Name, "phone": req.Phone, "role": middleware.RoleStudent},
	})
}

type studentLoginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// POST /api/auth/student/login
func LoginStudent(c *gin.Context) {
	var req studentLoginRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	student, hash, err := repositories.StudentRepository{}.GetByPhone(strings.TrimSpace(req.Phone))
	if err != nil {
		respondError(c, http.StatusUnauthorized, "unauthorized", "wrong phone or password")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		respondError(c, http.StatusUnauthorized, "unauthorized", "wrong phone or password")
		return
	}
	if student.IsGloballyBlocked {
		respondError(c, http.StatusForbidden, "forbidden", "your account is blocked due to repeated no-shows")
		return
	}

	token, err := issueToken(student.ID, middleware.RoleStudent)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "failed to create token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": student})
}

type driverLoginRequest struct {
	AutoNumber string `json:"auto_number"`
	Password   string `json:"password"`
}

// POST /api/auth/driver/login
func LoginDriver(c *gin.Context) {
	var req driverLoginRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	driver, hash, err := repositories.DriverRepository{}.GetByAutoNumber(strings.TrimSpace(req.AutoNumber))
	if err != nil {
		respondError(c, http.StatusUnauthorized, "unauthorized", "wrong auto number or password")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		respondError(c, http.StatusUnauthorized, "unauthorized", "wrong auto number or password")
		return
	}
	if !driver.IsActive {
		respondError(c, http.StatusForbidden, "forbidden", "your account has been deactivated")
		return
	}

	token, err := issueToken(driver.ID, middleware.RoleDriver)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "failed to create token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": driver})
}

type adminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// POST /api/auth/admin/login
func LoginAdmin(c *gin.Context) {
	var req adminLoginRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	admin, hash, err := repositories.AdminRepository{}.GetByUsername(strings.TrimSpace(req.Username))
	if err != nil {
		respondError(c, http.StatusUnauthorized, "unauthorized", "wrong username or password")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		respondError(c, http.StatusUnauthorized, "unauthorized", "wrong username or password")
		return
	}

	token, err := issueToken(admin.ID, middleware.RoleAdmin)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "failed to create token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": admin})
}

// GET /api/auth/me
func Me(c *gin.Context) {
	id := middleware.UserID(c)
	role := middleware.UserRole(c)

	switch role {
	case middleware.RoleStudent:
		student, err := repositories.StudentRepository{}.GetByID(nil, id)
		if err != nil {
			respondError(c, http.StatusNotFound, "not_found", "account not found")
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": student, "role": role})
	case middleware.RoleDriver:
		driver, err := repositories.DriverRepository{}.GetByID(id)
		if err != nil {
			respondError(c, http.StatusNotFound, "not_found", "account not found")
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": driver, "role": role})
	default:
		c.JSON(http.StatusOK, gin.H{"user": gin.H{"id": id}, "role": role})
	}
}
