package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	supa "github.com/supabase-community/supabase-go"
	"golang.org/x/crypto/bcrypt"

	"github.com/Daanveer10/medcAIr/config"
	"github.com/Daanveer10/medcAIr/middleware"
	"github.com/Daanveer10/medcAIr/models"
)

type AuthHandler struct {
	supabase *supa.Client
	config   *config.Config
}

func NewAuthHandler(supabase *supa.Client, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		supabase: supabase,
		config:   cfg,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, validationErr("Missing required fields"))
		return
	}

	if req.Role != models.RolePatient && req.Role != models.RoleHospital {
		respondError(c, validationErr("Invalid role. Must be patient or hospital"))
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.Name)

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, internalErr("Error creating user"))
		return
	}

	newUser := map[string]interface{}{
		"id":       uuid.New().String(),
		"email":    email,
		"password": string(hashed),
		"name":     name,
		"role":     req.Role,
	}
	if req.Phone != nil && *req.Phone != "" {
		newUser["phone"] = strings.TrimSpace(*req.Phone)
	}

	var created []models.User
	err = fetch(h.supabase.From("users").Insert(newUser, false, "", "", ""), h.config.QueryTimeout, &created)
	if err != nil {
		if isDuplicateErr(err) {
			respondError(c, conflictErr("Email already registered"))
			return
		}
		respondError(c, storeErr(err))
		return
	}
	if len(created) == 0 {
		respondError(c, internalErr("User creation failed. No data returned from database."))
		return
	}

	user := created[0]
	token, err := h.generateToken(user)
	if err != nil {
		respondError(c, internalErr("Error creating user"))
		return
	}

	user.Password = ""
	c.JSON(http.StatusOK, models.AuthResponse{Token: token, User: &user})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, validationErr("Email and password required"))
		return
	}

	var users []models.User
	err := fetch(h.supabase.From("users").
		Select("*", "", false).
		Eq("email", strings.ToLower(strings.TrimSpace(req.Email))),
		h.config.QueryTimeout, &users)
	if err == errQueryTimeout {
		respondError(c, storeErr(err))
		return
	}
	if err != nil || len(users) == 0 {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid email or password"})
		return
	}

	user := users[0]
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid email or password"})
		return
	}

	token, err := h.generateToken(user)
	if err != nil {
		respondError(c, internalErr("Error during login. Please try again."))
		return
	}

	user.Password = ""
	c.JSON(http.StatusOK, models.AuthResponse{Token: token, User: &user})
}

func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var users []models.User
	err := fetch(h.supabase.From("users").
		Select("id, email, name, role, phone", "", false).
		Eq("id", userID.(string)),
		h.config.QueryTimeout, &users)
	if err != nil || len(users) == 0 {
		respondError(c, notFoundErr("User not found"))
		return
	}

	user := users[0]
	user.Password = ""
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) generateToken(user models.User) (string, error) {
	phone := ""
	if user.Phone != nil {
		phone = *user.Phone
	}
	claims := middleware.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		Name:   user.Name,
		Phone:  phone,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(7 * 24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.config.JWTSecret))
}
