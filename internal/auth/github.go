package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/algojourney/algojourney/internal/config"
	"github.com/algojourney/algojourney/internal/database"
	"github.com/algojourney/algojourney/internal/database/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"gorm.io/gorm"
)

type GitHubHandler struct {
	cfg    *config.Config
	db     *gorm.DB
	oauth2 *oauth2.Config
}

type GitHubUser struct {
	ID    int    `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func NewGitHubHandler(cfg *config.Config, db *gorm.DB) *GitHubHandler {
	return &GitHubHandler{
		cfg: cfg,
		db:  db,
		oauth2: &oauth2.Config{
			ClientID:     cfg.Auth.GitHub.ClientID,
			ClientSecret: cfg.Auth.GitHub.ClientSecret,
			RedirectURL:  cfg.Auth.GitHub.RedirectURI,
			Endpoint:     github.Endpoint,
			Scopes:       []string{"read:user", "user:email"},
		},
	}
}

func (h *GitHubHandler) Login(c *gin.Context) {
	url := h.oauth2.AuthCodeURL("state", oauth2.AccessTypeOffline)
	c.Redirect(http.StatusTemporaryRedirect, url)
}

func (h *GitHubHandler) Callback(c *gin.Context) {
	code := c.Query("code")
	token, err := h.oauth2.Exchange(context.Background(), code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to exchange token: " + err.Error()})
		return
	}

	client := h.oauth2.Client(context.Background(), token)
	resp, err := client.Get("https://api.github.com/user")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get user info: " + err.Error()})
		return
	}
	defer resp.Body.Close()

	var ghUser GitHubUser
	if err := json.NewDecoder(resp.Body).Decode(&ghUser); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode user info: " + err.Error()})
		return
	}

	user, err := database.GetUserByGithubID(h.db, fmt.Sprint(ghUser.ID))
	if err == gorm.ErrRecordNotFound {
		// User does not exist, create new user
		ghID := fmt.Sprint(ghUser.ID)
		newUser := models.User{
			ID:             uuid.NewString(),
			GithubID:       &ghID,
			Username:       ghUser.Login,
			Email:          ghUser.Email,
			GithubUsername: ghUser.Login,
		}
		if err := database.CreateUser(h.db, &newUser); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user: " + err.Error()})
			return
		}
		user = &newUser
		zap.S().Infof("new user registered via github: %s", user.Username)
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error: " + err.Error()})
		return
	}

	jwtToken, err := GenerateJWT(user.ID, h.cfg.Auth.JWT.Secret, h.cfg.Auth.JWT.ExpireHours)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate JWT: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": jwtToken})
}
