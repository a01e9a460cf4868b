package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/admiralorbiter/skien/internal/models"
	"github.com/admiralorbiter/skien/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AdminHandler handles the admin dashboard, user management and audit log
// access
type AdminHandler struct {
	db    *gorm.DB
	users *services.UsersService
	audit *services.AuditService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(db *gorm.DB, users *services.UsersService, audit *services.AuditService) *AdminHandler {
	return &AdminHandler{db: db, users: users, audit: audit}
}

// Dashboard returns content and user counts plus recent admin activity,
// refreshing the user metrics as a side effect
func (h *AdminHandler) Dashboard(c *gin.Context) {
	var topicCount, threadCount, eventCount, storyCount, tagCount, edgeCount int64
	h.db.Model(&models.Topic{}).Count(&topicCount)
	h.db.Model(&models.Thread{}).Count(&threadCount)
	h.db.Model(&models.EventClaim{}).Count(&eventCount)
	h.db.Model(&models.Story{}).Count(&storyCount)
	h.db.Model(&models.Tag{}).Count(&tagCount)
	h.db.Model(&models.Edge{}).Count(&edgeCount)

	var totalUsers, activeUsers, adminUsers int64
	h.db.Model(&models.User{}).Count(&totalUsers)
	h.db.Model(&models.User{}).Where("is_active = ?", true).Count(&activeUsers)
	h.db.Model(&models.User{}).Where("is_admin = ?", true).Count(&adminUsers)

	h.audit.SetMetric("total_users", float64(totalUsers), "")
	h.audit.SetMetric("active_users", float64(activeUsers), "")
	h.audit.SetMetric("admin_users", float64(adminUsers), "")

	c.JSON(http.StatusOK, gin.H{
		"counts": gin.H{
			"topics":  topicCount,
			"threads": threadCount,
			"events":  eventCount,
			"stories": storyCount,
			"tags":    tagCount,
			"edges":   edgeCount,
		},
		"users": gin.H{
			"total":  totalUsers,
			"active": activeUsers,
			"admin":  adminUsers,
		},
		"recent_actions": h.audit.RecentActions(10),
	})
}

// ListUsers returns a page of users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	limit, offset := pagination(c, 20)
	users, total, err := h.users.List(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "total": total})
}

type createUserRequest struct {
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsActive  *bool  `json:"is_active"`
	IsAdmin   bool   `json:"is_admin"`
}

// CreateUser creates a new user account
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	user, err := h.users.Create(req.Username, req.Email, req.Password,
		req.FirstName, req.LastName, isActive, req.IsAdmin)
	if err != nil {
		if violations := services.Violations(err); violations != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": violations})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}

	if claims := currentClaims(c); claims != nil {
		h.audit.LogAction(claims.UserID, "user_created", &user.ID,
			fmt.Sprintf("Created user %s", user.Username), requestMeta(c))
	}
	c.JSON(http.StatusCreated, user)
}

type updateUserRequest struct {
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	IsActive  *bool   `json:"is_active"`
	IsAdmin   *bool   `json:"is_admin"`
	Password  *string `json:"password"`
}

// UpdateUser applies a partial update to a user account
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	user, ok := h.lookupUser(c)
	if !ok {
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	upd := services.UserUpdate{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IsActive:  req.IsActive,
		IsAdmin:   req.IsAdmin,
	}
	if err := h.users.Update(user, upd); err != nil {
		if violations := services.Violations(err); violations != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": violations})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update user"})
		return
	}

	if req.Password != nil && *req.Password != "" {
		if err := h.users.SetPassword(user, *req.Password); err != nil {
			if violations := services.Violations(err); violations != nil {
				c.JSON(http.StatusBadRequest, gin.H{"errors": violations})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to set password"})
			return
		}
	}

	if claims := currentClaims(c); claims != nil {
		h.audit.LogAction(claims.UserID, "user_updated", &user.ID,
			fmt.Sprintf("Updated user %s", user.Username), requestMeta(c))
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser removes a user account. Deleting your own account is
// forbidden.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	user, ok := h.lookupUser(c)
	if !ok {
		return
	}

	claims := currentClaims(c)
	if claims != nil && claims.UserID == user.ID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "you cannot delete your own account"})
		return
	}

	if err := h.users.Delete(user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete user"})
		return
	}

	if claims != nil {
		h.audit.LogAction(claims.UserID, "user_deleted", &user.ID,
			fmt.Sprintf("Deleted user %s", user.Username), requestMeta(c))
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// ListLogs returns a page of the audit trail
func (h *AdminHandler) ListLogs(c *gin.Context) {
	limit, offset := pagination(c, 50)
	logs, total, err := h.audit.ListActions(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list logs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs, "total": total})
}

// Stats returns the stored dashboard metrics
func (h *AdminHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"total_users":  h.audit.GetMetric("total_users", 0),
		"active_users": h.audit.GetMetric("active_users", 0),
		"admin_users":  h.audit.GetMetric("admin_users", 0),
	})
}

func (h *AdminHandler) lookupUser(c *gin.Context) (*models.User, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return nil, false
	}
	user, err := h.users.FindByID(uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return nil, false
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return nil, false
	}
	return user, true
}

// pagination reads page/limit query params with a default page size
func pagination(c *gin.Context, defaultLimit int) (limit, offset int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if limit < 1 || limit > 200 {
		limit = defaultLimit
	}
	return limit, (page - 1) * limit
}
