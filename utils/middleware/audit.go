package middleware

import (
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/learnnest/learnnest-api/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AdminAuditLog records superadmin mutations on tenant and admin
// resources. Logging never fails the request.
func AdminAuditLog(db *gorm.DB, action, resource string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		adminUser, ok := GetUser(c)
		if !ok {
			return c.Next()
		}

		// Parse resource ID from params if available
		var resourceID uint
		if id := c.Params("id"); id != "" {
			if parsedID, err := strconv.ParseUint(id, 10, 32); err == nil {
				resourceID = uint(parsedID)
			}
		}

		var oldValue []byte
		var newValue []byte

		if c.Method() == "POST" || c.Method() == "PUT" {
			body := c.Body()
			if json.Valid(body) {
				newValue = append([]byte(nil), body...)
			}
		}

		// Capture the prior state for updates and deletes
		if resourceID > 0 && (c.Method() == "DELETE" || c.Method() == "PUT") {
			switch resource {
			case "institutions":
				var inst model.Institution
				if err := db.First(&inst, resourceID).Error; err == nil {
					oldValue, _ = json.Marshal(inst)
				}
			case "admins":
				var user model.User
				if err := db.First(&user, resourceID).Error; err == nil {
					oldValue, _ = json.Marshal(user)
				}
			}
		}

		ip := c.IP()
		userAgent := c.Get("User-Agent")
		description := c.Method() + " " + c.Path()

		// Execute the actual handler
		err := c.Next()
		if err != nil {
			return err
		}

		// Only successful mutations are recorded
		if c.Response().StatusCode() >= fiber.StatusBadRequest {
			return nil
		}

		auditLog := model.AdminAuditLog{
			AdminID:     adminUser.ID,
			Action:      action,
			Resource:    resource,
			ResourceID:  resourceID,
			OldValue:    datatypes.JSON(oldValue),
			NewValue:    datatypes.JSON(newValue),
			IPAddress:   ip,
			UserAgent:   userAgent,
			Description: description,
		}

		db.Create(&auditLog)

		return nil
	}
}
