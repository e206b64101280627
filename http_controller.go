package verify

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
)

// LoginRequest payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate will run validation rules.
func (r LoginRequest) Validate() error {
	if err := validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	); err != nil {
		return NewValidationError("missing required fields: username, password")
	}
	return nil
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (r ChangePasswordRequest) Validate() error {
	if err := validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required),
	); err != nil {
		return NewValidationError("missing required fields: currentPassword, newPassword")
	}
	return nil
}

// AuthController serves login and password changes.
type AuthController struct {
	Auth Authenticator
}

func (a *AuthController) Login(c *fiber.Ctx) error {
	payload := new(LoginRequest)
	if err := c.BodyParser(payload); err != nil {
		return NewValidationError("invalid request body")
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	token, identity, err := a.Auth.Login(c.UserContext(), payload.Username, payload.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":       identity.ID(),
			"username": identity.Username(),
			"role":     identity.Role(),
		},
	})
}

func (a *AuthController) ChangePassword(c *fiber.Ctx) error {
	identity, ok := IdentityFromFiber(c)
	if !ok {
		return ErrUnauthenticated
	}

	payload := new(ChangePasswordRequest)
	if err := c.BodyParser(payload); err != nil {
		return NewValidationError("invalid request body")
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	if err := a.Auth.ChangePassword(c.UserContext(), identity, payload.CurrentPassword, payload.NewPassword); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "password changed successfully"})
}

// UpsertVerificationRequest payload.
type UpsertVerificationRequest struct {
	DiscordID string `json:"discord_id"`
	Ckey      string `json:"ckey"`
	Flags     Flags  `json:"verified_flags"`
	Method    string `json:"verification_method"`
}

// UpdateVerificationRequest payload; nil fields are left untouched.
type UpdateVerificationRequest struct {
	DiscordID *string `json:"discord_id"`
	Ckey      *string `json:"ckey"`
	Flags     Flags   `json:"verified_flags"`
	Method    *string `json:"verification_method"`
}

// VerificationController serves the verification-record routes.
type VerificationController struct {
	Service *VerificationService
}

func (v *VerificationController) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 50)
	search := c.Query("search")

	records, err := v.Service.List(c.UserContext(), page, limit, search)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"verifications": records,
		"page":          page,
		"limit":         limit,
	})
}

func (v *VerificationController) Get(c *fiber.Ctx) error {
	record, err := v.Service.Get(c.UserContext(), c.Params("discord_id"))
	if err != nil {
		return err
	}
	return c.JSON(record)
}

func (v *VerificationController) GetByCkey(c *fiber.Ctx) error {
	record, err := v.Service.GetByCkey(c.UserContext(), c.Params("ckey"))
	if err != nil {
		return err
	}
	return c.JSON(record)
}

func (v *VerificationController) Upsert(c *fiber.Ctx) error {
	identity, ok := IdentityFromFiber(c)
	if !ok {
		return ErrUnauthenticated
	}

	payload := new(UpsertVerificationRequest)
	if err := c.BodyParser(payload); err != nil {
		return NewValidationError("invalid request body")
	}

	record, created, err := v.Service.Upsert(c.UserContext(), identity, payload.DiscordID, payload.Ckey, payload.Flags, payload.Method)
	if err != nil {
		return err
	}

	message := "verification updated successfully"
	if created {
		message = "verification created successfully"
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":        message,
		"discord_id":     record.DiscordID,
		"ckey":           record.Ckey,
		"verified_flags": record.Flags,
	})
}

func (v *VerificationController) Update(c *fiber.Ctx) error {
	identity, ok := IdentityFromFiber(c)
	if !ok {
		return ErrUnauthenticated
	}

	payload := new(UpdateVerificationRequest)
	if err := c.BodyParser(payload); err != nil {
		return NewValidationError("invalid request body")
	}

	patch := VerificationPatch{
		Ckey:   payload.Ckey,
		Flags:  payload.Flags,
		Method: payload.Method,
	}

	if err := v.Service.Update(c.UserContext(), identity, c.Params("discord_id"), patch); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "verification updated successfully"})
}

func (v *VerificationController) UpdateByCkey(c *fiber.Ctx) error {
	identity, ok := IdentityFromFiber(c)
	if !ok {
		return ErrUnauthenticated
	}

	payload := new(UpdateVerificationRequest)
	if err := c.BodyParser(payload); err != nil {
		return NewValidationError("invalid request body")
	}

	patch := VerificationPatch{
		DiscordID: payload.DiscordID,
		Flags:     payload.Flags,
		Method:    payload.Method,
	}

	if err := v.Service.UpdateByCkey(c.UserContext(), identity, c.Params("ckey"), patch); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "verification updated successfully"})
}

func (v *VerificationController) Delete(c *fiber.Ctx) error {
	identity, ok := IdentityFromFiber(c)
	if !ok {
		return ErrUnauthenticated
	}

	if err := v.Service.Delete(c.UserContext(), identity, c.Params("discord_id")); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "verification deleted successfully"})
}

func (v *VerificationController) DeleteByCkey(c *fiber.Ctx) error {
	identity, ok := IdentityFromFiber(c)
	if !ok {
		return ErrUnauthenticated
	}

	if err := v.Service.DeleteByCkey(c.UserContext(), identity, c.Params("ckey")); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "verification deleted successfully"})
}

func (v *VerificationController) BulkByDiscordIDs(c *fiber.Ctx) error {
	payload := new(struct {
		DiscordIDs []string `json:"discord_ids"`
	})
	if err := c.BodyParser(payload); err != nil {
		return NewValidationError("invalid request body")
	}

	records, err := v.Service.BulkGetByDiscordIDs(c.UserContext(), payload.DiscordIDs)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"verifications": records})
}

func (v *VerificationController) BulkByCkeys(c *fiber.Ctx) error {
	payload := new(struct {
		Ckeys []string `json:"ckeys"`
	})
	if err := c.BodyParser(payload); err != nil {
		return NewValidationError("invalid request body")
	}

	records, err := v.Service.BulkGetByCkeys(c.UserContext(), payload.Ckeys)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"verifications": records})
}

// CreateUserRequest payload.
type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UpdateUserRequest payload.
type UpdateUserRequest struct {
	Role string `json:"role"`
}

// UserController serves account administration.
type UserController struct {
	Admin *UserAdmin
}

func (u *UserController) List(c *fiber.Ctx) error {
	records, err := u.Admin.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"users": records})
}

func (u *UserController) Create(c *fiber.Ctx) error {
	identity, ok := IdentityFromFiber(c)
	if !ok {
		return ErrUnauthenticated
	}

	payload := new(CreateUserRequest)
	if err := c.BodyParser(payload); err != nil {
		return NewValidationError("invalid request body")
	}

	record, err := u.Admin.Create(c.UserContext(), identity, payload.Username, payload.Password, payload.Role)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "user created successfully",
		"id":      record.ID.String(),
	})
}

func (u *UserController) UpdateRole(c *fiber.Ctx) error {
	identity, ok := IdentityFromFiber(c)
	if !ok {
		return ErrUnauthenticated
	}

	payload := new(UpdateUserRequest)
	if err := c.BodyParser(payload); err != nil {
		return NewValidationError("invalid request body")
	}

	if _, err := u.Admin.UpdateRole(c.UserContext(), identity, c.Params("id"), payload.Role); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "user updated successfully"})
}

func (u *UserController) Delete(c *fiber.Ctx) error {
	identity, ok := IdentityFromFiber(c)
	if !ok {
		return ErrUnauthenticated
	}

	if err := u.Admin.Delete(c.UserContext(), identity, c.Params("id")); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "user deleted successfully"})
}

// ActivityController serves the audit listing.
type ActivityController struct {
	Log ActivityLog
}

func (a *ActivityController) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 50)

	entries, err := a.Log.List(c.UserContext(), page, limit)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"activities": entries,
		"page":       page,
		"limit":      limit,
	})
}

// AnalyticsController serves the dashboard aggregates.
type AnalyticsController struct {
	Analytics *Analytics
}

func (a *AnalyticsController) Stats(c *fiber.Ctx) error {
	stats, err := a.Analytics.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}
