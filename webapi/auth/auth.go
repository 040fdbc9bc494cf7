package auth

import (
	"encoding/json"
	"errors"

	"github.com/amirasaad/finsync/pkg/domain"
	authsvc "github.com/amirasaad/finsync/pkg/service/auth"
	"github.com/amirasaad/finsync/pkg/syncer"
	"github.com/amirasaad/finsync/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// Routes mounts the auth endpoints. protected guards the endpoints acting on
// the running session.
func Routes(app *fiber.App, authSvc *authsvc.Service, sync *syncer.Orchestrator, protected ...fiber.Handler) {
	app.Post("/auth/login", Login(authSvc))
	app.Post("/auth/register", Register(authSvc))
	app.Post("/auth/logout", Logout(authSvc))
	app.Get("/auth/session", Session(authSvc, sync))
	handlers := append(append([]fiber.Handler{}, protected...), PushSubscription(sync))
	app.Put("/auth/push-subscription", handlers...)
}

func tokenResponse(authSvc *authsvc.Service, sess domain.Session) (TokenResponse, error) {
	token, err := authSvc.GenerateToken(sess)
	if err != nil && !errors.Is(err, authsvc.ErrNoSigningKey) {
		return TokenResponse{}, err
	}
	return TokenResponse{Email: sess.Email, Name: sess.Name, Token: token}, nil
}

// Login signs an existing user in and starts the sync session.
// @Summary Sign in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginInput true "Login email"
// @Success 200 {object} common.Response{data=TokenResponse}
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /auth/login [post]
func Login(authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[LoginInput](c)
		if input == nil {
			return err
		}
		sess, err := authSvc.Login(c.UserContext(), input.Email)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Login failed", err)
		}
		resp, err := tokenResponse(authSvc, sess)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Token not issued", err, fiber.StatusInternalServerError)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Signed in", resp)
	}
}

// Register creates a user record and signs in.
// @Summary Register
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterInput true "New user"
// @Success 201 {object} common.Response{data=TokenResponse}
// @Failure 400 {object} common.ProblemDetails
// @Failure 409 {object} common.ProblemDetails
// @Router /auth/register [post]
func Register(authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[RegisterInput](c)
		if input == nil {
			return err
		}
		sess, err := authSvc.Register(c.UserContext(), input.Email, input.Name)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Registration failed", err)
		}
		resp, err := tokenResponse(authSvc, sess)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Token not issued", err, fiber.StatusInternalServerError)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Registered", resp)
	}
}

func Logout(authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authSvc.Logout(c.UserContext())
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Signed out", nil)
	}
}

func Session(authSvc *authsvc.Service, sync *syncer.Orchestrator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		resp := SessionResponse{Status: sync.Status().String()}
		if sess, ok := authSvc.Current(); ok {
			resp.Email, resp.Name = sess.Email, sess.Name
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Session", resp)
	}
}

// PushSubscription stores the host push subscription object as sent.
func PushSubscription(sync *syncer.Orchestrator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body := c.Body()
		if !json.Valid(body) {
			return common.ProblemDetailsJSON(c, "Invalid request body", errors.New("body must be a JSON object"), fiber.StatusBadRequest)
		}
		if err := sync.SetPushSubscription(c.UserContext(), json.RawMessage(append([]byte(nil), body...))); err != nil {
			return common.ProblemDetailsJSON(c, "Push subscription not stored", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusAccepted, "Push subscription received", nil)
	}
}
