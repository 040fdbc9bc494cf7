package ledger

import (
	"github.com/amirasaad/finsync/webapi/common"
	"github.com/gofiber/fiber/v2"
)

func create[In, Out any](title string, fn func(In) (Out, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[In](c)
		if input == nil {
			return err
		}
		out, err := fn(*input)
		if err != nil {
			return common.ProblemDetailsJSON(c, title, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Created", out)
	}
}

func edit[In, Out any](title string, fn func(string, In) (Out, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[In](c)
		if input == nil {
			return err
		}
		out, err := fn(c.Params("id"), *input)
		if err != nil {
			return common.ProblemDetailsJSON(c, title, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Updated", out)
	}
}

func byID[Out any](title string, fn func(string) (Out, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		out, err := fn(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, title, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Updated", out)
	}
}

func remove(title string, fn func(string) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := fn(c.Params("id")); err != nil {
			return common.ProblemDetailsJSON(c, title, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Done", nil)
	}
}

func set[In any](title string, fn func(In) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[In](c)
		if input == nil {
			return err
		}
		if err := fn(*input); err != nil {
			return common.ProblemDetailsJSON(c, title, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Saved", nil)
	}
}

func action(title string, fn func() error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := fn(); err != nil {
			return common.ProblemDetailsJSON(c, title, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Done", nil)
	}
}
